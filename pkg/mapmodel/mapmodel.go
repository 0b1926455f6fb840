// Package mapmodel defines the narrow, read-only contract the routing and
// navigation core consumes from a host's map database (component C1).
//
// Nothing in this package parses map files or owns map data; it only
// describes the shape of queries the core needs answered. A host wires its
// own map database behind the Map interface.
package mapmodel

// PointID identifies a node in the street graph, unique within a loaded map.
type PointID uint32

// LineID identifies a line (edge), unique within a map region (fips).
type LineID uint32

// StreetID identifies a named street, shared by every line that belongs to
// it (e.g. the several lines making up one OSM way, or several ways sharing
// a road name).
type StreetID uint32

// SquareID identifies a map tile. Every point belongs to exactly one square.
type SquareID uint32

// NoPoint, NoLine and NoSquare are sentinel "absent" values.
const (
	NoPoint  PointID  = ^PointID(0)
	NoLine   LineID   = ^LineID(0)
	NoSquare SquareID = ^SquareID(0)
)

// Position is a (longitude, latitude) pair in signed integer micro-degrees.
// Equality is exact integer comparison, matching the data model's
// "same position" test.
type Position struct {
	LonE6 int32
	LatE6 int32
}

// Equal reports exact integer equality.
func (p Position) Equal(o Position) bool {
	return p.LonE6 == o.LonE6 && p.LatE6 == o.LatE6
}

// Direction describes which traffic direction(s) a line permits.
type Direction uint8

const (
	DirNone Direction = iota
	DirWithLine
	DirAgainstLine
	DirBoth
)

// Allows reports whether travel in the given reversed orientation is permitted.
// reversed=false means travelling from_point->to_point (with the line).
func (d Direction) Allows(reversed bool) bool {
	switch d {
	case DirBoth:
		return true
	case DirWithLine:
		return !reversed
	case DirAgainstLine:
		return reversed
	default:
		return false
	}
}

// VehicleKind selects the traffic class a direction query applies to.
type VehicleKind uint8

const (
	VehicleCar VehicleKind = iota
)

// DirectedEdge is a (line, reversed) pair: the traversable unit of the graph.
// reversed selects which endpoint is the tail: false means tail=from_point,
// head=to_point; true means tail=to_point, head=from_point.
type DirectedEdge struct {
	Line     LineID
	Reversed bool
}

// LineRange is a half-open [First, Last) range into a square's line listing.
type LineRange struct {
	First, Last int
}

// Map is the read-only contract the core consumes from a host map database.
type Map interface {
	// LineEndpoints returns the (from, to) point ids of a line.
	LineEndpoints(line LineID) (from, to PointID, err error)
	// PointPosition returns the position of a point.
	PointPosition(point PointID) (Position, error)
	// PointSquare returns which square a point belongs to.
	PointSquare(point PointID) (SquareID, error)
	// LineShape returns the intermediate shape points of a line, in
	// from->to order (excluding the endpoints themselves).
	LineShape(line LineID) ([]Position, error)
	// LineLayer returns the road classification of a line.
	LineLayer(line LineID) (LayerID, error)
	// LineDirection returns which directions of travel are permitted.
	LineDirection(line LineID, kind VehicleKind) (Direction, error)
	// LineCrossTime returns the time, in seconds, to traverse the line in
	// the given direction.
	LineCrossTime(line LineID, reversed bool) (int, error)
	// LineLength returns the line's length in meters (including shape points).
	LineLength(line LineID) (float64, error)
	// TurnRestricted reports whether turning from "from" to "to" through
	// via is forbidden.
	TurnRestricted(via PointID, from, to LineID) (bool, error)
	// LineStreetID returns the identifier of the named street a line
	// belongs to, used by the instruction annotator's same-street grouping
	// and turn-threshold relaxation. Two lines with the same StreetID are
	// considered the same street; lines with no street association (e.g.
	// unnamed service ways) should return a unique id per line so they
	// never spuriously group with a neighbour.
	LineStreetID(line LineID) (StreetID, error)
	// LinesInSquare returns, for a square and layer, the directed edges
	// whose tail lies in the square ("outgoing").
	LinesInSquare(square SquareID, layer LayerID) ([]DirectedEdge, error)
	// LinesInSquareIncoming returns directed edges crossing into the square
	// from a neighbouring square (tail outside, head inside).
	LinesInSquareIncoming(square SquareID, layer LayerID) ([]DirectedEdge, error)
	// LineCount returns the total number of lines in the active map, for
	// sizing the router's predecessor arrays.
	LineCount() int
	// SquaresInRect returns the squares overlapping a bounding box, for
	// spatial lookups such as C5's focus-rectangle neighbour search.
	SquaresInRect(minLon, minLat, maxLon, maxLat int32) ([]SquareID, error)
}

// LayerID identifies a road classification (highway, arterial, local, ...).
type LayerID uint8

// LayerSet is the host's answer to "which layers are navigable by car".
type LayerSet interface {
	NavigableByCar(layer LayerID) bool
}

// Math groups the geometric primitives the core borrows from the map
// database rather than reimplementing (spec §4.1's math.* functions).
type Math interface {
	// Distance returns the distance in meters between two positions.
	Distance(a, b Position) float64
	// Azimuth returns the bearing in degrees [0,360) from a to b.
	Azimuth(a, b Position) float64
	// DistanceFromSegment returns the perpendicular distance in meters from
	// p to the segment [a,b], and the projection of p onto that segment.
	DistanceFromSegment(p, a, b Position) (meters float64, projection Position)
}
