// Package testmap is a small, in-memory reference implementation of
// mapmodel.Map, used by the navigation core's own tests and by the demo
// binaries under cmd/. It is not a map database: loading real map data is
// out of scope for the core (spec §1); this package only gives tests
// something concrete to route over.
//
// External identifiers are accepted as github.com/paulmach/osm.NodeID and
// osm.WayID, the same external ID types pkg/osm.Parse consumes, and are
// compacted into dense local indices the way pkg/graph.Build compacts them
// into CSR node indices.
package testmap

import (
	"fmt"

	"github.com/paulmach/osm"
	"github.com/tidwall/rtree"

	"github.com/azybler/navcore/pkg/mapmodel"
)

// Line is one line (edge) in a built Map.
type Line struct {
	From, To   mapmodel.PointID
	Layer      mapmodel.LayerID
	Shape      []mapmodel.Position
	Direction  mapmodel.Direction
	CrossTimeF int // forward (with-line) cross time, seconds
	CrossTimeR int // reverse (against-line) cross time, seconds
	Street     mapmodel.StreetID
}

// Restriction is a forbidden (via, from, to) transition.
type Restriction struct {
	Via      mapmodel.PointID
	From, To mapmodel.LineID
}

// Map is an in-memory mapmodel.Map built from Points, Lines and squares.
type Map struct {
	points    []mapmodel.Position
	pointSq   []mapmodel.SquareID
	lines     []Line
	restrict  map[[3]uint32]bool
	squareIdx *rtree.RTreeG[mapmodel.SquareID] // rect -> squareID, for SquaresInRect

	squareOfPoint map[mapmodel.PointID]mapmodel.SquareID
	squareBounds  map[mapmodel.SquareID][4]int32 // minLon,minLat,maxLon,maxLat

	outgoing map[mapmodel.SquareID]map[mapmodel.LayerID][]mapmodel.DirectedEdge
	incoming map[mapmodel.SquareID]map[mapmodel.LayerID][]mapmodel.DirectedEdge

	nodeIDs map[osm.NodeID]mapmodel.PointID
	wayIDs  map[osm.WayID][]mapmodel.LineID

	math mapmodel.EquirectMath
}

// Builder accumulates points and lines using OSM-style external IDs before
// producing an immutable Map, mirroring pkg/graph.Build's two-phase
// "collect then compact" approach.
type Builder struct {
	nodeIDs  map[osm.NodeID]mapmodel.PointID
	points   []mapmodel.Position
	wayIDs   map[osm.WayID][]mapmodel.LineID
	lines    []Line
	restrict map[[3]uint32]bool
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		nodeIDs:  make(map[osm.NodeID]mapmodel.PointID),
		wayIDs:   make(map[osm.WayID][]mapmodel.LineID),
		restrict: make(map[[3]uint32]bool),
	}
}

// AddNode registers a point at the given position, keyed by its external
// OSM node id. Re-adding the same id is a no-op.
func (b *Builder) AddNode(id osm.NodeID, pos mapmodel.Position) mapmodel.PointID {
	if pid, ok := b.nodeIDs[id]; ok {
		return pid
	}
	pid := mapmodel.PointID(len(b.points))
	b.points = append(b.points, pos)
	b.nodeIDs[id] = pid
	return pid
}

// AddLine adds a line between two previously-added nodes, keyed by an
// external OSM way id (a way may contribute several lines, e.g. one per
// segment between shape breaks).
func (b *Builder) AddLine(way osm.WayID, from, to osm.NodeID, layer mapmodel.LayerID, dir mapmodel.Direction, crossTimeF, crossTimeR int, shape ...mapmodel.Position) mapmodel.LineID {
	lid := mapmodel.LineID(len(b.lines))
	b.lines = append(b.lines, Line{
		From:       b.nodeIDs[from],
		To:         b.nodeIDs[to],
		Layer:      layer,
		Shape:      shape,
		Direction:  dir,
		CrossTimeF: crossTimeF,
		CrossTimeR: crossTimeR,
		// Default street identity follows the way, the same grouping
		// pkg/osm.Parse uses before any street-name join; SetStreet lets a
		// fixture put several ways on one named street.
		Street: mapmodel.StreetID(way),
	})
	b.wayIDs[way] = append(b.wayIDs[way], lid)
	return lid
}

// SetStreet overrides a line's street identity, for fixtures where several
// ways belong to the same named street (so the annotator groups across the
// way boundary).
func (b *Builder) SetStreet(line mapmodel.LineID, street mapmodel.StreetID) {
	b.lines[line].Street = street
}

// AddRestriction forbids the via/from/to transition.
func (b *Builder) AddRestriction(via osm.NodeID, from, to mapmodel.LineID) {
	b.restrict[[3]uint32{uint32(b.nodeIDs[via]), uint32(from), uint32(to)}] = true
}

// squareShift determines tile size: points sharing the high bits of their
// coordinates (after shifting out squareBits low bits) share a square, the
// same "low 16 bits of a point id" locality the spec assumes for
// StreetGraphTile node_local_id packing — here realized spatially instead
// of by id, since test fixtures do not need a real on-disk tile format.
const squareShiftBits = 14 // ~0.0164 degrees per square side at 1e6 scale... see squareOf

func squareOf(pos mapmodel.Position) mapmodel.SquareID {
	// Coarse spatial bucketing: 2^14 micro-degrees ≈ 1.8 km per square side.
	sx := uint32(pos.LonE6) >> squareShiftBits
	sy := uint32(pos.LatE6) >> squareShiftBits
	return mapmodel.SquareID(sx<<16 | (sy & 0xFFFF))
}

// Build compacts the accumulated nodes/lines into an immutable Map.
func (b *Builder) Build() *Map {
	m := &Map{
		points:        b.points,
		lines:         b.lines,
		restrict:      b.restrict,
		squareOfPoint: make(map[mapmodel.PointID]mapmodel.SquareID, len(b.points)),
		squareBounds:  make(map[mapmodel.SquareID][4]int32),
		outgoing:      make(map[mapmodel.SquareID]map[mapmodel.LayerID][]mapmodel.DirectedEdge),
		incoming:      make(map[mapmodel.SquareID]map[mapmodel.LayerID][]mapmodel.DirectedEdge),
		nodeIDs:       b.nodeIDs,
		wayIDs:        b.wayIDs,
		squareIdx:     &rtree.RTreeG[mapmodel.SquareID]{},
	}
	m.pointSq = make([]mapmodel.SquareID, len(b.points))

	for pid, pos := range b.points {
		sq := squareOf(pos)
		m.pointSq[pid] = sq
		m.squareOfPoint[mapmodel.PointID(pid)] = sq

		bounds, ok := m.squareBounds[sq]
		if !ok {
			bounds = [4]int32{pos.LonE6, pos.LatE6, pos.LonE6, pos.LatE6}
		} else {
			bounds = [4]int32{min32(bounds[0], pos.LonE6), min32(bounds[1], pos.LatE6), max32(bounds[2], pos.LonE6), max32(bounds[3], pos.LatE6)}
		}
		m.squareBounds[sq] = bounds
	}

	for sq, b := range m.squareBounds {
		min := [2]float64{float64(b[0]), float64(b[1])}
		max := [2]float64{float64(b[2]), float64(b[3])}
		m.squareIdx.Insert([2]float64{min[0], min[1]}, [2]float64{max[0], max[1]}, sq)
	}

	// Populate per-square, per-layer outgoing/incoming directed-edge lists,
	// following the build procedure of spec §4.2.
	for lid, ln := range m.lines {
		line := mapmodel.LineID(lid)
		fromSq := m.pointSq[ln.From]
		toSq := m.pointSq[ln.To]

		if ln.Direction.Allows(false) {
			addEdge(m.outgoing, fromSq, ln.Layer, mapmodel.DirectedEdge{Line: line, Reversed: false})
			if toSq != fromSq {
				addEdge(m.incoming, toSq, ln.Layer, mapmodel.DirectedEdge{Line: line, Reversed: false})
			}
		}
		if ln.Direction.Allows(true) {
			addEdge(m.outgoing, toSq, ln.Layer, mapmodel.DirectedEdge{Line: line, Reversed: true})
			if fromSq != toSq {
				addEdge(m.incoming, fromSq, ln.Layer, mapmodel.DirectedEdge{Line: line, Reversed: true})
			}
		}
	}

	return m
}

func addEdge(dst map[mapmodel.SquareID]map[mapmodel.LayerID][]mapmodel.DirectedEdge, sq mapmodel.SquareID, layer mapmodel.LayerID, e mapmodel.DirectedEdge) {
	bySq, ok := dst[sq]
	if !ok {
		bySq = make(map[mapmodel.LayerID][]mapmodel.DirectedEdge)
		dst[sq] = bySq
	}
	bySq[layer] = append(bySq[layer], e)
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// PointIDFor returns the local PointID for an external OSM node id, for
// tests that build fixtures with AddNode then need to pass PointIDs to the
// facade.
func (m *Map) PointIDFor(id osm.NodeID) (mapmodel.PointID, bool) {
	pid, ok := m.nodeIDs[id]
	return pid, ok
}

// LinesForWay returns the local LineIDs contributed by an external way id.
func (m *Map) LinesForWay(id osm.WayID) []mapmodel.LineID {
	return m.wayIDs[id]
}

// Math returns the geometric primitive implementation backing this map.
func (m *Map) Math() mapmodel.Math { return m.math }

func (m *Map) LineEndpoints(line mapmodel.LineID) (mapmodel.PointID, mapmodel.PointID, error) {
	if int(line) >= len(m.lines) {
		return 0, 0, fmt.Errorf("testmap: no such line %d", line)
	}
	l := m.lines[line]
	return l.From, l.To, nil
}

func (m *Map) PointPosition(point mapmodel.PointID) (mapmodel.Position, error) {
	if int(point) >= len(m.points) {
		return mapmodel.Position{}, fmt.Errorf("testmap: no such point %d", point)
	}
	return m.points[point], nil
}

func (m *Map) PointSquare(point mapmodel.PointID) (mapmodel.SquareID, error) {
	if int(point) >= len(m.pointSq) {
		return 0, fmt.Errorf("testmap: no such point %d", point)
	}
	return m.pointSq[point], nil
}

func (m *Map) LineShape(line mapmodel.LineID) ([]mapmodel.Position, error) {
	if int(line) >= len(m.lines) {
		return nil, fmt.Errorf("testmap: no such line %d", line)
	}
	return m.lines[line].Shape, nil
}

func (m *Map) LineLayer(line mapmodel.LineID) (mapmodel.LayerID, error) {
	if int(line) >= len(m.lines) {
		return 0, fmt.Errorf("testmap: no such line %d", line)
	}
	return m.lines[line].Layer, nil
}

func (m *Map) LineDirection(line mapmodel.LineID, _ mapmodel.VehicleKind) (mapmodel.Direction, error) {
	if int(line) >= len(m.lines) {
		return mapmodel.DirNone, fmt.Errorf("testmap: no such line %d", line)
	}
	return m.lines[line].Direction, nil
}

func (m *Map) LineCrossTime(line mapmodel.LineID, reversed bool) (int, error) {
	if int(line) >= len(m.lines) {
		return 0, fmt.Errorf("testmap: no such line %d", line)
	}
	l := m.lines[line]
	if reversed {
		return l.CrossTimeR, nil
	}
	return l.CrossTimeF, nil
}

func (m *Map) LineLength(line mapmodel.LineID) (float64, error) {
	if int(line) >= len(m.lines) {
		return 0, fmt.Errorf("testmap: no such line %d", line)
	}
	l := m.lines[line]
	pts := make([]mapmodel.Position, 0, len(l.Shape)+2)
	fromPos, _ := m.PointPosition(l.From)
	toPos, _ := m.PointPosition(l.To)
	pts = append(pts, fromPos)
	pts = append(pts, l.Shape...)
	pts = append(pts, toPos)

	var total float64
	for i := 0; i+1 < len(pts); i++ {
		total += m.math.Distance(pts[i], pts[i+1])
	}
	return total, nil
}

func (m *Map) TurnRestricted(via mapmodel.PointID, from, to mapmodel.LineID) (bool, error) {
	return m.restrict[[3]uint32{uint32(via), uint32(from), uint32(to)}], nil
}

func (m *Map) LineStreetID(line mapmodel.LineID) (mapmodel.StreetID, error) {
	if int(line) >= len(m.lines) {
		return 0, fmt.Errorf("testmap: no such line %d", line)
	}
	return m.lines[line].Street, nil
}

func (m *Map) LinesInSquare(square mapmodel.SquareID, layer mapmodel.LayerID) ([]mapmodel.DirectedEdge, error) {
	return m.outgoing[square][layer], nil
}

func (m *Map) LinesInSquareIncoming(square mapmodel.SquareID, layer mapmodel.LayerID) ([]mapmodel.DirectedEdge, error) {
	return m.incoming[square][layer], nil
}

func (m *Map) LineCount() int { return len(m.lines) }

func (m *Map) SquaresInRect(minLon, minLat, maxLon, maxLat int32) ([]mapmodel.SquareID, error) {
	var out []mapmodel.SquareID
	m.squareIdx.Search(
		[2]float64{float64(minLon), float64(minLat)},
		[2]float64{float64(maxLon), float64(maxLat)},
		func(_, _ [2]float64, sq mapmodel.SquareID) bool {
			out = append(out, sq)
			return true
		},
	)
	return out, nil
}

// AllNavigable is a LayerSet that treats every layer as car-navigable,
// used by tests that don't care about layer filtering.
type AllNavigable struct{}

func (AllNavigable) NavigableByCar(mapmodel.LayerID) bool { return true }

// NewGrid builds a rows x cols grid of two-way streets, spacingE6
// micro-degrees apart, generalizing the end-to-end scenario fixtures of
// spec §8 into a reusable demo/test map. Every east-west row shares one
// street id and every north-south column shares another, so the annotator
// groups straight-through driving and turns at every intersection.
// crossTimeF/crossTimeR are applied uniformly to every edge.
func NewGrid(rows, cols int, spacingE6 int32, crossTimeF, crossTimeR int) *Map {
	b := NewBuilder()
	id := func(r, c int) osm.NodeID { return osm.NodeID(r*cols + c + 1) }

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			b.AddNode(id(r, c), mapmodel.Position{
				LonE6: int32(c) * spacingE6,
				LatE6: int32(r) * spacingE6,
			})
		}
	}

	way := osm.WayID(1)
	for r := 0; r < rows; r++ {
		street := osm.WayID(1_000_000 + r) // one street id per row
		for c := 0; c+1 < cols; c++ {
			l := b.AddLine(way, id(r, c), id(r, c+1), 0, mapmodel.DirBoth, crossTimeF, crossTimeR)
			b.SetStreet(l, mapmodel.StreetID(street))
			way++
		}
	}
	for c := 0; c < cols; c++ {
		street := osm.WayID(2_000_000 + c) // one street id per column
		for r := 0; r+1 < rows; r++ {
			l := b.AddLine(way, id(r, c), id(r+1, c), 0, mapmodel.DirBoth, crossTimeF, crossTimeR)
			b.SetStreet(l, mapmodel.StreetID(street))
			way++
		}
	}

	return b.Build()
}
