// Package annotate turns a raw sequence of directed edges from the router
// into a turn-by-turn instruction list (component C4), following spec §4.4.
package annotate

import (
	"fmt"

	"github.com/azybler/navcore/pkg/mapmodel"
)

// Instruction classifies the maneuver at a segment's leading junction.
type Instruction int

const (
	TurnLeft Instruction = iota
	TurnRight
	KeepLeft
	KeepRight
	Continue
	ApproachingDestination
)

func (i Instruction) String() string {
	switch i {
	case TurnLeft:
		return "TurnLeft"
	case TurnRight:
		return "TurnRight"
	case KeepLeft:
		return "KeepLeft"
	case KeepRight:
		return "KeepRight"
	case Continue:
		return "Continue"
	case ApproachingDestination:
		return "ApproachingDestination"
	default:
		return "Unknown"
	}
}

// Segment is one annotated directed edge of a route (spec §3).
type Segment struct {
	Edge        mapmodel.DirectedEdge
	FromPos     mapmodel.Position
	ToPos       mapmodel.Position
	FirstShape  int // inclusive index into LineShape(Edge.Line), or -1
	LastShape   int // inclusive, or -1
	Street      mapmodel.StreetID
	Instruction Instruction
	GroupID     int
	Distance    float64 // meters
	CrossTime   float64 // seconds
}

const (
	turnThresholdDeg           = 15.0
	sameStreetTurnThresholdDeg = 45.0
	turnKeepSplitDeg           = 45.0
)

// Annotate implements C4's annotate(edges, source_pos, dest_pos) contract.
func Annotate(m mapmodel.Map, mm mapmodel.Math, edges []mapmodel.DirectedEdge, sourcePos, destPos mapmodel.Position) ([]Segment, error) {
	if len(edges) == 0 {
		return nil, nil
	}

	segs := make([]Segment, len(edges))
	for i, e := range edges {
		s, err := populate(m, e)
		if err != nil {
			return nil, fmt.Errorf("annotate: segment %d: %w", i, err)
		}
		segs[i] = s
	}

	if err := clipEndpoints(m, mm, segs, sourcePos, destPos); err != nil {
		return nil, err
	}

	classify(m, mm, segs)
	segs[len(segs)-1].Instruction = ApproachingDestination
	group(segs)

	return segs, nil
}

func tailHead(m mapmodel.Map, e mapmodel.DirectedEdge) (tail, head mapmodel.PointID, err error) {
	from, to, err := m.LineEndpoints(e.Line)
	if err != nil {
		return 0, 0, err
	}
	if e.Reversed {
		return to, from, nil
	}
	return from, to, nil
}

func populate(m mapmodel.Map, e mapmodel.DirectedEdge) (Segment, error) {
	tail, head, err := tailHead(m, e)
	if err != nil {
		return Segment{}, err
	}
	fromPos, err := m.PointPosition(tail)
	if err != nil {
		return Segment{}, err
	}
	toPos, err := m.PointPosition(head)
	if err != nil {
		return Segment{}, err
	}
	shape, err := m.LineShape(e.Line)
	if err != nil {
		return Segment{}, err
	}
	street, err := m.LineStreetID(e.Line)
	if err != nil {
		return Segment{}, err
	}
	length, err := m.LineLength(e.Line)
	if err != nil {
		return Segment{}, err
	}
	ct, err := m.LineCrossTime(e.Line, e.Reversed)
	if err != nil {
		return Segment{}, err
	}

	first, last := -1, -1
	if len(shape) > 0 {
		first, last = 0, len(shape)-1
	}

	return Segment{
		Edge:       e,
		FromPos:    fromPos,
		ToPos:      toPos,
		FirstShape: first,
		LastShape:  last,
		Street:     street,
		Distance:   length,
		CrossTime:  float64(ct),
	}, nil
}

// shapeInOrder returns a segment's shape points oriented tail->head.
func shapeInOrder(m mapmodel.Map, e mapmodel.DirectedEdge) ([]mapmodel.Position, error) {
	shape, err := m.LineShape(e.Line)
	if err != nil {
		return nil, err
	}
	if !e.Reversed {
		return shape, nil
	}
	rev := make([]mapmodel.Position, len(shape))
	for i, p := range shape {
		rev[len(shape)-1-i] = p
	}
	return rev, nil
}

// exitAzimuth is the azimuth leaving a segment's from-point, using the
// nearest shape point where one exists.
func exitAzimuth(m mapmodel.Map, mm mapmodel.Math, s *Segment) (float64, error) {
	shape, err := shapeInOrder(m, s.Edge)
	if err != nil {
		return 0, err
	}
	next := s.ToPos
	if len(shape) > 0 {
		next = shape[0]
	}
	return mm.Azimuth(s.FromPos, next), nil
}

// entryAzimuth is the azimuth arriving at a segment's to-point, using the
// nearest shape point where one exists.
func entryAzimuth(m mapmodel.Map, mm mapmodel.Math, s *Segment) (float64, error) {
	shape, err := shapeInOrder(m, s.Edge)
	if err != nil {
		return 0, err
	}
	prev := s.FromPos
	if len(shape) > 0 {
		prev = shape[len(shape)-1]
	}
	return mm.Azimuth(prev, s.ToPos), nil
}

func clipEndpoints(m mapmodel.Map, mm mapmodel.Math, segs []Segment, sourcePos, destPos mapmodel.Position) error {
	first := &segs[0]
	origFromFirst := first.FromPos
	fullLenFirst, err := m.LineLength(first.Edge.Line)
	if err != nil {
		return err
	}
	_, projSrc := mm.DistanceFromSegment(sourcePos, origFromFirst, first.ToPos)

	last := &segs[len(segs)-1]
	origToLast := last.ToPos
	fullLenLast, err := m.LineLength(last.Edge.Line)
	if err != nil {
		return err
	}
	_, projDst := mm.DistanceFromSegment(destPos, last.FromPos, origToLast)

	// Source and destination on the same line: both clips land on the same
	// segment, so the surviving length is measured between the two
	// projections on the original chord rather than full-length to
	// full-length, avoiding a double cross-time scaling.
	if first == last {
		dist := mm.Distance(projSrc, projDst)
		first.CrossTime *= clampRatio(dist, fullLenFirst)
		first.Distance = dist
		first.FromPos = projSrc
		first.ToPos = projDst
		return nil
	}

	dFromStart := mm.Distance(projSrc, first.ToPos)
	first.CrossTime *= clampRatio(dFromStart, fullLenFirst)
	first.Distance = dFromStart
	first.FromPos = projSrc

	dToEnd := mm.Distance(last.FromPos, projDst)
	last.CrossTime *= clampRatio(dToEnd, fullLenLast)
	last.Distance = dToEnd
	last.ToPos = projDst

	return nil
}

func clampRatio(part, whole float64) float64 {
	if whole <= 0 {
		return 1
	}
	r := part / whole
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

func classify(m mapmodel.Map, mm mapmodel.Math, segs []Segment) {
	for i := 1; i < len(segs); i++ {
		prev, cur := &segs[i-1], &segs[i]
		azIn, _ := entryAzimuth(m, mm, prev)
		azOut, _ := exitAzimuth(m, mm, cur)
		delta := normalizeAngle(azIn - azOut)

		sameStreet := prev.Street == cur.Street
		threshold := turnThresholdDeg
		if sameStreet {
			threshold = sameStreetTurnThresholdDeg
		}

		switch {
		case delta > threshold:
			if delta >= turnKeepSplitDeg {
				cur.Instruction = TurnLeft
			} else {
				cur.Instruction = KeepLeft
			}
		case delta < -threshold:
			if delta <= -turnKeepSplitDeg {
				cur.Instruction = TurnRight
			} else {
				cur.Instruction = KeepRight
			}
		default:
			if sameStreet {
				cur.Instruction = Continue
			} else {
				cur.Instruction = probeNeighbours(m, mm, cur, azIn, delta)
			}
		}
	}
}

// probeNeighbours resolves an ambiguous junction (|delta| <= threshold, not
// same street) by comparing our exit against every other line leaving the
// junction node on a different street, in any layer (no navigability filter
// is applied here), per spec §4.4.
func probeNeighbours(m mapmodel.Map, mm mapmodel.Math, cur *Segment, azIn, ourDelta float64) Instruction {
	tail, _, err := tailHead(m, cur.Edge)
	if err != nil {
		return Continue
	}
	tailPos, err := m.PointPosition(tail)
	if err != nil {
		return Continue
	}
	sq, err := m.PointSquare(tail)
	if err != nil {
		return Continue
	}

	leftExtreme, rightExtreme := ourDelta, ourDelta
	found := false

	for layer := mapmodel.LayerID(0); layer < 255; layer++ {
		outs, err := m.LinesInSquare(sq, layer)
		if err != nil {
			continue
		}
		for _, de := range outs {
			edgeTail, head, err := tailHead(m, de)
			if err != nil || edgeTail != tail {
				continue
			}
			if de.Line == cur.Edge.Line {
				continue
			}
			street, err := m.LineStreetID(de.Line)
			if err != nil || street == cur.Street {
				continue
			}
			headPos, err := m.PointPosition(head)
			if err != nil {
				continue
			}
			azN := mm.Azimuth(tailPos, headPos)
			d := normalizeAngle(azIn - azN)
			found = true
			if d < leftExtreme {
				leftExtreme = d
			}
			if d > rightExtreme {
				rightExtreme = d
			}
		}
	}
	if !found {
		return Continue
	}
	if leftExtreme >= ourDelta && rightExtreme <= ourDelta {
		return Continue
	}
	if leftExtreme < ourDelta {
		return KeepRight
	}
	return KeepLeft
}

func normalizeAngle(delta float64) float64 {
	for delta > 180 {
		delta -= 360
	}
	for delta <= -180 {
		delta += 360
	}
	return delta
}

// group assigns group_id per spec §4.4: a run of Continue segments on the
// same street shares a group; anything else starts a new one. Since the
// last segment's instruction is always forced to ApproachingDestination
// before this runs, it never matches Continue and always gets its own
// group, satisfying "the last segment gets its own group id" without a
// special case here.
func group(segs []Segment) {
	groupID := 0
	for i := range segs {
		if i == 0 {
			segs[i].GroupID = groupID
			continue
		}
		if segs[i].Instruction == Continue && segs[i].Street == segs[i-1].Street {
			segs[i].GroupID = groupID
		} else {
			groupID++
			segs[i].GroupID = groupID
		}
	}
}
