package matcher

import (
	"github.com/azybler/navcore/pkg/mapmodel"
	"github.com/azybler/navcore/pkg/navconfig"
)

// Fix is one GPS sample fed to the matcher.
type Fix struct {
	Pos        mapmodel.Position
	SpeedKnots float64
	HeadingDeg float64
}

// TrackedPosition is C5's belief about where the vehicle is (spec §3).
type TrackedPosition struct {
	Edge        mapmodel.DirectedEdge
	Score       float64
	Approach    mapmodel.Position
	GuessNode   mapmodel.PointID
	GuessStreet mapmodel.StreetID
	hasGuess    bool
}

// ApproachEvent fires when the intersection guess changes while tracking.
type ApproachEvent struct {
	Node   mapmodel.PointID
	Street mapmodel.StreetID
}

// Matcher tracks the current confirmed edge across a stream of Fix values.
type Matcher struct {
	m      mapmodel.Map
	mm     mapmodel.Math
	layers mapmodel.LayerSet
	cfg    navconfig.Config

	current *TrackedPosition
}

// New creates a Matcher over m, using mm for geometric primitives and layers
// to restrict candidates to navigable lines.
func New(m mapmodel.Map, mm mapmodel.Math, layers mapmodel.LayerSet, cfg navconfig.Config) *Matcher {
	return &Matcher{m: m, mm: mm, layers: layers, cfg: cfg}
}

// Current returns the last confirmed tracked position, or nil if unmatched.
func (mr *Matcher) Current() *TrackedPosition {
	return mr.current
}

// candidate is one directed edge considered during re-search.
type candidate struct {
	edge mapmodel.DirectedEdge
	from mapmodel.PointID
	to   mapmodel.PointID
}

// OnFix implements the per-fix procedure of spec §4.5. It returns the
// resulting tracked position (nil if the matcher is, or becomes, unmatched)
// and any intersection-approach event raised this fix.
func (mr *Matcher) OnFix(fix Fix) (*TrackedPosition, *ApproachEvent, error) {
	if fix.SpeedKnots < mr.cfg.SpeedFloorKnots {
		return mr.current, nil, nil // heading unreliable; do nothing
	}

	if mr.current != nil {
		score, approach, err := mr.scoreEdge(mr.current.Edge, fix)
		if err != nil {
			return nil, nil, err
		}
		if score >= mr.cfg.FuzzyAcceptThreshold {
			mr.current.Score = score
			mr.current.Approach = approach
			ev := mr.updateIntersectionGuess(fix)
			return mr.current, ev, nil
		}
	}

	best, bestScore, bestApproach, err := mr.research(fix)
	if err != nil {
		return nil, nil, err
	}

	if best != nil && bestScore >= mr.cfg.FuzzyAcceptThreshold {
		mr.current = &TrackedPosition{Edge: *best, Score: bestScore, Approach: bestApproach}
		ev := mr.updateIntersectionGuess(fix)
		return mr.current, ev, nil
	}

	mr.current = nil
	return nil, nil, nil
}

// scoreEdge is the fast-path score: fuzzy_and(fuzzy_distance, fuzzy_direction).
func (mr *Matcher) scoreEdge(e mapmodel.DirectedEdge, fix Fix) (float64, mapmodel.Position, error) {
	from, to, err := mr.m.LineEndpoints(e.Line)
	if err != nil {
		return 0, mapmodel.Position{}, err
	}
	tail, head := from, to
	if e.Reversed {
		tail, head = to, from
	}
	tailPos, err := mr.m.PointPosition(tail)
	if err != nil {
		return 0, mapmodel.Position{}, err
	}
	headPos, err := mr.m.PointPosition(head)
	if err != nil {
		return 0, mapmodel.Position{}, err
	}
	dist, approach := mr.mm.DistanceFromSegment(fix.Pos, tailPos, headPos)
	edgeAz := mr.mm.Azimuth(tailPos, headPos)
	diff := angularDiff(fix.HeadingDeg, edgeAz)

	score := fuzzyAnd(
		fuzzyDistance(dist, mr.cfg.FuzzyMaxDistanceMeters),
		fuzzyDirection(diff, mr.cfg.FuzzyDirectionToleranceDeg),
	)
	return score, approach, nil
}

// research implements step 3: gather candidates within a focus rectangle and
// pick the best composite score.
func (mr *Matcher) research(fix Fix) (*mapmodel.DirectedEdge, float64, mapmodel.Position, error) {
	half := mr.cfg.FocusRectMeters / 2
	// Coarse meters-to-microdegrees conversion, adequate for sizing a
	// search rectangle (not for distance computation, which always goes
	// through mm.Distance/DistanceFromSegment).
	const metersPerDegreeLat = 111_320.0
	dLat := int32(half / metersPerDegreeLat * 1e6)
	dLon := dLat // close enough away from the poles for a focus rectangle
	minLon, maxLon := fix.Pos.LonE6-dLon, fix.Pos.LonE6+dLon
	minLat, maxLat := fix.Pos.LatE6-dLat, fix.Pos.LatE6+dLat

	squares, err := mr.m.SquaresInRect(minLon, minLat, maxLon, maxLat)
	if err != nil {
		return nil, 0, mapmodel.Position{}, err
	}

	seen := make(map[mapmodel.DirectedEdge]bool)
	var candidates []candidate
	for _, sq := range squares {
		for layer := mapmodel.LayerID(0); layer < 255; layer++ {
			if !mr.layers.NavigableByCar(layer) {
				continue
			}
			outs, err := mr.m.LinesInSquare(sq, layer)
			if err != nil {
				return nil, 0, mapmodel.Position{}, err
			}
			ins, err := mr.m.LinesInSquareIncoming(sq, layer)
			if err != nil {
				return nil, 0, mapmodel.Position{}, err
			}
			both := make([]mapmodel.DirectedEdge, 0, len(outs)+len(ins))
			both = append(both, outs...)
			both = append(both, ins...)
			for _, de := range both {
				if seen[de] {
					continue
				}
				seen[de] = true
				from, to, err := mr.m.LineEndpoints(de.Line)
				if err != nil {
					continue
				}
				tail, head := from, to
				if de.Reversed {
					tail, head = to, from
				}
				candidates = append(candidates, candidate{edge: de, from: tail, to: head})
			}
		}
	}

	var prevEdge *mapmodel.DirectedEdge
	if mr.current != nil {
		prevEdge = &mr.current.Edge
	}

	var best *mapmodel.DirectedEdge
	var bestScore float64
	var bestApproach mapmodel.Position
	for _, c := range candidates {
		score, approach, err := mr.scoreEdge(c.edge, fix)
		if err != nil {
			continue
		}
		if prevEdge != nil {
			score = fuzzyAnd(score, fuzzyConnected(mr.shareEndpoint(c, *prevEdge)))
		}
		if best == nil || score > bestScore {
			e := c.edge
			best = &e
			bestScore = score
			bestApproach = approach
		}
	}
	return best, bestScore, bestApproach, nil
}

func (mr *Matcher) shareEndpoint(c candidate, prev mapmodel.DirectedEdge) bool {
	pFrom, pTo, err := mr.m.LineEndpoints(prev.Line)
	if err != nil {
		return false
	}
	return c.from == pFrom || c.from == pTo || c.to == pFrom || c.to == pTo
}

// updateIntersectionGuess implements spec §4.5's "Intersection guess":
// infer the endpoint ahead of travel from heading, then pick the most
// different incident street as the upcoming cross-street.
func (mr *Matcher) updateIntersectionGuess(fix Fix) *ApproachEvent {
	cur := mr.current
	from, to, err := mr.m.LineEndpoints(cur.Edge.Line)
	if err != nil {
		return nil
	}
	tail, head := from, to
	if cur.Edge.Reversed {
		tail, head = to, from
	}
	tailPos, err1 := mr.m.PointPosition(tail)
	headPos, err2 := mr.m.PointPosition(head)
	if err1 != nil || err2 != nil {
		return nil
	}

	azToTail := mr.mm.Azimuth(fix.Pos, tailPos)
	azToHead := mr.mm.Azimuth(fix.Pos, headPos)
	dTail := angularDiff(fix.HeadingDeg, azToTail)
	dHead := angularDiff(fix.HeadingDeg, azToHead)

	const spreadThreshold = 30.0
	var ahead mapmodel.PointID
	switch {
	case dHead+spreadThreshold < dTail:
		ahead = head
	case dTail+spreadThreshold < dHead:
		ahead = tail
	default:
		// No clearly-better candidate; keep the previous guess untouched.
		return nil
	}

	aheadPos, err := mr.m.PointPosition(ahead)
	if err != nil {
		return nil
	}
	aheadSq, err := mr.m.PointSquare(ahead)
	if err != nil {
		return nil
	}
	mySt, _ := mr.m.LineStreetID(cur.Edge.Line)

	var bestLine mapmodel.LineID = mapmodel.NoLine
	var bestDiff = -1.0
	var bestStreet mapmodel.StreetID
	for layer := mapmodel.LayerID(0); layer < 255; layer++ {
		if !mr.layers.NavigableByCar(layer) {
			continue
		}
		outs, err := mr.m.LinesInSquare(aheadSq, layer)
		if err != nil {
			continue
		}
		for _, de := range outs {
			if de.Line == cur.Edge.Line {
				continue
			}
			f, t, err := mr.m.LineEndpoints(de.Line)
			if err != nil {
				continue
			}
			tl, hd := f, t
			if de.Reversed {
				tl, hd = t, f
			}
			if tl != ahead {
				continue
			}
			st, err := mr.m.LineStreetID(de.Line)
			if err != nil || st == mySt {
				continue
			}
			hdPos, err := mr.m.PointPosition(hd)
			if err != nil {
				continue
			}
			axis := mr.mm.Azimuth(aheadPos, hdPos)
			diff := angularDiff(fix.HeadingDeg, axis)
			if diff > bestDiff {
				bestDiff = diff
				bestLine = de.Line
				bestStreet = st
			}
		}
	}

	if bestLine == mapmodel.NoLine {
		if cur.hasGuess {
			cur.hasGuess = false
		}
		return nil
	}

	if cur.hasGuess && cur.GuessNode == ahead && cur.GuessStreet == bestStreet {
		return nil // unchanged
	}
	cur.hasGuess = true
	cur.GuessNode = ahead
	cur.GuessStreet = bestStreet
	return &ApproachEvent{Node: ahead, Street: bestStreet}
}
