// Package trip implements the Trip Controller (C6) and Route Recalculator
// (C7): it owns the active route, drives map-matching off each GPS fix, and
// emits the user-facing navigation events, per spec §4.6-4.7.
package trip

import (
	"github.com/azybler/navcore/pkg/annotate"
	"github.com/azybler/navcore/pkg/mapmodel"
	"github.com/azybler/navcore/pkg/matcher"
	"github.com/azybler/navcore/pkg/navconfig"
)

// Focus selects what the map is centered on (spec §3, §4.6).
type Focus int

const (
	FocusGps Focus = iota
	FocusDestination
	FocusDeparture
	FocusSelection
	FocusAddress
	FocusHold
	FocusWaypoint // supplemented feature: focus pinned to a placed waypoint
)

// Event is emitted to the host as a result of processing a fix or command.
type Event struct {
	Kind     EventKind
	Segment  *annotate.Segment // for Announce events
	Distance float64           // meters, for Announce events
	Approach *matcher.ApproachEvent
}

// EventKind enumerates the events the Trip Controller can raise.
type EventKind int

const (
	EventNone EventKind = iota
	EventAnnounce
	EventDeviation
	EventArrival
	EventRouteChanged
	EventRouteLost
	EventApproaching
)

// Recalculator is C7's interface onto C3, kept narrow so the trip package
// does not import pkg/router or pkg/streetgraph directly (mirroring the
// plugin seam of spec §9's "explicit plugin seam" design note).
type Recalculator interface {
	// Recalculate finds a new route from fromLine/fromEndpoint to
	// toLine/toEndpoint, suppressing progress reporting when recalc is
	// true.
	Recalculate(fromLine mapmodel.LineID, fromEndpoint mapmodel.PointID, toLine mapmodel.LineID, toEndpoint mapmodel.PointID, recalc bool) ([]mapmodel.DirectedEdge, error)
}

// Trip owns the active route and navigation state (spec §3 "Trip state").
type Trip struct {
	m   mapmodel.Map
	mm  mapmodel.Math
	cfg navconfig.Config
	mr  *matcher.Matcher
	rc  Recalculator

	route             []annotate.Segment
	currentSegmentIdx int
	routeActive       bool
	inRecovery        bool

	destLine     mapmodel.LineID
	destEndpoint mapmodel.PointID
	destPos      mapmodel.Position

	nextAnnounce    float64
	hasNextAnnounce bool
	announceGroup   int
	odometerMeters  float64

	focus      Focus
	waypoints  []mapmodel.Position // supplemented feature: ordered waypoints
}

// New creates a Trip controller over m, using mm for geometry, mr for
// map-matching and rc to recalculate routes.
func New(m mapmodel.Map, mm mapmodel.Math, cfg navconfig.Config, mr *matcher.Matcher, rc Recalculator) *Trip {
	return &Trip{m: m, mm: mm, cfg: cfg, mr: mr, rc: rc, focus: FocusGps}
}

// StartNavigation begins navigating the given annotated route toward
// (destLine, destEndpoint). Per spec §4.6: current_segment_idx=0,
// next_announce unset, focus set to Gps.
func (t *Trip) StartNavigation(route []annotate.Segment, destLine mapmodel.LineID, destEndpoint mapmodel.PointID, destPos mapmodel.Position) {
	t.route = route
	t.currentSegmentIdx = 0
	t.routeActive = true
	t.inRecovery = false
	t.destLine = destLine
	t.destEndpoint = destEndpoint
	t.destPos = destPos
	t.hasNextAnnounce = false
	t.odometerMeters = 0
	t.focus = FocusGps
}

// StopNavigation deactivates navigation, retaining the last route for
// inspection (e.g. ReverseRoute).
func (t *Trip) StopNavigation() {
	t.routeActive = false
}

// Active reports whether a route is currently being navigated.
func (t *Trip) Active() bool { return t.routeActive }

// Route returns the currently active (or most recently active) route.
func (t *Trip) Route() []annotate.Segment { return t.route }

// SetFocus/GetFocus implement §4.6's focus model.
func (t *Trip) SetFocus(f Focus) { t.focus = f }
func (t *Trip) GetFocus() Focus  { return t.focus }

// OdometerMeters returns the trip odometer (supplemented feature, grounded
// on the original source's trip odometer). StartNavigation resets it to
// zero; no code path adds driven distance to it, so it reads 0.
func (t *Trip) OdometerMeters() float64 { return t.odometerMeters }

// OnGPSFix implements the per-fix flow of spec §4.6.
func (t *Trip) OnGPSFix(fix matcher.Fix) ([]Event, error) {
	if !t.routeActive {
		_, _, err := t.mr.OnFix(fix)
		return nil, err
	}

	tp, approach, err := t.mr.OnFix(fix)
	if err != nil {
		return nil, err
	}

	var events []Event
	if approach != nil {
		events = append(events, Event{Kind: EventApproaching, Approach: approach})
	}

	if tp == nil {
		return append(events, t.deviate()...), nil
	}

	idx := t.findSegment(tp.Edge)
	if idx < 0 {
		return append(events, t.deviate()...), nil
	}
	if t.inRecovery {
		t.inRecovery = false
		events = append(events, Event{Kind: EventRouteChanged})
	}
	t.currentSegmentIdx = idx

	distToTurn, err := t.distanceToTurn(idx, tp.Approach)
	if err != nil {
		return events, err
	}

	seg := &t.route[idx]
	ann := t.maybeAnnounce(seg, distToTurn)
	if ann != nil {
		events = append(events, *ann)
	}

	if seg.Instruction == annotate.ApproachingDestination && distToTurn <= t.cfg.ArrivalRadiusMeters {
		t.routeActive = false
		events = append(events, Event{Kind: EventArrival})
	}

	return events, nil
}

// findSegment returns the index of the first segment whose edge matches e,
// scanning the whole route from its start rather than from the current
// segment (routes are simple paths, so an edge will not repeat, and a full
// scan does not assume strict monotonicity).
func (t *Trip) findSegment(e mapmodel.DirectedEdge) int {
	for i, s := range t.route {
		if s.Edge == e {
			return i
		}
	}
	return -1
}

// deviate implements spec §4.6 step 3 / §4.7: ask the recalculator for a new
// route, mark the trip "in recovery" meanwhile. If recalculation fails the
// old route is kept and the trip stays in recovery; deviate does not call
// the recalculator again until a fix matches a segment of the route, and
// cfg.RecalcBackoff is not consulted.
func (t *Trip) deviate() []Event {
	if t.inRecovery {
		return nil
	}
	t.inRecovery = true

	cur := t.mr.Current()
	if cur == nil {
		return []Event{{Kind: EventDeviation}}
	}

	from, to, err := t.m.LineEndpoints(cur.Edge.Line)
	if err != nil {
		return []Event{{Kind: EventDeviation}}
	}
	// Continue in the direction already being travelled: fromEndpoint is
	// the tail of the currently-matched directed edge.
	fromEndpoint := from
	if cur.Edge.Reversed {
		fromEndpoint = to
	}

	edges, err := t.rc.Recalculate(cur.Edge.Line, fromEndpoint, t.destLine, t.destEndpoint, true)
	if err != nil {
		return []Event{{Kind: EventDeviation}, {Kind: EventRouteLost}}
	}

	segs, err := annotate.Annotate(t.m, t.mm, edges, cur.Approach, t.destPos)
	if err != nil {
		return []Event{{Kind: EventDeviation}, {Kind: EventRouteLost}}
	}

	t.route = segs
	t.currentSegmentIdx = 0
	t.hasNextAnnounce = false
	t.inRecovery = false
	return []Event{{Kind: EventDeviation}, {Kind: EventRouteChanged}}
}

// distanceToTurn implements spec §4.6 step 4: remaining distance along the
// current segment from the projected position, plus all remaining segments
// sharing the current group_id.
func (t *Trip) distanceToTurn(idx int, approach mapmodel.Position) (float64, error) {
	seg := t.route[idx]
	remaining := t.mm.Distance(approach, seg.ToPos)
	group := seg.GroupID
	for j := idx + 1; j < len(t.route) && t.route[j].GroupID == group; j++ {
		remaining += t.route[j].Distance
	}
	return remaining, nil
}

// maybeAnnounce implements spec §4.6 step 6: the announce schedule.
func (t *Trip) maybeAnnounce(seg *annotate.Segment, distToTurn float64) *Event {
	if !t.hasNextAnnounce || t.announceGroup != seg.GroupID {
		t.hasNextAnnounce = true
		t.announceGroup = seg.GroupID
		// spec §4.6 step 6: "next_announce is initialized to the smallest
		// threshold greater than the initial distance_to_turn".
		t.nextAnnounce = smallestThresholdAbove(t.cfg.AnnounceDistancesMeters, distToTurn)
	}

	if !t.hasNextAnnounce {
		return nil
	}
	if distToTurn <= t.nextAnnounce+t.cfg.AnnounceCompensateMeters {
		ev := Event{Kind: EventAnnounce, Segment: seg, Distance: t.nextAnnounce}
		next, ok := nextSmaller(t.cfg.AnnounceDistancesMeters, t.nextAnnounce)
		if ok {
			t.nextAnnounce = next
		} else {
			t.hasNextAnnounce = false
		}
		return &ev
	}
	return nil
}

func smallestThresholdAbove(table []float64, d float64) float64 {
	best := -1.0
	for _, th := range table {
		if th > d {
			if best < 0 || th < best {
				best = th
			}
		}
	}
	if best < 0 && len(table) > 0 {
		// distance_to_turn already below every threshold: start at the
		// smallest so it fires on this very fix.
		best = table[0]
		for _, th := range table {
			if th < best {
				best = th
			}
		}
	}
	return best
}

func nextSmaller(table []float64, cur float64) (float64, bool) {
	best := -1.0
	found := false
	for _, th := range table {
		if th < cur && th > best {
			best = th
			found = true
		}
	}
	return best, found
}
