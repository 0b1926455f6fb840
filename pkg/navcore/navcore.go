// Package navcore is the navigation core's external facade (spec §6): route
// lifecycle, GPS input and the events a host registers callbacks for. It
// wires together C1 (mapmodel.Map, supplied by the host), C2
// (streetgraph.Index), C3 (pkg/router), C4 (pkg/annotate), C5
// (pkg/matcher) and C6/C7 (pkg/trip) into one object a host drives from its
// event loop.
package navcore

import (
	"fmt"

	"github.com/azybler/navcore/pkg/annotate"
	"github.com/azybler/navcore/pkg/mapmodel"
	"github.com/azybler/navcore/pkg/matcher"
	"github.com/azybler/navcore/pkg/navconfig"
	"github.com/azybler/navcore/pkg/router"
	"github.com/azybler/navcore/pkg/streetgraph"
	"github.com/azybler/navcore/pkg/trip"
)

// GpsPosition is one raw GPS sample from the host, in the units spec §6
// fixes: micro-degree longitude/latitude, meters altitude, knots speed,
// degrees [0,360) heading ("steering").
type GpsPosition struct {
	LonE6, LatE6 int32
	AltitudeM    float64
	SpeedKnots   float64
	HeadingDeg   float64
}

// RouteResult is the outcome of CalculateRoute.
type RouteResult struct {
	Segments []annotate.Segment
	Cost     float64
}

// Callbacks are the host-registered event handlers of spec §6. Any may be
// left nil.
type Callbacks struct {
	OnInstruction  func(maneuver annotate.Instruction, street mapmodel.StreetID, distanceHint float64)
	OnArrival      func()
	OnRouteChanged func()
	OnRouteLost    func()
	OnProgress     func(percent int) (cancel bool)
	OnApproaching  func(node mapmodel.PointID, street mapmodel.StreetID)
}

// Core is the navigation core facade.
type Core struct {
	m      mapmodel.Map
	mm     mapmodel.Math
	layers mapmodel.LayerSet
	cfg    navconfig.Config

	idx *streetgraph.Index
	mr  *matcher.Matcher
	tc  *trip.Trip

	cb Callbacks

	hasDeparture bool
	departurePos mapmodel.Position
	hasDest      bool
	destPos      mapmodel.Position

	route      []annotate.Segment
	routeCost  float64
	destLine   mapmodel.LineID
	destPoint  mapmodel.PointID
	departLine mapmodel.LineID
}

// New creates a Core over a host-supplied map and layer set.
func New(m mapmodel.Map, mm mapmodel.Math, layers mapmodel.LayerSet, cfg navconfig.Config, cb Callbacks) *Core {
	c := &Core{
		m:      m,
		mm:     mm,
		layers: layers,
		cfg:    cfg,
		idx:    streetgraph.NewIndex(m, layers, cfg.TileCacheCapacity),
		cb:     cb,
	}
	c.mr = matcher.New(m, mm, layers, cfg)
	c.tc = trip.New(m, mm, cfg, c.mr, c)
	return c
}

// SetDeparture snaps pos onto the nearest navigable line and records it as
// the route's starting point.
func (c *Core) SetDeparture(pos mapmodel.Position) error {
	res, err := snap(c.m, c.mm, c.layers, pos)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMapQueryFailed, err)
	}
	if res == nil {
		return ErrNoNearbyRoadSource
	}
	c.departurePos = pos
	c.departLine = res.Line
	c.hasDeparture = true
	return nil
}

// SetDestination snaps pos onto the nearest navigable line and records it as
// the route's destination.
func (c *Core) SetDestination(pos mapmodel.Position) error {
	res, err := snap(c.m, c.mm, c.layers, pos)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMapQueryFailed, err)
	}
	if res == nil {
		return ErrNoNearbyRoadDestination
	}
	c.destPos = pos
	c.destLine = res.Line
	c.hasDest = true
	return nil
}

// CalculateRoute runs the A* search between the departure and destination
// lines and annotates the result, per spec §4.3/§4.4.
func (c *Core) CalculateRoute() (*RouteResult, error) {
	if !c.hasDeparture {
		return nil, ErrNoDeparture
	}
	if !c.hasDest {
		return nil, ErrNoDestination
	}

	edges, cost, toEndpoint, err := c.findBestOrientedRoute(c.departLine, c.destLine, false)
	if err != nil {
		return nil, translateRouterErr(err)
	}
	c.destPoint = toEndpoint

	segs, err := annotate.Annotate(c.m, c.mm, edges, c.departurePos, c.destPos)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMapQueryFailed, err)
	}

	c.route = segs
	c.routeCost = cost
	return &RouteResult{Segments: segs, Cost: cost}, nil
}

// findBestOrientedRoute tries both endpoint orientations of fromLine/toLine
// (the router needs a specific tail/head to start and end from, but a
// position snapped mid-line does not by itself say which way is "forward")
// and keeps the cheaper result — see DESIGN.md for why this is a deliberate
// simplification rather than a directional heuristic.
func (c *Core) findBestOrientedRoute(fromLine, toLine mapmodel.LineID, recalc bool) ([]mapmodel.DirectedEdge, float64, mapmodel.PointID, error) {
	fromA, fromB, err := c.m.LineEndpoints(fromLine)
	if err != nil {
		return nil, 0, 0, err
	}
	toA, toB, err := c.m.LineEndpoints(toLine)
	if err != nil {
		return nil, 0, 0, err
	}

	costFn := router.TimeCost{Math: c.mm, AssumedSpeedMPS: c.cfg.AssumedSpeedMPS, UTurnPenaltySeconds: c.cfg.UTurnPenaltySeconds}

	var bestEdges []mapmodel.DirectedEdge
	bestCost := -1.0
	var bestTo mapmodel.PointID
	var lastErr error

	for _, from := range [2]mapmodel.PointID{fromA, fromB} {
		for _, to := range [2]mapmodel.PointID{toA, toB} {
			opts := router.Options{Cost: costFn, Math: c.mm}
			if !recalc {
				opts.Progress = c.cb.OnProgress
			}
			res, err := router.FindRoute(c.m, c.idx, opts, fromLine, from, toLine, to)
			if err != nil {
				lastErr = err
				continue
			}
			if bestEdges == nil || res.Cost < bestCost {
				bestEdges = res.Edges
				bestCost = res.Cost
				bestTo = to
			}
		}
	}

	if bestEdges == nil {
		if lastErr == nil {
			lastErr = router.ErrNoRoute
		}
		return nil, 0, 0, lastErr
	}
	return bestEdges, bestCost, bestTo, nil
}

func translateRouterErr(err error) error {
	switch err {
	case router.ErrNoRoute:
		return fmt.Errorf("%w: %v", ErrNoPath, err)
	case router.ErrCancelled:
		return ErrRouterCancelled
	default:
		return fmt.Errorf("%w: %v", ErrMapQueryFailed, err)
	}
}

// StartNavigation begins turn-by-turn guidance over the last calculated
// route.
func (c *Core) StartNavigation() error {
	if c.route == nil {
		return ErrNoRoute
	}
	c.tc.StartNavigation(c.route, c.destLine, c.destPoint, c.destPos)
	return nil
}

// StopNavigation ends turn-by-turn guidance.
func (c *Core) StopNavigation() {
	c.tc.StopNavigation()
}

// ReverseRoute swaps departure and destination and recalculates, grounded
// on roadmap_trip's route-reversal command.
func (c *Core) ReverseRoute() (*RouteResult, error) {
	if !c.hasDeparture || !c.hasDest {
		return nil, ErrNoRoute
	}
	c.departurePos, c.destPos = c.destPos, c.departurePos
	c.departLine, c.destLine = c.destLine, c.departLine
	c.hasDeparture, c.hasDest = c.hasDest, c.hasDeparture
	return c.CalculateRoute()
}

// OnGPSFix is the single entry point for GPS input (spec §6). gpsTime and
// precision are accepted for interface fidelity with the host contract but
// do not currently affect matching (no fix buffering/smoothing is
// implemented).
func (c *Core) OnGPSFix(gpsTime int64, precision float64, pos GpsPosition) error {
	fix := matcher.Fix{
		Pos:        mapmodel.Position{LonE6: pos.LonE6, LatE6: pos.LatE6},
		SpeedKnots: pos.SpeedKnots,
		HeadingDeg: pos.HeadingDeg,
	}
	events, err := c.tc.OnGPSFix(fix)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMapQueryFailed, err)
	}
	c.dispatch(events)
	return nil
}

func (c *Core) dispatch(events []trip.Event) {
	for _, ev := range events {
		switch ev.Kind {
		case trip.EventAnnounce:
			if c.cb.OnInstruction != nil && ev.Segment != nil {
				c.cb.OnInstruction(ev.Segment.Instruction, ev.Segment.Street, ev.Distance)
			}
		case trip.EventArrival:
			if c.cb.OnArrival != nil {
				c.cb.OnArrival()
			}
		case trip.EventRouteChanged:
			if c.cb.OnRouteChanged != nil {
				c.cb.OnRouteChanged()
			}
		case trip.EventRouteLost:
			if c.cb.OnRouteLost != nil {
				c.cb.OnRouteLost()
			}
		case trip.EventApproaching:
			if c.cb.OnApproaching != nil && ev.Approach != nil {
				c.cb.OnApproaching(ev.Approach.Node, ev.Approach.Street)
			}
		}
	}
}

// SetFocus/GetFocus implement spec §6's focus control.
func (c *Core) SetFocus(f trip.Focus) { c.tc.SetFocus(f) }
func (c *Core) GetFocus() trip.Focus  { return c.tc.GetFocus() }

// Recalculate implements trip.Recalculator, routing C7's recalculation
// requests through the same A* search CalculateRoute uses, with progress
// reporting suppressed when recalc is true (spec §4.7).
func (c *Core) Recalculate(fromLine mapmodel.LineID, fromEndpoint mapmodel.PointID, toLine mapmodel.LineID, toEndpoint mapmodel.PointID, recalc bool) ([]mapmodel.DirectedEdge, error) {
	costFn := router.TimeCost{Math: c.mm, AssumedSpeedMPS: c.cfg.AssumedSpeedMPS, UTurnPenaltySeconds: c.cfg.UTurnPenaltySeconds}
	opts := router.Options{Cost: costFn, Math: c.mm}
	if !recalc {
		opts.Progress = c.cb.OnProgress
	}
	res, err := router.FindRoute(c.m, c.idx, opts, fromLine, fromEndpoint, toLine, toEndpoint)
	if err != nil {
		return nil, err
	}
	return res.Edges, nil
}
