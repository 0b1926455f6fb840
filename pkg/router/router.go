// Package router implements the A* shortest-path search (component C3) over
// a streetgraph.Index, following spec §4.3.
//
// The open set is a concrete openHeap over (edgeKey, f), mirroring the
// teacher's routing.MinHeap rather than container/heap — the boxing
// container/heap needs for an interface-typed element is wasted work on the
// hot path of a live search. Predecessors are tracked as two flat
// LineID-indexed arrays (one per orientation) holding a predecessor edge,
// cost-to-reach and closed flag; this keeps the "O(n_lines) predecessor
// state, no per-node allocation" property of spec §4.3's design note, at the
// cost of storing the predecessor's (LineID, bool) pair directly rather than
// the original's more compact "index into the enumeration at the previous
// node" encoding — a simplification recorded in DESIGN.md.
package router

import (
	"errors"

	"github.com/azybler/navcore/pkg/mapmodel"
	"github.com/azybler/navcore/pkg/streetgraph"
)

// ErrNoRoute is returned when the open set empties without reaching the goal.
var ErrNoRoute = errors.New("router: no route between the given points")

// ErrCancelled is returned when Progress requests cancellation.
var ErrCancelled = errors.New("router: search cancelled")

// ErrInvalidEndpoint is returned when an endpoint argument does not belong
// to the line it is paired with.
var ErrInvalidEndpoint = errors.New("router: endpoint does not belong to line")

// ProgressFunc reports search progress as a percentage clamped to [0,90]
// (spec §4.3: the last 10% is reserved for route construction/annotation
// done by the caller). Returning true requests cancellation.
type ProgressFunc func(percent int) (cancel bool)

// Options bundles the pluggable parts of a search.
type Options struct {
	Cost CostFunc
	Math mapmodel.Math
	// Progress is polled periodically during the search; nil disables it.
	Progress ProgressFunc
}

// Result is a found route: the directed edges in travel order and total cost
// in the units Cost produces (seconds or meters).
type Result struct {
	Edges []mapmodel.DirectedEdge
	Cost  float64
}

type predEntry struct {
	hasPred      bool
	visited      bool
	closed       bool
	prevLine     mapmodel.LineID
	prevReversed bool
	gCost        float64
}

// FindRoute searches from the directed edge of fromLine that leads away from
// fromEndpoint to the directed edge of toLine that leads into toEndpoint (one
// of toLine's endpoints), per the find_route contract of spec §4.3.
func FindRoute(m mapmodel.Map, idx *streetgraph.Index, opts Options, fromLine mapmodel.LineID, fromEndpoint mapmodel.PointID, toLine mapmodel.LineID, toEndpoint mapmodel.PointID) (*Result, error) {
	startEdge, err := orientFrom(m, fromLine, fromEndpoint)
	if err != nil {
		return nil, err
	}
	toFrom, toTo, err := m.LineEndpoints(toLine)
	if err != nil {
		return nil, err
	}
	var desiredFinalReversed bool
	switch toEndpoint {
	case toTo:
		desiredFinalReversed = false
	case toFrom:
		desiredFinalReversed = true
	default:
		return nil, ErrInvalidEndpoint
	}
	goalNode := toEndpoint
	finalEdge := mapmodel.DirectedEdge{Line: toLine, Reversed: desiredFinalReversed}

	destPos, err := m.PointPosition(goalNode)
	if err != nil {
		return nil, err
	}
	startHead, err := headOf(m, startEdge)
	if err != nil {
		return nil, err
	}
	startPos, err := m.PointPosition(startHead)
	if err != nil {
		return nil, err
	}

	n := m.LineCount()
	predFwd := make([]predEntry, n)
	predRev := make([]predEntry, n)
	predFor := func(e mapmodel.DirectedEdge) *predEntry {
		if e.Reversed {
			return &predRev[e.Line]
		}
		return &predFwd[e.Line]
	}

	open := &openHeap{}
	start := predFor(startEdge)
	start.visited = true
	start.hasPred = false
	start.gCost = 0
	open.Push(heapItem{edge: keyOf(startEdge), g: 0, f: opts.Math.Distance(startPos, destPos)})

	initialDist := opts.Math.Distance(startPos, destPos)
	minRemaining := initialDist

	var winner mapmodel.DirectedEdge
	found := false

	iterations := 0
	for open.Len() > 0 {
		item := open.Pop()
		edge := edgeOf(item.edge)
		entry := predFor(edge)
		if entry.closed || item.g > entry.gCost {
			continue // stale lazily-deleted entry
		}
		entry.closed = true

		head, err := headOf(m, edge)
		if err != nil {
			return nil, err
		}
		headPos, err := m.PointPosition(head)
		if err != nil {
			return nil, err
		}
		if d := opts.Math.Distance(headPos, destPos); d < minRemaining {
			minRemaining = d
		}

		iterations++
		if opts.Progress != nil && iterations&63 == 0 {
			pct := 100 - int(100*minRemaining/initialDist)
			if pct < 0 {
				pct = 0
			} else if pct > 90 {
				pct = 90
			}
			if opts.Progress(pct) {
				return nil, ErrCancelled
			}
		}

		if edge == finalEdge {
			winner = edge
			found = true
			break
		}

		succs, err := idx.Successors(head, edge.Line, edge.Reversed)
		if err != nil {
			return nil, err
		}
		for _, succ := range succs {
			sEntry := predFor(succ.Edge)
			if sEntry.visited && sEntry.closed {
				continue
			}
			ec, err := opts.Cost.EdgeCost(m, edge, head, succ.Edge)
			if err != nil {
				return nil, err
			}
			newG := entry.gCost + ec
			if sEntry.visited && newG >= sEntry.gCost {
				continue
			}
			sEntry.visited = true
			sEntry.hasPred = true
			sEntry.gCost = newG
			sEntry.prevLine = edge.Line
			sEntry.prevReversed = edge.Reversed
			succHeadPos, err := m.PointPosition(succ.Head)
			if err != nil {
				return nil, err
			}
			h := opts.Cost.Heuristic(succHeadPos, destPos)
			open.Push(heapItem{edge: keyOf(succ.Edge), g: newG, f: newG + h})
		}
	}

	if !found {
		return nil, ErrNoRoute
	}

	edges := reconstruct(predFwd, predRev, startEdge, winner)
	if len(edges) == 0 || edges[len(edges)-1].Line != toLine || edges[len(edges)-1].Reversed != desiredFinalReversed {
		edges = append(edges, mapmodel.DirectedEdge{Line: toLine, Reversed: desiredFinalReversed})
	}

	total := predFor(winner).gCost
	return &Result{Edges: edges, Cost: total}, nil
}

// orientFrom returns the directed edge of line whose tail is endpoint.
func orientFrom(m mapmodel.Map, line mapmodel.LineID, endpoint mapmodel.PointID) (mapmodel.DirectedEdge, error) {
	from, to, err := m.LineEndpoints(line)
	if err != nil {
		return mapmodel.DirectedEdge{}, err
	}
	switch endpoint {
	case from:
		return mapmodel.DirectedEdge{Line: line, Reversed: false}, nil
	case to:
		return mapmodel.DirectedEdge{Line: line, Reversed: true}, nil
	default:
		return mapmodel.DirectedEdge{}, ErrInvalidEndpoint
	}
}

func headOf(m mapmodel.Map, e mapmodel.DirectedEdge) (mapmodel.PointID, error) {
	from, to, err := m.LineEndpoints(e.Line)
	if err != nil {
		return 0, err
	}
	if e.Reversed {
		return from, nil
	}
	return to, nil
}

func keyOf(e mapmodel.DirectedEdge) edgeKey {
	return edgeKey{line: uint32(e.Line), reversed: e.Reversed}
}

func edgeOf(k edgeKey) mapmodel.DirectedEdge {
	return mapmodel.DirectedEdge{Line: mapmodel.LineID(k.line), Reversed: k.reversed}
}

func reconstruct(predFwd, predRev []predEntry, start, winner mapmodel.DirectedEdge) []mapmodel.DirectedEdge {
	predFor := func(e mapmodel.DirectedEdge) *predEntry {
		if e.Reversed {
			return &predRev[e.Line]
		}
		return &predFwd[e.Line]
	}
	var rev []mapmodel.DirectedEdge
	cur := winner
	for {
		rev = append(rev, cur)
		if cur == start {
			break
		}
		entry := predFor(cur)
		if !entry.hasPred {
			break
		}
		cur = mapmodel.DirectedEdge{Line: entry.prevLine, Reversed: entry.prevReversed}
	}
	out := make([]mapmodel.DirectedEdge, len(rev))
	for i, e := range rev {
		out[len(rev)-1-i] = e
	}
	return out
}
