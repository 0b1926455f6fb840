// Package streetgraph builds and caches a per-square adjacency index over a
// mapmodel.Map suitable for shortest-path search (component C2).
//
// Each StreetGraphTile is a small CSR-like arena: a directed-edge table
// plus singly-linked chains rooted at each node's bucket, the same
// arena-of-indices shape pkg/graph.Graph uses for its CSR adjacency — here
// rebuilt per square instead of once for the whole map, since the source
// map is tiled.
package streetgraph

import (
	"fmt"

	"github.com/azybler/navcore/pkg/mapmodel"
)

// noNext terminates a node's chain of incident lines (spec: "0 meaning end").
// We use an explicit sentinel rather than overloading index 0 so a real
// chain entry can legitimately sit at position 0.
const noNext = ^uint32(0)

// chainEntry is one entry in a tile's lines[] arena.
type chainEntry struct {
	edge mapmodel.DirectedEdge
	head mapmodel.PointID // the node this edge leads to (cached for successors())
	next uint32           // index of the next entry chained at the same node, or noNext
}

// Tile is C2's per-square cache: StreetGraphTile from the data model.
type Tile struct {
	square mapmodel.SquareID
	lines  []chainEntry

	// nodesIndex maps a point id (the full PointID, not its low 16 bits —
	// the map database here does not guarantee contiguous low bits) to the
	// index of the first entry of its chain in lines[].
	nodesIndex map[mapmodel.PointID]uint32
}

// successorCandidate is one candidate continuation before restriction
// filtering, carrying the enumeration index the restriction mask indexes
// into (spec §4.2: "bit i corresponds to the i-th entry in the
// enumeration order at node").
type successorCandidate struct {
	entryIdx int
	edge     mapmodel.DirectedEdge
	head     mapmodel.PointID
}

// chainAt returns every entry chained at node, in stable enumeration order.
func (t *Tile) chainAt(node mapmodel.PointID) []successorCandidate {
	head, ok := t.nodesIndex[node]
	if !ok {
		return nil
	}
	var out []successorCandidate
	for i := head; i != noNext; i = t.lines[i].next {
		out = append(out, successorCandidate{
			entryIdx: len(out),
			edge:     t.lines[i].edge,
			head:     t.lines[i].head,
		})
	}
	return out
}

// buildTile computes the StreetGraphTile for a square, following the build
// procedure of spec §4.2:
//  1. navigable with-line edges rooted at from_point; if to_point is also
//     in-square, the matching against-line entry at to_point.
//  2. incoming lines (to_point in-square, from_point not) get an
//     against-line entry at to_point.
//  3. chain entries sharing a node.
func buildTile(m mapmodel.Map, layers mapmodel.LayerSet, square mapmodel.SquareID) (*Tile, error) {
	t := &Tile{square: square, nodesIndex: make(map[mapmodel.PointID]uint32)}

	// chains collects entries per node before linking, so append order
	// within a node matches insertion order (stable across rebuilds, since
	// it only depends on the map's own LinesInSquare ordering).
	chains := make(map[mapmodel.PointID][]chainEntry)

	appendEntry := func(node mapmodel.PointID, e mapmodel.DirectedEdge, head mapmodel.PointID) {
		chains[node] = append(chains[node], chainEntry{edge: e, head: head})
	}

	var allLayers []mapmodel.LayerID
	for l := mapmodel.LayerID(0); l < 255; l++ {
		if layers.NavigableByCar(l) {
			allLayers = append(allLayers, l)
		}
	}

	for _, layer := range allLayers {
		outgoing, err := m.LinesInSquare(square, layer)
		if err != nil {
			return nil, fmt.Errorf("streetgraph: LinesInSquare(%d,%d): %w", square, layer, err)
		}
		for _, de := range outgoing {
			from, to, err := m.LineEndpoints(de.Line)
			if err != nil {
				return nil, err
			}
			tail, head := from, to
			if de.Reversed {
				tail, head = to, from
			}
			tailSq, err := m.PointSquare(tail)
			if err != nil {
				return nil, err
			}
			if tailSq != square {
				// This edge was reported by LinesInSquare but its tail is
				// not actually here; skip (defensive against a
				// misbehaving host implementation).
				continue
			}
			appendEntry(tail, de, head)
		}

		incoming, err := m.LinesInSquareIncoming(square, layer)
		if err != nil {
			return nil, fmt.Errorf("streetgraph: LinesInSquareIncoming(%d,%d): %w", square, layer, err)
		}
		for _, de := range incoming {
			from, to, err := m.LineEndpoints(de.Line)
			if err != nil {
				return nil, err
			}
			tail, head := from, to
			if de.Reversed {
				tail, head = to, from
			}
			headSq, err := m.PointSquare(head)
			if err != nil {
				return nil, err
			}
			if headSq != square {
				continue
			}
			// The against-line entry leaves head back toward tail; skip it if
			// LinesInSquare already reported that directed edge here.
			against := mapmodel.DirectedEdge{Line: de.Line, Reversed: !de.Reversed}
			dup := false
			for _, e := range chains[head] {
				if e.edge == against {
					dup = true
					break
				}
			}
			if !dup {
				appendEntry(head, against, tail)
			}
		}
	}

	// Flatten into the arena and build next-pointer chains.
	for node, entries := range chains {
		startIdx := uint32(len(t.lines))
		t.nodesIndex[node] = startIdx
		for i, e := range entries {
			e.next = noNext
			if i+1 < len(entries) {
				e.next = startIdx + uint32(i) + 1
			}
			t.lines = append(t.lines, e)
		}
	}

	return t, nil
}
