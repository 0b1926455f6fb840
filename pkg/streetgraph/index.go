package streetgraph

import (
	"fmt"

	"github.com/azybler/navcore/pkg/mapmodel"
)

// DefaultCacheCapacity is the suggested tile cache size from spec §4.2.
const DefaultCacheCapacity = 75

// Index is the Street Graph Index (C2): it builds and caches per-square
// tiles on demand and answers successor queries with turn-restriction
// filtering applied.
//
// Eviction is simple round-robin insertion order, not LRU, per spec §4.2
// ("no attempt is made at LRU precision; simple round-robin insertion
// order suffices because search locality is high") — mirroring the
// teacher's own preference for simple, allocation-light structures over
// precise-but-heavier bookkeeping (e.g. MinHeap over container/heap).
type Index struct {
	m      mapmodel.Map
	layers mapmodel.LayerSet

	capacity int
	tiles    map[mapmodel.SquareID]*Tile
	order    []mapmodel.SquareID // ring of square ids in insertion order
	next     int                 // ring write cursor
}

// NewIndex creates a Street Graph Index over m, bounded to capacity tiles.
func NewIndex(m mapmodel.Map, layers mapmodel.LayerSet, capacity int) *Index {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Index{
		m:        m,
		layers:   layers,
		capacity: capacity,
		tiles:    make(map[mapmodel.SquareID]*Tile, capacity),
		order:    make([]mapmodel.SquareID, 0, capacity),
	}
}

// tileFor returns the cached or freshly-built tile for a square.
func (ix *Index) tileFor(square mapmodel.SquareID) (*Tile, error) {
	if t, ok := ix.tiles[square]; ok {
		return t, nil
	}

	t, err := buildTile(ix.m, ix.layers, square)
	if err != nil {
		return nil, err
	}

	if len(ix.order) < ix.capacity {
		ix.order = append(ix.order, square)
	} else {
		evict := ix.order[ix.next]
		delete(ix.tiles, evict)
		ix.order[ix.next] = square
		ix.next = (ix.next + 1) % ix.capacity
	}
	ix.tiles[square] = t
	return t, nil
}

// Successor is one allowed continuation from Successors.
type Successor struct {
	Edge mapmodel.DirectedEdge
	Head mapmodel.PointID
}

// Successors enumerates the allowed continuations from node, having just
// arrived via (viaLine, viaReversed). Turn restrictions and per-direction
// traversal permissions are applied per spec §4.2.
func (ix *Index) Successors(node mapmodel.PointID, viaLine mapmodel.LineID, viaReversed bool) ([]Successor, error) {
	square, err := ix.m.PointSquare(node)
	if err != nil {
		return nil, fmt.Errorf("streetgraph: PointSquare(%d): %w", node, err)
	}
	tile, err := ix.tileFor(square)
	if err != nil {
		return nil, err
	}

	candidates := tile.chainAt(node)
	var mask uint8
	if viaLine != mapmodel.NoLine {
		mask, err = ix.restrictionMask(node, viaLine, viaReversed, candidates)
		if err != nil {
			return nil, err
		}
	}

	out := make([]Successor, 0, len(candidates))
	for _, cand := range candidates {
		if cand.edge.Line == viaLine && cand.edge.Reversed == viaReversed {
			continue // the arrival edge itself; a U-turn onto viaLine stays a candidate, priced by the cost function
		}
		dir, err := ix.m.LineDirection(cand.edge.Line, mapmodel.VehicleCar)
		if err != nil {
			return nil, err
		}
		if !dir.Allows(cand.edge.Reversed) {
			continue
		}
		if mask&(1<<uint(cand.entryIdx)) != 0 {
			continue // turn-restricted
		}
		out = append(out, Successor{Edge: cand.edge, Head: cand.head})
	}
	return out, nil
}

// restrictionMask builds the 8-bit mask of enumeration positions at node
// that are forbidden given the incoming edge (via_node, viaLine, to=*).
func (ix *Index) restrictionMask(node mapmodel.PointID, viaLine mapmodel.LineID, viaReversed bool, candidates []successorCandidate) (uint8, error) {
	var mask uint8
	for _, cand := range candidates {
		if cand.entryIdx >= 8 {
			break // mask is 8 bits wide per spec §4.2
		}
		if cand.edge.Line == viaLine && cand.edge.Reversed == viaReversed {
			continue
		}
		restricted, err := ix.m.TurnRestricted(node, viaLine, cand.edge.Line)
		if err != nil {
			return 0, err
		}
		if restricted {
			mask |= 1 << uint(cand.entryIdx)
		}
	}
	return mask, nil
}
