package router

// edgeKey identifies a directed edge for predecessor/closed-set bookkeeping:
// two parallel arrays indexed by LineID, one per reversed orientation,
// following spec §4.3 ("two arrays prev_forward[line_id], prev_reverse[line_id]").
type edgeKey struct {
	line     uint32
	reversed bool
}

// heapItem is an open-set entry keyed by f = g + h.
type heapItem struct {
	edge edgeKey
	g    float64
	f    float64
}

// openHeap is a concrete-typed binary min-heap over f, avoiding the
// interface-boxing overhead of container/heap — the same tradeoff the
// teacher's routing.MinHeap makes for its Dijkstra priority queue.
type openHeap struct {
	items []heapItem
}

func (h *openHeap) Len() int { return len(h.items) }

func (h *openHeap) Push(it heapItem) {
	h.items = append(h.items, it)
	h.siftUp(len(h.items) - 1)
}

func (h *openHeap) Pop() heapItem {
	n := len(h.items)
	top := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *openHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].f >= h.items[parent].f {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *openHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
		if left < n && h.items[left].f < h.items[smallest].f {
			smallest = left
		}
		if right < n && h.items[right].f < h.items[smallest].f {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
