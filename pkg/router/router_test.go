package router_test

import (
	"testing"

	"github.com/paulmach/osm"

	"github.com/azybler/navcore/pkg/mapmodel"
	"github.com/azybler/navcore/pkg/router"
	"github.com/azybler/navcore/pkg/streetgraph"
	"github.com/azybler/navcore/pkg/testmap"
)

// buildGrid lays out a 3x3 grid of two-way streets:
//
//	A---B---C
//	|   |   |
//	D---E---F
//	|   |   |
//	G---H---I
//
// 1e6-scaled degrees, ~111m per 0.001deg step, so each edge is ~111m with a
// fixture cross-time of 10s each way, matching dijkstra_test.go's
// convention of a small hand-drawn grid fixture.
func buildGrid(t *testing.T) (*testmap.Map, map[string]osm.NodeID) {
	t.Helper()
	b := testmap.NewBuilder()
	ids := map[string]osm.NodeID{
		"A": 1, "B": 2, "C": 3,
		"D": 4, "E": 5, "F": 6,
		"G": 7, "H": 8, "I": 9,
	}
	coords := map[string][2]int32{
		"A": {0, 2000}, "B": {1000, 2000}, "C": {2000, 2000},
		"D": {0, 1000}, "E": {1000, 1000}, "F": {2000, 1000},
		"G": {0, 0}, "H": {1000, 0}, "I": {2000, 0},
	}
	for name, id := range ids {
		c := coords[name]
		b.AddNode(id, mapmodel.Position{LonE6: c[0], LatE6: c[1]})
	}

	var way osm.WayID
	addLine := func(from, to string) {
		way++
		b.AddLine(way, ids[from], ids[to], 0, mapmodel.DirBoth, 10, 10)
	}
	addLine("A", "B")
	addLine("B", "C")
	addLine("D", "E")
	addLine("E", "F")
	addLine("G", "H")
	addLine("H", "I")
	addLine("A", "D")
	addLine("D", "G")
	addLine("B", "E")
	addLine("E", "H")
	addLine("C", "F")
	addLine("F", "I")

	return b.Build(), ids
}

func TestFindRouteAcrossGrid(t *testing.T) {
	m, ids := buildGrid(t)
	idx := streetgraph.NewIndex(m, testmap.AllNavigable{}, streetgraph.DefaultCacheCapacity)

	a, _ := m.PointIDFor(ids["A"])
	i, _ := m.PointIDFor(ids["I"])

	fromLine := m.LinesForWay(1)[0] // A-B
	toLine := m.LinesForWay(6)[0]   // H-I

	opts := router.Options{
		Cost: router.TimeCost{Math: mapmodel.EquirectMath{}, AssumedSpeedMPS: 28},
		Math: mapmodel.EquirectMath{},
	}

	res, err := router.FindRoute(m, idx, opts, fromLine, a, toLine, i)
	if err != nil {
		t.Fatalf("FindRoute: %v", err)
	}
	if len(res.Edges) == 0 {
		t.Fatal("expected a non-empty route")
	}
	last := res.Edges[len(res.Edges)-1]
	if last.Line != toLine {
		t.Fatalf("route should end on the requested line, got line %d want %d", last.Line, toLine)
	}
	endFrom, endTo, err := m.LineEndpoints(last.Line)
	if err != nil {
		t.Fatal(err)
	}
	head := endTo
	if last.Reversed {
		head = endFrom
	}
	if head != i {
		t.Fatalf("route does not end at destination point: got %d want %d", head, i)
	}
}

// Progress is polled every 64 expansions, so on this small grid the search
// may finish before the callback is called; any value it does report must
// stay within [0,90].
func TestFindRouteProgressWithinRange(t *testing.T) {
	m, ids := buildGrid(t)
	idx := streetgraph.NewIndex(m, testmap.AllNavigable{}, streetgraph.DefaultCacheCapacity)

	a, _ := m.PointIDFor(ids["A"])
	i, _ := m.PointIDFor(ids["I"])
	fromLine := m.LinesForWay(1)[0]
	toLine := m.LinesForWay(6)[0]

	var sawCancel bool
	opts := router.Options{
		Cost: router.DistanceCost{Math: mapmodel.EquirectMath{}},
		Math: mapmodel.EquirectMath{},
		Progress: func(pct int) bool {
			if pct < 0 || pct > 90 {
				t.Errorf("progress %d out of [0,90]", pct)
			}
			return false
		},
	}
	if _, err := router.FindRoute(m, idx, opts, fromLine, a, toLine, i); err != nil {
		t.Fatalf("FindRoute: %v", err)
	}
	_ = sawCancel
}

func TestFindRouteNoPath(t *testing.T) {
	b := testmap.NewBuilder()
	b.AddNode(1, mapmodel.Position{LonE6: 0, LatE6: 0})
	b.AddNode(2, mapmodel.Position{LonE6: 1000, LatE6: 0})
	b.AddNode(3, mapmodel.Position{LonE6: 100000, LatE6: 100000})
	b.AddNode(4, mapmodel.Position{LonE6: 101000, LatE6: 100000})
	b.AddLine(1, 1, 2, 0, mapmodel.DirBoth, 10, 10)
	b.AddLine(2, 3, 4, 0, mapmodel.DirBoth, 10, 10)
	m := b.Build()
	idx := streetgraph.NewIndex(m, testmap.AllNavigable{}, streetgraph.DefaultCacheCapacity)

	p1, _ := m.PointIDFor(1)
	p4, _ := m.PointIDFor(4)
	opts := router.Options{Cost: router.DistanceCost{Math: mapmodel.EquirectMath{}}, Math: mapmodel.EquirectMath{}}
	_, err := router.FindRoute(m, idx, opts, m.LinesForWay(1)[0], p1, m.LinesForWay(2)[0], p4)
	if err != router.ErrNoRoute {
		t.Fatalf("expected ErrNoRoute, got %v", err)
	}
}
