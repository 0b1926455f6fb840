package annotate_test

import (
	"testing"

	"github.com/azybler/navcore/pkg/annotate"
	"github.com/azybler/navcore/pkg/mapmodel"
	"github.com/azybler/navcore/pkg/testmap"
)

// Two collinear east-west segments, then a 90-degree turn south:
//
//	A---B---C
//	        |
//	        D
func buildLShape(t *testing.T) (*testmap.Map, []mapmodel.LineID) {
	t.Helper()
	b := testmap.NewBuilder()
	b.AddNode(1, mapmodel.Position{LonE6: 0, LatE6: 0})       // A
	b.AddNode(2, mapmodel.Position{LonE6: 1000, LatE6: 0})    // B
	b.AddNode(3, mapmodel.Position{LonE6: 2000, LatE6: 0})    // C
	b.AddNode(4, mapmodel.Position{LonE6: 2000, LatE6: -1000}) // D, south of C

	l1 := b.AddLine(1, 1, 2, 0, mapmodel.DirBoth, 10, 10)
	l2 := b.AddLine(1, 2, 3, 0, mapmodel.DirBoth, 10, 10) // same way/street as l1
	l3 := b.AddLine(2, 3, 4, 0, mapmodel.DirBoth, 10, 10) // different street

	m := b.Build()
	return m, []mapmodel.LineID{l1, l2, l3}
}

func TestAnnotateGroupsSameStreetContinuations(t *testing.T) {
	m, lines := buildLShape(t)
	edges := []mapmodel.DirectedEdge{
		{Line: lines[0], Reversed: false},
		{Line: lines[1], Reversed: false},
		{Line: lines[2], Reversed: false},
	}
	src, _ := m.PointPosition(mapmodel.PointID(0))
	dst, _ := m.PointPosition(mapmodel.PointID(3))

	segs, err := annotate.Annotate(m, mapmodel.EquirectMath{}, edges, src, dst)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	if segs[0].GroupID != segs[1].GroupID {
		t.Errorf("first two segments share a street and should continue in the same group: %d vs %d", segs[0].GroupID, segs[1].GroupID)
	}
	if segs[2].GroupID == segs[1].GroupID {
		t.Errorf("the turning/last segment must start a new group")
	}
	if segs[2].Instruction != annotate.ApproachingDestination {
		t.Errorf("last segment instruction = %v, want ApproachingDestination", segs[2].Instruction)
	}
	if segs[1].Instruction != annotate.Continue {
		t.Errorf("middle segment on the same street should be Continue, got %v", segs[1].Instruction)
	}
}

func TestAnnotateClipsEndpoints(t *testing.T) {
	m, lines := buildLShape(t)
	edges := []mapmodel.DirectedEdge{{Line: lines[0], Reversed: false}}
	src := mapmodel.Position{LonE6: 200, LatE6: 0} // part-way along A-B
	dst := mapmodel.Position{LonE6: 800, LatE6: 0}

	segs, err := annotate.Annotate(m, mapmodel.EquirectMath{}, edges, src, dst)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if !segs[0].FromPos.Equal(src) {
		t.Errorf("FromPos = %+v, want %+v", segs[0].FromPos, src)
	}
	if !segs[0].ToPos.Equal(dst) {
		t.Errorf("ToPos = %+v, want %+v", segs[0].ToPos, dst)
	}
	if segs[0].Distance <= 0 {
		t.Errorf("clipped distance should be positive, got %v", segs[0].Distance)
	}
}
