package navcompare_test

import (
	"testing"

	"github.com/azybler/navcore/pkg/annotate"
	"github.com/azybler/navcore/pkg/mapmodel"
	"github.com/azybler/navcore/pkg/navcompare"
	"github.com/azybler/navcore/pkg/testmap"
)

func TestCompareComputesDeltas(t *testing.T) {
	segs := []annotate.Segment{
		{Distance: 100, Instruction: annotate.Continue},
		{Distance: 150, Instruction: annotate.ApproachingDestination},
	}
	vh := &navcompare.RouteOutput{}
	vh.Trip.Summary.LengthKm = 0.2
	vh.Trip.Summary.TimeSec = 20

	cmp := navcompare.Compare(segs, 30, vh)
	if cmp.NavcoreDistanceM != 250 {
		t.Errorf("NavcoreDistanceM = %v, want 250", cmp.NavcoreDistanceM)
	}
	if cmp.ValhallaDistanceM != 200 {
		t.Errorf("ValhallaDistanceM = %v, want 200", cmp.ValhallaDistanceM)
	}
	if cmp.DistanceDeltaM != 50 {
		t.Errorf("DistanceDeltaM = %v, want 50", cmp.DistanceDeltaM)
	}
	if cmp.TimeDeltaS != 10 {
		t.Errorf("TimeDeltaS = %v, want 10", cmp.TimeDeltaS)
	}
}

func TestRouteFeatureCollectionOneFeaturePerSegment(t *testing.T) {
	b := testmap.NewBuilder()
	b.AddNode(1, mapmodel.Position{LonE6: 0, LatE6: 0})
	b.AddNode(2, mapmodel.Position{LonE6: 1000, LatE6: 0})
	l := b.AddLine(1, 1, 2, 0, mapmodel.DirBoth, 10, 10)
	m := b.Build()

	segs := []annotate.Segment{
		{Edge: mapmodel.DirectedEdge{Line: l}, FromPos: mapmodel.Position{LonE6: 0, LatE6: 0}, ToPos: mapmodel.Position{LonE6: 1000, LatE6: 0}, Instruction: annotate.ApproachingDestination},
	}
	fc := navcompare.RouteFeatureCollection(m, segs)
	if len(fc.Features) != 1 {
		t.Fatalf("len(Features) = %d, want 1", len(fc.Features))
	}
}
