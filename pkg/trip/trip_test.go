package trip_test

import (
	"testing"

	"github.com/azybler/navcore/pkg/annotate"
	"github.com/azybler/navcore/pkg/mapmodel"
	"github.com/azybler/navcore/pkg/matcher"
	"github.com/azybler/navcore/pkg/navconfig"
	"github.com/azybler/navcore/pkg/testmap"
	"github.com/azybler/navcore/pkg/trip"
)

type stubRecalc struct {
	edges []mapmodel.DirectedEdge
	err   error
}

func (s stubRecalc) Recalculate(fromLine mapmodel.LineID, fromEndpoint mapmodel.PointID, toLine mapmodel.LineID, toEndpoint mapmodel.PointID, recalc bool) ([]mapmodel.DirectedEdge, error) {
	return s.edges, s.err
}

// Straight two-segment road:
//
//	A--(l0)--B--(l1)--C
func buildRoad(t *testing.T) (*testmap.Map, []mapmodel.LineID) {
	t.Helper()
	b := testmap.NewBuilder()
	b.AddNode(1, mapmodel.Position{LonE6: 0, LatE6: 0})
	b.AddNode(2, mapmodel.Position{LonE6: 1000, LatE6: 0})
	b.AddNode(3, mapmodel.Position{LonE6: 2000, LatE6: 0})
	l0 := b.AddLine(1, 1, 2, 0, mapmodel.DirBoth, 10, 10)
	l1 := b.AddLine(1, 2, 3, 0, mapmodel.DirBoth, 10, 10)
	return b.Build(), []mapmodel.LineID{l0, l1}
}

func TestOnGPSFixArrivesAtDestination(t *testing.T) {
	m, lines := buildRoad(t)
	cfg := navconfig.Default()
	cfg.AnnounceDistancesMeters = []float64{800, 200, 50}

	mr := matcher.New(m, mapmodel.EquirectMath{}, testmap.AllNavigable{}, cfg)
	tc := trip.New(m, mapmodel.EquirectMath{}, cfg, mr, stubRecalc{})

	edges := []mapmodel.DirectedEdge{{Line: lines[0]}, {Line: lines[1]}}
	srcPos, _ := m.PointPosition(0)
	dstPos, _ := m.PointPosition(2)
	segs, err := annotate.Annotate(m, mapmodel.EquirectMath{}, edges, srcPos, dstPos)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	tc.StartNavigation(segs, lines[1], 2, dstPos)

	// Drive along the road to just short of arrival.
	fix := matcher.Fix{Pos: mapmodel.Position{LonE6: 1990, LatE6: 0}, SpeedKnots: 20, HeadingDeg: 90}
	events, err := tc.OnGPSFix(fix)
	if err != nil {
		t.Fatalf("OnGPSFix: %v", err)
	}
	var sawArrival bool
	for _, ev := range events {
		if ev.Kind == trip.EventArrival {
			sawArrival = true
		}
	}
	if !sawArrival {
		t.Error("expected an arrival event within the arrival radius of the destination")
	}
	if tc.Active() {
		t.Error("navigation should be inactive after arrival")
	}
}

func TestOnGPSFixDeviationTriggersRecalculate(t *testing.T) {
	m, lines := buildRoad(t)
	cfg := navconfig.Default()

	mr := matcher.New(m, mapmodel.EquirectMath{}, testmap.AllNavigable{}, cfg)
	rc := stubRecalc{edges: []mapmodel.DirectedEdge{{Line: lines[1]}}}
	tc := trip.New(m, mapmodel.EquirectMath{}, cfg, mr, rc)

	edges := []mapmodel.DirectedEdge{{Line: lines[0]}}
	srcPos, _ := m.PointPosition(0)
	dstPos, _ := m.PointPosition(1)
	segs, _ := annotate.Annotate(m, mapmodel.EquirectMath{}, edges, srcPos, dstPos)
	tc.StartNavigation(segs, lines[0], 1, dstPos)

	// Far from any road: matcher reports no match, which should be treated
	// as a deviation and trigger recalculation.
	fix := matcher.Fix{Pos: mapmodel.Position{LonE6: 500000, LatE6: 500000}, SpeedKnots: 20, HeadingDeg: 90}
	events, err := tc.OnGPSFix(fix)
	if err != nil {
		t.Fatalf("OnGPSFix: %v", err)
	}
	var sawDeviation bool
	for _, ev := range events {
		if ev.Kind == trip.EventDeviation {
			sawDeviation = true
		}
	}
	if !sawDeviation {
		t.Error("expected a deviation event when the matcher loses the road")
	}
}
