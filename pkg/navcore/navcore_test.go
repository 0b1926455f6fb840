package navcore_test

import (
	"testing"

	"github.com/azybler/navcore/pkg/mapmodel"
	"github.com/azybler/navcore/pkg/navconfig"
	"github.com/azybler/navcore/pkg/navcore"
	"github.com/azybler/navcore/pkg/testmap"
)

// Straight road A--B--C, about 222m total.
func buildRoad(t *testing.T) *testmap.Map {
	t.Helper()
	b := testmap.NewBuilder()
	b.AddNode(1, mapmodel.Position{LonE6: 0, LatE6: 0})
	b.AddNode(2, mapmodel.Position{LonE6: 1000, LatE6: 0})
	b.AddNode(3, mapmodel.Position{LonE6: 2000, LatE6: 0})
	b.AddLine(1, 1, 2, 0, mapmodel.DirBoth, 10, 10)
	b.AddLine(1, 2, 3, 0, mapmodel.DirBoth, 10, 10)
	return b.Build()
}

func TestCalculateRouteEndToEnd(t *testing.T) {
	m := buildRoad(t)
	cfg := navconfig.Default()

	var arrived bool
	core := navcore.New(m, mapmodel.EquirectMath{}, testmap.AllNavigable{}, cfg, navcore.Callbacks{
		OnArrival: func() { arrived = true },
	})

	if err := core.SetDeparture(mapmodel.Position{LonE6: 10, LatE6: 0}); err != nil {
		t.Fatalf("SetDeparture: %v", err)
	}
	if err := core.SetDestination(mapmodel.Position{LonE6: 1990, LatE6: 0}); err != nil {
		t.Fatalf("SetDestination: %v", err)
	}

	res, err := core.CalculateRoute()
	if err != nil {
		t.Fatalf("CalculateRoute: %v", err)
	}
	if len(res.Segments) == 0 {
		t.Fatal("expected a non-empty route")
	}

	if err := core.StartNavigation(); err != nil {
		t.Fatalf("StartNavigation: %v", err)
	}

	// Drive to just short of the destination and confirm arrival fires.
	err = core.OnGPSFix(0, 5, navcore.GpsPosition{LonE6: 1985, LatE6: 0, SpeedKnots: 20, HeadingDeg: 90})
	if err != nil {
		t.Fatalf("OnGPSFix: %v", err)
	}
	if !arrived {
		t.Error("expected on_arrival to fire near the destination")
	}
}

func TestSetDestinationFarFromAnyRoadFails(t *testing.T) {
	m := buildRoad(t)
	cfg := navconfig.Default()
	core := navcore.New(m, mapmodel.EquirectMath{}, testmap.AllNavigable{}, cfg, navcore.Callbacks{})

	err := core.SetDestination(mapmodel.Position{LonE6: 1000, LatE6: 5_000_000})
	if err != navcore.ErrNoNearbyRoadDestination {
		t.Fatalf("expected ErrNoNearbyRoadDestination, got %v", err)
	}
}
