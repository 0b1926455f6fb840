package matcher_test

import (
	"testing"

	"github.com/azybler/navcore/pkg/mapmodel"
	"github.com/azybler/navcore/pkg/matcher"
	"github.com/azybler/navcore/pkg/navconfig"
	"github.com/azybler/navcore/pkg/testmap"
)

func buildStraightRoad(t *testing.T) *testmap.Map {
	t.Helper()
	b := testmap.NewBuilder()
	b.AddNode(1, mapmodel.Position{LonE6: 0, LatE6: 0})
	b.AddNode(2, mapmodel.Position{LonE6: 10000, LatE6: 0})
	b.AddLine(1, 1, 2, 0, mapmodel.DirBoth, 10, 10)
	return b.Build()
}

func TestOnFixIgnoresLowSpeed(t *testing.T) {
	m := buildStraightRoad(t)
	cfg := navconfig.Default()
	mr := matcher.New(m, mapmodel.EquirectMath{}, testmap.AllNavigable{}, cfg)

	tp, _, err := mr.OnFix(matcher.Fix{Pos: mapmodel.Position{LonE6: 5000, LatE6: 0}, SpeedKnots: 0.1, HeadingDeg: 90})
	if err != nil {
		t.Fatalf("OnFix: %v", err)
	}
	if tp != nil {
		t.Fatalf("expected no match below speed floor, got %+v", tp)
	}
}

func TestOnFixMatchesNearbyEdge(t *testing.T) {
	m := buildStraightRoad(t)
	cfg := navconfig.Default()
	mr := matcher.New(m, mapmodel.EquirectMath{}, testmap.AllNavigable{}, cfg)

	// Heading east (90 deg), a few meters off the line running along lat=0.
	tp, _, err := mr.OnFix(matcher.Fix{
		Pos:        mapmodel.Position{LonE6: 5000, LatE6: 20},
		SpeedKnots: 20,
		HeadingDeg: 90,
	})
	if err != nil {
		t.Fatalf("OnFix: %v", err)
	}
	if tp == nil {
		t.Fatal("expected a match")
	}
	if tp.Edge.Line != 0 {
		t.Errorf("matched line = %d, want 0", tp.Edge.Line)
	}
}

func TestOnFixClearsWhenFarFromAnyRoad(t *testing.T) {
	m := buildStraightRoad(t)
	cfg := navconfig.Default()
	mr := matcher.New(m, mapmodel.EquirectMath{}, testmap.AllNavigable{}, cfg)

	tp, _, err := mr.OnFix(matcher.Fix{
		Pos:        mapmodel.Position{LonE6: 5000, LatE6: 50000},
		SpeedKnots: 20,
		HeadingDeg: 90,
	})
	if err != nil {
		t.Fatalf("OnFix: %v", err)
	}
	if tp != nil {
		t.Fatalf("expected no match far from the road, got %+v", tp)
	}
}
