package navsim_test

import (
	"testing"

	"github.com/azybler/navcore/pkg/annotate"
	"github.com/azybler/navcore/pkg/mapmodel"
	"github.com/azybler/navcore/pkg/navsim"
	"github.com/azybler/navcore/pkg/testmap"
)

func TestGenerateTraceCoversWholeRoute(t *testing.T) {
	b := testmap.NewBuilder()
	b.AddNode(1, mapmodel.Position{LonE6: 0, LatE6: 0})
	b.AddNode(2, mapmodel.Position{LonE6: 2000, LatE6: 0})
	l := b.AddLine(1, 1, 2, 0, mapmodel.DirBoth, 10, 10)
	m := b.Build()
	mm := mapmodel.EquirectMath{}

	segs, err := annotate.Annotate(m, mm, []mapmodel.DirectedEdge{{Line: l}},
		mapmodel.Position{LonE6: 0, LatE6: 0}, mapmodel.Position{LonE6: 2000, LatE6: 0})
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}

	fixes := navsim.GenerateTrace(m, mm, segs, 50, 20)
	if len(fixes) < 2 {
		t.Fatalf("expected multiple fixes, got %d", len(fixes))
	}
	last := fixes[len(fixes)-1]
	if last.LonE6 != 2000 || last.LatE6 != 0 {
		t.Errorf("last fix = (%d,%d), want (2000,0)", last.LonE6, last.LatE6)
	}
}

func TestGenerateTraceEmptyRouteReturnsNil(t *testing.T) {
	b := testmap.NewBuilder()
	m := b.Build()
	fixes := navsim.GenerateTrace(m, mapmodel.EquirectMath{}, nil, 50, 20)
	if fixes != nil {
		t.Errorf("expected nil fixes for empty route, got %v", fixes)
	}
}
