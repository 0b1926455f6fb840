// Command navsim drives a navcore.Core with a synthetic GPS trace walked
// along its own calculated route, logging every emitted event. It is a
// manual exercise harness for end-to-end scenarios, not part of the
// navigation core.
package main

import (
	"flag"
	"log"

	"github.com/azybler/navcore/pkg/annotate"
	"github.com/azybler/navcore/pkg/mapmodel"
	"github.com/azybler/navcore/pkg/navconfig"
	"github.com/azybler/navcore/pkg/navcore"
	"github.com/azybler/navcore/pkg/navsim"
	"github.com/azybler/navcore/pkg/testmap"
)

func main() {
	gridRows := flag.Int("grid-rows", 4, "demo map grid rows")
	gridCols := flag.Int("grid-cols", 4, "demo map grid cols")
	gridSpacing := flag.Int("grid-spacing-e6", 2000, "demo map grid spacing, micro-degrees")
	stepMeters := flag.Float64("step-meters", 50, "distance between simulated GPS fixes")
	speedKnots := flag.Float64("speed-knots", 25, "simulated travel speed")
	flag.Parse()

	cfg := navconfig.Default()
	m := testmap.NewGrid(*gridRows, *gridCols, int32(*gridSpacing), 10, 10)
	mm := mapmodel.EquirectMath{}

	cb := navcore.Callbacks{
		OnInstruction: func(maneuver annotate.Instruction, street mapmodel.StreetID, distanceHint float64) {
			log.Printf("instruction: %s street=%d in %.0fm", maneuver, street, distanceHint)
		},
		OnArrival:      func() { log.Printf("arrived") },
		OnRouteChanged: func() { log.Printf("route changed") },
		OnRouteLost:    func() { log.Printf("route lost") },
		OnApproaching: func(node mapmodel.PointID, street mapmodel.StreetID) {
			log.Printf("approaching node=%d street=%d", node, street)
		},
	}
	core := navcore.New(m, mm, testmap.AllNavigable{}, cfg, cb)

	start := mapmodel.Position{LonE6: 0, LatE6: 0}
	end := mapmodel.Position{LonE6: int32(*gridCols-1) * int32(*gridSpacing), LatE6: int32(*gridRows-1) * int32(*gridSpacing)}

	if err := core.SetDeparture(start); err != nil {
		log.Fatalf("SetDeparture: %v", err)
	}
	if err := core.SetDestination(end); err != nil {
		log.Fatalf("SetDestination: %v", err)
	}
	res, err := core.CalculateRoute()
	if err != nil {
		log.Fatalf("CalculateRoute: %v", err)
	}
	log.Printf("route: %d segments, cost=%.1fs", len(res.Segments), res.Cost)

	if err := core.StartNavigation(); err != nil {
		log.Fatalf("StartNavigation: %v", err)
	}

	fixes := navsim.GenerateTrace(m, mm, res.Segments, *stepMeters, *speedKnots)
	log.Printf("simulating %d GPS fixes", len(fixes))
	for i, fix := range fixes {
		if err := core.OnGPSFix(int64(i), 5, fix); err != nil {
			log.Fatalf("fix %d: OnGPSFix: %v", i, err)
		}
	}
}
