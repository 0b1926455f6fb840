// Command navcompare is a development aid: it routes the same
// origin/destination through navcore and a running Valhalla server and
// prints both summaries side by side. Not part of the
// navigation core.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/goccy/go-json"

	"github.com/azybler/navcore/pkg/mapmodel"
	"github.com/azybler/navcore/pkg/navconfig"
	"github.com/azybler/navcore/pkg/navcompare"
	"github.com/azybler/navcore/pkg/navcore"
	"github.com/azybler/navcore/pkg/testmap"
)

func main() {
	valhallaEndpoint := flag.String("valhalla", "http://localhost:8002", "Valhalla server base URL")
	startLat := flag.Float64("start-lat", 0, "start latitude")
	startLon := flag.Float64("start-lon", 0.0005, "start longitude")
	endLat := flag.Float64("end-lat", 0.003, "end latitude")
	endLon := flag.Float64("end-lon", 0.0035, "end longitude")
	gridRows := flag.Int("grid-rows", 8, "demo map grid rows")
	gridCols := flag.Int("grid-cols", 8, "demo map grid cols")
	gridSpacing := flag.Int("grid-spacing-e6", 2000, "demo map grid spacing, micro-degrees")
	geojsonOut := flag.String("geojson-out", "", "optional path to write navcore's route as GeoJSON")
	flag.Parse()

	cfg := navconfig.Default()
	m := testmap.NewGrid(*gridRows, *gridCols, int32(*gridSpacing), 10, 10)
	core := navcore.New(m, mapmodel.EquirectMath{}, testmap.AllNavigable{}, cfg, navcore.Callbacks{})

	if err := core.SetDeparture(mapmodel.Position{LonE6: int32(*startLon * 1e6), LatE6: int32(*startLat * 1e6)}); err != nil {
		log.Fatalf("navcore SetDeparture: %v", err)
	}
	if err := core.SetDestination(mapmodel.Position{LonE6: int32(*endLon * 1e6), LatE6: int32(*endLat * 1e6)}); err != nil {
		log.Fatalf("navcore SetDestination: %v", err)
	}
	navRes, err := core.CalculateRoute()
	if err != nil {
		log.Fatalf("navcore CalculateRoute: %v", err)
	}

	vhClient := navcompare.NewClient(*valhallaEndpoint)
	vhRes, err := vhClient.Route(&navcompare.RouteInput{
		Locations: []*navcompare.Location{
			navcompare.NewLocation(*startLat, *startLon),
			navcompare.NewLocation(*endLat, *endLon),
		},
		Costing: "auto",
	})
	if err != nil {
		log.Fatalf("valhalla route: %v", err)
	}

	cmp := navcompare.Compare(navRes.Segments, navRes.Cost, vhRes)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cmp); err != nil {
		log.Fatalf("encode comparison: %v", err)
	}

	if *geojsonOut != "" {
		fc := navcompare.RouteFeatureCollection(m, navRes.Segments)
		out, err := fc.MarshalJSON()
		if err != nil {
			log.Fatalf("marshal geojson: %v", err)
		}
		if err := os.WriteFile(*geojsonOut, out, 0o644); err != nil {
			log.Fatalf("write geojson: %v", err)
		}
	}
}
