package navcompare

import (
	geojson "github.com/paulmach/go.geojson"

	"github.com/azybler/navcore/pkg/annotate"
	"github.com/azybler/navcore/pkg/mapmodel"
)

// Comparison holds both routers' summaries and the delta between them.
type Comparison struct {
	NavcoreDistanceM  float64 `json:"navcore_distance_meters"`
	NavcoreTimeS      float64 `json:"navcore_time_seconds"`
	ValhallaDistanceM float64 `json:"valhalla_distance_meters"`
	ValhallaTimeS     float64 `json:"valhalla_time_seconds"`
	DistanceDeltaM    float64 `json:"distance_delta_meters"`
	TimeDeltaS        float64 `json:"time_delta_seconds"`
}

// Compare summarizes navcore's annotated route alongside a Valhalla
// RouteOutput for the same origin/destination.
func Compare(segs []annotate.Segment, navcoreCostSeconds float64, vh *RouteOutput) Comparison {
	var navDist float64
	for _, s := range segs {
		navDist += s.Distance
	}

	vhDistM := vh.Trip.Summary.LengthKm * 1000
	vhTimeS := vh.Trip.Summary.TimeSec

	return Comparison{
		NavcoreDistanceM:  navDist,
		NavcoreTimeS:      navcoreCostSeconds,
		ValhallaDistanceM: vhDistM,
		ValhallaTimeS:     vhTimeS,
		DistanceDeltaM:    navDist - vhDistM,
		TimeDeltaS:        navcoreCostSeconds - vhTimeS,
	}
}

// RouteFeatureCollection renders navcore's route as a GeoJSON
// FeatureCollection with one LineString feature per segment, tagged with
// its maneuver, for loading both routers' output into the same map
// viewer during manual comparison.
func RouteFeatureCollection(m mapmodel.Map, segs []annotate.Segment) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, seg := range segs {
		coords := [][]float64{
			{float64(seg.FromPos.LonE6) / 1e6, float64(seg.FromPos.LatE6) / 1e6},
		}
		if shape, err := m.LineShape(seg.Edge.Line); err == nil {
			ordered := shape
			if seg.Edge.Reversed {
				ordered = make([]mapmodel.Position, len(shape))
				for i, p := range shape {
					ordered[len(shape)-1-i] = p
				}
			}
			for _, p := range ordered {
				coords = append(coords, []float64{float64(p.LonE6) / 1e6, float64(p.LatE6) / 1e6})
			}
		}
		coords = append(coords, []float64{float64(seg.ToPos.LonE6) / 1e6, float64(seg.ToPos.LatE6) / 1e6})

		f := geojson.NewFeature(geojson.NewLineStringGeometry(coords))
		f.Properties["maneuver"] = seg.Instruction.String()
		f.Properties["source"] = "navcore"
		fc.AddFeature(f)
	}
	return fc
}
