// Package navsim generates a synthetic GPS trace along an already
// calculated route, as navcore.GpsPosition fixes that cmd/navsim feeds
// through a navcore.Core, for exercising C5/C6/C7 end to end without a
// real device.
package navsim

import (
	"github.com/azybler/navcore/pkg/annotate"
	"github.com/azybler/navcore/pkg/mapmodel"
	"github.com/azybler/navcore/pkg/navcore"
)

// polyline flattens a route's segments, including shape points, into one
// ordered position list, the same traversal routeGeometry/
// RouteFeatureCollection use in the other demo binaries.
func polyline(m mapmodel.Map, segs []annotate.Segment) []mapmodel.Position {
	var pts []mapmodel.Position
	for _, seg := range segs {
		pts = append(pts, seg.FromPos)
		if shape, err := m.LineShape(seg.Edge.Line); err == nil {
			if seg.Edge.Reversed {
				for i := len(shape) - 1; i >= 0; i-- {
					pts = append(pts, shape[i])
				}
			} else {
				pts = append(pts, shape...)
			}
		}
		pts = append(pts, seg.ToPos)
	}
	return pts
}

// GenerateTrace walks a route's polyline at fixed meter intervals,
// producing one simulated GPS fix per step with heading set to the
// azimuth of the leg being walked and speed held at speedKnots.
func GenerateTrace(m mapmodel.Map, mm mapmodel.Math, segs []annotate.Segment, stepMeters, speedKnots float64) []navcore.GpsPosition {
	pts := polyline(m, segs)
	if len(pts) < 2 || stepMeters <= 0 {
		return nil
	}

	var fixes []navcore.GpsPosition
	remaining := 0.0 // distance already consumed into the current leg

	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		legLen := mm.Distance(a, b)
		if legLen <= 0 {
			continue
		}
		heading := mm.Azimuth(a, b)

		for d := remaining; d < legLen; d += stepMeters {
			frac := d / legLen
			pos := mapmodel.Position{
				LonE6: a.LonE6 + int32(frac*float64(b.LonE6-a.LonE6)),
				LatE6: a.LatE6 + int32(frac*float64(b.LatE6-a.LatE6)),
			}
			fixes = append(fixes, navcore.GpsPosition{
				LonE6:      pos.LonE6,
				LatE6:      pos.LatE6,
				SpeedKnots: speedKnots,
				HeadingDeg: heading,
			})
		}
		// Carry the overshoot into the next leg so steps stay evenly
		// spaced across a leg boundary instead of resetting to 0.
		consumed := legLen - remaining
		steps := float64(int(consumed/stepMeters) + 1)
		remaining = steps*stepMeters - consumed
	}

	last := pts[len(pts)-1]
	fixes = append(fixes, navcore.GpsPosition{
		LonE6:      last.LonE6,
		LatE6:      last.LatE6,
		SpeedKnots: speedKnots,
	})
	return fixes
}
