package navcore

import (
	"github.com/azybler/navcore/pkg/mapmodel"
)

// maxSnapDistMeters bounds how far a departure/destination position may sit
// from the nearest navigable line, mirroring routing.Snapper's
// maxSnapDistMeters cutoff.
const maxSnapDistMeters = 500.0

// snapResult is the nearest navigable line to a requested position.
type snapResult struct {
	Line      mapmodel.LineID
	Projected mapmodel.Position
	Dist      float64
}

// snap finds the line nearest to pos, expanding its search rectangle until
// a candidate is found or the cutoff is exceeded, the same growing-search
// idea as routing.Snapper but built on SquaresInRect/math instead of a
// hand-rolled grid (square lookups go through the R-tree).
func snap(m mapmodel.Map, mm mapmodel.Math, layers mapmodel.LayerSet, pos mapmodel.Position) (*snapResult, error) {
	const metersPerDegreeLat = 111_320.0

	var best *snapResult
	for radiusMeters := 100.0; radiusMeters <= maxSnapDistMeters*2; radiusMeters *= 2 {
		d := int32(radiusMeters / metersPerDegreeLat * 1e6)
		squares, err := m.SquaresInRect(pos.LonE6-d, pos.LatE6-d, pos.LonE6+d, pos.LatE6+d)
		if err != nil {
			return nil, err
		}

		seen := make(map[mapmodel.LineID]bool)
		for _, sq := range squares {
			for layer := mapmodel.LayerID(0); layer < 255; layer++ {
				if !layers.NavigableByCar(layer) {
					continue
				}
				outs, err := m.LinesInSquare(sq, layer)
				if err != nil {
					return nil, err
				}
				for _, de := range outs {
					if seen[de.Line] {
						continue
					}
					seen[de.Line] = true
					from, to, err := m.LineEndpoints(de.Line)
					if err != nil {
						continue
					}
					fromPos, err1 := m.PointPosition(from)
					toPos, err2 := m.PointPosition(to)
					if err1 != nil || err2 != nil {
						continue
					}
					dist, proj := mm.DistanceFromSegment(pos, fromPos, toPos)
					if best == nil || dist < best.Dist {
						best = &snapResult{Line: de.Line, Projected: proj, Dist: dist}
					}
				}
			}
		}

		if best != nil && best.Dist <= radiusMeters {
			break
		}
	}

	if best == nil || best.Dist > maxSnapDistMeters {
		return nil, nil
	}
	return best, nil
}
