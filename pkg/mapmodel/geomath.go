package mapmodel

import "math"

const earthRadiusMeters = 6_371_000.0

// EquirectMath is a Math implementation: Distance uses the haversine
// formula, Azimuth the great-circle initial bearing, and
// DistanceFromSegment projects onto the segment in an equirectangular
// plane before measuring with Distance. Grounded on the
// same projection used for candidate filtering in
// pkg/geo.EquirectangularDist and pkg/routing.Snapper.
type EquirectMath struct{}

func toDegrees(p Position) (lon, lat float64) {
	return float64(p.LonE6) / 1e6, float64(p.LatE6) / 1e6
}

// Distance returns the great-circle distance in meters between a and b,
// using the haversine formula for accuracy at route-reconstruction scale.
func (EquirectMath) Distance(a, b Position) float64 {
	lonA, latA := toDegrees(a)
	lonB, latB := toDegrees(b)
	return haversine(latA, lonA, latB, lonB)
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))

	return earthRadiusMeters * c
}

// Azimuth returns the bearing in degrees [0,360) from a to b.
func (EquirectMath) Azimuth(a, b Position) float64 {
	lonA, latA := toDegrees(a)
	lonB, latB := toDegrees(b)
	return azimuth(latA, lonA, latB, lonB)
}

func azimuth(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2r)
	x := math.Cos(lat1r)*math.Sin(lat2r) - math.Sin(lat1r)*math.Cos(lat2r)*math.Cos(dLon)
	theta := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(theta+360, 360)
}

// DistanceFromSegment computes the perpendicular distance from p to segment
// [a,b] and the point on that segment closest to p, projecting in an
// equirectangular plane the way pkg/geo.PointToSegmentDist does.
func (m EquirectMath) DistanceFromSegment(p, a, b Position) (float64, Position) {
	lonP, latP := toDegrees(p)
	lonA, latA := toDegrees(a)
	lonB, latB := toDegrees(b)

	if latA == latB && lonA == lonB {
		return m.Distance(p, a), a
	}

	cosLat := math.Cos((latA + latB) / 2 * math.Pi / 180)
	ax, ay := lonA*cosLat, latA
	bx, by := lonB*cosLat, latB
	px, py := lonP*cosLat, latP

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return m.Distance(p, a), a
	}

	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	closeLat := latA + t*(latB-latA)
	closeLon := lonA + t*(lonB-lonA)
	closest := Position{LonE6: int32(math.Round(closeLon * 1e6)), LatE6: int32(math.Round(closeLat * 1e6))}

	return m.Distance(p, closest), closest
}
