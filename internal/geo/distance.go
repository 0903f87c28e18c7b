package geo

import "math"

const earthRadiusMeters = 6_371_000

// Haversine returns the great-circle distance in meters between two lat/lon points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// PathLength returns the length in meters of a polyline given as
// [lat, lng] pairs. Malformed points are skipped.
func PathLength(coords [][]float64) float64 {
	var total float64
	var prev []float64
	for _, p := range coords {
		if len(p) < 2 {
			continue
		}
		if prev != nil {
			total += Haversine(prev[0], prev[1], p[0], p[1])
		}
		prev = p
	}
	return total
}

// MetersToKm converts meters to kilometers.
func MetersToKm(m float64) float64 {
	return m / 1000
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
