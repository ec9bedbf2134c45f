package geo

import (
	"math"

	"kampalabites/internal/structs"
)

const earthRadiusKm = 6371.0

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

// DistanceKm returns the great-circle distance between two points in
// kilometers, via the haversine formula.
func DistanceKm(a, b structs.GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// WithinRadiusKm reports whether p lies within radiusKm of center.
func WithinRadiusKm(p, center structs.GeoPoint, radiusKm float64) bool {
	return DistanceKm(p, center) <= radiusKm
}
