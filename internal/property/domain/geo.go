package domain

import "math"

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two coordinates.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

// BoundingBox returns min/max latitude and longitude enclosing a radius
// around a point. It is a cheap prefilter; exact distance still has to be
// checked per row.
func BoundingBox(lat, lng, radiusKm float64) (minLat, maxLat, minLng, maxLng float64) {
	latDelta := degrees(radiusKm / earthRadiusKm)
	minLat = lat - latDelta
	maxLat = lat + latDelta

	lngDelta := latDelta
	if cos := math.Cos(radians(lat)); cos > 1e-9 {
		lngDelta = degrees(radiusKm / (earthRadiusKm * cos))
	}
	minLng = lng - lngDelta
	maxLng = lng + lngDelta
	return
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
