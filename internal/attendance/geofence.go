package attendance

import "math"

const earthRadiusMeters = 6371000.0

// DistanceMeters computes the haversine great-circle distance between two
// coordinates.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceTo returns how far the reported position is from the location
// center.
func (w *WorkLocation) DistanceTo(lat, lng float64) float64 {
	return DistanceMeters(w.Latitude, w.Longitude, lat, lng)
}

// IsWithinGeofence reports whether the position falls inside the location's
// radius, along with the measured distance. GPS accuracy is validated
// separately via MeetsAccuracy.
func (w *WorkLocation) IsWithinGeofence(lat, lng float64) (bool, float64) {
	distance := w.DistanceTo(lat, lng)
	return distance <= w.RadiusMeters, distance
}

// MeetsAccuracy reports whether the reported GPS accuracy (meters of
// uncertainty, lower is better) satisfies the location's requirement. A zero
// requirement disables the check.
func (w *WorkLocation) MeetsAccuracy(accuracy float64) bool {
	if w.GPSAccuracyRequiredMeters <= 0 {
		return true
	}
	return accuracy <= w.GPSAccuracyRequiredMeters
}
