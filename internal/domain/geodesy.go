package domain

import "github.com/tidwall/geodesic"

// DistanceFunc computes the distance in kilometers between two coordinate
// pairs. The detection stages take it as an injected capability so tests can
// substitute fixed geometries.
type DistanceFunc func(lat1, lon1, lat2, lon2 float64) float64

// EllipsoidalDistance returns the geodesic distance in kilometers along the
// WGS-84 ellipsoid (Karney's algorithm).
func EllipsoidalDistance(lat1, lon1, lat2, lon2 float64) float64 {
	var meters float64
	geodesic.WGS84.Inverse(lat1, lon1, lat2, lon2, &meters, nil, nil)
	return meters / 1000.0
}
