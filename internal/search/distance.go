package search

import (
	"math"

	"salvage_search/internal/domain"
)

// earthRadiusMiles is the great-circle radius used for distance sorting and
// max-distance filtering.
const earthRadiusMiles = 3959

// Distance returns the haversine great-circle distance between two
// coordinates, in miles.
func Distance(a, b domain.Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}
