package shipment

import "math"

// GeoPoint is a coordinate pair plus the resolved address text and
// city/region names produced by map interaction or address search.
type GeoPoint struct {
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Address    string  `json:"address,omitempty"`
	CityName   string  `json:"city_name,omitempty"`
	RegionName string  `json:"region_name,omitempty"`
}

// HasCoordinates reports whether the point carries finite coordinates.
// A nil or non-finite point must never reach the routing service.
func (p *GeoPoint) HasCoordinates() bool {
	if p == nil {
		return false
	}
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) {
		return false
	}
	if math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) {
		return false
	}
	return true
}

// HaversineKm returns the great-circle distance between two coordinates
// in kilometers. Used as the straight-line estimate on route specs; the
// routing service supplies the driving distance used for pricing.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0

	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	lat1Rad := degreesToRadians(lat1)
	lat2Rad := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
