package shipment

import "strings"

// RegionRate is one configured route row mapping a city/region to per-km
// prices per vehicle category. Rows are loaded in bulk and treated as a
// read-only snapshot; each reload supersedes the previous one wholesale.
type RegionRate struct {
	ID              string  `json:"id"`
	RouteLabel      string  `json:"route_label"`
	CountryID       int     `json:"country_id"`
	RegionID        int     `json:"region_id"`
	CityID          int     `json:"city_id"`
	RegionName      string  `json:"region_name"`
	CityName        string  `json:"city_name"`
	CourierPrice    float64 `json:"courier_price"`
	MinivanPrice    float64 `json:"minivan_price"`
	PanelvanPrice   float64 `json:"panelvan_price"`
	LightTruckPrice float64 `json:"light_truck_price"`
	HeavyTruckPrice float64 `json:"heavy_truck_price"`
}

// RatePerKm returns the per-km price for the given vehicle category, or 0
// when the row has no price defined for it. There is no fallback to
// another category's price.
func (r RegionRate) RatePerKm(vehicle VehicleCategory) float64 {
	switch vehicle {
	case VehicleCourier:
		return r.CourierPrice
	case VehicleMinivan:
		return r.MinivanPrice
	case VehiclePanelvan:
		return r.PanelvanPrice
	case VehicleLightTruck:
		return r.LightTruckPrice
	case VehicleHeavyTruck:
		return r.HeavyTruckPrice
	}
	return 0
}

// RatePerKmForCarrier resolves a legacy carrier-type string. "truck"
// prefers the light-truck price and falls back to heavy-truck when the
// light-truck price is unset, matching the historical dispatch clients.
func (r RegionRate) RatePerKmForCarrier(carrierType string) float64 {
	switch carrierType {
	case "courier":
		return r.CourierPrice
	case "minivan":
		return r.MinivanPrice
	case "panelvan":
		return r.PanelvanPrice
	case "truck":
		if r.LightTruckPrice > 0 {
			return r.LightTruckPrice
		}
		return r.HeavyTruckPrice
	}
	return 0
}

func normalizePlace(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// MatchRegionRate finds the applicable row for a city/region pair.
// Matching is case-insensitive and whitespace-trimmed: an exact
// (city, region) match wins; otherwise the first row matching the city
// alone is used. Empty city or region names never match.
func MatchRegionRate(rows []RegionRate, cityName, regionName string) (RegionRate, bool) {
	city := normalizePlace(cityName)
	region := normalizePlace(regionName)
	if city == "" || region == "" {
		return RegionRate{}, false
	}

	for _, row := range rows {
		if normalizePlace(row.CityName) == city && normalizePlace(row.RegionName) == region {
			return row, true
		}
	}
	for _, row := range rows {
		if normalizePlace(row.CityName) == city {
			return row, true
		}
	}
	return RegionRate{}, false
}

// ResolveBaseRate returns the per-km base rate for the given destination
// city/region and vehicle category, or 0 when no row matches or the
// matched row has no price for that category. Pure and deterministic for
// identical inputs.
func ResolveBaseRate(rows []RegionRate, cityName, regionName string, vehicle VehicleCategory) float64 {
	row, ok := MatchRegionRate(rows, cityName, regionName)
	if !ok {
		return 0
	}
	return row.RatePerKm(vehicle)
}
