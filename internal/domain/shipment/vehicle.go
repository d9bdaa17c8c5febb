package shipment

import "fmt"

// VehicleCategory identifies the transport mode selected for a shipment.
// It determines which per-km rate column applies.
type VehicleCategory string

const (
	VehicleCourier    VehicleCategory = "courier"
	VehicleMinivan    VehicleCategory = "minivan"
	VehiclePanelvan   VehicleCategory = "panelvan"
	VehicleLightTruck VehicleCategory = "light_truck"
	VehicleHeavyTruck VehicleCategory = "heavy_truck"
)

// IsValid returns true if the category is recognized.
func (v VehicleCategory) IsValid() bool {
	switch v {
	case VehicleCourier, VehicleMinivan, VehiclePanelvan, VehicleLightTruck, VehicleHeavyTruck:
		return true
	}
	return false
}

// String returns the string representation of the category.
func (v VehicleCategory) String() string {
	return string(v)
}

// ParseVehicleCategory converts a string to a VehicleCategory.
func ParseVehicleCategory(s string) (VehicleCategory, error) {
	v := VehicleCategory(s)
	if !v.IsValid() {
		return "", fmt.Errorf("invalid vehicle category: %s", s)
	}
	return v, nil
}

// VehicleProduct is a configured vehicle offering shown to dispatchers.
// Its template maps the product onto a rate column.
type VehicleProduct struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Code     string          `json:"code"`
	Template VehicleCategory `json:"template"`
	Features []string        `json:"features,omitempty"`
	Active   bool            `json:"active"`
}
