package shipment

// ExtraServiceOption is an optional add-on charge selectable per shipment.
// Options are loaded read-only from the admin configuration.
type ExtraServiceOption struct {
	ID          string  `json:"id"`
	ServiceName string  `json:"service_name"`
	Price       float64 `json:"price"`
	CarrierType string  `json:"carrier_type"`
}

// SelectedExtra is the snapshot of a chosen option carried on a shipment.
type SelectedExtra struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ServiceID string  `json:"service_id"`
}
