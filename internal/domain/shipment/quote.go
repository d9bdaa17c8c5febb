package shipment

import "math"

// UnpriceableReason distinguishes why a quote cannot be submitted.
// The origin system collapsed all of these into a numeric zero; keeping
// them as variants lets callers show the right message.
type UnpriceableReason string

const (
	// ReasonRateUnavailable means no region rate row matched, or the
	// matched row has no price for the chosen vehicle category.
	ReasonRateUnavailable UnpriceableReason = "rate_unavailable"
	// ReasonDistanceUnavailable means the routing service call failed.
	ReasonDistanceUnavailable UnpriceableReason = "distance_unavailable"
	// ReasonIncompleteInputs means pickup or dropoff coordinates are missing.
	ReasonIncompleteInputs UnpriceableReason = "incomplete_inputs"
	// ReasonZeroDistance means the route resolved to zero kilometers.
	ReasonZeroDistance UnpriceableReason = "zero_distance"
)

// Message returns the human-readable blocking reason.
func (r UnpriceableReason) Message() string {
	switch r {
	case ReasonRateUnavailable:
		return "no rate is configured for the selected city, region or vehicle"
	case ReasonDistanceUnavailable:
		return "route distance could not be computed; check the locations and addresses"
	case ReasonIncompleteInputs:
		return "pickup and dropoff locations are required"
	case ReasonZeroDistance:
		return "pickup and dropoff resolve to the same location"
	}
	return ""
}

// Quote is the derived price breakdown for a shipment. It is recomputed
// from its inputs and never stored on its own; identical inputs always
// produce an identical Quote.
type Quote struct {
	DistanceKm    float64 `json:"distance_km"`
	BaseRatePerKm float64 `json:"base_rate_per_km"`
	BasePrice     float64 `json:"base_price"`
	ExtrasTotal   float64 `json:"extras_total"`
	TotalPrice    float64 `json:"total_price"`
}

// ComputeQuote combines distance, base rate and selected extras into a
// Quote. The base price is the distance times the per-km rate rounded to
// the nearest whole currency unit (ties away from zero); it is 0 unless
// both factors are positive. The extras sum is exact and left unrounded.
// A promotional code never alters the total here; discounts are settled
// by the external system.
func ComputeQuote(distanceKm, baseRatePerKm float64, selectedExtras []ExtraServiceOption) Quote {
	var basePrice float64
	if distanceKm > 0 && baseRatePerKm > 0 {
		basePrice = math.Round(distanceKm * baseRatePerKm)
	}

	var extrasTotal float64
	for _, extra := range selectedExtras {
		extrasTotal += extra.Price
	}

	return Quote{
		DistanceKm:    distanceKm,
		BaseRatePerKm: baseRatePerKm,
		BasePrice:     basePrice,
		ExtrasTotal:   extrasTotal,
		TotalPrice:    basePrice + extrasTotal,
	}
}

// QuoteOutcome is the submission read model: the quote itself plus
// whether it may be submitted, and the blocking reason when it may not.
type QuoteOutcome struct {
	Quote         Quote             `json:"quote"`
	Submittable   bool              `json:"submittable"`
	BlockedReason UnpriceableReason `json:"blocked_reason,omitempty"`
}

// EvaluateQuote classifies a computed quote. inputsComplete reports
// whether both endpoints carried coordinates; distanceFailed reports a
// routing failure (distinct from a genuine zero-length route).
func EvaluateQuote(q Quote, inputsComplete, distanceFailed bool) QuoteOutcome {
	if q.BasePrice > 0 {
		return QuoteOutcome{Quote: q, Submittable: true}
	}

	reason := ReasonRateUnavailable
	switch {
	case !inputsComplete:
		reason = ReasonIncompleteInputs
	case distanceFailed:
		reason = ReasonDistanceUnavailable
	case q.BaseRatePerKm <= 0:
		reason = ReasonRateUnavailable
	case q.DistanceKm <= 0:
		reason = ReasonZeroDistance
	}
	return QuoteOutcome{Quote: q, Submittable: false, BlockedReason: reason}
}

// QuoteInputs is the transient working aggregate collected from the
// shipment-creation form. It exists only while the form is open.
type QuoteInputs struct {
	Pickup      *GeoPoint
	Dropoff     *GeoPoint
	Vehicle     VehicleCategory
	ExtraIDs    []string
	PromoCode   string
	CarrierType string
}

// Complete reports whether both endpoints carry coordinates.
func (in QuoteInputs) Complete() bool {
	return in.Pickup.HasCoordinates() && in.Dropoff.HasCoordinates()
}
