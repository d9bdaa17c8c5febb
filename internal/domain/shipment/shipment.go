package shipment

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/loadhive/service-shipment/pkg/domain"
)

const shipmentNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// DeliveryType distinguishes immediate loads from scheduled ones.
type DeliveryType string

const (
	DeliveryImmediate DeliveryType = "immediate"
	DeliveryScheduled DeliveryType = "scheduled"
)

// RouteSpec is a value object describing the priced route.
type RouteSpec struct {
	PickupLat      float64 `json:"pickup_lat"`
	PickupLng      float64 `json:"pickup_lng"`
	DropoffLat     float64 `json:"dropoff_lat"`
	DropoffLng     float64 `json:"dropoff_lng"`
	DistanceKm     float64 `json:"distance_km"`
	StraightLineKm float64 `json:"straight_line_km"`
}

// Shipment is the aggregate root for a load moving through the platform.
type Shipment struct {
	id             uuid.UUID
	shipmentNumber string
	creatorID      uuid.UUID
	courierID      *uuid.UUID
	status         Status

	deliveryType DeliveryType
	scheduledAt  *time.Time

	pickup  GeoPoint
	dropoff GeoPoint

	vehicleType      VehicleCategory
	vehicleProductID string
	carrierType      string

	extras       []SelectedExtra
	campaignCode string
	paymentMethod string
	specialNotes string

	quote     Quote
	routeSpec *RouteSpec
	currency  string

	assignedAt  *time.Time
	pickedUpAt  *time.Time
	deliveredAt *time.Time
	cancelledAt *time.Time
	cancelNote  string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateShipmentNumber creates a shipment number in the format "LD-XXXXXX".
func generateShipmentNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(shipmentNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate shipment number: %w", err)
		}
		result[i] = shipmentNumberChars[n.Int64()]
	}
	return "LD-" + string(result), nil
}

// NewShipmentParams holds everything needed to open a new shipment.
type NewShipmentParams struct {
	CreatorID        uuid.UUID
	DeliveryType     DeliveryType
	ScheduledAt      *time.Time
	Pickup           GeoPoint
	Dropoff          GeoPoint
	VehicleType      VehicleCategory
	VehicleProductID string
	CarrierType      string
	Extras           []SelectedExtra
	CampaignCode     string
	PaymentMethod    string
	SpecialNotes     string
	Outcome          QuoteOutcome
	RouteSpec        *RouteSpec
	Currency         string
}

// NewShipment creates a shipment in status=created. The quote outcome
// must be submittable; an unpriceable quote is rejected with its reason
// so a zero-priced load can never be created silently.
func NewShipment(p NewShipmentParams) (*Shipment, error) {
	if p.CreatorID == uuid.Nil {
		return nil, domain.NewValidationError("creator ID is required")
	}
	if p.Pickup.Address == "" {
		return nil, domain.NewValidationError("pickup address is required")
	}
	if p.Dropoff.Address == "" {
		return nil, domain.NewValidationError("dropoff address is required")
	}
	if !p.VehicleType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid vehicle category: %s", p.VehicleType))
	}
	if p.PaymentMethod == "" {
		return nil, domain.NewValidationError("payment method is required")
	}
	if p.DeliveryType == DeliveryScheduled && p.ScheduledAt == nil {
		return nil, domain.NewValidationError("scheduled deliveries require a date and time")
	}
	if !p.Outcome.Submittable {
		return nil, domain.NewValidationError(p.Outcome.BlockedReason.Message())
	}

	number, err := generateShipmentNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Shipment{
		id:               uuid.New(),
		shipmentNumber:   number,
		creatorID:        p.CreatorID,
		status:           StatusCreated,
		deliveryType:     p.DeliveryType,
		scheduledAt:      p.ScheduledAt,
		pickup:           p.Pickup,
		dropoff:          p.Dropoff,
		vehicleType:      p.VehicleType,
		vehicleProductID: p.VehicleProductID,
		carrierType:      p.CarrierType,
		extras:           p.Extras,
		campaignCode:     p.CampaignCode,
		paymentMethod:    p.PaymentMethod,
		specialNotes:     p.SpecialNotes,
		quote:            p.Outcome.Quote,
		routeSpec:        p.RouteSpec,
		currency:         p.Currency,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ReconstructParams mirrors the persisted state of a shipment.
type ReconstructParams struct {
	ID               uuid.UUID
	ShipmentNumber   string
	CreatorID        uuid.UUID
	CourierID        *uuid.UUID
	Status           Status
	DeliveryType     DeliveryType
	ScheduledAt      *time.Time
	Pickup           GeoPoint
	Dropoff          GeoPoint
	VehicleType      VehicleCategory
	VehicleProductID string
	CarrierType      string
	Extras           []SelectedExtra
	CampaignCode     string
	PaymentMethod    string
	SpecialNotes     string
	Quote            Quote
	RouteSpec        *RouteSpec
	Currency         string
	AssignedAt       *time.Time
	PickedUpAt       *time.Time
	DeliveredAt      *time.Time
	CancelledAt      *time.Time
	CancelNote       string
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Reconstruct rebuilds a Shipment from persistence data (no validation).
func Reconstruct(p ReconstructParams) *Shipment {
	return &Shipment{
		id:               p.ID,
		shipmentNumber:   p.ShipmentNumber,
		creatorID:        p.CreatorID,
		courierID:        p.CourierID,
		status:           p.Status,
		deliveryType:     p.DeliveryType,
		scheduledAt:      p.ScheduledAt,
		pickup:           p.Pickup,
		dropoff:          p.Dropoff,
		vehicleType:      p.VehicleType,
		vehicleProductID: p.VehicleProductID,
		carrierType:      p.CarrierType,
		extras:           p.Extras,
		campaignCode:     p.CampaignCode,
		paymentMethod:    p.PaymentMethod,
		specialNotes:     p.SpecialNotes,
		quote:            p.Quote,
		routeSpec:        p.RouteSpec,
		currency:         p.Currency,
		assignedAt:       p.AssignedAt,
		pickedUpAt:       p.PickedUpAt,
		deliveredAt:      p.DeliveredAt,
		cancelledAt:      p.CancelledAt,
		cancelNote:       p.CancelNote,
		version:          p.Version,
		createdAt:        p.CreatedAt,
		updatedAt:        p.UpdatedAt,
	}
}

// Assign attaches a courier and moves the shipment to assigned.
func (s *Shipment) Assign(courierID uuid.UUID) error {
	if courierID == uuid.Nil {
		return domain.NewValidationError("courier ID is required")
	}
	if !s.status.CanTransitionTo(StatusAssigned) {
		return domain.NewConflictError(fmt.Sprintf("cannot assign shipment in status %s", s.status))
	}
	now := time.Now().UTC()
	s.courierID = &courierID
	s.status = StatusAssigned
	s.assignedAt = &now
	s.updatedAt = now
	return nil
}

// MarkPickedUp records the load leaving the pickup location.
func (s *Shipment) MarkPickedUp() error {
	if !s.status.CanTransitionTo(StatusPickedUp) {
		return domain.NewConflictError(fmt.Sprintf("cannot pick up shipment in status %s", s.status))
	}
	now := time.Now().UTC()
	s.status = StatusPickedUp
	s.pickedUpAt = &now
	s.updatedAt = now
	return nil
}

// MarkDelivered records arrival at the dropoff location.
func (s *Shipment) MarkDelivered() error {
	if !s.status.CanTransitionTo(StatusDelivered) {
		return domain.NewConflictError(fmt.Sprintf("cannot deliver shipment in status %s", s.status))
	}
	now := time.Now().UTC()
	s.status = StatusDelivered
	s.deliveredAt = &now
	s.updatedAt = now
	return nil
}

// Complete finalizes a delivered shipment.
func (s *Shipment) Complete() error {
	if !s.status.CanTransitionTo(StatusCompleted) {
		return domain.NewConflictError(fmt.Sprintf("cannot complete shipment in status %s", s.status))
	}
	s.status = StatusCompleted
	s.updatedAt = time.Now().UTC()
	return nil
}

// Cancel aborts a shipment that has not yet been delivered.
func (s *Shipment) Cancel(reason string) error {
	if !s.status.CanBeCancelled() {
		return domain.NewConflictError(fmt.Sprintf("cannot cancel shipment in status %s", s.status))
	}
	now := time.Now().UTC()
	s.status = StatusCancelled
	s.cancelledAt = &now
	s.cancelNote = reason
	s.updatedAt = now
	return nil
}

// IncrementVersion bumps the optimistic-locking version.
func (s *Shipment) IncrementVersion() {
	s.version++
}

// --- Getters ---

// ID returns the shipment's unique identifier.
func (s *Shipment) ID() uuid.UUID { return s.id }

// ShipmentNumber returns the human-readable shipment number.
func (s *Shipment) ShipmentNumber() string { return s.shipmentNumber }

// CreatorID returns the ID of the user who created the load.
func (s *Shipment) CreatorID() uuid.UUID { return s.creatorID }

// CourierID returns the assigned courier's ID, or nil if unassigned.
func (s *Shipment) CourierID() *uuid.UUID { return s.courierID }

// Status returns the current shipment status.
func (s *Shipment) Status() Status { return s.status }

// DeliveryType returns immediate or scheduled.
func (s *Shipment) DeliveryType() DeliveryType { return s.deliveryType }

// ScheduledAt returns the scheduled time, or nil for immediate loads.
func (s *Shipment) ScheduledAt() *time.Time { return s.scheduledAt }

// Pickup returns the pickup point.
func (s *Shipment) Pickup() GeoPoint { return s.pickup }

// Dropoff returns the dropoff point.
func (s *Shipment) Dropoff() GeoPoint { return s.dropoff }

// VehicleType returns the selected vehicle category.
func (s *Shipment) VehicleType() VehicleCategory { return s.vehicleType }

// VehicleProductID returns the selected vehicle product, if any.
func (s *Shipment) VehicleProductID() string { return s.vehicleProductID }

// CarrierType returns the legacy carrier type string.
func (s *Shipment) CarrierType() string { return s.carrierType }

// Extras returns the selected extra-service snapshot.
func (s *Shipment) Extras() []SelectedExtra { return s.extras }

// CampaignCode returns the promotional code, carried verbatim.
func (s *Shipment) CampaignCode() string { return s.campaignCode }

// PaymentMethod returns the chosen payment method.
func (s *Shipment) PaymentMethod() string { return s.paymentMethod }

// SpecialNotes returns free-form dispatch notes.
func (s *Shipment) SpecialNotes() string { return s.specialNotes }

// Quote returns the price breakdown the shipment was created with.
func (s *Shipment) Quote() Quote { return s.quote }

// RouteSpec returns the priced route, or nil if not calculated.
func (s *Shipment) RouteSpec() *RouteSpec { return s.routeSpec }

// Currency returns the currency code.
func (s *Shipment) Currency() string { return s.currency }

// AssignedAt returns when a courier was assigned.
func (s *Shipment) AssignedAt() *time.Time { return s.assignedAt }

// PickedUpAt returns when the load was picked up.
func (s *Shipment) PickedUpAt() *time.Time { return s.pickedUpAt }

// DeliveredAt returns when the load was delivered.
func (s *Shipment) DeliveredAt() *time.Time { return s.deliveredAt }

// CancelledAt returns when the shipment was cancelled.
func (s *Shipment) CancelledAt() *time.Time { return s.cancelledAt }

// CancelNote returns the cancellation reason.
func (s *Shipment) CancelNote() string { return s.cancelNote }

// Version returns the optimistic-locking version.
func (s *Shipment) Version() int64 { return s.version }

// CreatedAt returns the creation timestamp.
func (s *Shipment) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns the last-update timestamp.
func (s *Shipment) UpdatedAt() time.Time { return s.updatedAt }
