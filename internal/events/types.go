// Package events defines the Kafka topics and event payloads exchanged
// with the dispatch platform, plus the consumer that applies dispatch
// updates to shipments.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics.
const (
	TopicShipmentEvents = "shipment.events"
	TopicDispatchEvents = "dispatch.events"
)

// Event types published on shipment.events.
const (
	ShipmentCreated   = "shipment.created"
	ShipmentCancelled = "shipment.cancelled"
	ShipmentCompleted = "shipment.completed"
)

// Event types consumed from dispatch.events.
const (
	DispatchAssigned  = "dispatch.assigned"
	DispatchPickedUp  = "dispatch.picked_up"
	DispatchDelivered = "dispatch.delivered"
)

// ShipmentCreatedEvent is published when a new shipment is opened.
type ShipmentCreatedEvent struct {
	ShipmentID     uuid.UUID  `json:"shipment_id"`
	ShipmentNumber string     `json:"shipment_number"`
	CreatorID      uuid.UUID  `json:"creator_id"`
	VehicleType    string     `json:"vehicle_type"`
	DeliveryType   string     `json:"delivery_type"`
	ScheduledAt    *time.Time `json:"scheduled_at,omitempty"`
	PickupCity     string     `json:"pickup_city"`
	DropoffCity    string     `json:"dropoff_city"`
	DistanceKm     float64    `json:"distance_km"`
	TotalPrice     float64    `json:"total_price"`
	Currency       string     `json:"currency"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ShipmentCancelledEvent is published when a shipment is cancelled.
type ShipmentCancelledEvent struct {
	ShipmentID     uuid.UUID `json:"shipment_id"`
	ShipmentNumber string    `json:"shipment_number"`
	CancelledBy    uuid.UUID `json:"cancelled_by"`
	Reason         string    `json:"reason,omitempty"`
	CancelledAt    time.Time `json:"cancelled_at"`
}

// ShipmentCompletedEvent is published when a delivered shipment is finalized.
type ShipmentCompletedEvent struct {
	ShipmentID     uuid.UUID `json:"shipment_id"`
	ShipmentNumber string    `json:"shipment_number"`
	CourierID      uuid.UUID `json:"courier_id"`
	TotalPrice     float64   `json:"total_price"`
	Currency       string    `json:"currency"`
	CompletedAt    time.Time `json:"completed_at"`
}

// CourierAssignedEvent arrives when dispatch assigns a courier to a shipment.
type CourierAssignedEvent struct {
	ShipmentID uuid.UUID `json:"shipment_id"`
	CourierID  uuid.UUID `json:"courier_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

// LoadPickedUpEvent arrives when the courier collects the load.
type LoadPickedUpEvent struct {
	ShipmentID uuid.UUID `json:"shipment_id"`
	CourierID  uuid.UUID `json:"courier_id"`
	PickedUpAt time.Time `json:"picked_up_at"`
}

// LoadDeliveredEvent arrives when the courier completes the dropoff.
type LoadDeliveredEvent struct {
	ShipmentID  uuid.UUID `json:"shipment_id"`
	CourierID   uuid.UUID `json:"courier_id"`
	DeliveredAt time.Time `json:"delivered_at"`
}
