//go:build integration

package main_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loadhive/service-shipment/internal/application"
	"github.com/loadhive/service-shipment/internal/domain/shipment"
	"github.com/loadhive/service-shipment/internal/events"
)

// TestCreateShipment_PricesAndPublishes verifies the end-to-end creation
// flow: the quote resolves a rate from the seeded table and a driving
// distance from the routing service, the shipment persists, and a
// shipment.created event lands on shipment.events.
func TestCreateShipment_PricesAndPublishes(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	// Stub OSRM returning a fixed 12.4 km route.
	osrm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"distance":12400.0}]}`))
	}))
	defer osrm.Close()

	stack := setupShipmentStack(t, infra.DB, infra.KafkaBrokers, osrm.URL)
	defer stack.CleanupProducer()

	seedRegionRate(t, infra.DB)

	creatorID := uuid.New()
	result, err := stack.Service.CreateShipment(context.Background(), creatorID, application.CreateShipmentRequest{
		QuoteRequest: application.QuoteRequest{
			Pickup:      &shipment.GeoPoint{Lat: 39.92, Lng: 32.85, Address: "Kızılay, Ankara", CityName: "Ankara", RegionName: "Çankaya"},
			Dropoff:     &shipment.GeoPoint{Lat: 39.97, Lng: 32.75, Address: "Batıkent, Ankara", CityName: "Ankara", RegionName: "Çankaya"},
			VehicleType: "panelvan",
		},
		DeliveryType:  "immediate",
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	assert.Equal(t, "created", result.Status)
	assert.Equal(t, 12.4, result.Quote.DistanceKm)
	assert.Equal(t, 186.0, result.Quote.BasePrice)
	assert.Equal(t, 186.0, result.Quote.TotalPrice)
	require.NotNil(t, result.RouteSpec)
	assert.Greater(t, result.RouteSpec.StraightLineKm, 0.0)

	// The row is retrievable through the repository path.
	fetched, err := stack.Service.GetShipment(context.Background(), result.ID, creatorID, false)
	require.NoError(t, err)
	assert.Equal(t, result.ShipmentNumber, fetched.ShipmentNumber)

	// A shipment.created event is published.
	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicShipmentEvents,
		events.ShipmentCreated, 15*time.Second)

	var created events.ShipmentCreatedEvent
	require.NoError(t, ce.ParseData(&created))
	assert.Equal(t, result.ID, created.ShipmentID)
	assert.Equal(t, creatorID, created.CreatorID)
	assert.Equal(t, 186.0, created.TotalPrice)
	assert.Equal(t, "TRY", created.Currency)
}

// TestCreateShipment_RejectedWithoutRate verifies that a destination with
// no configured rate row cannot produce a shipment.
func TestCreateShipment_RejectedWithoutRate(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	osrm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"distance":12400.0}]}`))
	}))
	defer osrm.Close()

	stack := setupShipmentStack(t, infra.DB, infra.KafkaBrokers, osrm.URL)
	defer stack.CleanupProducer()

	// No rate rows seeded.
	_, err := stack.Service.CreateShipment(context.Background(), uuid.New(), application.CreateShipmentRequest{
		QuoteRequest: application.QuoteRequest{
			Pickup:      &shipment.GeoPoint{Lat: 38.42, Lng: 27.14, Address: "Konak, Izmir", CityName: "Izmir", RegionName: "Konak"},
			Dropoff:     &shipment.GeoPoint{Lat: 38.46, Lng: 27.21, Address: "Bornova, Izmir", CityName: "Izmir", RegionName: "Bornova"},
			VehicleType: "panelvan",
		},
		DeliveryType:  "immediate",
		PaymentMethod: "card",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rate is configured")
}

// TestDispatchDelivered_CompletesShipment verifies that when a
// dispatch.delivered event is published to dispatch.events, the shipment
// service picks it up, marks the shipment delivered and completes it,
// publishing shipment.completed.
func TestDispatchDelivered_CompletesShipment(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	osrm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"distance":12400.0}]}`))
	}))
	defer osrm.Close()

	stack := setupShipmentStack(t, infra.DB, infra.KafkaBrokers, osrm.URL)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	// Seed a shipment in "picked_up" state with an assigned courier.
	shipmentID := uuid.New()
	creatorID := uuid.New()
	courierID := uuid.New()
	seedShipmentInStatus(t, infra.DB, shipmentID, creatorID, &courierID, "picked_up")

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	// Publish the delivery notification.
	evt := events.LoadDeliveredEvent{
		ShipmentID:  shipmentID,
		CourierID:   courierID,
		DeliveredAt: time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, events.TopicDispatchEvents,
		"service-dispatch", events.DispatchDelivered, evt)

	// Assert: shipment transitions to "completed".
	model := waitForShipmentStatus(t, infra.DB, shipmentID, "completed", 15*time.Second)
	assert.NotNil(t, model.DeliveredAt, "delivered_at should be set")

	// Assert: shipment.completed on shipment.events.
	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicShipmentEvents,
		events.ShipmentCompleted, 15*time.Second)

	var completed events.ShipmentCompletedEvent
	require.NoError(t, ce.ParseData(&completed))
	assert.Equal(t, shipmentID, completed.ShipmentID)
	assert.Equal(t, courierID, completed.CourierID)
	assert.Equal(t, 186.0, completed.TotalPrice)
	assert.Equal(t, "TRY", completed.Currency)
}
