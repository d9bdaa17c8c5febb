package shipment

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loadhive/service-shipment/pkg/domain"
)

func validParams() NewShipmentParams {
	outcome := EvaluateQuote(ComputeQuote(12.4, 15, nil), true, false)
	return NewShipmentParams{
		CreatorID:     uuid.New(),
		DeliveryType:  DeliveryImmediate,
		Pickup:        GeoPoint{Lat: 39.92, Lng: 32.85, Address: "Kızılay, Ankara", CityName: "Ankara", RegionName: "Çankaya"},
		Dropoff:       GeoPoint{Lat: 39.97, Lng: 32.75, Address: "Batıkent, Ankara", CityName: "Ankara", RegionName: "Yenimahalle"},
		VehicleType:   VehiclePanelvan,
		PaymentMethod: "card",
		Outcome:       outcome,
		Currency:      "TRY",
	}
}

func TestNewShipment(t *testing.T) {
	sh, err := NewShipment(validParams())
	require.NoError(t, err)

	assert.Equal(t, StatusCreated, sh.Status())
	assert.Equal(t, int64(1), sh.Version())
	assert.True(t, strings.HasPrefix(sh.ShipmentNumber(), "LD-"))
	assert.Len(t, sh.ShipmentNumber(), 9)
	assert.Equal(t, 186.0, sh.Quote().BasePrice)
}

func TestNewShipment_RejectsUnpriceableQuote(t *testing.T) {
	p := validParams()
	p.Outcome = EvaluateQuote(ComputeQuote(12.4, 0, nil), true, false)

	_, err := NewShipment(p)
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Contains(t, err.Error(), "no rate is configured")
}

func TestNewShipment_DistanceFailureMessageWins(t *testing.T) {
	p := validParams()
	p.Outcome = EvaluateQuote(ComputeQuote(0, 15, nil), true, true)

	_, err := NewShipment(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "route distance could not be computed")
}

func TestNewShipment_Validation(t *testing.T) {
	t.Run("missing creator", func(t *testing.T) {
		p := validParams()
		p.CreatorID = uuid.Nil
		_, err := NewShipment(p)
		assert.Error(t, err)
	})

	t.Run("missing pickup address", func(t *testing.T) {
		p := validParams()
		p.Pickup.Address = ""
		_, err := NewShipment(p)
		assert.Error(t, err)
	})

	t.Run("invalid vehicle", func(t *testing.T) {
		p := validParams()
		p.VehicleType = "bicycle"
		_, err := NewShipment(p)
		assert.Error(t, err)
	})

	t.Run("scheduled without time", func(t *testing.T) {
		p := validParams()
		p.DeliveryType = DeliveryScheduled
		p.ScheduledAt = nil
		_, err := NewShipment(p)
		assert.Error(t, err)
	})

	t.Run("scheduled with time", func(t *testing.T) {
		p := validParams()
		p.DeliveryType = DeliveryScheduled
		at := time.Now().Add(24 * time.Hour)
		p.ScheduledAt = &at
		_, err := NewShipment(p)
		assert.NoError(t, err)
	})
}

func TestShipment_Lifecycle(t *testing.T) {
	sh, err := NewShipment(validParams())
	require.NoError(t, err)

	courierID := uuid.New()
	require.NoError(t, sh.Assign(courierID))
	assert.Equal(t, StatusAssigned, sh.Status())
	require.NotNil(t, sh.CourierID())
	assert.Equal(t, courierID, *sh.CourierID())
	assert.NotNil(t, sh.AssignedAt())

	require.NoError(t, sh.MarkPickedUp())
	assert.Equal(t, StatusPickedUp, sh.Status())
	assert.NotNil(t, sh.PickedUpAt())

	require.NoError(t, sh.MarkDelivered())
	assert.Equal(t, StatusDelivered, sh.Status())

	require.NoError(t, sh.Complete())
	assert.Equal(t, StatusCompleted, sh.Status())
	assert.True(t, sh.Status().IsTerminal())
}

func TestShipment_InvalidTransitions(t *testing.T) {
	sh, err := NewShipment(validParams())
	require.NoError(t, err)

	// Cannot pick up before assignment.
	err = sh.MarkPickedUp()
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	// Cannot complete before delivery.
	err = sh.Complete()
	assert.Error(t, err)
}

func TestShipment_Cancel(t *testing.T) {
	sh, err := NewShipment(validParams())
	require.NoError(t, err)

	require.NoError(t, sh.Cancel("customer changed plans"))
	assert.Equal(t, StatusCancelled, sh.Status())
	assert.Equal(t, "customer changed plans", sh.CancelNote())
	assert.NotNil(t, sh.CancelledAt())

	// Cancelled is terminal.
	assert.Error(t, sh.Assign(uuid.New()))
}

func TestShipment_CannotCancelAfterDelivery(t *testing.T) {
	sh, err := NewShipment(validParams())
	require.NoError(t, err)

	require.NoError(t, sh.Assign(uuid.New()))
	require.NoError(t, sh.MarkPickedUp())
	require.NoError(t, sh.MarkDelivered())

	err = sh.Cancel("too late")
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestReconstruct_RoundTrip(t *testing.T) {
	sh, err := NewShipment(validParams())
	require.NoError(t, err)
	require.NoError(t, sh.Assign(uuid.New()))
	sh.IncrementVersion()

	rebuilt := Reconstruct(ReconstructParams{
		ID:             sh.ID(),
		ShipmentNumber: sh.ShipmentNumber(),
		CreatorID:      sh.CreatorID(),
		CourierID:      sh.CourierID(),
		Status:         sh.Status(),
		DeliveryType:   sh.DeliveryType(),
		Pickup:         sh.Pickup(),
		Dropoff:        sh.Dropoff(),
		VehicleType:    sh.VehicleType(),
		PaymentMethod:  sh.PaymentMethod(),
		Quote:          sh.Quote(),
		Currency:       sh.Currency(),
		AssignedAt:     sh.AssignedAt(),
		Version:        sh.Version(),
		CreatedAt:      sh.CreatedAt(),
		UpdatedAt:      sh.UpdatedAt(),
	})

	assert.Equal(t, sh.ID(), rebuilt.ID())
	assert.Equal(t, sh.Status(), rebuilt.Status())
	assert.Equal(t, sh.Quote(), rebuilt.Quote())
	assert.Equal(t, int64(2), rebuilt.Version())

	// A reconstructed aggregate continues the state machine.
	require.NoError(t, rebuilt.MarkPickedUp())
	assert.Equal(t, StatusPickedUp, rebuilt.Status())
}

func TestStatus_Parse(t *testing.T) {
	s, err := ParseStatus("picked_up")
	require.NoError(t, err)
	assert.Equal(t, StatusPickedUp, s)

	_, err = ParseStatus("teleported")
	assert.Error(t, err)
}
