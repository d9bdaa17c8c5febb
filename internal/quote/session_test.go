package quote

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/loadhive/service-shipment/internal/domain/shipment"
)

// fakeProvider returns scripted distances keyed by destination latitude,
// optionally blocking until released so tests can interleave lookups.
type fakeProvider struct {
	mu       sync.Mutex
	results  map[float64]float64
	err      error
	calls    atomic.Int64
	blockers map[float64]chan struct{}
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		results:  make(map[float64]float64),
		blockers: make(map[float64]chan struct{}),
	}
}

func (f *fakeProvider) DrivingDistanceKm(ctx context.Context, originLat, originLng, destLat, destLng float64) (float64, error) {
	f.calls.Add(1)

	f.mu.Lock()
	blocker := f.blockers[destLat]
	km := f.results[destLat]
	err := f.err
	f.mu.Unlock()

	if blocker != nil {
		select {
		case <-blocker:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	if err != nil {
		return 0, err
	}
	return km, nil
}

func testRates() []shipment.RegionRate {
	return []shipment.RegionRate{
		{
			ID:            "r1",
			CityName:      "Ankara",
			RegionName:    "Çankaya",
			CourierPrice:  5,
			PanelvanPrice: 15,
		},
	}
}

func ankara(destLat float64) *shipment.GeoPoint {
	return &shipment.GeoPoint{Lat: destLat, Lng: 32.85, Address: "Ankara", CityName: "Ankara", RegionName: "Çankaya"}
}

func newTestSession(p DistanceProvider) *Session {
	s := NewSession(p, zap.NewNop())
	s.LoadRates(testRates())
	return s
}

func TestSession_ComputesQuoteAfterDistanceResolves(t *testing.T) {
	provider := newFakeProvider()
	provider.results[40.0] = 12.4

	s := newTestSession(provider)
	s.SetVehicle(shipment.VehiclePanelvan)
	s.SetPickup(ankara(39.0))
	s.SetDropoff(ankara(40.0))

	require.NoError(t, s.WaitIdle(context.Background()))

	snap := s.Snapshot()
	assert.False(t, snap.Pending)
	assert.True(t, snap.Submittable)
	assert.Equal(t, 186.0, snap.Quote.BasePrice)
}

func TestSession_IncompleteInputsSkipLookup(t *testing.T) {
	provider := newFakeProvider()

	s := newTestSession(provider)
	s.SetVehicle(shipment.VehiclePanelvan)
	s.SetPickup(ankara(39.0))
	// Dropoff never set: no network call may happen.

	require.NoError(t, s.WaitIdle(context.Background()))

	snap := s.Snapshot()
	assert.False(t, snap.Submittable)
	assert.Equal(t, shipment.ReasonIncompleteInputs, snap.BlockedReason)
	assert.Equal(t, int64(0), provider.calls.Load())
}

func TestSession_ClearingEndpointResetsDistance(t *testing.T) {
	provider := newFakeProvider()
	provider.results[40.0] = 12.4

	s := newTestSession(provider)
	s.SetVehicle(shipment.VehiclePanelvan)
	s.SetPickup(ankara(39.0))
	s.SetDropoff(ankara(40.0))
	require.NoError(t, s.WaitIdle(context.Background()))
	require.True(t, s.Snapshot().Submittable)

	s.SetDropoff(nil)

	snap := s.Snapshot()
	assert.False(t, snap.Submittable)
	assert.Equal(t, 0.0, snap.Quote.DistanceKm)
	assert.Equal(t, shipment.ReasonIncompleteInputs, snap.BlockedReason)
}

func TestSession_StaleResponseDiscarded(t *testing.T) {
	provider := newFakeProvider()
	firstDone := make(chan struct{})
	provider.results[40.0] = 500 // slow, stale lookup
	provider.blockers[40.0] = firstDone
	provider.results[41.0] = 12.4 // fast, current lookup

	s := newTestSession(provider)
	s.SetVehicle(shipment.VehiclePanelvan)
	s.SetPickup(ankara(39.0))

	s.SetDropoff(ankara(40.0)) // starts the slow lookup
	s.SetDropoff(ankara(41.0)) // supersedes it

	require.NoError(t, s.WaitIdle(context.Background()))

	// Let the stale lookup finish after the fresh one resolved.
	close(firstDone)
	time.Sleep(50 * time.Millisecond)

	snap := s.Snapshot()
	assert.Equal(t, 12.4, snap.Quote.DistanceKm)
	assert.Equal(t, 186.0, snap.Quote.BasePrice)
}

func TestSession_FailedLookupBlocksSubmission(t *testing.T) {
	provider := newFakeProvider()
	provider.err = context.DeadlineExceeded

	s := newTestSession(provider)
	s.SetVehicle(shipment.VehiclePanelvan)
	s.SetPickup(ankara(39.0))
	s.SetDropoff(ankara(40.0))

	require.NoError(t, s.WaitIdle(context.Background()))

	snap := s.Snapshot()
	assert.False(t, snap.Submittable)
	assert.Equal(t, shipment.ReasonDistanceUnavailable, snap.BlockedReason)
}

func TestSession_PendingNeverSubmittable(t *testing.T) {
	provider := newFakeProvider()
	release := make(chan struct{})
	provider.results[40.0] = 12.4
	provider.blockers[40.0] = release

	s := newTestSession(provider)
	s.SetVehicle(shipment.VehiclePanelvan)
	s.SetPickup(ankara(39.0))
	s.SetDropoff(ankara(40.0))

	snap := s.Snapshot()
	assert.True(t, snap.Pending)
	assert.False(t, snap.Submittable)

	close(release)
	require.NoError(t, s.WaitIdle(context.Background()))
	assert.True(t, s.Snapshot().Submittable)
}

func TestSession_ExtrasToggleAndOrder(t *testing.T) {
	provider := newFakeProvider()
	provider.results[40.0] = 10

	s := newTestSession(provider)
	s.LoadExtraOptions([]shipment.ExtraServiceOption{
		{ID: "e1", ServiceName: "Loading crew", Price: 20},
		{ID: "e2", ServiceName: "Insurance", Price: 30},
	})
	s.SetVehicle(shipment.VehiclePanelvan)
	s.SetPickup(ankara(39.0))
	s.SetDropoff(ankara(40.0))
	require.NoError(t, s.WaitIdle(context.Background()))

	s.ToggleExtra("e2")
	s.ToggleExtra("e1")

	extras := s.SelectedExtras()
	require.Len(t, extras, 2)
	// Option order, not selection order.
	assert.Equal(t, "e1", extras[0].ID)
	assert.Equal(t, "e2", extras[1].ID)

	snap := s.Snapshot()
	assert.Equal(t, 150.0, snap.Quote.BasePrice)
	assert.Equal(t, 50.0, snap.Quote.ExtrasTotal)
	assert.Equal(t, 200.0, snap.Quote.TotalPrice)

	s.ToggleExtra("e2")
	snap = s.Snapshot()
	assert.Equal(t, 20.0, snap.Quote.ExtrasTotal)
}

func TestSession_PromoCodeNeverChangesTotal(t *testing.T) {
	provider := newFakeProvider()
	provider.results[40.0] = 12.4

	s := newTestSession(provider)
	s.SetVehicle(shipment.VehiclePanelvan)
	s.SetPickup(ankara(39.0))
	s.SetDropoff(ankara(40.0))
	require.NoError(t, s.WaitIdle(context.Background()))

	before := s.Snapshot()
	s.SetPromoCode("SAVE50")
	after := s.Snapshot()

	assert.Equal(t, before.Quote.TotalPrice, after.Quote.TotalPrice)
	assert.Equal(t, "SAVE50", after.PromoCode)
}

func TestSession_CarrierTypeFallback(t *testing.T) {
	provider := newFakeProvider()
	provider.results[40.0] = 10

	s := NewSession(provider, zap.NewNop())
	s.LoadRates([]shipment.RegionRate{
		{ID: "r1", CityName: "Ankara", RegionName: "Çankaya", LightTruckPrice: 18},
	})
	s.SetCarrierType("truck")
	s.SetPickup(ankara(39.0))
	s.SetDropoff(ankara(40.0))
	require.NoError(t, s.WaitIdle(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, 18.0, snap.Quote.BaseRatePerKm)
	assert.Equal(t, 180.0, snap.Quote.BasePrice)
}

func TestSession_WaitIdleHonorsContext(t *testing.T) {
	provider := newFakeProvider()
	provider.blockers[40.0] = make(chan struct{}) // never released

	s := newTestSession(provider)
	s.SetPickup(ankara(39.0))
	s.SetDropoff(ankara(40.0))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := s.WaitIdle(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
