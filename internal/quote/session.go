// Package quote derives the current price breakdown for a shipment form
// from the latest snapshot of its inputs: rate table, extra services,
// endpoints and vehicle selection.
package quote

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/loadhive/service-shipment/internal/domain/shipment"
)

// DistanceProvider obtains a driving distance in kilometers. Implemented
// by the routing client; faked in tests.
type DistanceProvider interface {
	DrivingDistanceKm(ctx context.Context, originLat, originLng, destLat, destLng float64) (float64, error)
}

type distanceState int

const (
	distanceIncomplete distanceState = iota
	distancePending
	distanceResolved
	distanceFailed
)

// Snapshot is the session's read model: the evaluated quote, the promo
// code carried verbatim, and whether a distance lookup is still running.
// While Pending is true the quote reflects stale distance data and is
// never submittable.
type Snapshot struct {
	shipment.QuoteOutcome
	PromoCode string `json:"promo_code,omitempty"`
	Pending   bool   `json:"pending"`
}

// Session holds the transient quote state for one shipment form. Every
// setter re-derives the quote from the latest values; completions of
// distance lookups are ordered by generation, not arrival, so a stale
// response can never overwrite a newer one.
type Session struct {
	mu       sync.Mutex
	provider DistanceProvider
	logger   *zap.Logger

	rates   []shipment.RegionRate
	options []shipment.ExtraServiceOption

	inputs   shipment.QuoteInputs
	selected map[string]bool

	distanceKm float64
	distState  distanceState
	gen        uint64
	cancel     context.CancelFunc
	idleCh     chan struct{}
}

// NewSession creates an empty quote session.
func NewSession(provider DistanceProvider, logger *zap.Logger) *Session {
	return &Session{
		provider: provider,
		logger:   logger,
		selected: make(map[string]bool),
	}
}

// LoadRates replaces the region rate snapshot wholesale.
func (s *Session) LoadRates(rows []shipment.RegionRate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates = rows
}

// LoadExtraOptions replaces the extra-service option snapshot wholesale.
func (s *Session) LoadExtraOptions(opts []shipment.ExtraServiceOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = opts
}

// SetVehicle selects the vehicle category.
func (s *Session) SetVehicle(v shipment.VehicleCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.Vehicle = v
}

// SetCarrierType sets the legacy carrier-type string used when no
// vehicle category is selected.
func (s *Session) SetCarrierType(carrierType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.CarrierType = carrierType
}

// SetPromoCode attaches a promotional code. The code never changes the
// computed total; it travels with the shipment for external settlement.
func (s *Session) SetPromoCode(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.PromoCode = code
}

// ToggleExtra flips the selection state of one extra-service option.
func (s *Session) ToggleExtra(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected[id] = !s.selected[id]
}

// SelectExtras replaces the selected extra-service IDs.
func (s *Session) SelectExtras(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]bool, len(ids))
	for _, id := range ids {
		s.selected[id] = true
	}
}

// SetPickup updates the pickup point and refreshes the driving distance.
func (s *Session) SetPickup(p *shipment.GeoPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.Pickup = p
	s.refreshDistanceLocked()
}

// SetDropoff updates the dropoff point and refreshes the driving distance.
func (s *Session) SetDropoff(p *shipment.GeoPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.Dropoff = p
	s.refreshDistanceLocked()
}

// refreshDistanceLocked abandons any in-flight lookup and, when both
// endpoints carry coordinates, starts a new one under a fresh
// generation. Incomplete coordinates reset the distance to zero without
// touching the network.
func (s *Session) refreshDistanceLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.idleCh != nil {
		// Release waiters of the superseded lookup; they re-check state.
		close(s.idleCh)
		s.idleCh = nil
	}
	s.gen++

	if !s.inputs.Complete() {
		s.distanceKm = 0
		s.distState = distanceIncomplete
		return
	}

	gen := s.gen
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	ch := make(chan struct{})
	s.idleCh = ch
	s.distState = distancePending

	pickup := *s.inputs.Pickup
	dropoff := *s.inputs.Dropoff

	go func() {
		km, err := s.provider.DrivingDistanceKm(ctx, pickup.Lat, pickup.Lng, dropoff.Lat, dropoff.Lng)

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen {
			// Inputs changed while this lookup was outstanding; discard.
			return
		}
		s.cancel = nil
		if err != nil {
			s.distanceKm = 0
			s.distState = distanceFailed
			s.logger.Warn("distance lookup failed", zap.Error(err))
		} else {
			s.distanceKm = km
			s.distState = distanceResolved
		}
		close(ch)
		s.idleCh = nil
	}()
}

// WaitIdle blocks until no distance lookup is outstanding or the context
// is done.
func (s *Session) WaitIdle(ctx context.Context) error {
	for {
		s.mu.Lock()
		ch := s.idleCh
		pending := s.distState == distancePending
		s.mu.Unlock()

		if !pending || ch == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

// Snapshot derives the current quote from the latest values of every
// input. It is idempotent and order-independent: a late rate-table load
// followed by an earlier distance resolution yields the same result as
// the reverse.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	rate := s.resolveRateLocked()
	q := shipment.ComputeQuote(s.distanceKm, rate, s.selectedExtrasLocked())
	outcome := shipment.EvaluateQuote(q, s.inputs.Complete(), s.distState == distanceFailed)

	pending := s.distState == distancePending
	if pending {
		outcome.Submittable = false
	}

	return Snapshot{
		QuoteOutcome: outcome,
		PromoCode:    s.inputs.PromoCode,
		Pending:      pending,
	}
}

// SelectedExtras returns the currently selected options in option order.
func (s *Session) SelectedExtras() []shipment.ExtraServiceOption {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedExtrasLocked()
}

func (s *Session) selectedExtrasLocked() []shipment.ExtraServiceOption {
	var extras []shipment.ExtraServiceOption
	for _, opt := range s.options {
		if s.selected[opt.ID] {
			extras = append(extras, opt)
		}
	}
	return extras
}

// resolveRateLocked picks the per-km rate for the current endpoints and
// vehicle. Dropoff names win over pickup names, as the rate table is
// keyed by destination routes.
func (s *Session) resolveRateLocked() float64 {
	city, region := s.placeNamesLocked()
	row, ok := shipment.MatchRegionRate(s.rates, city, region)
	if !ok {
		return 0
	}
	if s.inputs.Vehicle.IsValid() {
		return row.RatePerKm(s.inputs.Vehicle)
	}
	return row.RatePerKmForCarrier(s.inputs.CarrierType)
}

func (s *Session) placeNamesLocked() (city, region string) {
	if s.inputs.Dropoff != nil && s.inputs.Dropoff.CityName != "" {
		city = s.inputs.Dropoff.CityName
	} else if s.inputs.Pickup != nil {
		city = s.inputs.Pickup.CityName
	}
	if s.inputs.Dropoff != nil && s.inputs.Dropoff.RegionName != "" {
		region = s.inputs.Dropoff.RegionName
	} else if s.inputs.Pickup != nil {
		region = s.inputs.Pickup.RegionName
	}
	return city, region
}
