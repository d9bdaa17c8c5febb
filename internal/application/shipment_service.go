package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loadhive/service-shipment/internal/domain/shipment"
	"github.com/loadhive/service-shipment/internal/events"
	"github.com/loadhive/service-shipment/internal/quote"
	"github.com/loadhive/service-shipment/internal/rates"
	"github.com/loadhive/service-shipment/pkg/domain"
	"github.com/loadhive/service-shipment/pkg/kafka"
)

// QuoteRequest holds the form inputs needed to price a shipment.
type QuoteRequest struct {
	Pickup           *shipment.GeoPoint `json:"pickup"`
	Dropoff          *shipment.GeoPoint `json:"dropoff"`
	VehicleType      string             `json:"vehicle_type"`
	VehicleProductID string             `json:"vehicle_product_id"`
	CarrierType      string             `json:"carrier_type"`
	ExtraServiceIDs  []string           `json:"extra_service_ids"`
	PromoCode        string             `json:"promo_code"`
}

// CreateShipmentRequest holds the data needed to create a new shipment.
type CreateShipmentRequest struct {
	QuoteRequest
	DeliveryType  string     `json:"delivery_type" binding:"required"`
	ScheduledAt   *time.Time `json:"scheduled_at"`
	PaymentMethod string     `json:"payment_method" binding:"required"`
	SpecialNotes  string     `json:"special_notes"`
}

// ShipmentDTO is the response representation of a shipment.
type ShipmentDTO struct {
	ID               uuid.UUID                `json:"id"`
	ShipmentNumber   string                   `json:"shipment_number"`
	CreatorID        uuid.UUID                `json:"creator_id"`
	CourierID        *uuid.UUID               `json:"courier_id,omitempty"`
	Status           string                   `json:"status"`
	DeliveryType     string                   `json:"delivery_type"`
	ScheduledAt      *time.Time               `json:"scheduled_at,omitempty"`
	Pickup           shipment.GeoPoint        `json:"pickup"`
	Dropoff          shipment.GeoPoint        `json:"dropoff"`
	VehicleType      string                   `json:"vehicle_type"`
	VehicleProductID string                   `json:"vehicle_product_id,omitempty"`
	Extras           []shipment.SelectedExtra `json:"extras,omitempty"`
	CampaignCode     string                   `json:"campaign_code,omitempty"`
	PaymentMethod    string                   `json:"payment_method"`
	SpecialNotes     string                   `json:"special_notes,omitempty"`
	Quote            shipment.Quote           `json:"quote"`
	RouteSpec        *shipment.RouteSpec      `json:"route_spec,omitempty"`
	Currency         string                   `json:"currency"`
	AssignedAt       *time.Time               `json:"assigned_at,omitempty"`
	PickedUpAt       *time.Time               `json:"picked_up_at,omitempty"`
	DeliveredAt      *time.Time               `json:"delivered_at,omitempty"`
	CancelledAt      *time.Time               `json:"cancelled_at,omitempty"`
	CancelNote       string                   `json:"cancel_note,omitempty"`
	Version          int64                    `json:"version"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

const defaultCurrency = "TRY"

// ShipmentService is the application service orchestrating shipment use cases.
type ShipmentService struct {
	repo        shipment.Repository
	vehicleRepo shipment.VehicleProductRepository
	rates       *rates.Store
	distance    quote.DistanceProvider
	producer    *kafka.Producer
	logger      *zap.Logger
}

// NewShipmentService creates a new ShipmentService.
func NewShipmentService(
	repo shipment.Repository,
	vehicleRepo shipment.VehicleProductRepository,
	rateStore *rates.Store,
	distance quote.DistanceProvider,
	producer *kafka.Producer,
	logger *zap.Logger,
) *ShipmentService {
	return &ShipmentService{
		repo:        repo,
		vehicleRepo: vehicleRepo,
		rates:       rateStore,
		distance:    distance,
		producer:    producer,
		logger:      logger,
	}
}

// EstimateQuote prices the given form inputs without creating anything.
// It waits for the distance lookup so the returned snapshot is final.
func (s *ShipmentService) EstimateQuote(ctx context.Context, req QuoteRequest) (*quote.Snapshot, error) {
	session, err := s.buildSession(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := session.WaitIdle(ctx); err != nil {
		return nil, err
	}
	snap := session.Snapshot()
	return &snap, nil
}

// CreateShipment prices the request, rejects it when the quote is not
// submittable, and opens a shipment for the given creator.
func (s *ShipmentService) CreateShipment(ctx context.Context, creatorID uuid.UUID, req CreateShipmentRequest) (*ShipmentDTO, error) {
	if req.Pickup == nil || req.Dropoff == nil {
		return nil, domain.NewValidationError("pickup and dropoff locations are required")
	}

	vehicleType, err := s.resolveVehicle(ctx, req.QuoteRequest)
	if err != nil {
		return nil, err
	}

	session, err := s.buildSession(ctx, req.QuoteRequest)
	if err != nil {
		return nil, err
	}
	if err := session.WaitIdle(ctx); err != nil {
		return nil, err
	}
	snap := session.Snapshot()

	extras := make([]shipment.SelectedExtra, 0)
	for _, opt := range session.SelectedExtras() {
		extras = append(extras, shipment.SelectedExtra{
			Name:      opt.ServiceName,
			Price:     opt.Price,
			ServiceID: opt.ID,
		})
	}

	var routeSpec *shipment.RouteSpec
	if q := snap.Quote; q.DistanceKm > 0 {
		routeSpec = &shipment.RouteSpec{
			PickupLat:  req.Pickup.Lat,
			PickupLng:  req.Pickup.Lng,
			DropoffLat: req.Dropoff.Lat,
			DropoffLng: req.Dropoff.Lng,
			DistanceKm: q.DistanceKm,
			StraightLineKm: shipment.HaversineKm(
				req.Pickup.Lat, req.Pickup.Lng,
				req.Dropoff.Lat, req.Dropoff.Lng,
			),
		}
	}

	sh, err := shipment.NewShipment(shipment.NewShipmentParams{
		CreatorID:        creatorID,
		DeliveryType:     shipment.DeliveryType(req.DeliveryType),
		ScheduledAt:      req.ScheduledAt,
		Pickup:           *req.Pickup,
		Dropoff:          *req.Dropoff,
		VehicleType:      vehicleType,
		VehicleProductID: req.VehicleProductID,
		CarrierType:      req.CarrierType,
		Extras:           extras,
		CampaignCode:     req.PromoCode,
		PaymentMethod:    req.PaymentMethod,
		SpecialNotes:     req.SpecialNotes,
		Outcome:          snap.QuoteOutcome,
		RouteSpec:        routeSpec,
		Currency:         defaultCurrency,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, sh); err != nil {
		return nil, fmt.Errorf("failed to save shipment: %w", err)
	}

	s.publishShipmentCreated(ctx, sh)

	result := toShipmentDTO(sh)
	return &result, nil
}

// GetShipment retrieves a single shipment by ID. Non-admin callers only
// see their own shipments.
func (s *ShipmentService) GetShipment(ctx context.Context, shipmentID, requesterID uuid.UUID, isAdmin bool) (*ShipmentDTO, error) {
	sh, err := s.repo.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && sh.CreatorID() != requesterID {
		return nil, domain.NewForbiddenError("shipment does not belong to this user")
	}
	result := toShipmentDTO(sh)
	return &result, nil
}

// GetCreatorShipments retrieves paginated shipments created by a user.
func (s *ShipmentService) GetCreatorShipments(ctx context.Context, creatorID uuid.UUID, page, limit int) (*domain.PaginatedResult[ShipmentDTO], error) {
	shipments, total, err := s.repo.FindByCreatorID(ctx, creatorID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]ShipmentDTO, len(shipments))
	for i, sh := range shipments {
		dtos[i] = toShipmentDTO(sh)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// CancelShipment cancels a shipment that is not yet in a terminal state.
func (s *ShipmentService) CancelShipment(ctx context.Context, shipmentID, cancelledBy uuid.UUID, isAdmin bool, reason string) (*ShipmentDTO, error) {
	sh, err := s.repo.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && sh.CreatorID() != cancelledBy {
		return nil, domain.NewForbiddenError("shipment does not belong to this user")
	}

	if err := sh.Cancel(reason); err != nil {
		return nil, err
	}

	sh.IncrementVersion()
	if err := s.repo.Update(ctx, sh); err != nil {
		return nil, err
	}

	evt := events.ShipmentCancelledEvent{
		ShipmentID:     sh.ID(),
		ShipmentNumber: sh.ShipmentNumber(),
		CancelledBy:    cancelledBy,
		Reason:         reason,
		CancelledAt:    *sh.CancelledAt(),
	}
	s.publishEvent(ctx, events.TopicShipmentEvents, events.ShipmentCancelled, sh.ID().String(), evt)

	result := toShipmentDTO(sh)
	return &result, nil
}

// AssignCourier attaches a courier reported by the dispatch platform.
func (s *ShipmentService) AssignCourier(ctx context.Context, shipmentID, courierID uuid.UUID) (*ShipmentDTO, error) {
	sh, err := s.repo.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	if err := sh.Assign(courierID); err != nil {
		return nil, err
	}

	sh.IncrementVersion()
	if err := s.repo.Update(ctx, sh); err != nil {
		return nil, err
	}

	result := toShipmentDTO(sh)
	return &result, nil
}

// MarkPickedUp records the load leaving the pickup location.
func (s *ShipmentService) MarkPickedUp(ctx context.Context, shipmentID uuid.UUID) (*ShipmentDTO, error) {
	sh, err := s.repo.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	if err := sh.MarkPickedUp(); err != nil {
		return nil, err
	}

	sh.IncrementVersion()
	if err := s.repo.Update(ctx, sh); err != nil {
		return nil, err
	}

	result := toShipmentDTO(sh)
	return &result, nil
}

// MarkDelivered records arrival at the dropoff and finalizes the shipment.
func (s *ShipmentService) MarkDelivered(ctx context.Context, shipmentID uuid.UUID) (*ShipmentDTO, error) {
	sh, err := s.repo.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	if err := sh.MarkDelivered(); err != nil {
		return nil, err
	}

	sh.IncrementVersion()
	if err := s.repo.Update(ctx, sh); err != nil {
		return nil, err
	}

	result := toShipmentDTO(sh)
	return &result, nil
}

// CompleteShipment finalizes a delivered shipment and publishes the
// completion event used for settlement.
func (s *ShipmentService) CompleteShipment(ctx context.Context, shipmentID uuid.UUID) (*ShipmentDTO, error) {
	sh, err := s.repo.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	if err := sh.Complete(); err != nil {
		return nil, err
	}

	sh.IncrementVersion()
	if err := s.repo.Update(ctx, sh); err != nil {
		return nil, err
	}

	var courierID uuid.UUID
	if sh.CourierID() != nil {
		courierID = *sh.CourierID()
	}
	evt := events.ShipmentCompletedEvent{
		ShipmentID:     sh.ID(),
		ShipmentNumber: sh.ShipmentNumber(),
		CourierID:      courierID,
		TotalPrice:     sh.Quote().TotalPrice,
		Currency:       sh.Currency(),
		CompletedAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicShipmentEvents, events.ShipmentCompleted, sh.ID().String(), evt)

	result := toShipmentDTO(sh)
	return &result, nil
}

// --- Admin methods ---

// ShipmentStatsDTO holds shipment statistics for the admin dashboard.
type ShipmentStatsDTO struct {
	TotalShipments int64            `json:"total_shipments"`
	ByStatus       map[string]int64 `json:"by_status"`
}

// ListAllShipments returns a paginated list of all shipments (admin).
func (s *ShipmentService) ListAllShipments(ctx context.Context, page, limit int) ([]ShipmentDTO, int64, error) {
	shipments, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list shipments: %w", err)
	}

	dtos := make([]ShipmentDTO, len(shipments))
	for i, sh := range shipments {
		dtos[i] = toShipmentDTO(sh)
	}
	return dtos, total, nil
}

// GetShipmentStats returns aggregate shipment statistics (admin).
func (s *ShipmentService) GetShipmentStats(ctx context.Context) (*ShipmentStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get shipment stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &ShipmentStatsDTO{
		TotalShipments: total,
		ByStatus:       counts,
	}, nil
}

// --- Helpers ---

// buildSession assembles a quote session from the current rate and
// extra-service snapshots and the request's inputs. Setting the
// endpoints last starts the single distance lookup.
func (s *ShipmentService) buildSession(ctx context.Context, req QuoteRequest) (*quote.Session, error) {
	rateRows, err := s.rates.RegionRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load region rates: %w", err)
	}
	options, err := s.rates.ExtraServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load extra services: %w", err)
	}

	session := quote.NewSession(s.distance, s.logger)
	session.LoadRates(rateRows)
	session.LoadExtraOptions(options)

	if v, err := shipment.ParseVehicleCategory(req.VehicleType); err == nil {
		session.SetVehicle(v)
	}
	session.SetCarrierType(req.CarrierType)
	session.SetPromoCode(req.PromoCode)
	session.SelectExtras(req.ExtraServiceIDs)
	session.SetPickup(req.Pickup)
	session.SetDropoff(req.Dropoff)

	return session, nil
}

// resolveVehicle determines the vehicle category for a request: an
// explicit category wins, then the selected product's template, then
// the legacy carrier-type mapping.
func (s *ShipmentService) resolveVehicle(ctx context.Context, req QuoteRequest) (shipment.VehicleCategory, error) {
	if v, err := shipment.ParseVehicleCategory(req.VehicleType); err == nil {
		return v, nil
	}

	if req.VehicleProductID != "" {
		product, err := s.vehicleRepo.FindByID(ctx, req.VehicleProductID)
		if err != nil {
			return "", err
		}
		return product.Template, nil
	}

	switch req.CarrierType {
	case "courier":
		return shipment.VehicleCourier, nil
	case "minivan":
		return shipment.VehicleMinivan, nil
	case "panelvan":
		return shipment.VehiclePanelvan, nil
	case "truck":
		return shipment.VehicleLightTruck, nil
	}
	return "", domain.NewValidationError("a vehicle category is required")
}

func toShipmentDTO(sh *shipment.Shipment) ShipmentDTO {
	return ShipmentDTO{
		ID:               sh.ID(),
		ShipmentNumber:   sh.ShipmentNumber(),
		CreatorID:        sh.CreatorID(),
		CourierID:        sh.CourierID(),
		Status:           string(sh.Status()),
		DeliveryType:     string(sh.DeliveryType()),
		ScheduledAt:      sh.ScheduledAt(),
		Pickup:           sh.Pickup(),
		Dropoff:          sh.Dropoff(),
		VehicleType:      sh.VehicleType().String(),
		VehicleProductID: sh.VehicleProductID(),
		Extras:           sh.Extras(),
		CampaignCode:     sh.CampaignCode(),
		PaymentMethod:    sh.PaymentMethod(),
		SpecialNotes:     sh.SpecialNotes(),
		Quote:            sh.Quote(),
		RouteSpec:        sh.RouteSpec(),
		Currency:         sh.Currency(),
		AssignedAt:       sh.AssignedAt(),
		PickedUpAt:       sh.PickedUpAt(),
		DeliveredAt:      sh.DeliveredAt(),
		CancelledAt:      sh.CancelledAt(),
		CancelNote:       sh.CancelNote(),
		Version:          sh.Version(),
		CreatedAt:        sh.CreatedAt(),
		UpdatedAt:        sh.UpdatedAt(),
	}
}

func (s *ShipmentService) publishShipmentCreated(ctx context.Context, sh *shipment.Shipment) {
	evt := events.ShipmentCreatedEvent{
		ShipmentID:     sh.ID(),
		ShipmentNumber: sh.ShipmentNumber(),
		CreatorID:      sh.CreatorID(),
		VehicleType:    sh.VehicleType().String(),
		DeliveryType:   string(sh.DeliveryType()),
		ScheduledAt:    sh.ScheduledAt(),
		PickupCity:     sh.Pickup().CityName,
		DropoffCity:    sh.Dropoff().CityName,
		DistanceKm:     sh.Quote().DistanceKm,
		TotalPrice:     sh.Quote().TotalPrice,
		Currency:       sh.Currency(),
		CreatedAt:      sh.CreatedAt(),
	}
	s.publishEvent(ctx, events.TopicShipmentEvents, events.ShipmentCreated, sh.ID().String(), evt)
}

func (s *ShipmentService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("service-shipment", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishKeyed(ctx, topic, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
