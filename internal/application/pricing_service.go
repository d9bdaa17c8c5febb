package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loadhive/service-shipment/internal/domain/shipment"
	"github.com/loadhive/service-shipment/internal/rates"
	"github.com/loadhive/service-shipment/pkg/domain"
)

// RegionRateRequest holds the data for creating or updating a rate row.
type RegionRateRequest struct {
	RouteLabel      string  `json:"route_label"`
	CountryID       int     `json:"country_id"`
	RegionID        int     `json:"region_id"`
	CityID          int     `json:"city_id"`
	RegionName      string  `json:"region_name" binding:"required"`
	CityName        string  `json:"city_name" binding:"required"`
	CourierPrice    float64 `json:"courier_price"`
	MinivanPrice    float64 `json:"minivan_price"`
	PanelvanPrice   float64 `json:"panelvan_price"`
	LightTruckPrice float64 `json:"light_truck_price"`
	HeavyTruckPrice float64 `json:"heavy_truck_price"`
}

// ExtraServiceRequest holds the data for creating or updating an option.
type ExtraServiceRequest struct {
	ServiceName string  `json:"service_name" binding:"required"`
	Price       float64 `json:"price"`
	CarrierType string  `json:"carrier_type"`
}

// VehicleProductRequest holds the data for creating a vehicle product.
type VehicleProductRequest struct {
	Name     string   `json:"name" binding:"required"`
	Code     string   `json:"code" binding:"required"`
	Template string   `json:"template" binding:"required"`
	Features []string `json:"features"`
	Active   bool     `json:"active"`
}

// PricingConfigService manages the rate table, extra services and
// vehicle products. Every write invalidates the cached snapshots so the
// next quote prices against the new configuration.
type PricingConfigService struct {
	rateRepo    shipment.RateRepository
	extraRepo   shipment.ExtraServiceRepository
	vehicleRepo shipment.VehicleProductRepository
	store       *rates.Store
	logger      *zap.Logger
}

// NewPricingConfigService creates a new PricingConfigService.
func NewPricingConfigService(
	rateRepo shipment.RateRepository,
	extraRepo shipment.ExtraServiceRepository,
	vehicleRepo shipment.VehicleProductRepository,
	store *rates.Store,
	logger *zap.Logger,
) *PricingConfigService {
	return &PricingConfigService{
		rateRepo:    rateRepo,
		extraRepo:   extraRepo,
		vehicleRepo: vehicleRepo,
		store:       store,
		logger:      logger,
	}
}

// --- Region rates ---

// ListRegionRates returns every configured rate row.
func (s *PricingConfigService) ListRegionRates(ctx context.Context) ([]shipment.RegionRate, error) {
	return s.rateRepo.ListAll(ctx)
}

// GetRegionRate retrieves one rate row.
func (s *PricingConfigService) GetRegionRate(ctx context.Context, id string) (shipment.RegionRate, error) {
	return s.rateRepo.FindByID(ctx, id)
}

// CreateRegionRate adds a new rate row.
func (s *PricingConfigService) CreateRegionRate(ctx context.Context, req RegionRateRequest) (shipment.RegionRate, error) {
	rate := regionRateFromRequest(uuid.NewString(), req)
	if err := s.rateRepo.Save(ctx, rate); err != nil {
		return shipment.RegionRate{}, err
	}
	s.store.Invalidate(ctx)
	return rate, nil
}

// UpdateRegionRate replaces an existing rate row.
func (s *PricingConfigService) UpdateRegionRate(ctx context.Context, id string, req RegionRateRequest) (shipment.RegionRate, error) {
	if _, err := s.rateRepo.FindByID(ctx, id); err != nil {
		return shipment.RegionRate{}, err
	}
	rate := regionRateFromRequest(id, req)
	if err := s.rateRepo.Update(ctx, rate); err != nil {
		return shipment.RegionRate{}, err
	}
	s.store.Invalidate(ctx)
	return rate, nil
}

// DeleteRegionRate removes a rate row.
func (s *PricingConfigService) DeleteRegionRate(ctx context.Context, id string) error {
	if err := s.rateRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.store.Invalidate(ctx)
	return nil
}

// --- Extra services ---

// ListExtraServices returns every configured option.
func (s *PricingConfigService) ListExtraServices(ctx context.Context) ([]shipment.ExtraServiceOption, error) {
	return s.extraRepo.ListAll(ctx)
}

// CreateExtraService adds a new option.
func (s *PricingConfigService) CreateExtraService(ctx context.Context, req ExtraServiceRequest) (shipment.ExtraServiceOption, error) {
	opt := shipment.ExtraServiceOption{
		ID:          uuid.NewString(),
		ServiceName: req.ServiceName,
		Price:       req.Price,
		CarrierType: req.CarrierType,
	}
	if err := s.extraRepo.Save(ctx, opt); err != nil {
		return shipment.ExtraServiceOption{}, err
	}
	s.store.Invalidate(ctx)
	return opt, nil
}

// UpdateExtraService replaces an existing option.
func (s *PricingConfigService) UpdateExtraService(ctx context.Context, id string, req ExtraServiceRequest) (shipment.ExtraServiceOption, error) {
	if _, err := s.extraRepo.FindByID(ctx, id); err != nil {
		return shipment.ExtraServiceOption{}, err
	}
	opt := shipment.ExtraServiceOption{
		ID:          id,
		ServiceName: req.ServiceName,
		Price:       req.Price,
		CarrierType: req.CarrierType,
	}
	if err := s.extraRepo.Update(ctx, opt); err != nil {
		return shipment.ExtraServiceOption{}, err
	}
	s.store.Invalidate(ctx)
	return opt, nil
}

// DeleteExtraService removes an option.
func (s *PricingConfigService) DeleteExtraService(ctx context.Context, id string) error {
	if err := s.extraRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.store.Invalidate(ctx)
	return nil
}

// --- Vehicle products ---

// ListVehicleProducts returns all active products.
func (s *PricingConfigService) ListVehicleProducts(ctx context.Context) ([]shipment.VehicleProduct, error) {
	return s.vehicleRepo.ListActive(ctx)
}

// CreateVehicleProduct adds a new product.
func (s *PricingConfigService) CreateVehicleProduct(ctx context.Context, req VehicleProductRequest) (shipment.VehicleProduct, error) {
	template, err := shipment.ParseVehicleCategory(req.Template)
	if err != nil {
		return shipment.VehicleProduct{}, domain.NewValidationError(err.Error())
	}

	product := shipment.VehicleProduct{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Code:     req.Code,
		Template: template,
		Features: req.Features,
		Active:   req.Active,
	}
	if err := s.vehicleRepo.Save(ctx, product); err != nil {
		return shipment.VehicleProduct{}, err
	}
	return product, nil
}

func regionRateFromRequest(id string, req RegionRateRequest) shipment.RegionRate {
	return shipment.RegionRate{
		ID:              id,
		RouteLabel:      req.RouteLabel,
		CountryID:       req.CountryID,
		RegionID:        req.RegionID,
		CityID:          req.CityID,
		RegionName:      req.RegionName,
		CityName:        req.CityName,
		CourierPrice:    req.CourierPrice,
		MinivanPrice:    req.MinivanPrice,
		PanelvanPrice:   req.PanelvanPrice,
		LightTruckPrice: req.LightTruckPrice,
		HeavyTruckPrice: req.HeavyTruckPrice,
	}
}
