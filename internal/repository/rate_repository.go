package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	shipmentDomain "github.com/loadhive/service-shipment/internal/domain/shipment"
	"github.com/loadhive/service-shipment/pkg/domain"
)

// RegionRateModel is the GORM model for the region_rates table.
type RegionRateModel struct {
	ID              string    `gorm:"type:uuid;primaryKey"`
	RouteLabel      string    `gorm:"size:200"`
	CountryID       int       `gorm:"not null;default:0"`
	RegionID        int       `gorm:"not null;default:0"`
	CityID          int       `gorm:"not null;default:0;index"`
	RegionName      string    `gorm:"not null;size:100;index"`
	CityName        string    `gorm:"not null;size:100;index"`
	CourierPrice    float64   `gorm:"not null;default:0"`
	MinivanPrice    float64   `gorm:"not null;default:0"`
	PanelvanPrice   float64   `gorm:"not null;default:0"`
	LightTruckPrice float64   `gorm:"not null;default:0"`
	HeavyTruckPrice float64   `gorm:"not null;default:0"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RegionRateModel) TableName() string {
	return "region_rates"
}

// GormRateRepository is the GORM-based implementation of shipment.RateRepository.
type GormRateRepository struct {
	db *gorm.DB
}

// NewGormRateRepository creates a new GormRateRepository.
func NewGormRateRepository(db *gorm.DB) *GormRateRepository {
	return &GormRateRepository{db: db}
}

// ListAll returns every configured rate row ordered by city name.
func (r *GormRateRepository) ListAll(ctx context.Context) ([]shipmentDomain.RegionRate, error) {
	var models []RegionRateModel
	if err := r.db.WithContext(ctx).Order("city_name ASC, region_name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list region rates: %w", err)
	}

	rates := make([]shipmentDomain.RegionRate, len(models))
	for i, m := range models {
		rates[i] = toDomainRegionRate(&m)
	}
	return rates, nil
}

// FindByID retrieves one rate row.
func (r *GormRateRepository) FindByID(ctx context.Context, id string) (shipmentDomain.RegionRate, error) {
	var model RegionRateModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shipmentDomain.RegionRate{}, domain.NewNotFoundError("RegionRate", id)
		}
		return shipmentDomain.RegionRate{}, fmt.Errorf("failed to find region rate: %w", err)
	}
	return toDomainRegionRate(&model), nil
}

// Save persists a new rate row, assigning an ID when empty.
func (r *GormRateRepository) Save(ctx context.Context, rate shipmentDomain.RegionRate) error {
	model := toRegionRateModel(rate)
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	model.CreatedAt = now
	model.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save region rate: %w", err)
	}
	return nil
}

// Update replaces an existing rate row.
func (r *GormRateRepository) Update(ctx context.Context, rate shipmentDomain.RegionRate) error {
	model := toRegionRateModel(rate)
	result := r.db.WithContext(ctx).
		Model(&RegionRateModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"route_label":       model.RouteLabel,
			"country_id":        model.CountryID,
			"region_id":         model.RegionID,
			"city_id":           model.CityID,
			"region_name":       model.RegionName,
			"city_name":         model.CityName,
			"courier_price":     model.CourierPrice,
			"minivan_price":     model.MinivanPrice,
			"panelvan_price":    model.PanelvanPrice,
			"light_truck_price": model.LightTruckPrice,
			"heavy_truck_price": model.HeavyTruckPrice,
			"updated_at":        time.Now().UTC(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update region rate: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("RegionRate", model.ID)
	}
	return nil
}

// Delete removes a rate row.
func (r *GormRateRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&RegionRateModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete region rate: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("RegionRate", id)
	}
	return nil
}

func toRegionRateModel(rate shipmentDomain.RegionRate) RegionRateModel {
	return RegionRateModel{
		ID:              rate.ID,
		RouteLabel:      rate.RouteLabel,
		CountryID:       rate.CountryID,
		RegionID:        rate.RegionID,
		CityID:          rate.CityID,
		RegionName:      rate.RegionName,
		CityName:        rate.CityName,
		CourierPrice:    rate.CourierPrice,
		MinivanPrice:    rate.MinivanPrice,
		PanelvanPrice:   rate.PanelvanPrice,
		LightTruckPrice: rate.LightTruckPrice,
		HeavyTruckPrice: rate.HeavyTruckPrice,
	}
}

func toDomainRegionRate(m *RegionRateModel) shipmentDomain.RegionRate {
	return shipmentDomain.RegionRate{
		ID:              m.ID,
		RouteLabel:      m.RouteLabel,
		CountryID:       m.CountryID,
		RegionID:        m.RegionID,
		CityID:          m.CityID,
		RegionName:      m.RegionName,
		CityName:        m.CityName,
		CourierPrice:    m.CourierPrice,
		MinivanPrice:    m.MinivanPrice,
		PanelvanPrice:   m.PanelvanPrice,
		LightTruckPrice: m.LightTruckPrice,
		HeavyTruckPrice: m.HeavyTruckPrice,
	}
}
