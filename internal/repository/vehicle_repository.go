package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	shipmentDomain "github.com/loadhive/service-shipment/internal/domain/shipment"
	"github.com/loadhive/service-shipment/pkg/domain"
)

// VehicleProductModel is the GORM model for the vehicle_products table.
type VehicleProductModel struct {
	ID        string          `gorm:"type:uuid;primaryKey"`
	Name      string          `gorm:"not null;size:100"`
	Code      string          `gorm:"uniqueIndex;not null;size:50"`
	Template  string          `gorm:"not null;size:20"`
	Features  json.RawMessage `gorm:"type:jsonb"`
	Active    bool            `gorm:"not null;default:true;index"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (VehicleProductModel) TableName() string {
	return "vehicle_products"
}

// GormVehicleProductRepository is the GORM-based implementation of
// shipment.VehicleProductRepository.
type GormVehicleProductRepository struct {
	db *gorm.DB
}

// NewGormVehicleProductRepository creates a new GormVehicleProductRepository.
func NewGormVehicleProductRepository(db *gorm.DB) *GormVehicleProductRepository {
	return &GormVehicleProductRepository{db: db}
}

// ListActive returns all active vehicle products.
func (r *GormVehicleProductRepository) ListActive(ctx context.Context) ([]shipmentDomain.VehicleProduct, error) {
	var models []VehicleProductModel
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list vehicle products: %w", err)
	}

	products := make([]shipmentDomain.VehicleProduct, len(models))
	for i, m := range models {
		p, err := toDomainVehicleProduct(&m)
		if err != nil {
			return nil, err
		}
		products[i] = p
	}
	return products, nil
}

// FindByID retrieves one product.
func (r *GormVehicleProductRepository) FindByID(ctx context.Context, id string) (shipmentDomain.VehicleProduct, error) {
	var model VehicleProductModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shipmentDomain.VehicleProduct{}, domain.NewNotFoundError("VehicleProduct", id)
		}
		return shipmentDomain.VehicleProduct{}, fmt.Errorf("failed to find vehicle product: %w", err)
	}
	return toDomainVehicleProduct(&model)
}

// Save persists a new product, assigning an ID when empty.
func (r *GormVehicleProductRepository) Save(ctx context.Context, p shipmentDomain.VehicleProduct) error {
	featuresJSON, err := json.Marshal(p.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal vehicle features: %w", err)
	}

	model := VehicleProductModel{
		ID:       p.ID,
		Name:     p.Name,
		Code:     p.Code,
		Template: p.Template.String(),
		Features: featuresJSON,
		Active:   p.Active,
	}
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	model.CreatedAt = now
	model.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save vehicle product: %w", err)
	}
	return nil
}

func toDomainVehicleProduct(m *VehicleProductModel) (shipmentDomain.VehicleProduct, error) {
	template, err := shipmentDomain.ParseVehicleCategory(m.Template)
	if err != nil {
		return shipmentDomain.VehicleProduct{}, err
	}

	var features []string
	if len(m.Features) > 0 {
		if err := json.Unmarshal(m.Features, &features); err != nil {
			return shipmentDomain.VehicleProduct{}, fmt.Errorf("failed to unmarshal vehicle features: %w", err)
		}
	}

	return shipmentDomain.VehicleProduct{
		ID:       m.ID,
		Name:     m.Name,
		Code:     m.Code,
		Template: template,
		Features: features,
		Active:   m.Active,
	}, nil
}
