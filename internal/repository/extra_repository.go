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

// ExtraServiceModel is the GORM model for the extra_services table.
type ExtraServiceModel struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	ServiceName string    `gorm:"not null;size:200"`
	Price       float64   `gorm:"not null;default:0"`
	CarrierType string    `gorm:"size:20;index"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ExtraServiceModel) TableName() string {
	return "extra_services"
}

// GormExtraServiceRepository is the GORM-based implementation of
// shipment.ExtraServiceRepository.
type GormExtraServiceRepository struct {
	db *gorm.DB
}

// NewGormExtraServiceRepository creates a new GormExtraServiceRepository.
func NewGormExtraServiceRepository(db *gorm.DB) *GormExtraServiceRepository {
	return &GormExtraServiceRepository{db: db}
}

// ListAll returns every configured extra-service option.
func (r *GormExtraServiceRepository) ListAll(ctx context.Context) ([]shipmentDomain.ExtraServiceOption, error) {
	var models []ExtraServiceModel
	if err := r.db.WithContext(ctx).Order("service_name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list extra services: %w", err)
	}

	options := make([]shipmentDomain.ExtraServiceOption, len(models))
	for i, m := range models {
		options[i] = toDomainExtraService(&m)
	}
	return options, nil
}

// FindByID retrieves one option.
func (r *GormExtraServiceRepository) FindByID(ctx context.Context, id string) (shipmentDomain.ExtraServiceOption, error) {
	var model ExtraServiceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shipmentDomain.ExtraServiceOption{}, domain.NewNotFoundError("ExtraService", id)
		}
		return shipmentDomain.ExtraServiceOption{}, fmt.Errorf("failed to find extra service: %w", err)
	}
	return toDomainExtraService(&model), nil
}

// Save persists a new option, assigning an ID when empty.
func (r *GormExtraServiceRepository) Save(ctx context.Context, opt shipmentDomain.ExtraServiceOption) error {
	model := ExtraServiceModel{
		ID:          opt.ID,
		ServiceName: opt.ServiceName,
		Price:       opt.Price,
		CarrierType: opt.CarrierType,
	}
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	model.CreatedAt = now
	model.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save extra service: %w", err)
	}
	return nil
}

// Update replaces an existing option.
func (r *GormExtraServiceRepository) Update(ctx context.Context, opt shipmentDomain.ExtraServiceOption) error {
	result := r.db.WithContext(ctx).
		Model(&ExtraServiceModel{}).
		Where("id = ?", opt.ID).
		Updates(map[string]interface{}{
			"service_name": opt.ServiceName,
			"price":        opt.Price,
			"carrier_type": opt.CarrierType,
			"updated_at":   time.Now().UTC(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update extra service: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("ExtraService", opt.ID)
	}
	return nil
}

// Delete removes an option.
func (r *GormExtraServiceRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ExtraServiceModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete extra service: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("ExtraService", id)
	}
	return nil
}

func toDomainExtraService(m *ExtraServiceModel) shipmentDomain.ExtraServiceOption {
	return shipmentDomain.ExtraServiceOption{
		ID:          m.ID,
		ServiceName: m.ServiceName,
		Price:       m.Price,
		CarrierType: m.CarrierType,
	}
}
