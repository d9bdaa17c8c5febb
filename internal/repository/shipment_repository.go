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

// ShipmentModel is the GORM model for the shipments table.
type ShipmentModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ShipmentNumber   string          `gorm:"uniqueIndex;not null;size:20"`
	CreatorID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	CourierID        *uuid.UUID      `gorm:"type:uuid;index"`
	Status           string          `gorm:"not null;size:30;index"`
	DeliveryType     string          `gorm:"not null;size:20"`
	ScheduledAt      *time.Time      `gorm:""`
	Pickup           json.RawMessage `gorm:"type:jsonb;not null"`
	Dropoff          json.RawMessage `gorm:"type:jsonb;not null"`
	VehicleType      string          `gorm:"not null;size:20"`
	VehicleProductID string          `gorm:"size:64"`
	CarrierType      string          `gorm:"size:20"`
	Extras           json.RawMessage `gorm:"type:jsonb"`
	CampaignCode     string          `gorm:"size:64"`
	PaymentMethod    string          `gorm:"not null;size:30"`
	SpecialNotes     string          `gorm:"size:1000"`
	Quote            json.RawMessage `gorm:"type:jsonb;not null"`
	RouteSpec        json.RawMessage `gorm:"type:jsonb"`
	Currency         string          `gorm:"not null;size:3;default:'TRY'"`
	AssignedAt       *time.Time      `gorm:""`
	PickedUpAt       *time.Time      `gorm:""`
	DeliveredAt      *time.Time      `gorm:""`
	CancelledAt      *time.Time      `gorm:""`
	CancelNote       string          `gorm:"size:500"`
	Version          int64           `gorm:"not null;default:1"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ShipmentModel) TableName() string {
	return "shipments"
}

// GormShipmentRepository is the GORM-based implementation of shipment.Repository.
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository.
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// FindByID retrieves a shipment by its unique identifier.
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipmentDomain.Shipment, error) {
	var model ShipmentModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Shipment", id.String())
		}
		return nil, fmt.Errorf("failed to find shipment by ID: %w", err)
	}
	return toDomainShipment(&model)
}

// FindByNumber retrieves a shipment by its shipment number.
func (r *GormShipmentRepository) FindByNumber(ctx context.Context, number string) (*shipmentDomain.Shipment, error) {
	var model ShipmentModel
	if err := r.db.WithContext(ctx).Where("shipment_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Shipment", number)
		}
		return nil, fmt.Errorf("failed to find shipment by number: %w", err)
	}
	return toDomainShipment(&model)
}

// FindByCreatorID retrieves shipments for a specific creator with pagination.
func (r *GormShipmentRepository) FindByCreatorID(ctx context.Context, creatorID uuid.UUID, page, limit int) ([]*shipmentDomain.Shipment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ShipmentModel{}).Where("creator_id = ?", creatorID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count creator shipments: %w", err)
	}

	var models []ShipmentModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find creator shipments: %w", err)
	}

	shipments := make([]*shipmentDomain.Shipment, len(models))
	for i, m := range models {
		sh, err := toDomainShipment(&m)
		if err != nil {
			return nil, 0, err
		}
		shipments[i] = sh
	}

	return shipments, total, nil
}

// ListAll retrieves all shipments with pagination (admin).
func (r *GormShipmentRepository) ListAll(ctx context.Context, page, limit int) ([]*shipmentDomain.Shipment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ShipmentModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count shipments: %w", err)
	}

	var models []ShipmentModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list shipments: %w", err)
	}

	shipments := make([]*shipmentDomain.Shipment, len(models))
	for i, m := range models {
		sh, err := toDomainShipment(&m)
		if err != nil {
			return nil, 0, err
		}
		shipments[i] = sh
	}

	return shipments, total, nil
}

// CountByStatus returns shipment counts grouped by status (admin).
func (r *GormShipmentRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&ShipmentModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new shipment.
func (r *GormShipmentRepository) Save(ctx context.Context, sh *shipmentDomain.Shipment) error {
	model, err := toShipmentModel(sh)
	if err != nil {
		return fmt.Errorf("failed to convert shipment to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save shipment: %w", err)
	}
	return nil
}

// Update persists changes to an existing shipment with optimistic locking.
func (r *GormShipmentRepository) Update(ctx context.Context, sh *shipmentDomain.Shipment) error {
	model, err := toShipmentModel(sh)
	if err != nil {
		return fmt.Errorf("failed to convert shipment to model: %w", err)
	}

	// Optimistic locking: only update if the version matches (current version - 1 since IncrementVersion was called)
	expectedVersion := sh.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&ShipmentModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"courier_id":    model.CourierID,
			"status":        model.Status,
			"scheduled_at":  model.ScheduledAt,
			"extras":        model.Extras,
			"campaign_code": model.CampaignCode,
			"special_notes": model.SpecialNotes,
			"quote":         model.Quote,
			"route_spec":    model.RouteSpec,
			"assigned_at":   model.AssignedAt,
			"picked_up_at":  model.PickedUpAt,
			"delivered_at":  model.DeliveredAt,
			"cancelled_at":  model.CancelledAt,
			"cancel_note":   model.CancelNote,
			"version":       model.Version,
			"updated_at":    model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update shipment: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("shipment was modified by another transaction")
	}

	return nil
}

// --- Conversion Helpers ---

func toShipmentModel(sh *shipmentDomain.Shipment) (*ShipmentModel, error) {
	pickupJSON, err := json.Marshal(sh.Pickup())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pickup point: %w", err)
	}

	dropoffJSON, err := json.Marshal(sh.Dropoff())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dropoff point: %w", err)
	}

	extrasJSON, err := json.Marshal(sh.Extras())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extras: %w", err)
	}

	quoteJSON, err := json.Marshal(sh.Quote())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quote: %w", err)
	}

	var routeSpecJSON json.RawMessage
	if sh.RouteSpec() != nil {
		data, err := json.Marshal(sh.RouteSpec())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal route spec: %w", err)
		}
		routeSpecJSON = data
	}

	return &ShipmentModel{
		ID:               sh.ID(),
		ShipmentNumber:   sh.ShipmentNumber(),
		CreatorID:        sh.CreatorID(),
		CourierID:        sh.CourierID(),
		Status:           string(sh.Status()),
		DeliveryType:     string(sh.DeliveryType()),
		ScheduledAt:      sh.ScheduledAt(),
		Pickup:           pickupJSON,
		Dropoff:          dropoffJSON,
		VehicleType:      sh.VehicleType().String(),
		VehicleProductID: sh.VehicleProductID(),
		CarrierType:      sh.CarrierType(),
		Extras:           extrasJSON,
		CampaignCode:     sh.CampaignCode(),
		PaymentMethod:    sh.PaymentMethod(),
		SpecialNotes:     sh.SpecialNotes(),
		Quote:            quoteJSON,
		RouteSpec:        routeSpecJSON,
		Currency:         sh.Currency(),
		AssignedAt:       sh.AssignedAt(),
		PickedUpAt:       sh.PickedUpAt(),
		DeliveredAt:      sh.DeliveredAt(),
		CancelledAt:      sh.CancelledAt(),
		CancelNote:       sh.CancelNote(),
		Version:          sh.Version(),
		CreatedAt:        sh.CreatedAt(),
		UpdatedAt:        sh.UpdatedAt(),
	}, nil
}

func toDomainShipment(m *ShipmentModel) (*shipmentDomain.Shipment, error) {
	var pickup shipmentDomain.GeoPoint
	if err := json.Unmarshal(m.Pickup, &pickup); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pickup point: %w", err)
	}

	var dropoff shipmentDomain.GeoPoint
	if err := json.Unmarshal(m.Dropoff, &dropoff); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dropoff point: %w", err)
	}

	var extras []shipmentDomain.SelectedExtra
	if len(m.Extras) > 0 {
		if err := json.Unmarshal(m.Extras, &extras); err != nil {
			return nil, fmt.Errorf("failed to unmarshal extras: %w", err)
		}
	}

	var quote shipmentDomain.Quote
	if err := json.Unmarshal(m.Quote, &quote); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quote: %w", err)
	}

	var routeSpec *shipmentDomain.RouteSpec
	if len(m.RouteSpec) > 0 {
		var rs shipmentDomain.RouteSpec
		if err := json.Unmarshal(m.RouteSpec, &rs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal route spec: %w", err)
		}
		routeSpec = &rs
	}

	status, err := shipmentDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	vehicleType, err := shipmentDomain.ParseVehicleCategory(m.VehicleType)
	if err != nil {
		return nil, err
	}

	return shipmentDomain.Reconstruct(shipmentDomain.ReconstructParams{
		ID:               m.ID,
		ShipmentNumber:   m.ShipmentNumber,
		CreatorID:        m.CreatorID,
		CourierID:        m.CourierID,
		Status:           status,
		DeliveryType:     shipmentDomain.DeliveryType(m.DeliveryType),
		ScheduledAt:      m.ScheduledAt,
		Pickup:           pickup,
		Dropoff:          dropoff,
		VehicleType:      vehicleType,
		VehicleProductID: m.VehicleProductID,
		CarrierType:      m.CarrierType,
		Extras:           extras,
		CampaignCode:     m.CampaignCode,
		PaymentMethod:    m.PaymentMethod,
		SpecialNotes:     m.SpecialNotes,
		Quote:            quote,
		RouteSpec:        routeSpec,
		Currency:         m.Currency,
		AssignedAt:       m.AssignedAt,
		PickedUpAt:       m.PickedUpAt,
		DeliveredAt:      m.DeliveredAt,
		CancelledAt:      m.CancelledAt,
		CancelNote:       m.CancelNote,
		Version:          m.Version,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}), nil
}
