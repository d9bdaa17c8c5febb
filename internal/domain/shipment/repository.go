package shipment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for shipment aggregates.
type Repository interface {
	// FindByID retrieves a shipment by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)

	// FindByNumber retrieves a shipment by its human-readable number.
	FindByNumber(ctx context.Context, number string) (*Shipment, error)

	// FindByCreatorID retrieves shipments created by a specific user with pagination.
	FindByCreatorID(ctx context.Context, creatorID uuid.UUID, page, limit int) ([]*Shipment, int64, error)

	// ListAll retrieves all shipments with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Shipment, int64, error)

	// CountByStatus returns shipment counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new shipment.
	Save(ctx context.Context, s *Shipment) error

	// Update persists changes to an existing shipment with optimistic locking.
	Update(ctx context.Context, s *Shipment) error
}

// RateRepository defines persistence for region rate rows.
type RateRepository interface {
	// ListAll returns every configured rate row.
	ListAll(ctx context.Context) ([]RegionRate, error)

	// FindByID retrieves one rate row.
	FindByID(ctx context.Context, id string) (RegionRate, error)

	// Save persists a new rate row.
	Save(ctx context.Context, rate RegionRate) error

	// Update replaces an existing rate row.
	Update(ctx context.Context, rate RegionRate) error

	// Delete removes a rate row.
	Delete(ctx context.Context, id string) error
}

// ExtraServiceRepository defines persistence for extra-service options.
type ExtraServiceRepository interface {
	// ListAll returns every configured extra-service option.
	ListAll(ctx context.Context) ([]ExtraServiceOption, error)

	// FindByID retrieves one option.
	FindByID(ctx context.Context, id string) (ExtraServiceOption, error)

	// Save persists a new option.
	Save(ctx context.Context, opt ExtraServiceOption) error

	// Update replaces an existing option.
	Update(ctx context.Context, opt ExtraServiceOption) error

	// Delete removes an option.
	Delete(ctx context.Context, id string) error
}

// VehicleProductRepository defines persistence for vehicle products.
type VehicleProductRepository interface {
	// ListActive returns all active vehicle products.
	ListActive(ctx context.Context) ([]VehicleProduct, error)

	// FindByID retrieves one product.
	FindByID(ctx context.Context, id string) (VehicleProduct, error)

	// Save persists a new product.
	Save(ctx context.Context, p VehicleProduct) error
}
