package banner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/loadhive/service-shipment/pkg/domain"
)

// Banner is a promotional banner shown on the marketing dashboard.
// Lower priority values are displayed first.
type Banner struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url"`
	Priority  int       `json:"priority"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New validates and creates a banner.
func New(title, imageURL string, priority int, active bool) (*Banner, error) {
	if title == "" {
		return nil, domain.NewValidationError("banner title is required")
	}
	if imageURL == "" {
		return nil, domain.NewValidationError("banner image URL is required")
	}
	now := time.Now().UTC()
	return &Banner{
		ID:        uuid.New(),
		Title:     title,
		ImageURL:  imageURL,
		Priority:  priority,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Repository defines persistence for banners.
type Repository interface {
	// ListAll returns all banners ordered by priority.
	ListAll(ctx context.Context) ([]Banner, error)

	// FindByID retrieves one banner.
	FindByID(ctx context.Context, id uuid.UUID) (Banner, error)

	// Save persists a new banner.
	Save(ctx context.Context, b *Banner) error

	// Update replaces an existing banner.
	Update(ctx context.Context, b *Banner) error

	// Delete removes a banner.
	Delete(ctx context.Context, id uuid.UUID) error
}
