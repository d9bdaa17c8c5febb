package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bannerDomain "github.com/loadhive/service-shipment/internal/domain/banner"
	"github.com/loadhive/service-shipment/pkg/domain"
)

// BannerModel is the GORM model for the banners table.
type BannerModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title     string    `gorm:"not null;size:200"`
	ImageURL  string    `gorm:"not null;size:500"`
	Priority  int       `gorm:"not null;default:0;index"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BannerModel) TableName() string {
	return "banners"
}

// GormBannerRepository is the GORM-based implementation of banner.Repository.
type GormBannerRepository struct {
	db *gorm.DB
}

// NewGormBannerRepository creates a new GormBannerRepository.
func NewGormBannerRepository(db *gorm.DB) *GormBannerRepository {
	return &GormBannerRepository{db: db}
}

// ListAll returns all banners ordered by priority.
func (r *GormBannerRepository) ListAll(ctx context.Context) ([]bannerDomain.Banner, error) {
	var models []BannerModel
	if err := r.db.WithContext(ctx).Order("priority ASC, created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list banners: %w", err)
	}

	banners := make([]bannerDomain.Banner, len(models))
	for i, m := range models {
		banners[i] = toDomainBanner(&m)
	}
	return banners, nil
}

// FindByID retrieves one banner.
func (r *GormBannerRepository) FindByID(ctx context.Context, id uuid.UUID) (bannerDomain.Banner, error) {
	var model BannerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bannerDomain.Banner{}, domain.NewNotFoundError("Banner", id.String())
		}
		return bannerDomain.Banner{}, fmt.Errorf("failed to find banner: %w", err)
	}
	return toDomainBanner(&model), nil
}

// Save persists a new banner.
func (r *GormBannerRepository) Save(ctx context.Context, b *bannerDomain.Banner) error {
	model := toBannerModel(b)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save banner: %w", err)
	}
	return nil
}

// Update replaces an existing banner.
func (r *GormBannerRepository) Update(ctx context.Context, b *bannerDomain.Banner) error {
	result := r.db.WithContext(ctx).
		Model(&BannerModel{}).
		Where("id = ?", b.ID).
		Updates(map[string]interface{}{
			"title":      b.Title,
			"image_url":  b.ImageURL,
			"priority":   b.Priority,
			"active":     b.Active,
			"updated_at": time.Now().UTC(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update banner: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Banner", b.ID.String())
	}
	return nil
}

// Delete removes a banner.
func (r *GormBannerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&BannerModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete banner: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Banner", id.String())
	}
	return nil
}

func toBannerModel(b *bannerDomain.Banner) BannerModel {
	return BannerModel{
		ID:        b.ID,
		Title:     b.Title,
		ImageURL:  b.ImageURL,
		Priority:  b.Priority,
		Active:    b.Active,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func toDomainBanner(m *BannerModel) bannerDomain.Banner {
	return bannerDomain.Banner{
		ID:        m.ID,
		Title:     m.Title,
		ImageURL:  m.ImageURL,
		Priority:  m.Priority,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
