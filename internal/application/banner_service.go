package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bannerDomain "github.com/loadhive/service-shipment/internal/domain/banner"
)

// BannerRequest holds the data for creating or updating a banner.
type BannerRequest struct {
	Title    string `json:"title" binding:"required"`
	ImageURL string `json:"image_url" binding:"required"`
	Priority int    `json:"priority"`
	Active   bool   `json:"active"`
}

// BannerService manages promotional banners.
type BannerService struct {
	repo   bannerDomain.Repository
	logger *zap.Logger
}

// NewBannerService creates a new BannerService.
func NewBannerService(repo bannerDomain.Repository, logger *zap.Logger) *BannerService {
	return &BannerService{repo: repo, logger: logger}
}

// ListBanners returns all banners ordered by priority.
func (s *BannerService) ListBanners(ctx context.Context) ([]bannerDomain.Banner, error) {
	return s.repo.ListAll(ctx)
}

// ListActiveBanners returns only the banners currently displayed.
func (s *BannerService) ListActiveBanners(ctx context.Context) ([]bannerDomain.Banner, error) {
	banners, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]bannerDomain.Banner, 0, len(banners))
	for _, b := range banners {
		if b.Active {
			active = append(active, b)
		}
	}
	return active, nil
}

// CreateBanner adds a new banner.
func (s *BannerService) CreateBanner(ctx context.Context, req BannerRequest) (*bannerDomain.Banner, error) {
	b, err := bannerDomain.New(req.Title, req.ImageURL, req.Priority, req.Active)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBanner replaces an existing banner.
func (s *BannerService) UpdateBanner(ctx context.Context, id uuid.UUID, req BannerRequest) (*bannerDomain.Banner, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	b.Title = req.Title
	b.ImageURL = req.ImageURL
	b.Priority = req.Priority
	b.Active = req.Active

	if err := s.repo.Update(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBanner removes a banner.
func (s *BannerService) DeleteBanner(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
