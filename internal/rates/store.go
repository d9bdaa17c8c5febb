// Package rates serves read-only snapshots of the region rate table and
// extra-service options. Snapshots are cached in Redis and superseded
// wholesale; nothing in the quoting path ever mutates them.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/loadhive/service-shipment/internal/domain/shipment"
	"github.com/loadhive/service-shipment/pkg/redis"
)

const (
	regionRatesKey   = "rates:region"
	extraServicesKey = "rates:extras"
)

// Store loads rate and extra-service snapshots through a Redis cache.
// Cache failures degrade to a direct repository read.
type Store struct {
	rateRepo  shipment.RateRepository
	extraRepo shipment.ExtraServiceRepository
	cache     *redis.Client
	ttl       time.Duration
	logger    *zap.Logger
}

// NewStore creates a snapshot store. cache may be nil, in which case all
// reads go straight to the repositories.
func NewStore(
	rateRepo shipment.RateRepository,
	extraRepo shipment.ExtraServiceRepository,
	cache *redis.Client,
	ttl time.Duration,
	logger *zap.Logger,
) *Store {
	return &Store{
		rateRepo:  rateRepo,
		extraRepo: extraRepo,
		cache:     cache,
		ttl:       ttl,
		logger:    logger,
	}
}

// RegionRates returns the current rate-table snapshot.
func (s *Store) RegionRates(ctx context.Context) ([]shipment.RegionRate, error) {
	var rows []shipment.RegionRate
	if s.cachedInto(ctx, regionRatesKey, &rows) {
		return rows, nil
	}

	rows, err := s.rateRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, regionRatesKey, rows)
	return rows, nil
}

// ExtraServices returns the current extra-service option snapshot.
func (s *Store) ExtraServices(ctx context.Context) ([]shipment.ExtraServiceOption, error) {
	var opts []shipment.ExtraServiceOption
	if s.cachedInto(ctx, extraServicesKey, &opts) {
		return opts, nil
	}

	opts, err := s.extraRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, extraServicesKey, opts)
	return opts, nil
}

// Invalidate drops both cached snapshots. Admin writes call this so the
// next quote sees the new configuration.
func (s *Store) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, regionRatesKey, extraServicesKey); err != nil {
		s.logger.Warn("failed to invalidate rate cache", zap.Error(err))
	}
}

func (s *Store) cachedInto(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.GetString(ctx, key)
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			s.logger.Warn("rate cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.logger.Warn("rate cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.SetWithExpiration(ctx, key, raw, s.ttl); err != nil {
		s.logger.Warn("rate cache write failed", zap.String("key", key), zap.Error(err))
	}
}
