package rates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/loadhive/service-shipment/internal/domain/shipment"
)

type fakeRateRepo struct {
	rows  []shipment.RegionRate
	calls int
}

func (f *fakeRateRepo) ListAll(ctx context.Context) ([]shipment.RegionRate, error) {
	f.calls++
	return f.rows, nil
}

func (f *fakeRateRepo) FindByID(ctx context.Context, id string) (shipment.RegionRate, error) {
	return shipment.RegionRate{}, nil
}
func (f *fakeRateRepo) Save(ctx context.Context, rate shipment.RegionRate) error   { return nil }
func (f *fakeRateRepo) Update(ctx context.Context, rate shipment.RegionRate) error { return nil }
func (f *fakeRateRepo) Delete(ctx context.Context, id string) error                { return nil }

type fakeExtraRepo struct {
	opts  []shipment.ExtraServiceOption
	calls int
}

func (f *fakeExtraRepo) ListAll(ctx context.Context) ([]shipment.ExtraServiceOption, error) {
	f.calls++
	return f.opts, nil
}

func (f *fakeExtraRepo) FindByID(ctx context.Context, id string) (shipment.ExtraServiceOption, error) {
	return shipment.ExtraServiceOption{}, nil
}
func (f *fakeExtraRepo) Save(ctx context.Context, opt shipment.ExtraServiceOption) error { return nil }
func (f *fakeExtraRepo) Update(ctx context.Context, opt shipment.ExtraServiceOption) error {
	return nil
}
func (f *fakeExtraRepo) Delete(ctx context.Context, id string) error { return nil }

func TestStore_WithoutCacheReadsThrough(t *testing.T) {
	rateRepo := &fakeRateRepo{rows: []shipment.RegionRate{{ID: "r1", CityName: "Ankara", RegionName: "Çankaya"}}}
	extraRepo := &fakeExtraRepo{opts: []shipment.ExtraServiceOption{{ID: "e1", ServiceName: "Insurance", Price: 30}}}

	store := NewStore(rateRepo, extraRepo, nil, 0, zap.NewNop())

	rows, err := store.RegionRates(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "r1", rows[0].ID)

	opts, err := store.ExtraServices(context.Background())
	require.NoError(t, err)
	require.Len(t, opts, 1)
	assert.Equal(t, 30.0, opts[0].Price)

	// Without a cache every read goes to the repository.
	_, err = store.RegionRates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, rateRepo.calls)

	// Invalidate without a cache is a no-op, not a panic.
	store.Invalidate(context.Background())
}
