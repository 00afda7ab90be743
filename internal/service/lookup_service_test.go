package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meteo/backend/internal/domain"
	"github.com/meteo/backend/internal/metrics"
	"github.com/meteo/backend/internal/repository/postgres"
)

type stubFetcher struct {
	snap domain.WeatherSnapshot
	err  error
}

func (f stubFetcher) Current(ctx context.Context, q domain.Query) (domain.WeatherSnapshot, error) {
	return f.snap, f.err
}

type failingRepo struct {
	postgres.MockRepository
}

func (r *failingRepo) SaveLookup(ctx context.Context, rec domain.LookupRecord) error {
	return errors.New("disk full")
}

func newTestMetrics(t *testing.T) *metrics.Metrics {
	t.Helper()
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)
	return m
}

func TestLookupService_RecordsSuccess(t *testing.T) {
	repo := postgres.NewMockRepository()
	m := newTestMetrics(t)
	svc := NewLookupService(stubFetcher{snap: domain.WeatherSnapshot{Name: "Roma"}}, repo, m, discardLogger())

	q, _ := domain.NewCityQuery("Rome")
	snap, err := svc.Current(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "Roma", snap.Name)

	svc.WaitBackground()

	recs, err := svc.RecentLookups(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Rome", recs[0].Query)
	assert.Equal(t, "Roma", recs[0].Location)
	assert.Equal(t, domain.OutcomeSuccess, recs[0].Outcome)
	assert.False(t, recs[0].ByCoords)

	n, err := testutil.GatherAndCount(m.Registry(), "weather_lookups_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLookupService_RecordsFailureKind(t *testing.T) {
	repo := postgres.NewMockRepository()
	svc := NewLookupService(stubFetcher{err: domain.NewStatusError(404)}, repo, nil, discardLogger())

	q, _ := domain.NewCoordsQuery(10, 20)
	_, err := svc.Current(context.Background(), q)
	require.ErrorIs(t, err, domain.ErrNotFound)

	svc.WaitBackground()

	recs, err := svc.RecentLookups(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "not_found", recs[0].Outcome)
	assert.Equal(t, 404, recs[0].Status)
	assert.True(t, recs[0].ByCoords)
	assert.Empty(t, recs[0].Location)
}

func TestLookupService_SkipsCanceled(t *testing.T) {
	repo := postgres.NewMockRepository()
	svc := NewLookupService(stubFetcher{err: domain.NewError(domain.KindCanceled, context.Canceled)}, repo, nil, discardLogger())

	q, _ := domain.NewCityQuery("Rome")
	_, err := svc.Current(context.Background(), q)
	require.ErrorIs(t, err, domain.ErrCanceled)

	svc.WaitBackground()

	recs, err := svc.RecentLookups(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestLookupService_SaveFailureDoesNotFailLookup(t *testing.T) {
	svc := NewLookupService(stubFetcher{snap: domain.WeatherSnapshot{Name: "Roma"}}, &failingRepo{}, nil, discardLogger())

	q, _ := domain.NewCityQuery("Rome")
	snap, err := svc.Current(context.Background(), q)
	svc.WaitBackground()

	require.NoError(t, err)
	assert.Equal(t, "Roma", snap.Name)
}

func TestLookupService_RecentLookupsWindow(t *testing.T) {
	repo := postgres.NewMockRepository()
	now := time.Now()
	require.NoError(t, repo.SaveLookup(context.Background(), domain.LookupRecord{Query: "old", Timestamp: now.Add(-3 * time.Hour)}))
	require.NoError(t, repo.SaveLookup(context.Background(), domain.LookupRecord{Query: "new", Timestamp: now.Add(-time.Minute)}))

	svc := NewLookupService(stubFetcher{}, repo, nil, discardLogger())

	recs, err := svc.RecentLookups(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "new", recs[0].Query)

	require.NoError(t, svc.Health(context.Background()))
}
