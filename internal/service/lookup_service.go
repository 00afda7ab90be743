package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/meteo/backend/internal/domain"
	"github.com/meteo/backend/internal/metrics"
)

// LookupService fronts the weather client and keeps a log of lookups
type LookupService struct {
	client  Fetcher
	repo    LookupRepository
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time

	wgBg sync.WaitGroup // tracks background goroutines for graceful shutdown
}

// NewLookupService creates a new lookup service. m may be nil.
func NewLookupService(client Fetcher, repo LookupRepository, m *metrics.Metrics, logger *slog.Logger) *LookupService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LookupService{
		client:  client,
		repo:    repo,
		metrics: m,
		logger:  logger.With("component", "lookup-service"),
		now:     time.Now,
	}
}

// WaitBackground blocks until all background save goroutines complete.
// Call during graceful shutdown to avoid dropped writes.
func (s *LookupService) WaitBackground() {
	s.wgBg.Wait()
}

// Current fetches weather for q and records the outcome. Cancelled lookups
// are not recorded: they were superseded, not answered.
func (s *LookupService) Current(ctx context.Context, q domain.Query) (domain.WeatherSnapshot, error) {
	start := s.now()
	snap, err := s.client.Current(ctx, q)
	elapsed := s.now().Sub(start)

	if domain.KindOf(err) == domain.KindCanceled {
		return snap, err
	}

	rec := domain.LookupRecord{
		Query:     q.String(),
		ByCoords:  q.IsCoords(),
		Outcome:   domain.OutcomeSuccess,
		Latency:   elapsed,
		Timestamp: start,
	}
	if err != nil {
		rec.Outcome = domain.KindOf(err).String()
		var de *domain.Error
		if errors.As(err, &de) {
			rec.Status = de.StatusCode
		}
	} else {
		rec.Location = snap.Name
	}

	s.metrics.ObserveLookup(queryType(q), rec.Outcome, elapsed)

	// Persist asynchronously (tracked for graceful shutdown)
	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if saveErr := s.repo.SaveLookup(bgCtx, rec); saveErr != nil {
			s.logger.Warn("failed to save lookup", "query", rec.Query, "error", saveErr)
		}
	}()

	return snap, err
}

// RecentLookups returns lookups from the last hours hours
func (s *LookupService) RecentLookups(ctx context.Context, hours int) ([]domain.LookupRecord, error) {
	to := s.now()
	from := to.Add(-time.Duration(hours) * time.Hour)
	return s.repo.RecentLookups(ctx, from, to)
}

// Health checks the lookup store
func (s *LookupService) Health(ctx context.Context) error {
	return s.repo.Health(ctx)
}

func queryType(q domain.Query) string {
	if q.IsCoords() {
		return "coords"
	}
	return "city"
}
