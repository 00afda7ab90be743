package postgres

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/meteo/backend/internal/domain"
)

// mockCapacity bounds the in-memory log
const mockCapacity = 1000

// MockRepository implements domain.LookupRepository in memory for tests and
// demo mode (no DATABASE_URL).
type MockRepository struct {
	mu      sync.Mutex
	lookups []domain.LookupRecord
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

// SaveLookup appends rec, dropping the oldest record once full
func (r *MockRepository) SaveLookup(ctx context.Context, rec domain.LookupRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lookups = append(r.lookups, rec)
	if len(r.lookups) > mockCapacity {
		r.lookups = r.lookups[len(r.lookups)-mockCapacity:]
	}
	return nil
}

// RecentLookups returns stored lookups between from and to, newest first
func (r *MockRepository) RecentLookups(ctx context.Context, from, to time.Time) ([]domain.LookupRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var results []domain.LookupRecord
	for _, rec := range r.lookups {
		if rec.Timestamp.Before(from) || rec.Timestamp.After(to) {
			continue
		}
		results = append(results, rec)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp.After(results[j].Timestamp)
	})
	if len(results) > 100 {
		results = results[:100]
	}
	return results, nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}
