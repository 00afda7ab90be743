package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meteo/backend/internal/domain"
)

func TestMockRepository_RecentLookups(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMockRepository()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.SaveLookup(ctx, domain.LookupRecord{
			Query:     fmt.Sprintf("q%d", i),
			Outcome:   domain.OutcomeSuccess,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	recs, err := repo.RecentLookups(ctx, base.Add(time.Hour), base.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "q3", recs[0].Query, "newest first")
	assert.Equal(t, "q1", recs[2].Query)

	assert.NoError(t, repo.Health(ctx))
}

func TestMockRepository_Capacity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMockRepository()
	now := time.Now()

	for i := 0; i < mockCapacity+10; i++ {
		require.NoError(t, repo.SaveLookup(ctx, domain.LookupRecord{Query: "q", Timestamp: now}))
	}

	repo.mu.Lock()
	n := len(repo.lookups)
	repo.mu.Unlock()
	assert.Equal(t, mockCapacity, n)

	recs, err := repo.RecentLookups(ctx, now.Add(-time.Minute), now.Add(time.Minute))
	require.NoError(t, err)
	assert.Len(t, recs, 100)
}
