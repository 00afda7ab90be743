package domain

import (
	"context"
	"time"
)

// LookupRecord describes one weather lookup and how it ended. It carries no
// weather values: snapshots are never persisted.
type LookupRecord struct {
	Query     string        `json:"query"`
	ByCoords  bool          `json:"by_coords"`
	Outcome   string        `json:"outcome"` // "success" or an ErrorKind name
	Location  string        `json:"location,omitempty"`
	Status    int           `json:"status,omitempty"`
	Latency   time.Duration `json:"latency_ns"`
	Timestamp time.Time     `json:"timestamp"`
}

// OutcomeSuccess marks a lookup that produced a snapshot
const OutcomeSuccess = "success"

// LookupRepository defines the interface for lookup log persistence
// This follows the Dependency Inversion Principle - domain defines the interface
type LookupRepository interface {
	// SaveLookup persists a lookup record
	SaveLookup(ctx context.Context, rec LookupRecord) error

	// RecentLookups retrieves lookups between from and to, newest first
	RecentLookups(ctx context.Context, from, to time.Time) ([]LookupRecord, error)

	// Health checks database connectivity
	Health(ctx context.Context) error
}
