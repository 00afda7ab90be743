package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meteo/backend/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS weather_lookups (
		id          BIGSERIAL PRIMARY KEY,
		query       TEXT        NOT NULL,
		by_coords   BOOLEAN     NOT NULL DEFAULT FALSE,
		outcome     TEXT        NOT NULL,
		location    TEXT        NOT NULL DEFAULT '',
		status      INTEGER     NOT NULL DEFAULT 0,
		latency_ms  BIGINT      NOT NULL,
		timestamp   TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS weather_lookups_timestamp_idx ON weather_lookups (timestamp DESC);
`

// PostgresRepository implements domain.LookupRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate creates the lookup table when it does not exist yet
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: failed to migrate schema: %w", err)
	}
	return nil
}

// SaveLookup persists one lookup record
func (r *PostgresRepository) SaveLookup(ctx context.Context, rec domain.LookupRecord) error {
	query := `
		INSERT INTO weather_lookups (
			query, by_coords, outcome, location, status, latency_ms, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		rec.Query, rec.ByCoords, rec.Outcome, rec.Location, rec.Status,
		rec.Latency.Milliseconds(), rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save lookup: %w", err)
	}

	return nil
}

// RecentLookups retrieves lookups between from and to, newest first
func (r *PostgresRepository) RecentLookups(ctx context.Context, from, to time.Time) ([]domain.LookupRecord, error) {
	query := `
		SELECT query, by_coords, outcome, location, status, latency_ms, timestamp
		FROM weather_lookups
		WHERE timestamp BETWEEN $1 AND $2
		ORDER BY timestamp DESC
		LIMIT 100
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query lookups: %w", err)
	}
	defer rows.Close()

	var results []domain.LookupRecord
	for rows.Next() {
		var (
			rec       domain.LookupRecord
			latencyMS int64
		)
		err := rows.Scan(
			&rec.Query, &rec.ByCoords, &rec.Outcome, &rec.Location, &rec.Status,
			&latencyMS, &rec.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan lookup row: %w", err)
		}
		rec.Latency = time.Duration(latencyMS) * time.Millisecond
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read lookup rows: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
