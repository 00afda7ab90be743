package service

import (
	"context"

	"github.com/meteo/backend/internal/domain"
)

// LookupRepository is re-exported from domain for convenience
type LookupRepository = domain.LookupRepository

// Fetcher resolves a query to exactly one snapshot or one classified error.
type Fetcher interface {
	Current(ctx context.Context, q domain.Query) (domain.WeatherSnapshot, error)
}

// Result is the outcome of an asynchronous fetch: Snapshot is meaningful
// only when Err is nil.
type Result struct {
	Snapshot domain.WeatherSnapshot
	Err      error
}

// OK reports whether the fetch produced a snapshot
func (r Result) OK() bool {
	return r.Err == nil
}

// FetchAsync runs one fetch in the background. The channel yields exactly one
// Result and is then closed. Cancelling ctx abandons the request.
func FetchAsync(ctx context.Context, f Fetcher, q domain.Query) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		snap, err := f.Current(ctx, q)
		ch <- Result{Snapshot: snap, Err: err}
	}()
	return ch
}
