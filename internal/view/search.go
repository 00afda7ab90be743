package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/meteo/backend/internal/domain"
	"github.com/meteo/backend/internal/service"
)

// Fetcher is what a SearchView fetches through: the weather client or the
// lookup service wrapping it.
type Fetcher = service.Fetcher

// State is the search page lifecycle state
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateFailed
)

var stateNames = [...]string{
	StateIdle:    "idle",
	StateLoading: "loading",
	StateSuccess: "success",
	StateFailed:  "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Failure is the user-facing error shown on the search page
type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ViewState is a copy of everything the search page displays.
type ViewState struct {
	State    State                   `json:"state"`
	Input    string                  `json:"input"`
	Snapshot *domain.WeatherSnapshot `json:"snapshot,omitempty"`
	Summary  *Summary                `json:"summary,omitempty"`
	Error    *Failure                `json:"error,omitempty"`
}

// Observer receives search view events. *metrics.Metrics satisfies it.
type Observer interface {
	IncSuperseded()
	ObserveTransition(from, to string)
}

type Option func(*SearchView)

func WithLogger(l *slog.Logger) Option {
	return func(v *SearchView) {
		if l != nil {
			v.logger = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(v *SearchView) {
		v.observer = o
	}
}

// SearchView owns the search page state. At most one fetch is live at a
// time: starting a new one cancels the previous, and a result that arrives
// for an older generation is dropped.
type SearchView struct {
	fetcher  Fetcher
	logger   *slog.Logger
	observer Observer

	mu         sync.Mutex
	input      string
	state      State
	snapshot   *domain.WeatherSnapshot
	failure    *Failure
	generation uint64
	cancel     context.CancelFunc
	settled    chan struct{} // closed when the current generation's fetch resolves
	closed     bool

	wg sync.WaitGroup
}

// NewSearchView creates an idle search view
func NewSearchView(f Fetcher, opts ...Option) *SearchView {
	settled := make(chan struct{})
	close(settled)
	v := &SearchView{
		fetcher: f,
		logger:  slog.Default(),
		settled: settled,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With("component", "search-view")
	return v
}

// Search looks up the weather for a city name. A blank name leaves the state
// as it is and only sets the validation message.
func (v *SearchView) Search(input string) ViewState {
	q, err := domain.NewCityQuery(input)

	v.mu.Lock()
	defer v.mu.Unlock()

	v.input = input
	if err != nil {
		v.failure = failureOf(err)
		return v.stateLocked()
	}
	v.startLocked(q)
	return v.stateLocked()
}

// SearchCoords looks up the weather at a position. On success the input is
// replaced with the resolved location name.
func (v *SearchView) SearchCoords(lat, lon float64) ViewState {
	q, err := domain.NewCoordsQuery(lat, lon)

	v.mu.Lock()
	defer v.mu.Unlock()

	if err != nil {
		v.failure = failureOf(err)
		return v.stateLocked()
	}
	v.startLocked(q)
	return v.stateLocked()
}

// LocationFailed reports that the device position could not be obtained.
func (v *SearchView) LocationFailed(f domain.GeolocationFailure) ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.abortLocked()
	v.snapshot = nil
	v.failure = &Failure{Kind: "geolocation_" + f.String(), Message: f.Message()}
	v.transitionLocked(StateFailed)
	return v.stateLocked()
}

// Clear abandons any fetch and resets the page.
func (v *SearchView) Clear() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.abortLocked()
	v.input = ""
	v.snapshot = nil
	v.failure = nil
	v.transitionLocked(StateIdle)
	return v.stateLocked()
}

// ViewDetails returns a navigation request carrying a copy of the current
// snapshot, or nil when there is nothing to show.
func (v *SearchView) ViewDetails() *NavigationRequest {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != StateSuccess || v.snapshot == nil {
		return nil
	}
	return &NavigationRequest{Target: RouteDetails, Snapshot: *v.snapshot}
}

// State returns a copy of the current view state
func (v *SearchView) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stateLocked()
}

// Wait blocks until the view leaves Loading or ctx is done.
func (v *SearchView) Wait(ctx context.Context) (ViewState, error) {
	for {
		v.mu.Lock()
		if v.state != StateLoading {
			st := v.stateLocked()
			v.mu.Unlock()
			return st, nil
		}
		settled := v.settled
		v.mu.Unlock()

		select {
		case <-settled:
		case <-ctx.Done():
			return v.State(), ctx.Err()
		}
	}
}

// Close cancels any in-flight fetch and waits for it to return. Searches on a
// closed view are ignored.
func (v *SearchView) Close() {
	v.mu.Lock()
	v.closed = true
	v.abortLocked()
	if v.state == StateLoading {
		v.transitionLocked(StateIdle)
	}
	v.mu.Unlock()

	v.wg.Wait()
}

// Closed reports whether Close has been called
func (v *SearchView) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

func (v *SearchView) startLocked(q domain.Query) {
	if v.closed {
		return
	}
	v.abortLocked()
	gen := v.generation

	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	v.snapshot = nil
	v.failure = nil
	settled := make(chan struct{})
	v.settled = settled
	v.transitionLocked(StateLoading)

	results := service.FetchAsync(ctx, v.fetcher, q)
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		defer close(settled)
		v.resolve(gen, q, <-results)
	}()
}

// abortLocked cancels the live fetch, if any, and moves to a new generation
// so its result is dropped.
func (v *SearchView) abortLocked() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.generation++
}

func (v *SearchView) resolve(gen uint64, q domain.Query, res service.Result) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.generation || v.state != StateLoading {
		if v.observer != nil {
			v.observer.IncSuperseded()
		}
		v.logger.Debug("dropping superseded result", "query", q.String(), "generation", gen)
		return
	}
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}

	if !res.OK() {
		v.failure = failureOf(res.Err)
		v.transitionLocked(StateFailed)
		return
	}
	snap := res.Snapshot
	v.snapshot = &snap
	v.failure = nil
	if q.IsCoords() {
		v.input = snap.Name
	}
	v.transitionLocked(StateSuccess)
}

func (v *SearchView) transitionLocked(to State) {
	from := v.state
	v.state = to
	if v.observer != nil {
		v.observer.ObserveTransition(from.String(), to.String())
	}
}

func (v *SearchView) stateLocked() ViewState {
	st := ViewState{State: v.state, Input: v.input}
	if v.snapshot != nil {
		snap := *v.snapshot
		sum := Summarize(snap)
		st.Snapshot = &snap
		st.Summary = &sum
	}
	if v.failure != nil {
		f := *v.failure
		st.Error = &f
	}
	return st
}

func failureOf(err error) *Failure {
	return &Failure{
		Kind:    domain.KindOf(err).String(),
		Message: domain.MessageOf(err),
	}
}
