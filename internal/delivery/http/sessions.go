package http

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/meteo/backend/internal/metrics"
	"github.com/meteo/backend/internal/view"
)

// SessionCookie carries the session id
const SessionCookie = "meteo_session"

// session is one browser's search page plus its pending navigation
type session struct {
	view *view.SearchView

	mu      sync.Mutex
	pending *view.NavigationRequest
}

func (s *session) setPending(nav *view.NavigationRequest) {
	s.mu.Lock()
	s.pending = nav
	s.mu.Unlock()
}

// takePending returns the pending navigation once
func (s *session) takePending() *view.NavigationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	nav := s.pending
	s.pending = nil
	return nav
}

// SessionStore keeps search views alive for ttl after their last use.
// Expired views are closed.
type SessionStore struct {
	cache   *cache.Cache
	ttl     time.Duration
	newView func() *view.SearchView
	metrics *metrics.Metrics
}

// NewSessionStore creates a store building views with newView. m may be nil.
func NewSessionStore(ttl time.Duration, newView func() *view.SearchView, m *metrics.Metrics) *SessionStore {
	cleanup := time.Minute
	if ttl < cleanup {
		cleanup = ttl
	}
	c := cache.New(ttl, cleanup)
	c.OnEvicted(func(_ string, v interface{}) {
		if s, ok := v.(*session); ok {
			s.view.Close()
			m.SessionClosed()
		}
	})
	return &SessionStore{
		cache:   c,
		ttl:     ttl,
		newView: newView,
		metrics: m,
	}
}

// TTL returns the idle lifetime of a session
func (st *SessionStore) TTL() time.Duration {
	return st.ttl
}

// Get returns the session for id and extends its lifetime
func (st *SessionStore) Get(id string) (*session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	v, ok := st.cache.Get(id)
	if !ok {
		return nil, false
	}
	s := v.(*session)
	if s.view.Closed() {
		return nil, false
	}
	// Replace fails once the item has expired, so an evicted session is
	// never put back.
	if err := st.cache.Replace(id, s, cache.DefaultExpiration); err != nil {
		return nil, false
	}
	return s, true
}

// Create starts a new session with an idle search view
func (st *SessionStore) Create() (string, *session) {
	id := uuid.NewString()
	s := &session{view: st.newView()}
	st.cache.SetDefault(id, s)
	st.metrics.SessionOpened()
	return id, s
}

// Delete ends a session and closes its view
func (st *SessionStore) Delete(id string) {
	st.cache.Delete(id)
}

// Len returns the number of live sessions, expired ones included until the
// next cleanup
func (st *SessionStore) Len() int {
	return st.cache.ItemCount()
}

// Close ends every session
func (st *SessionStore) Close() {
	for id := range st.cache.Items() {
		st.cache.Delete(id)
	}
}
