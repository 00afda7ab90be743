package http

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meteo/backend/internal/domain"
	"github.com/meteo/backend/internal/view"
)

func TestSessionStore_GetCreate(t *testing.T) {
	st := NewSessionStore(time.Minute, func() *view.SearchView {
		return view.NewSearchView(succeed())
	}, nil)
	defer st.Close()

	_, ok := st.Get("not-a-uuid")
	assert.False(t, ok)
	_, ok = st.Get("8b5d8f3c-3f5e-4a58-9a5e-0c0f5c1d2e3f")
	assert.False(t, ok)

	id, s := st.Create()
	got, ok := st.Get(id)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, st.Len())
}

func TestSessionStore_DeleteClosesView(t *testing.T) {
	var canceled atomic.Bool
	st := NewSessionStore(time.Minute, func() *view.SearchView {
		return view.NewSearchView(fetchFunc(func(ctx context.Context, q domain.Query) (domain.WeatherSnapshot, error) {
			<-ctx.Done()
			canceled.Store(true)
			return domain.WeatherSnapshot{}, domain.NewError(domain.KindCanceled, ctx.Err())
		}))
	}, nil)

	id, s := st.Create()
	require.Equal(t, view.StateLoading, s.view.Search("Rome").State)

	st.Delete(id)

	assert.True(t, canceled.Load(), "in-flight fetch is cancelled when the session ends")
	assert.NotEqual(t, view.StateLoading, s.view.State().State)
	assert.Zero(t, st.Len())
}

func TestSessionStore_Expiry(t *testing.T) {
	var closed atomic.Int32
	st := NewSessionStore(30*time.Millisecond, func() *view.SearchView {
		return view.NewSearchView(succeed())
	}, nil)
	st.cache.OnEvicted(func(string, interface{}) { closed.Add(1) })

	st.Create()

	assert.Eventually(t, func() bool { return closed.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, st.Len())
}

func TestSession_PendingIsOneShot(t *testing.T) {
	s := &session{}
	assert.Nil(t, s.takePending())

	nav := &view.NavigationRequest{Target: view.RouteDetails, Snapshot: roma()}
	s.setPending(nav)
	assert.Same(t, nav, s.takePending())
	assert.Nil(t, s.takePending())
}

func TestSessionStore_GetSkipsClosedView(t *testing.T) {
	st := NewSessionStore(time.Minute, func() *view.SearchView {
		return view.NewSearchView(succeed())
	}, nil)
	defer st.Close()

	id, s := st.Create()
	s.view.Close()

	_, ok := st.Get(id)
	assert.False(t, ok, "a closed view is never handed out again")
}

func TestSessionStore_GetDoesNotReviveExpired(t *testing.T) {
	st := NewSessionStore(time.Hour, func() *view.SearchView {
		return view.NewSearchView(succeed())
	}, nil)
	defer st.Close()

	id, s := st.Create()
	st.cache.Set(id, s, time.Nanosecond)
	time.Sleep(time.Millisecond)

	_, ok := st.Get(id)
	assert.False(t, ok)
	st.cache.DeleteExpired()
	assert.True(t, s.view.Closed(), "expired session is closed on eviction")
	_, ok = st.Get(id)
	assert.False(t, ok, "evicted session stays gone")
	assert.Zero(t, st.Len())
}
