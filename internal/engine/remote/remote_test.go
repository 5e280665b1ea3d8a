package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pointsfarmer/internal/activity"
	"github.com/dmitrijs2005/pointsfarmer/internal/session"
)

// sidecarStub fakes the automation sidecar's HTTP surface.
func sidecarStub(t *testing.T) (*httptest.Server, *map[string]int) {
	t.Helper()
	calls := map[string]int{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", func(w http.ResponseWriter, r *http.Request) {
		calls["open"]++
		var req openRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Profile)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "sess-1"})
	})
	mux.HandleFunc("POST /sessions/sess-1/login", func(w http.ResponseWriter, r *http.Request) {
		calls["login"]++
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "balance": 120})
	})
	mux.HandleFunc("POST /sessions/sess-1/activities/daily_set", func(w http.ResponseWriter, r *http.Request) {
		calls["daily_set"]++
		_ = json.NewEncoder(w).Encode(map[string]any{"balance": 180})
	})
	mux.HandleFunc("POST /sessions/sess-1/searches", func(w http.ResponseWriter, r *http.Request) {
		calls["searches"]++
		var req struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(map[string]any{"balance": 180 + 3*req.Count})
	})
	mux.HandleFunc("GET /sessions/sess-1/searches", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int{"desktop": 10, "mobile": 5})
	})
	mux.HandleFunc("GET /sessions/sess-1/goal", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"points": 1000, "title": "Gift card"})
	})
	mux.HandleFunc("DELETE /sessions/sess-1", func(w http.ResponseWriter, r *http.Request) {
		calls["close"]++
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /cleanup", func(w http.ResponseWriter, r *http.Request) {
		calls["cleanup"]++
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestEngine_SessionLifecycle(t *testing.T) {
	srv, calls := sidecarStub(t)
	e := New(srv.URL)
	ctx := context.Background()

	s, err := e.Open(ctx, session.ProfileDesktop, "a@b.c", "pw", session.Options{Headless: true})
	require.NoError(t, err)
	assert.Equal(t, session.ProfileDesktop, s.Profile())

	out, err := e.Runners().Login.Login(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, activity.LoginSuccess, out.Status)
	assert.EqualValues(t, 120, out.Balance)

	res := e.Runners().DailySet.Run(ctx, s)
	require.True(t, res.Succeeded())
	assert.EqualValues(t, 180, res.Balance)

	desktop, mobile, err := s.RemainingSearches(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, desktop)
	assert.Equal(t, 5, mobile)

	balance, err := e.Runners().Searches.Search(ctx, s, desktop)
	require.NoError(t, err)
	assert.EqualValues(t, 210, balance)

	points, title, err := s.Goal(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, points)
	assert.Equal(t, "Gift card", title)

	require.NoError(t, s.Close())
	// second close is a no-op
	require.NoError(t, s.Close())
	assert.Equal(t, 1, (*calls)["close"])

	require.NoError(t, e.Cleanup(ctx))
	assert.Equal(t, 1, (*calls)["cleanup"])
}

func TestEngine_OpenRetries(t *testing.T) {
	origBase := openRetryBase
	openRetryBase = time.Millisecond
	t.Cleanup(func() { openRetryBase = origBase })

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 2 {
			http.Error(w, "browser failed to start", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "sess-1"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Open(context.Background(), session.ProfileMobile, "a@b.c", "pw", session.Options{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, attempts.Load())
}

func TestEngine_UnknownLoginStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "sess-1"})
	})
	mux.HandleFunc("POST /sessions/sess-1/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "????"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	e := New(srv.URL)
	ctx := context.Background()
	s, err := e.Open(ctx, session.ProfileDesktop, "a@b.c", "pw", session.Options{})
	require.NoError(t, err)

	_, err = e.Runners().Login.Login(ctx, s)
	assert.ErrorContains(t, err, "unknown login status")
}
