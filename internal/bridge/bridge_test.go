package bridge_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectshome/hubd/internal/bridge"
)

func taskRules() []bridge.Rule {
	return []bridge.Rule{
		{Prefix: "/bridge/tasks/", Replacement: "/tasks/", When: bridge.SingularResource},
		{Prefix: "/bridge/tasks", Replacement: "/api/tasks"},
	}
}

func newTarget(t *testing.T, baseURL string, opts ...func(*bridge.TargetConfig)) *bridge.Target {
	t.Helper()
	cfg := bridge.TargetConfig{
		Name:    "test",
		BaseURL: baseURL,
		Rules:   taskRules(),
		Logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return bridge.NewTarget(cfg)
}

func TestRewrite_CollectionKeepsAPIPrefix(t *testing.T) {
	target := newTarget(t, "http://127.0.0.1:1")
	assert.Equal(t, "/api/tasks", target.Rewrite("/bridge/tasks"))
}

func TestRewrite_SingularResourceDropsAPIPrefix(t *testing.T) {
	target := newTarget(t, "http://127.0.0.1:1")
	assert.Equal(t, "/tasks/123", target.Rewrite("/bridge/tasks/123"))
}

func TestRewrite_NestedActionFallsThrough(t *testing.T) {
	// /bridge/tasks/123/run is not a singular resource, so the second
	// rule applies to the whole remainder.
	target := newTarget(t, "http://127.0.0.1:1")
	assert.Equal(t, "/api/tasks/123/run", target.Rewrite("/bridge/tasks/123/run"))
}

func TestRewrite_UnmatchedPathPassesThrough(t *testing.T) {
	target := newTarget(t, "http://127.0.0.1:1")
	assert.Equal(t, "/health", target.Rewrite("/health"))
}

func TestForward_PreservesQueryString(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"tasks":[]}`))
	}))
	defer server.Close()

	target := newTarget(t, server.URL)
	raw := target.Forward(context.Background(), http.MethodGet, "/bridge/tasks", "status=queued", nil, bridge.ClassDefault)

	assert.Equal(t, "/api/tasks", gotPath)
	assert.Equal(t, "status=queued", gotQuery)
	assert.JSONEq(t, `{"tasks":[]}`, string(raw))
}

func TestForward_AttachesBearerTokenAndHeaders(t *testing.T) {
	var gotAuth, gotAccept, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	target := newTarget(t, server.URL, func(cfg *bridge.TargetConfig) {
		cfg.Token = "secret"
	})
	body := strings.NewReader(`{"task":"x"}`)
	target.Forward(context.Background(), http.MethodPost, "/bridge/tasks", "", body, bridge.ClassDispatch)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "application/json", gotContentType)
}

func TestForward_UpstreamErrorBecomesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(strings.Repeat("x", 2000)))
	}))
	defer server.Close()

	target := newTarget(t, server.URL)
	raw := target.Forward(context.Background(), http.MethodGet, "/bridge/tasks", "", nil, bridge.ClassDefault)

	var env bridge.ErrorEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, "HTTP 409", env.Error)
	assert.Len(t, env.Detail, 500)
}

func TestForward_TransportFailureBecomesEnvelope(t *testing.T) {
	// Nothing listens here.
	target := newTarget(t, "http://127.0.0.1:1")
	raw := target.Forward(context.Background(), http.MethodGet, "/health", "", nil, bridge.ClassHealth)

	var env bridge.ErrorEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.NotEmpty(t, env.Error)
	assert.Empty(t, env.Detail)
}

func TestForward_TimeoutWithinBudget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(2 * time.Second)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	target := newTarget(t, server.URL, func(cfg *bridge.TargetConfig) {
		cfg.Timeouts = bridge.Timeouts{Health: 100 * time.Millisecond, Default: 100 * time.Millisecond, Dispatch: 100 * time.Millisecond}
	})

	start := time.Now()
	raw := target.Forward(context.Background(), http.MethodGet, "/health", "", nil, bridge.ClassHealth)
	elapsed := time.Since(start)

	var env bridge.ErrorEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.NotEmpty(t, env.Error)
	assert.Less(t, elapsed, time.Second)
}

func TestForward_SingleAttempt(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	target := newTarget(t, server.URL)
	target.Forward(context.Background(), http.MethodPost, "/bridge/tasks", "", strings.NewReader(`{}`), bridge.ClassDefault)

	assert.Equal(t, int64(1), calls.Load())
}

func TestForward_InvalidUpstreamJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	target := newTarget(t, server.URL)
	raw := target.Forward(context.Background(), http.MethodGet, "/health", "", nil, bridge.ClassHealth)

	var env bridge.ErrorEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, "upstream returned invalid JSON", env.Error)
}
