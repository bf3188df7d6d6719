package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/trackline/trackline/internal/config"
	"github.com/trackline/trackline/internal/db"
)

// newTestServer spins up a server over a fresh in-memory database with rate
// limiting disabled.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Environment = config.EnvDevelopment
	cfg.RateLimit.RPS = 0
	return newTestServerWithConfig(t, cfg)
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()

	store, err := db.OpenInMemory()
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := store.Migrate(t.Context()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(store, cfg, logger)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// doJSON performs a request against the test server and returns the status
// code and raw response body.
func doJSON(t *testing.T, ts *httptest.Server, method, path, body string) (int, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp.StatusCode, string(raw)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	status, body := doJSON(t, ts, http.MethodGet, "/api/health", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if !gjson.Get(body, "success").Bool() {
		t.Errorf("expected success=true, got %s", body)
	}
	if got := gjson.Get(body, "data.status").String(); got != "ok" {
		t.Errorf("expected status ok, got %q", got)
	}
	if got := gjson.Get(body, "data.environment").String(); got != config.EnvDevelopment {
		t.Errorf("expected development environment, got %q", got)
	}
	if !gjson.Get(body, "data.uptime").Exists() {
		t.Errorf("expected uptime in health payload: %s", body)
	}
}

func TestUnknownAPIRoute(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	status, body := doJSON(t, ts, http.MethodGet, "/api/nope", "")
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if gjson.Get(body, "success").Bool() {
		t.Errorf("expected success=false, got %s", body)
	}
	if got := gjson.Get(body, "message").String(); got != "route not found" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestInvalidJSONBody(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	status, body := doJSON(t, ts, http.MethodPost, "/api/tasks", "{not json")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", status, body)
	}
	if got := gjson.Get(body, "errors.0.field").String(); got != "body" {
		t.Errorf("expected body violation, got %s", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/tasks", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
}

func TestRateLimitExceeded(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Environment = config.EnvDevelopment
	cfg.RateLimit = config.RateLimitConfig{RPS: 1, Burst: 2}
	ts := newTestServerWithConfig(t, cfg)

	// The burst allows two requests, the third must be throttled.
	limited := false
	for i := 0; i < 5; i++ {
		status, body := doJSON(t, ts, http.MethodGet, "/api/health", "")
		if status == http.StatusTooManyRequests {
			limited = true
			if got := gjson.Get(body, "message").String(); got != "rate limit exceeded" {
				t.Errorf("unexpected message %q", got)
			}
			break
		}
	}
	if !limited {
		t.Error("expected a 429 after exhausting the burst")
	}
}
