package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"Preview-Player-Go/pkg/config"
	"Preview-Player-Go/pkg/handlers"
)

// newServer creates an HTTP server with all routes registered and no
// Spotify credentials.
func newServer(t *testing.T) (*httptest.Server, *handlers.Application) {
	t.Helper()
	cfg := config.Default()
	cfg.Cache.DatabasePath = ":memory:"
	app, closers, err := newApplication(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		for _, c := range closers {
			c.Close()
		}
	})
	srv := httptest.NewServer(routes(app, cfg.Server.CORSOrigin))
	t.Cleanup(srv.Close)
	return srv, app
}

// TestHealthEndpoint checks the health route reports missing credentials.
func TestHealthEndpoint(t *testing.T) {
	srv, app := newServer(t)
	if app.Finder != nil {
		t.Fatal("finder configured without credentials")
	}
	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	var body struct {
		Status      string `json:"status"`
		Environment struct {
			SpotifyConfigured bool `json:"spotifyConfigured"`
		} `json:"environment"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "OK" || body.Environment.SpotifyConfigured {
		t.Fatalf("unexpected body %+v", body)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" || resp.Header.Get("X-Request-ID") == "" {
		t.Errorf("middleware headers missing: %v", resp.Header)
	}
}

// TestGetPreviewUnconfigured ensures lookups fail cleanly without credentials.
func TestGetPreviewUnconfigured(t *testing.T) {
	srv, _ := newServer(t)
	resp, err := http.Post(srv.URL+"/api/get-preview", "application/json", strings.NewReader(`{"songName":"Song"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), "Spotify credentials not configured") {
		t.Errorf("unexpected body %s", data)
	}
}

// TestMetricsEndpoint checks the Prometheus registry is exposed.
func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newServer(t)
	http.Get(srv.URL + "/api/health")
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), "relay_http_request_duration_seconds") {
		t.Errorf("metrics missing histogram")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "relay.toml")
	if err := os.WriteFile(path, []byte("[cache]\nbackend = \"bogus\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Fatal("expected validation error")
	}
	if err := os.WriteFile(path, []byte("[server]\naddr = \":7000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":7000" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
}
