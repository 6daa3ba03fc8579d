// Command web starts the preview relay. The relay answers
// POST /api/get-preview with a playable preview URL for a song by searching
// the Spotify catalog and scraping the public embed page of each candidate.
// Configuration comes from a TOML file with environment overrides; see
// pkg/config. Without Spotify credentials the server still starts and the
// lookup endpoints report that credentials are missing.

package main

import (
	"context"
	"flag"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"Preview-Player-Go/pkg/cache"
	"Preview-Player-Go/pkg/config"
	"Preview-Player-Go/pkg/db"
	"Preview-Player-Go/pkg/handlers"
	"Preview-Player-Go/pkg/logging"
	"Preview-Player-Go/pkg/preview"
	"Preview-Player-Go/pkg/spotify"
)

var log = logrus.WithField("component", "relay")

// main configures application dependencies and starts the HTTP server.
func main() {
	// An explicit --config path wins; otherwise the loader looks at
	// $PREVIEW_PLAYER_CONFIG and ./preview-player.toml before falling back
	// to defaults plus environment variables.
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	// Configure logrus before anything else logs so every component uses
	// the requested level and format.
	logs, err := logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		logrus.Fatalf("logging: %v", err)
	}
	defer logs.Close()

	// Build the handler dependencies. The closers release the database and
	// any Redis connection when the server stops.
	app, closers, err := newApplication(context.Background(), cfg)
	if err != nil {
		log.WithError(err).Fatal("init")
	}
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	log.WithFields(logrus.Fields{
		"addr":    cfg.Server.Addr,
		"cache":   cfg.Cache.Backend,
		"spotify": app.Finder != nil,
	}).Info("preview relay listening")
	// ListenAndServe blocks and only returns an error if the server fails
	// to start or encounters a fatal error.
	if err := http.ListenAndServe(cfg.Server.Addr, routes(app, cfg.Server.CORSOrigin)); err != nil {
		log.WithError(err).Fatal("http server error")
	}
}

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// newApplication wires the finder, cache and lookup log described by cfg.
// The returned closers release the storage backends.
func newApplication(ctx context.Context, cfg *config.Config) (*handlers.Application, []io.Closer, error) {
	var closers []io.Closer
	app := &handlers.Application{Metrics: handlers.NewMetrics()}

	// The SQLite database always holds the lookup log; it also serves as the
	// preview cache unless another backend is selected.
	database, err := db.New(cfg.Cache.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, database)
	app.Lookups = database

	// Pick the preview cache. "none" leaves store nil, which disables
	// caching in the finder.
	var store cache.Cache
	switch cfg.Cache.Backend {
	case "sqlite":
		store = database
	case "redis":
		r, err := cache.NewRedis(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			// A missing Redis degrades to the in-process cache.
			log.WithError(err).Warn("redis unavailable, using memory cache")
			store = cache.NewMemory()
		} else {
			closers = append(closers, r)
			store = r
		}
	case "memory":
		store = cache.NewMemory()
	}

	// Without client credentials the relay still serves health and metrics;
	// lookup endpoints report the missing configuration instead.
	if !cfg.Spotify.HasCredentials() {
		log.Warn("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are not set; lookups are disabled")
		return app, closers, nil
	}
	sc, err := spotify.NewSpotifyClient(ctx, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	if err != nil {
		for _, c := range closers {
			c.Close()
		}
		return nil, nil, err
	}
	// The finder searches the catalog with the client-credentials client and
	// scrapes embed pages with the default HTTP client.
	app.Finder = &preview.Finder{Search: sc, HTTP: http.DefaultClient, Cache: store, TTL: cfg.Cache.TTL()}
	return app, closers, nil
}

// routes registers the relay endpoints and wraps them with the shared
// middleware chain.
func routes(app *handlers.Application, corsOrigin string) http.Handler {
	// Initialize a new http.ServeMux which routes each API path to its
	// handler on the Application.
	mux := http.NewServeMux()
	mux.HandleFunc("/api/get-preview", app.GetPreview)
	mux.HandleFunc("/api/health", app.Health)
	mux.HandleFunc("/api/test-spotify", app.TestSpotify)
	mux.HandleFunc("/api/insights/misses", app.MissesJSON)
	if app.Metrics != nil {
		mux.Handle("/metrics", app.Metrics.Handler())
	}
	// Middleware runs outermost first: request ID and metrics, then CORS
	// (which answers preflights itself), then the security headers.
	var h http.Handler = handlers.SecurityHeaders(mux)
	h = handlers.CORS(corsOrigin, h)
	if app.Metrics != nil {
		h = app.Metrics.Instrument(h)
	}
	return h
}
