// Package handlers contains the HTTP handlers of the preview relay. The relay
// answers POST /api/get-preview with a playable preview URL for a song, plus
// two diagnostic endpoints. A lookup that finds nothing is a normal outcome
// reported as {"success": false} with status 200; only malformed input and
// server side failures use error status codes.

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"Preview-Player-Go/pkg/db"
	"Preview-Player-Go/pkg/preview"
)

var log = logrus.WithField("component", "handlers")

// testQuery is the fixed lookup performed by /api/test-spotify.
const testQuery = "Shape of You Ed Sheeran"

// PreviewFinder performs preview lookups. preview.Finder satisfies it.
type PreviewFinder interface {
	Find(ctx context.Context, songName, artistName string, limit int) (*preview.Lookup, error)
}

// LookupLog records lookup outcomes. db.DB satisfies it.
type LookupLog interface {
	RecordLookup(ctx context.Context, query string, found bool, at time.Time) error
	LookupStatsSince(ctx context.Context, since time.Time) (db.LookupStats, error)
	TopMissesSince(ctx context.Context, since time.Time, limit int) ([]db.QueryCount, error)
}

// Application holds the dependencies used by the HTTP handlers. Finder is
// nil when upstream credentials are not configured; the handlers then answer
// with a configuration error instead of failing at start-up.
type Application struct {
	Finder  PreviewFinder
	Lookups LookupLog
	Metrics *Metrics
}

type previewRequest struct {
	SongName   string `json:"songName"`
	ArtistName string `json:"artistName"`
	Limit      int    `json:"limit"`
}

type previewTrack struct {
	Name           string   `json:"name"`
	Artist         string   `json:"artist"`
	PreviewURL     string   `json:"previewUrl"`
	SpotifyURL     string   `json:"spotifyUrl"`
	AlbumImage     string   `json:"albumImage"`
	Duration       int      `json:"duration"`
	ID             string   `json:"id"`
	AllPreviewURLs []string `json:"allPreviewUrls"`
}

type resultSummary struct {
	Name            string `json:"name"`
	Artist          string `json:"artist"`
	PreviewURLCount int    `json:"previewUrlCount"`
	HasPreview      bool   `json:"hasPreview"`
}

type foundTrack struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
}

// PreviewResponse is the body of a /api/get-preview response.
type PreviewResponse struct {
	Success     bool            `json:"success"`
	Error       string          `json:"error,omitempty"`
	Track       *previewTrack   `json:"track,omitempty"`
	AllResults  []resultSummary `json:"allResults,omitempty"`
	SearchQuery string          `json:"searchQuery,omitempty"`
	FoundTrack  *foundTrack     `json:"foundTrack,omitempty"`
	Suggestion  string          `json:"suggestion,omitempty"`
}

// GetPreview looks up a preview URL for the requested song and artist.
func (app *Application) GetPreview(w http.ResponseWriter, r *http.Request) {
	// Only POST is supported; the body carries the song and artist.
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		respondJSON(w, http.StatusMethodNotAllowed, PreviewResponse{Error: "method not allowed"})
		return
	}
	// Decode and validate the request. Missing input is a client error and
	// is reported with 400.
	var req previewRequest
	if err := decodeJSON(r, &req); err != nil {
		app.Metrics.lookup("invalid")
		respondJSON(w, http.StatusBadRequest, PreviewResponse{Error: err.Error()})
		return
	}
	entry := log.WithFields(logrus.Fields{"song": req.SongName, "artist": req.ArtistName, "limit": req.Limit})
	if req.SongName == "" {
		app.Metrics.lookup("invalid")
		respondJSON(w, http.StatusBadRequest, PreviewResponse{Error: "Song name is required"})
		return
	}
	// The finder is nil when Spotify credentials were not configured.
	if app.Finder == nil {
		app.Metrics.lookup("error")
		respondJSON(w, http.StatusInternalServerError, PreviewResponse{Error: "Spotify credentials not configured"})
		return
	}

	query := preview.Query(req.SongName, req.ArtistName)
	l, err := app.Finder.Find(r.Context(), req.SongName, req.ArtistName, preview.ClampLimit(req.Limit))
	if err != nil {
		entry.WithError(err).Error("preview lookup failed")
		app.Metrics.lookup("error")
		respondJSON(w, http.StatusInternalServerError, PreviewResponse{Error: "Internal server error: " + err.Error()})
		return
	}

	// Results are ranked best first. Finding nothing is a normal outcome
	// answered with 200 and success false.
	best, ok := l.Best()
	if !ok {
		entry.Info("no results")
		app.record(r.Context(), query, false)
		app.Metrics.lookup("not_found")
		respondJSON(w, http.StatusOK, PreviewResponse{
			Error:       "No preview URL found for this song",
			SearchQuery: query,
			Suggestion:  "Try searching with different keywords or check if the song exists on Spotify",
		})
		return
	}
	if len(best.PreviewURLs) == 0 {
		entry.WithField("match", best.Name).Info("best match has no preview urls")
		app.record(r.Context(), query, false)
		app.Metrics.lookup("no_preview")
		respondJSON(w, http.StatusOK, PreviewResponse{
			Error:       "No preview URLs available for this track",
			SearchQuery: query,
			FoundTrack:  &foundTrack{Name: best.Name, Artist: best.Artist},
		})
		return
	}

	// The best match has at least one clip. Report it along with a summary
	// of every candidate so clients can see what else was considered.
	entry.WithFields(logrus.Fields{"match": best.Name, "urls": len(best.PreviewURLs)}).Info("preview found")
	app.record(r.Context(), query, true)
	app.Metrics.lookup("found")
	respondJSON(w, http.StatusOK, PreviewResponse{
		Success: true,
		Track: &previewTrack{
			Name:           best.Name,
			Artist:         best.Artist,
			PreviewURL:     best.PreviewURLs[0],
			SpotifyURL:     best.SpotifyURL,
			AlbumImage:     best.AlbumImage,
			Duration:       best.Duration,
			ID:             best.ID,
			AllPreviewURLs: best.PreviewURLs,
		},
		AllResults: lo.Map(l.Results, func(res preview.Result, _ int) resultSummary {
			return resultSummary{
				Name:            res.Name,
				Artist:          res.Artist,
				PreviewURLCount: len(res.PreviewURLs),
				HasPreview:      len(res.PreviewURLs) > 0,
			}
		}),
		SearchQuery: query,
	})
}

// record logs the lookup outcome when a lookup log is configured. Failures
// to record never affect the response.
func (app *Application) record(ctx context.Context, query string, found bool) {
	if app.Lookups == nil {
		return
	}
	if err := app.Lookups.RecordLookup(ctx, query, found, time.Now()); err != nil {
		log.WithError(err).Warn("record lookup")
	}
}

// Health reports liveness and whether upstream credentials are configured.
func (app *Application) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"environment": map[string]bool{
			"spotifyConfigured": app.Finder != nil,
		},
	}
	// Lookup statistics cover the last 24 hours and are only included when
	// a lookup log is configured.
	if app.Lookups != nil {
		stats, err := app.Lookups.LookupStatsSince(r.Context(), time.Now().Add(-24*time.Hour))
		if err != nil {
			log.WithError(err).Warn("lookup stats")
		} else {
			body["lookups"] = stats
		}
	}
	respondJSON(w, http.StatusOK, body)
}

// TestSpotify runs a fixed lookup to verify the upstream integration.
func (app *Application) TestSpotify(w http.ResponseWriter, r *http.Request) {
	if app.Finder == nil {
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"error":      "Spotify credentials not configured",
			"configured": false,
		})
		return
	}
	// Run a single well-known lookup end to end against the real catalog.
	l, err := app.Finder.Find(r.Context(), testQuery, "", 1)
	if err != nil {
		log.WithError(err).Error("spotify test lookup failed")
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"error":      "Spotify preview finder test failed",
			"details":    err.Error(),
			"configured": true,
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":    "Spotify preview finder test",
		"result":     l,
		"configured": true,
		"testQuery":  testQuery,
	})
}
