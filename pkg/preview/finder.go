// Package preview finds short audio preview clips for a song. The catalog
// search supplies candidate tracks; for each candidate the catalog's own
// preview_url is combined with the clip URLs embedded in the track's public
// embed page, since the catalog API frequently omits them. Candidates are then
// ranked by how closely they match the requested song and artist.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"Preview-Player-Go/pkg/cache"
	"Preview-Player-Go/pkg/music"
)

var log = logrus.WithField("component", "preview")

const (
	// DefaultLimit is the number of candidates searched when none is given.
	DefaultLimit = 3
	// MaxLimit is the largest candidate count the catalog search accepts.
	MaxLimit = 50

	defaultEmbedURL = "https://open.spotify.com/embed/track/%s"
	maxPageBytes    = 2 << 20
)

var previewPattern = regexp.MustCompile(`https://p\.scdn\.co/mp3-preview/[A-Za-z0-9]+(?:\?[A-Za-z0-9=&_.\-%]*)?`)

// TrackSearcher is the catalog search used to produce candidates.
type TrackSearcher interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]music.Track, error)
}

// Result is one candidate track and every preview URL found for it.
type Result struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artist      string   `json:"artist"`
	SpotifyURL  string   `json:"spotifyUrl"`
	AlbumImage  string   `json:"albumImage"`
	Duration    int      `json:"duration"`
	PreviewURLs []string `json:"previewUrls"`
	Score       int      `json:"score"`
}

// Lookup is the outcome of one Find call. Results is ordered best match first
// and is empty when the catalog had no candidates.
type Lookup struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
}

// Best returns the best matching candidate.
func (l *Lookup) Best() (Result, bool) {
	if l == nil || len(l.Results) == 0 {
		return Result{}, false
	}
	return l.Results[0], true
}

// Finder resolves preview URLs. Cache is optional; when set, successful
// lookups are stored for TTL.
type Finder struct {
	Search TrackSearcher
	HTTP   *http.Client
	Cache  cache.Cache
	TTL    time.Duration

	// EmbedURL is a printf pattern taking the track ID. Defaults to the
	// public embed page.
	EmbedURL string
}

// Query builds the catalog query for a song and optional artist.
func Query(songName, artistName string) string {
	if artistName == "" {
		return songName
	}
	return songName + " " + artistName
}

// ClampLimit normalises a requested candidate count.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func cacheKey(query string, limit int) string {
	return fmt.Sprintf("%d:%s", limit, strings.ToLower(strings.Join(strings.Fields(query), " ")))
}

// Find searches for songName (and artistName when given) and returns the
// ranked candidates. A catalog search that yields no tracks is not an error:
// the returned Lookup simply has no results.
func (f *Finder) Find(ctx context.Context, songName, artistName string, limit int) (*Lookup, error) {
	if songName == "" {
		return nil, errors.New("song name is required")
	}
	limit = ClampLimit(limit)
	query := Query(songName, artistName)
	key := cacheKey(query, limit)

	if f.Cache != nil {
		if b, err := f.Cache.Get(ctx, key); err == nil {
			var l Lookup
			if err := json.Unmarshal(b, &l); err == nil {
				return &l, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			log.WithError(err).Warn("preview cache read")
		}
	}

	tracks, err := f.Search.SearchTracks(ctx, query, limit)
	if err != nil && !errors.Is(err, music.ErrNoTracks) {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	l := &Lookup{Query: query, Results: f.collect(ctx, tracks)}
	for i := range l.Results {
		r := &l.Results[i]
		r.Score = matchScore(songName, artistName, r.Name, r.Artist)
	}
	sort.SliceStable(l.Results, func(i, j int) bool {
		return l.Results[i].Score > l.Results[j].Score
	})

	if f.Cache != nil {
		if b, err := json.Marshal(l); err == nil {
			if err := f.Cache.Set(ctx, key, b, f.TTL); err != nil {
				log.WithError(err).Warn("preview cache write")
			}
		}
	}
	return l, nil
}

// collect gathers preview URLs for each track concurrently, preserving the
// catalog order.
func (f *Finder) collect(ctx context.Context, tracks []music.Track) []Result {
	results := make([]Result, len(tracks))
	var wg sync.WaitGroup
	for i, t := range tracks {
		i, t := i, t
		wg.Add(1)
		go func() {
			defer wg.Done()
			urls := []string{}
			if t.PreviewURL != "" {
				urls = append(urls, t.PreviewURL)
			}
			scraped, err := f.scrape(ctx, string(t.ID))
			if err != nil {
				log.WithError(err).WithField("track", t.ID).Debug("embed page scrape failed")
			}
			results[i] = Result{
				ID:          string(t.ID),
				Name:        t.Name,
				Artist:      strings.Join(music.ArtistNames(t), ", "),
				SpotifyURL:  t.ExternalURLs["spotify"],
				AlbumImage:  music.CoverURL(t),
				Duration:    t.Duration,
				PreviewURLs: lo.Uniq(append(urls, scraped...)),
			}
		}()
	}
	wg.Wait()
	return results
}

// scrape fetches the embed page for a track and extracts clip URLs.
func (f *Finder) scrape(ctx context.Context, trackID string) ([]string, error) {
	if trackID == "" {
		return nil, nil
	}
	client := f.HTTP
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	pattern := f.EmbedURL
	if pattern == "" {
		pattern = defaultEmbedURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(pattern, trackID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed page: %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, err
	}
	return lo.Uniq(previewPattern.FindAllString(string(body), -1)), nil
}
