package player

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"Preview-Player-Go/pkg/music"
)

var log = logrus.WithField("component", "player")

// DefaultResolveTimeout bounds a single relay lookup.
const DefaultResolveTimeout = 5 * time.Second

// Resolver looks up an enhanced preview URL for a track. ok is false when no
// enhancement is available, whatever the reason.
type Resolver interface {
	Resolve(ctx context.Context, t music.Track) (url string, ok bool)
}

// RelayResolver asks the preview relay (POST /api/get-preview) for an
// enhanced URL. Every call makes at most one request and never retries; any
// failure degrades to "no enhancement".
type RelayResolver struct {
	Endpoint string
	HTTP     *http.Client
	Timeout  time.Duration
	Limit    int

	inFlight atomic.Int32
}

// NewRelayResolver returns a resolver for the relay at endpoint. A
// non-positive timeout selects DefaultResolveTimeout.
func NewRelayResolver(endpoint string, timeout time.Duration) *RelayResolver {
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}
	return &RelayResolver{Endpoint: endpoint, HTTP: http.DefaultClient, Timeout: timeout, Limit: 3}
}

// InProgress reports whether a lookup is currently outstanding.
func (r *RelayResolver) InProgress() bool {
	return r.inFlight.Load() > 0
}

type relayRequest struct {
	SongName   string `json:"songName"`
	ArtistName string `json:"artistName,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

type relayResponse struct {
	Success bool `json:"success"`
	Track   struct {
		PreviewURL string `json:"previewUrl"`
	} `json:"track"`
}

// Resolve implements Resolver. A track without a name resolves to nothing
// without contacting the relay.
func (r *RelayResolver) Resolve(ctx context.Context, t music.Track) (string, bool) {
	if t.Name == "" {
		return "", false
	}
	r.inFlight.Add(1)
	defer r.inFlight.Add(-1)

	url, err := r.lookup(ctx, relayRequest{SongName: t.Name, ArtistName: music.PrimaryArtist(t), Limit: r.Limit})
	if err != nil {
		log.WithError(err).WithField("track", t.Name).Debug("preview resolution failed")
		return "", false
	}
	return url, url != ""
}

func (r *RelayResolver) lookup(ctx context.Context, body relayRequest) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	client := r.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("relay: %s", resp.Status)
	}
	var out relayResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("relay response: %w", err)
	}
	if !out.Success {
		return "", nil
	}
	return out.Track.PreviewURL, nil
}
