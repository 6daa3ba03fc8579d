// Package spotify wraps the official Spotify client library providing the
// catalog operations used by the relay and the player. A SpotifyClient is
// authenticated explicitly: either through the client credentials flow (the
// relay's application token) or with a caller supplied bearer token (the
// player's user session). The bearer token can be replaced later with Rebind;
// there is no package level client state.
//
// The wrapped library does not provide context support so cancellation is
// checked explicitly before each call.

package spotify

import (
	"context"
	"fmt"
	"sync"

	"github.com/zmb3/spotify"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"Preview-Player-Go/pkg/music"
)

// ErrNoTracks is re-exported for callers that only import this package.
var ErrNoTracks = music.ErrNoTracks

// searcher defines the subset of the spotify.Client used by this package.
// It allows the concrete client to be replaced in tests.
type searcher interface {
	SearchOpt(query string, t spotify.SearchType, opt *spotify.Options) (*spotify.SearchResult, error)
	GetAlbum(id spotify.ID) (*spotify.FullAlbum, error)
	GetPlaylistTracks(playlistID spotify.ID) (*spotify.PlaylistTrackPage, error)
}

// SpotifyClient wraps the official Spotify client providing higher level
// helper methods.
type SpotifyClient struct {
	mu     sync.RWMutex
	client searcher
}

// Compile-time interface check ensuring SpotifyClient satisfies the generic
// music.Catalog interface used by the rest of the application.
var _ music.Catalog = (*SpotifyClient)(nil)

// NewSpotifyClient authenticates using the client credentials flow and returns
// a SpotifyClient ready for API calls. clientID and clientSecret are obtained
// from the Spotify developer dashboard.
func NewSpotifyClient(ctx context.Context, clientID string, clientSecret string) (*SpotifyClient, error) {
	// Use the client credentials OAuth2 flow to obtain an application token
	// which allows searching the Spotify catalog without a user login.
	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotify.TokenURL,
	}

	token, err := config.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("client credentials: %w", err)
	}

	c := spotify.Authenticator{}.NewClient(token)
	return &SpotifyClient{client: &c}, nil
}

// NewSpotifyClientWithToken returns a client that authenticates every request
// with the supplied bearer token, typically obtained by the browser's implicit
// grant redirect.
func NewSpotifyClientWithToken(accessToken string) *SpotifyClient {
	sc := &SpotifyClient{}
	sc.Rebind(accessToken)
	return sc
}

// Rebind swaps the bearer token used for subsequent calls. Calls already in
// flight keep the client they started with.
func (sc *SpotifyClient) Rebind(accessToken string) {
	c := spotify.Authenticator{}.NewClient(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	sc.mu.Lock()
	sc.client = &c
	sc.mu.Unlock()
}

func (sc *SpotifyClient) current() searcher {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.client
}

// SearchTracks implements music.Catalog by querying the Spotify search API
// for tracks. ErrNoTracks is returned when the result set is empty.
func (sc *SpotifyClient) SearchTracks(ctx context.Context, query string, limit int) ([]music.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opt := &spotify.Options{}
	if limit > 0 {
		opt.Limit = &limit
	}
	results, err := sc.current().SearchOpt(query, spotify.SearchTypeTrack, opt)
	if err != nil {
		return nil, err
	}

	if results.Tracks != nil && len(results.Tracks.Tracks) > 0 {
		tracks := make([]music.Track, len(results.Tracks.Tracks))
		copy(tracks, results.Tracks.Tracks)
		return tracks, nil
	}

	return nil, ErrNoTracks
}

// AlbumTracks implements music.Catalog. Album listings only carry simplified
// tracks, so the album itself is attached to every returned track.
func (sc *SpotifyClient) AlbumTracks(ctx context.Context, albumID string) ([]music.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	album, err := sc.current().GetAlbum(spotify.ID(albumID))
	if err != nil {
		return nil, err
	}
	if len(album.Tracks.Tracks) == 0 {
		return nil, ErrNoTracks
	}
	tracks := make([]music.Track, len(album.Tracks.Tracks))
	for i, t := range album.Tracks.Tracks {
		tracks[i] = spotify.FullTrack{SimpleTrack: t, Album: album.SimpleAlbum}
	}
	return tracks, nil
}

// PlaylistTracks implements music.Catalog. Entries without an ID (local files
// and removed tracks) are skipped.
func (sc *SpotifyClient) PlaylistTracks(ctx context.Context, playlistID string) ([]music.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, err := sc.current().GetPlaylistTracks(spotify.ID(playlistID))
	if err != nil {
		return nil, err
	}
	var tracks []music.Track
	for _, item := range page.Tracks {
		if item.Track.ID == "" {
			continue
		}
		tracks = append(tracks, item.Track)
	}
	if len(tracks) == 0 {
		return nil, ErrNoTracks
	}
	return tracks, nil
}
