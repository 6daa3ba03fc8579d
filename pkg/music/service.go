// Package music defines the catalog data structures shared by the relay and
// the player. Track is an alias of spotify.FullTrack so every component reads
// the same familiar fields (Name, Artists, Album, PreviewURL, Duration)
// without conversion layers.
package music

import (
	"context"
	"errors"

	libspotify "github.com/zmb3/spotify"
)

// Track represents a catalog track. PreviewURL may be empty when the catalog
// offers no clip for the track.
type Track = libspotify.FullTrack

// ErrNoTracks is returned by a Catalog when a query or collection yields
// nothing playable.
var ErrNoTracks = errors.New("no tracks found")

// Catalog supplies track records. Implementations are authenticated
// explicitly at construction time; see spotify.SpotifyClient.
type Catalog interface {
	// SearchTracks returns up to limit tracks matching the query.
	SearchTracks(ctx context.Context, query string, limit int) ([]Track, error)

	// AlbumTracks returns the tracks of an album in disc order. Each track
	// carries the album's name and images.
	AlbumTracks(ctx context.Context, albumID string) ([]Track, error)

	// PlaylistTracks returns the playable tracks of a playlist in order.
	PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error)
}

// PrimaryArtist returns the name of the first credited artist, falling back to
// the first album artist. An empty string is returned when neither exists.
func PrimaryArtist(t Track) string {
	if len(t.Artists) > 0 && t.Artists[0].Name != "" {
		return t.Artists[0].Name
	}
	if len(t.Album.Artists) > 0 {
		return t.Album.Artists[0].Name
	}
	return ""
}

// ArtistNames lists every credited artist name in order.
func ArtistNames(t Track) []string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return names
}

// CoverURL returns the URL of the first album image or an empty string.
func CoverURL(t Track) string {
	if len(t.Album.Images) == 0 {
		return ""
	}
	return t.Album.Images[0].URL
}
