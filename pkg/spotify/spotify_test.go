package spotify

import (
	"context"
	"errors"
	"testing"

	libspotify "github.com/zmb3/spotify"
)

type fakeSearcher struct {
	lastQuery  string
	lastType   libspotify.SearchType
	lastOpt    *libspotify.Options
	result     *libspotify.SearchResult
	album      *libspotify.FullAlbum
	albumID    libspotify.ID
	playlist   *libspotify.PlaylistTrackPage
	playlistID libspotify.ID
	err        error
}

func (f *fakeSearcher) SearchOpt(query string, t libspotify.SearchType, opt *libspotify.Options) (*libspotify.SearchResult, error) {
	f.lastQuery = query
	f.lastType = t
	f.lastOpt = opt
	return f.result, f.err
}

func (f *fakeSearcher) GetAlbum(id libspotify.ID) (*libspotify.FullAlbum, error) {
	f.albumID = id
	return f.album, f.err
}

func (f *fakeSearcher) GetPlaylistTracks(id libspotify.ID) (*libspotify.PlaylistTrackPage, error) {
	f.playlistID = id
	return f.playlist, f.err
}

func TestSearchTracksFound(t *testing.T) {
	track := libspotify.FullTrack{SimpleTrack: libspotify.SimpleTrack{Name: "Song"}}
	sr := &libspotify.SearchResult{Tracks: &libspotify.FullTrackPage{Tracks: []libspotify.FullTrack{track}}}
	fs := &fakeSearcher{result: sr}
	sc := &SpotifyClient{client: fs}

	got, err := sc.SearchTracks(context.Background(), "q", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Song" {
		t.Errorf("unexpected result: %+v", got)
	}
	if fs.lastQuery != "q" || fs.lastType != libspotify.SearchTypeTrack {
		t.Errorf("Search called with %s %v", fs.lastQuery, fs.lastType)
	}
	if fs.lastOpt == nil || fs.lastOpt.Limit == nil || *fs.lastOpt.Limit != 3 {
		t.Errorf("limit not forwarded: %+v", fs.lastOpt)
	}
}

func TestSearchTracksNotFound(t *testing.T) {
	sr := &libspotify.SearchResult{Tracks: &libspotify.FullTrackPage{}}
	sc := &SpotifyClient{client: &fakeSearcher{result: sr}}

	_, err := sc.SearchTracks(context.Background(), "missing", 0)
	if !errors.Is(err, ErrNoTracks) {
		t.Fatalf("expected ErrNoTracks, got %v", err)
	}
}

func TestSearchTracksError(t *testing.T) {
	fs := &fakeSearcher{err: errors.New("boom")}
	sc := &SpotifyClient{client: fs}

	_, err := sc.SearchTracks(context.Background(), "fail", 1)
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom error, got %v", err)
	}
}

func TestSearchTracksCancelled(t *testing.T) {
	fs := &fakeSearcher{}
	sc := &SpotifyClient{client: fs}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sc.SearchTracks(ctx, "q", 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if fs.lastQuery != "" {
		t.Errorf("search should not run after cancellation")
	}
}

// TestAlbumTracksAttachAlbum verifies simplified album tracks are promoted to
// full tracks carrying the album's name and images.
func TestAlbumTracksAttachAlbum(t *testing.T) {
	album := &libspotify.FullAlbum{
		SimpleAlbum: libspotify.SimpleAlbum{Name: "Record", Images: []libspotify.Image{{URL: "http://img"}}},
	}
	album.Tracks.Tracks = []libspotify.SimpleTrack{{ID: "1", Name: "One"}, {ID: "2", Name: "Two"}}
	fs := &fakeSearcher{album: album}
	sc := &SpotifyClient{client: fs}

	got, err := sc.AlbumTracks(context.Background(), "alb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.albumID != "alb" {
		t.Errorf("album id not forwarded: %s", fs.albumID)
	}
	if len(got) != 2 || got[1].Name != "Two" || got[1].Album.Name != "Record" || got[0].Album.Images[0].URL != "http://img" {
		t.Errorf("unexpected tracks: %+v", got)
	}
}

// TestPlaylistTracksSkipsUnavailable checks that entries without IDs are
// dropped and an empty result is reported as ErrNoTracks.
func TestPlaylistTracksSkipsUnavailable(t *testing.T) {
	page := &libspotify.PlaylistTrackPage{Tracks: []libspotify.PlaylistTrack{
		{Track: libspotify.FullTrack{SimpleTrack: libspotify.SimpleTrack{ID: "1", Name: "One"}}},
		{Track: libspotify.FullTrack{SimpleTrack: libspotify.SimpleTrack{Name: "local file"}}},
	}}
	fs := &fakeSearcher{playlist: page}
	sc := &SpotifyClient{client: fs}

	got, err := sc.PlaylistTracks(context.Background(), "pl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("unexpected tracks: %+v", got)
	}

	fs.playlist = &libspotify.PlaylistTrackPage{}
	if _, err := sc.PlaylistTracks(context.Background(), "pl"); !errors.Is(err, ErrNoTracks) {
		t.Errorf("expected ErrNoTracks, got %v", err)
	}
}

// TestRebindReplacesClient ensures a new bearer token produces a new
// underlying client.
func TestRebindReplacesClient(t *testing.T) {
	sc := NewSpotifyClientWithToken("first")
	before := sc.current()
	sc.Rebind("second")
	if sc.current() == before {
		t.Fatal("expected client to be replaced")
	}
}
