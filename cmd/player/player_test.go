package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	libspotify "github.com/zmb3/spotify"

	"Preview-Player-Go/pkg/music"
	"Preview-Player-Go/pkg/player"
)

type fakeCatalog struct {
	called string
	limit  int
}

func (f *fakeCatalog) SearchTracks(_ context.Context, q string, limit int) ([]music.Track, error) {
	f.called, f.limit = "search:"+q, limit
	return nil, nil
}

func (f *fakeCatalog) AlbumTracks(_ context.Context, id string) ([]music.Track, error) {
	f.called = "album:" + id
	return nil, nil
}

func (f *fakeCatalog) PlaylistTracks(_ context.Context, id string) ([]music.Track, error) {
	f.called = "playlist:" + id
	return nil, nil
}

func TestLoadTracks(t *testing.T) {
	cases := []struct {
		src  trackSource
		want string
	}{
		{trackSource{Playlist: "p1"}, "playlist:p1"},
		{trackSource{Album: "a1"}, "album:a1"},
		{trackSource{Search: "song"}, "search:song"},
	}
	for _, tc := range cases {
		fc := &fakeCatalog{}
		if _, err := loadTracks(context.Background(), fc, tc.src, 20); err != nil {
			t.Fatal(err)
		}
		if fc.called != tc.want {
			t.Errorf("called %q, want %q", fc.called, tc.want)
		}
	}
	if _, err := loadTracks(context.Background(), &fakeCatalog{}, trackSource{}, 20); !errors.Is(err, errNoSource) {
		t.Fatalf("err = %v", err)
	}
}

// fakeTransport records the commands it receives.
type fakeTransport struct {
	calls []string
	state player.State
}

func (f *fakeTransport) Select(i int) error {
	f.calls = append(f.calls, "select")
	f.state.Index = i
	return nil
}
func (f *fakeTransport) Next() error         { f.calls = append(f.calls, "next"); return nil }
func (f *fakeTransport) Previous() error     { f.calls = append(f.calls, "prev"); return nil }
func (f *fakeTransport) Toggle() error       { f.calls = append(f.calls, "toggle"); return nil }
func (f *fakeTransport) State() player.State { return f.state }

func TestHandleCommand(t *testing.T) {
	ft := &fakeTransport{}
	for _, line := range []string{"p", " next ", "B", "3", ""} {
		if err := handleCommand(ft, line); err != nil {
			t.Fatalf("%q: %v", line, err)
		}
	}
	want := "toggle next prev select"
	if got := strings.Join(ft.calls, " "); got != want {
		t.Fatalf("calls = %q, want %q", got, want)
	}
	if ft.state.Index != 2 {
		t.Fatalf("track number not 1-based: %d", ft.state.Index)
	}
	if err := handleCommand(ft, "q"); !errors.Is(err, errQuit) {
		t.Fatalf("quit err = %v", err)
	}
	if err := handleCommand(ft, "dance"); err == nil {
		t.Fatal("expected unknown command error")
	}
}

func TestLoopStopsOnQuit(t *testing.T) {
	ft := &fakeTransport{}
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- loop(context.Background(), ft, strings.NewReader("n\nq\n"), &out, time.Millisecond)
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit")
	}
	if len(ft.calls) != 1 || ft.calls[0] != "next" {
		t.Fatalf("calls = %v", ft.calls)
	}
}

func TestLoopStopsOnEOF(t *testing.T) {
	var out bytes.Buffer
	if err := loop(context.Background(), &fakeTransport{}, strings.NewReader(""), &out, time.Millisecond); err != nil {
		t.Fatal(err)
	}
}

func TestStatusLine(t *testing.T) {
	tr := music.Track{SimpleTrack: libspotify.SimpleTrack{
		Name:    "Song",
		Artists: []libspotify.SimpleArtist{{Name: "A"}, {Name: "B"}},
	}}
	st := player.State{
		Index: 0, Track: tr, HasTrack: true, Status: player.StatusPlaying,
		Elapsed: 15 * time.Second, Duration: 30 * time.Second, Source: "u", Enhanced: true,
	}
	line := statusLine(st)
	for _, want := range []string{"▶", "1. Song - A | B", "0:15", "Using enhanced preview", "━━━━━━━━━━──────────"} {
		if !strings.Contains(line, want) {
			t.Errorf("status line %q missing %q", line, want)
		}
	}

	st.Status, st.Source, st.Enhanced = player.StatusFailed, "", false
	if line := statusLine(st); !strings.Contains(line, "No preview available") {
		t.Errorf("status line %q", line)
	}
	if statusLine(player.State{Index: -1}) != "No track selected" {
		t.Errorf("idle status line")
	}
}

func TestFormatProgressBar(t *testing.T) {
	if got := formatProgressBar(150, 4); got != "━━━━" {
		t.Fatalf("bar = %q", got)
	}
	if got := formatProgressBar(-5, 4); got != "────" {
		t.Fatalf("bar = %q", got)
	}
}
