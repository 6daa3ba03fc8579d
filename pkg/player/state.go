package player

import (
	"fmt"
	"strings"
	"time"

	"Preview-Player-Go/pkg/music"
)

// State is a read-only snapshot of the controller for presentation.
type State struct {
	Index         int
	Track         music.Track
	HasTrack      bool
	Status        Status
	Elapsed       time.Duration
	Duration      time.Duration
	Source        string
	Enhanced      bool
	WantsAutoPlay bool
	Err           error
}

// Loading reports whether the session is still resolving or loading.
func (s State) Loading() bool {
	return s.Status.pending()
}

// HasSource reports whether an audio source was chosen.
func (s State) HasSource() bool {
	return s.Source != ""
}

// Percent is the elapsed share of the source, 0-100.
func (s State) Percent() float64 {
	if s.Duration <= 0 {
		return 0
	}
	p := float64(s.Elapsed) / float64(s.Duration) * 100
	if p > 100 {
		return 100
	}
	return p
}

// PreviewStatus describes where the audio comes from.
func (s State) PreviewStatus() string {
	switch {
	case s.Status == StatusResolvingPreview:
		return "Searching for enhanced preview..."
	case s.Enhanced:
		return "Using enhanced preview"
	case s.HasSource():
		return "Using original preview"
	case s.Status == StatusIdle:
		return ""
	default:
		return "No preview available"
	}
}

// FormatElapsed renders a preview offset as m:ss.
func FormatElapsed(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// ArtistLine joins every credited artist for display.
func ArtistLine(t music.Track) string {
	names := music.ArtistNames(t)
	if len(names) == 0 {
		for _, a := range t.Album.Artists {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, " | ")
}
