package main

import (
	"fmt"
	"io"
	"strings"

	"Preview-Player-Go/pkg/music"
	"Preview-Player-Go/pkg/player"
)

func printPlaylist(w io.Writer, tracks []music.Track) {
	for i, t := range tracks {
		fmt.Fprintf(w, "%3d. %s - %s\n", i+1, t.Name, player.ArtistLine(t))
	}
}

// statusLine renders the controller state as a single terminal line.
func statusLine(st player.State) string {
	if !st.HasTrack {
		return "No track selected"
	}
	icon := "⏸"
	switch {
	case st.Loading():
		icon = "…"
	case st.Status == player.StatusPlaying:
		icon = "▶"
	case st.Status == player.StatusFailed:
		icon = "✕"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d. %s - %s  %s %s",
		icon, st.Index+1, st.Track.Name, player.ArtistLine(st.Track),
		formatProgressBar(st.Percent(), 20), player.FormatElapsed(st.Elapsed))
	if ps := st.PreviewStatus(); ps != "" {
		fmt.Fprintf(&b, "  [%s]", ps)
	}
	return b.String()
}

func formatProgressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("━", filled) + strings.Repeat("─", width-filled)
}
