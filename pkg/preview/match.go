package preview

import (
	"strings"

	"github.com/xrash/smetrics"
)

// similarity returns a 0-100 score for how alike two strings are, ignoring
// case and surrounding whitespace.
func similarity(a, b string) int {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 100
	}
	distance := smetrics.WagnerFischer(a, b, 1, 1, 2)
	score := 100 - (distance * 100 / maxLen)
	if score < 0 {
		return 0
	}
	return score
}

// matchScore weighs how well a candidate fits the requested song and artist.
// The title dominates; the artist only counts when one was requested.
func matchScore(songName, artistName, candName, candArtist string) int {
	title := similarity(songName, candName)
	if artistName == "" {
		return title
	}
	return (title*60 + similarity(artistName, candArtist)*40) / 100
}
