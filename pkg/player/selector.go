package player

import "Preview-Player-Go/pkg/music"

// SelectSource picks the audio source for a track: the enhanced URL when
// present, otherwise the catalog preview URL. An empty result means there is
// nothing to play.
func SelectSource(t music.Track, enhanced string) string {
	if enhanced != "" {
		return enhanced
	}
	return t.PreviewURL
}
