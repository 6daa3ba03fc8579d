package music

// Playlist is an ordered, read-only sequence of tracks. Index arithmetic wraps
// in both directions so the list loops.
type Playlist struct {
	Tracks []Track
}

// Len returns the number of tracks.
func (p Playlist) Len() int {
	return len(p.Tracks)
}

// At returns the track at index i and whether i was in range.
func (p Playlist) At(i int) (Track, bool) {
	if i < 0 || i >= len(p.Tracks) {
		return Track{}, false
	}
	return p.Tracks[i], true
}

// Next returns the index after i, wrapping from the last track to 0. It
// returns -1 for an empty playlist.
func (p Playlist) Next(i int) int {
	n := len(p.Tracks)
	if n == 0 {
		return -1
	}
	if i+1 >= n || i < 0 {
		return 0
	}
	return i + 1
}

// Prev returns the index before i, wrapping from 0 to the last track. It
// returns -1 for an empty playlist.
func (p Playlist) Prev(i int) int {
	n := len(p.Tracks)
	if n == 0 {
		return -1
	}
	if i-1 < 0 || i >= n {
		return n - 1
	}
	return i - 1
}
