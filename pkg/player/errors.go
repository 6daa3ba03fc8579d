package player

import "errors"

// Errors surfaced by the controller. None of them is fatal: after any of
// them the controller still accepts a new track index or command.
var (
	// ErrNoSourceAvailable means neither an enhanced nor a catalog preview
	// URL exists for the track.
	ErrNoSourceAvailable = errors.New("no preview available")
	// ErrEngineLoad wraps failures of the audio engine to fetch or decode
	// the chosen source.
	ErrEngineLoad      = errors.New("audio engine load failed")
	ErrEmptyPlaylist   = errors.New("playlist is empty")
	ErrIndexOutOfRange = errors.New("track index out of range")
	ErrClosed          = errors.New("controller closed")
	// ErrUnavailable is returned by Play for a session that failed.
	ErrUnavailable = errors.New("track unavailable")
	// ErrAudioUnavailable is reported by engines built without audio output.
	ErrAudioUnavailable = errors.New("audio output not supported in this build")
)
