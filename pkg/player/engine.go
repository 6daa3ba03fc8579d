package player

import "time"

// Listener receives engine lifecycle callbacks. Engines invoke them from
// their own goroutines, never synchronously from inside an Engine method, so
// the receiver may take locks the caller of that method holds.
type Listener struct {
	OnReady func()
	OnEnded func()
	OnError func(error)
}

// Engine is one audio playback handle. A handle plays a single source; the
// controller creates a fresh handle per session and closes the previous one
// before doing so.
type Engine interface {
	// Load starts fetching url and reports readiness or failure through l.
	Load(url string, l Listener)
	Play() error
	Pause()
	// Position is the current playback offset.
	Position() time.Duration
	// Duration is the length of the loaded source, zero until ready.
	Duration() time.Duration
	// Ended reports whether playback reached the end of the source.
	Ended() bool
	// Close stops playback, clears the source and drops the listener.
	// Callbacks already in flight may still arrive; the controller discards
	// them by generation.
	Close()
}

// EngineFactory creates a new, unloaded engine handle.
type EngineFactory func() Engine
