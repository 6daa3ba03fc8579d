//go:build !((linux && cgo) || windows || darwin)

package player

import (
	"net/http"
	"sync"
	"time"
)

// AudioAvailable indicates whether audio playback is supported in this build.
// Audio requires cgo for native sound libraries on this platform.
const AudioAvailable = false

// silentEngine reports every load as failed so the controller shows the
// track as unavailable instead of pretending to play.
type silentEngine struct {
	mu     sync.Mutex
	closed bool
}

// NewBeepEngine returns an engine without audio output for builds without cgo.
func NewBeepEngine(*http.Client) Engine {
	return &silentEngine{}
}

// BeepEngineFactory adapts NewBeepEngine to EngineFactory.
func BeepEngineFactory(client *http.Client) EngineFactory {
	return func() Engine { return NewBeepEngine(client) }
}

func (e *silentEngine) Load(_ string, l Listener) {
	go func() {
		e.mu.Lock()
		closed := e.closed
		e.mu.Unlock()
		if !closed && l.OnError != nil {
			l.OnError(ErrAudioUnavailable)
		}
	}()
}

func (e *silentEngine) Play() error             { return ErrAudioUnavailable }
func (e *silentEngine) Pause()                  {}
func (e *silentEngine) Position() time.Duration { return 0 }
func (e *silentEngine) Duration() time.Duration { return 0 }
func (e *silentEngine) Ended() bool             { return false }

func (e *silentEngine) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}
