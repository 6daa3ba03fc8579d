package player

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	libspotify "github.com/zmb3/spotify"

	"Preview-Player-Go/pkg/music"
)

// fakeEngine is a scriptable Engine. Tests fire lifecycle callbacks
// explicitly with ready, fail and end.
type fakeEngine struct {
	mu       sync.Mutex
	url      string
	listener Listener
	loaded   bool
	playing  bool
	closed   bool
	pauses   int
	pos      time.Duration
	dur      time.Duration
	ended    bool
	playErr  error
}

func (e *fakeEngine) Load(url string, l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.url = url
	e.listener = l
	e.loaded = true
}

func (e *fakeEngine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playErr != nil {
		return e.playErr
	}
	e.playing = true
	return nil
}

func (e *fakeEngine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
	e.pauses++
}

func (e *fakeEngine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos
}

func (e *fakeEngine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dur
}

func (e *fakeEngine) Ended() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ended
}

// Close keeps the listener so tests can deliver late callbacks from a
// detached engine and check they are ignored.
func (e *fakeEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.playing = false
}

func (e *fakeEngine) cb() Listener {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listener
}

func (e *fakeEngine) ready()         { e.cb().OnReady() }
func (e *fakeEngine) end()           { e.setEnded(); e.cb().OnEnded() }
func (e *fakeEngine) fail(err error) { e.cb().OnError(err) }
func (e *fakeEngine) setPos(d time.Duration) {
	e.mu.Lock()
	e.pos = d
	e.mu.Unlock()
}
func (e *fakeEngine) setEnded() {
	e.mu.Lock()
	e.ended = true
	e.mu.Unlock()
}
func (e *fakeEngine) refusePlay(err error) {
	e.mu.Lock()
	e.playErr = err
	e.mu.Unlock()
}
func (e *fakeEngine) loadedURL() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.url
}
func (e *fakeEngine) pauseCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pauses
}
func (e *fakeEngine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
func (e *fakeEngine) isPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// engineRecorder is an EngineFactory remembering every engine it built.
type engineRecorder struct {
	mu      sync.Mutex
	engines []*fakeEngine
	dur     time.Duration
}

func (r *engineRecorder) factory() Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := &fakeEngine{dur: r.dur}
	r.engines = append(r.engines, e)
	return e
}

func (r *engineRecorder) all() []*fakeEngine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*fakeEngine(nil), r.engines...)
}

func (r *engineRecorder) last() *fakeEngine {
	all := r.all()
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

// fakeResolver answers from a table keyed by track name. A gate, when set,
// holds the answer for that track until the channel is closed.
type fakeResolver struct {
	mu      sync.Mutex
	urls    map[string]string
	gates   map[string]chan struct{}
	calls   []string
	settled int
}

func newFakeResolver(urls map[string]string) *fakeResolver {
	return &fakeResolver{urls: urls, gates: map[string]chan struct{}{}}
}

func (r *fakeResolver) hold(name string) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan struct{})
	r.gates[name] = ch
	return ch
}

func (r *fakeResolver) Resolve(ctx context.Context, t music.Track) (string, bool) {
	r.mu.Lock()
	r.calls = append(r.calls, t.Name)
	gate := r.gates[t.Name]
	r.mu.Unlock()
	if gate != nil {
		<-gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settled++
	url, ok := r.urls[t.Name]
	return url, ok && url != ""
}

func (r *fakeResolver) settledCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settled
}

func mkTrack(name, preview string) music.Track {
	return music.Track{SimpleTrack: libspotify.SimpleTrack{
		ID:         libspotify.ID(name),
		Name:       name,
		Artists:    []libspotify.SimpleArtist{{Name: "Artist"}},
		PreviewURL: preview,
	}}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func waitStatus(t *testing.T, c *Controller, index int, status Status) State {
	t.Helper()
	var st State
	waitFor(t, fmt.Sprintf("track %d %s", index, status), func() bool {
		st = c.State()
		return st.Index == index && st.Status == status
	})
	return st
}
