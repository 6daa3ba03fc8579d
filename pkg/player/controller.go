// Package player implements the track playback controller: given an ordered
// list of tracks and a selected index it resolves a playable preview source,
// drives an audio engine through play and pause, samples progress and
// advances to the next track when one finishes.
//
// Every selection starts a new session tagged with a generation number.
// Asynchronous completions (relay lookups, engine callbacks, ticker samples)
// carry the generation they were started for and are dropped when it is no
// longer current, so a slow lookup for one track can never overwrite the
// session of a track selected after it.
package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"Preview-Player-Go/pkg/music"
)

// DefaultTickInterval is the progress sampling cadence.
const DefaultTickInterval = time.Second

// Config configures a Controller.
type Config struct {
	Tracks    []music.Track
	Resolver  Resolver
	NewEngine EngineFactory

	// TickInterval is the progress sampling cadence. Zero disables the
	// internal ticker; end of track is then detected by the engine's
	// OnEnded callback only.
	TickInterval time.Duration

	// OnIndexChange is told about every index the controller moves to,
	// including automatic advances. Calls are serialized and arrive in
	// selection order; a change superseded before it could be delivered is
	// skipped. It is called without the controller lock held and must not
	// call back into the controller.
	OnIndexChange func(index int)
}

type session struct {
	gen           uint64
	index         int
	source        string
	enhanced      bool
	status        Status
	elapsed       time.Duration
	wantsAutoPlay bool
	err           error
}

// Controller owns the single live audio engine and the playback session.
// All methods are safe for concurrent use.
type Controller struct {
	mu        sync.Mutex
	playlist  music.Playlist
	resolver  Resolver
	newEngine EngineFactory
	interval  time.Duration
	onIndex   func(int)

	gen        uint64
	sess       *session
	engine     Engine
	stopTicker chan struct{}
	closed     bool

	notifyMu    sync.Mutex
	notifiedGen uint64
}

// New returns an idle controller for cfg.Tracks. The track slice is read but
// never modified.
func New(cfg Config) *Controller {
	return &Controller{
		playlist:  music.Playlist{Tracks: cfg.Tracks},
		resolver:  cfg.Resolver,
		newEngine: cfg.NewEngine,
		interval:  cfg.TickInterval,
		onIndex:   cfg.OnIndexChange,
	}
}

// Select starts a session for the track at index. The new session starts
// playing once loaded if the session it replaces was playing, or was itself
// still loading with playback requested.
func (c *Controller) Select(index int) error {
	c.mu.Lock()
	gen, err := c.selectLocked(index, c.carryAutoPlayLocked())
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.notify(gen, index)
	return nil
}

// Next advances to the following track, wrapping to the first.
func (c *Controller) Next() error {
	return c.step(c.playlist.Next)
}

// Previous moves to the preceding track, wrapping to the last.
func (c *Controller) Previous() error {
	return c.step(c.playlist.Prev)
}

func (c *Controller) step(move func(int) int) error {
	c.mu.Lock()
	cur := -1
	if c.sess != nil {
		cur = c.sess.index
	}
	idx := move(cur)
	if idx < 0 {
		c.mu.Unlock()
		return ErrEmptyPlaylist
	}
	gen, err := c.selectLocked(idx, c.carryAutoPlayLocked())
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.notify(gen, idx)
	return nil
}

// Play starts or resumes playback. While the session is still loading the
// request is remembered and honoured once the engine is ready. With no
// session yet the first track is selected and played.
func (c *Controller) Play() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	s := c.sess
	if s == nil {
		gen, err := c.selectLocked(0, true)
		c.mu.Unlock()
		if err != nil {
			return err
		}
		c.notify(gen, 0)
		return nil
	}
	defer c.mu.Unlock()
	switch s.status {
	case StatusReady, StatusPaused:
		return c.startLocked()
	case StatusResolvingPreview, StatusLoading:
		s.wantsAutoPlay = true
	case StatusFailed:
		return ErrUnavailable
	}
	return nil
}

// Pause stops playback. Pausing a session that is still loading cancels the
// pending auto play.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.sess
	if c.closed || s == nil {
		return
	}
	switch {
	case s.status == StatusPlaying:
		c.stopTickerLocked()
		c.engine.Pause()
		c.sampleLocked()
		s.status = StatusPaused
	case s.status.pending():
		s.wantsAutoPlay = false
	}
}

// Toggle pauses when playing (or about to play) and plays otherwise.
func (c *Controller) Toggle() error {
	c.mu.Lock()
	s := c.sess
	playing := s != nil && (s.status == StatusPlaying || (s.status.pending() && s.wantsAutoPlay))
	c.mu.Unlock()
	if playing {
		c.Pause()
		return nil
	}
	return c.Play()
}

// Close releases the engine and invalidates every outstanding callback.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.releaseLocked()
	c.gen++
	c.closed = true
}

// State returns a snapshot for presentation.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := State{Index: -1, Status: StatusIdle}
	s := c.sess
	if s == nil {
		return st
	}
	st.Index = s.index
	st.Track, st.HasTrack = c.playlist.At(s.index)
	st.Status = s.status
	st.Elapsed = s.elapsed
	st.Source = s.source
	st.Enhanced = s.enhanced
	st.Err = s.err
	st.WantsAutoPlay = s.wantsAutoPlay
	if c.engine != nil {
		st.Duration = c.engine.Duration()
	}
	return st
}

// notify reports the index selected by generation gen. Deliveries for a
// generation older than one already reported are dropped.
func (c *Controller) notify(gen uint64, index int) {
	if c.onIndex == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if gen <= c.notifiedGen {
		return
	}
	c.notifiedGen = gen
	c.onIndex(index)
}

func (c *Controller) carryAutoPlayLocked() bool {
	s := c.sess
	if s == nil {
		return false
	}
	return s.status == StatusPlaying || (s.status.pending() && s.wantsAutoPlay)
}

// selectLocked tears down the current session and starts resolving index.
// It returns the generation of the new session.
func (c *Controller) selectLocked(index int, wantsAutoPlay bool) (uint64, error) {
	if c.closed {
		return 0, ErrClosed
	}
	t, ok := c.playlist.At(index)
	if !ok {
		if c.playlist.Len() == 0 {
			return 0, ErrEmptyPlaylist
		}
		return 0, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	c.releaseLocked()
	c.gen++
	gen := c.gen
	c.sess = &session{
		gen:           gen,
		index:         index,
		status:        StatusResolvingPreview,
		wantsAutoPlay: wantsAutoPlay,
	}
	log.WithFields(logrus.Fields{"index": index, "track": t.Name, "gen": gen, "autoplay": wantsAutoPlay}).Debug("session started")
	go c.resolve(gen, t)
	return gen, nil
}

// releaseLocked pauses and detaches the live engine.
func (c *Controller) releaseLocked() {
	c.stopTickerLocked()
	if c.engine != nil {
		c.engine.Pause()
		c.engine.Close()
		c.engine = nil
	}
}

func (c *Controller) current(gen uint64) (*session, bool) {
	if c.closed || c.sess == nil || c.sess.gen != gen {
		return nil, false
	}
	return c.sess, true
}

func (c *Controller) resolve(gen uint64, t music.Track) {
	var (
		url string
		ok  bool
	)
	if c.resolver != nil {
		url, ok = c.resolver.Resolve(context.Background(), t)
	}
	c.onResolved(gen, t, url, ok)
}

func (c *Controller) onResolved(gen uint64, t music.Track, enhanced string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, live := c.current(gen)
	if !live || s.status != StatusResolvingPreview {
		return
	}
	if !ok {
		enhanced = ""
	}
	s.source = SelectSource(t, enhanced)
	s.enhanced = enhanced != ""
	if s.source == "" {
		s.status = StatusFailed
		s.err = ErrNoSourceAvailable
		log.WithField("track", t.Name).Info("no preview available")
		return
	}
	s.status = StatusLoading
	if c.newEngine == nil {
		s.status = StatusFailed
		s.err = fmt.Errorf("%w: no audio engine", ErrEngineLoad)
		return
	}
	eng := c.newEngine()
	c.engine = eng
	eng.Load(s.source, Listener{
		OnReady: func() { c.onReady(gen) },
		OnEnded: func() { c.onEnded(gen) },
		OnError: func(err error) { c.onEngineError(gen, err) },
	})
}

func (c *Controller) onReady(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, live := c.current(gen)
	if !live || s.status != StatusLoading {
		return
	}
	s.status = StatusReady
	if s.wantsAutoPlay {
		c.startLocked()
	}
}

func (c *Controller) onEngineError(gen uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, live := c.current(gen)
	if !live || s.status == StatusFailed {
		return
	}
	c.stopTickerLocked()
	if c.engine != nil {
		c.engine.Pause()
	}
	s.status = StatusFailed
	s.err = fmt.Errorf("%w: %v", ErrEngineLoad, err)
	log.WithError(err).WithField("source", s.source).Warn("audio engine error")
}

// onEnded handles the engine's own end-of-track signal. Only a session that
// is playing at this moment advances; a session paused at its very end
// stays put.
func (c *Controller) onEnded(gen uint64) {
	c.mu.Lock()
	s, live := c.current(gen)
	if !live || s.status != StatusPlaying {
		c.mu.Unlock()
		return
	}
	gen, idx := c.endLocked()
	c.mu.Unlock()
	c.notify(gen, idx)
}

// tick samples progress and detects end of track for generation gen.
func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	s, live := c.current(gen)
	if !live || s.status != StatusPlaying {
		c.mu.Unlock()
		return
	}
	c.sampleLocked()
	if !c.engine.Ended() {
		c.mu.Unlock()
		return
	}
	gen, idx := c.endLocked()
	c.mu.Unlock()
	c.notify(gen, idx)
}

// sampleLocked moves elapsed forward to the engine position; it never moves
// backwards.
func (c *Controller) sampleLocked() {
	if c.engine == nil {
		return
	}
	if pos := c.engine.Position(); pos > c.sess.elapsed {
		c.sess.elapsed = pos
	}
}

// endLocked marks the session ended and starts the next one with auto play.
// It returns the new generation and index.
func (c *Controller) endLocked() (uint64, int) {
	c.stopTickerLocked()
	c.sess.status = StatusEnded
	next := c.playlist.Next(c.sess.index)
	gen, err := c.selectLocked(next, true)
	if err != nil {
		log.WithError(err).Warn("advance after end")
	}
	return gen, next
}

func (c *Controller) startLocked() error {
	s := c.sess
	if err := c.engine.Play(); err != nil {
		s.status = StatusFailed
		s.err = fmt.Errorf("%w: %v", ErrEngineLoad, err)
		return s.err
	}
	s.status = StatusPlaying
	c.startTickerLocked(s.gen)
	return nil
}

func (c *Controller) startTickerLocked(gen uint64) {
	c.stopTickerLocked()
	if c.interval <= 0 {
		return
	}
	stop := make(chan struct{})
	c.stopTicker = stop
	go func() {
		t := time.NewTicker(c.interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				c.tick(gen)
			}
		}
	}()
}

func (c *Controller) stopTickerLocked() {
	if c.stopTicker != nil {
		close(c.stopTicker)
		c.stopTicker = nil
	}
}
