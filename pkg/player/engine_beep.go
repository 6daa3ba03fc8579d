//go:build (linux && cgo) || windows || darwin

package player

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

const (
	speakerRate   = beep.SampleRate(44100)
	maxClipBytes  = 10 << 20
	fetchDeadline = 15 * time.Second
)

var (
	speakerOnce sync.Once
	speakerErr  error
)

// initSpeaker opens the audio device once per process. Every clip is
// resampled to the device rate.
func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(speakerRate, speakerRate.N(time.Second/10))
	})
	return speakerErr
}

// beepEngine plays one MP3 preview clip through the shared speaker.
type beepEngine struct {
	client *http.Client

	mu       sync.Mutex
	listener Listener
	cancel   context.CancelFunc
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	ended    bool
	closed   bool
}

// NewBeepEngine returns an engine that downloads the clip with client and
// plays it on the default audio device.
func NewBeepEngine(client *http.Client) Engine {
	if client == nil {
		client = &http.Client{Timeout: fetchDeadline}
	}
	return &beepEngine{client: client}
}

// BeepEngineFactory adapts NewBeepEngine to EngineFactory.
func BeepEngineFactory(client *http.Client) EngineFactory {
	return func() Engine { return NewBeepEngine(client) }
}

func (e *beepEngine) Load(url string, l Listener) {
	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	e.listener = l
	e.cancel = cancel
	e.mu.Unlock()
	go e.load(ctx, url)
}

func (e *beepEngine) load(ctx context.Context, url string) {
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	data, err := fetchClip(ctx, e.client, url)
	if err == nil {
		err = initSpeaker()
	}
	if err == nil {
		streamer, format, err = mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		if streamer != nil {
			streamer.Close()
		}
		return
	}
	l := e.listener
	if err != nil {
		e.mu.Unlock()
		if l.OnError != nil {
			l.OnError(err)
		}
		return
	}
	e.streamer = streamer
	e.format = format
	ctrl := &beep.Ctrl{Streamer: beep.Resample(4, format.SampleRate, speakerRate, streamer), Paused: true}
	e.ctrl = ctrl
	e.mu.Unlock()

	// The callback runs on the speaker goroutine with the speaker locked.
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() { go e.finished(ctrl) })))
	if l.OnReady != nil {
		l.OnReady()
	}
}

func (e *beepEngine) finished(ctrl *beep.Ctrl) {
	e.mu.Lock()
	if e.closed || e.ctrl != ctrl {
		e.mu.Unlock()
		return
	}
	e.ended = true
	l := e.listener
	e.mu.Unlock()
	if l.OnEnded != nil {
		l.OnEnded()
	}
}

func (e *beepEngine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl == nil {
		return errors.New("no clip loaded")
	}
	speaker.Lock()
	e.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

func (e *beepEngine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl != nil {
		speaker.Lock()
		e.ctrl.Paused = true
		speaker.Unlock()
	}
}

func (e *beepEngine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := e.streamer.Position()
	speaker.Unlock()
	return e.format.SampleRate.D(pos)
}

func (e *beepEngine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		return 0
	}
	return e.format.SampleRate.D(e.streamer.Len())
}

func (e *beepEngine) Ended() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ended
}

func (e *beepEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	if e.cancel != nil {
		e.cancel()
	}
	if e.ctrl != nil {
		speaker.Lock()
		e.ctrl.Paused = true
		e.ctrl.Streamer = nil
		speaker.Unlock()
	}
	if e.streamer != nil {
		e.streamer.Close()
	}
	e.ctrl = nil
	e.streamer = nil
	e.listener = Listener{}
}

// fetchClip downloads a preview clip into memory.
func fetchClip(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch clip: %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxClipBytes))
}
