// Package beep implements the media playback port over the gopxl/beep
// speaker, decoding local wav/mp3/ogg files. Sequences only ever see the
// generic handle; a missing audio device degrades to silence.
package beep

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"

	"github.com/duvall/marquee/pkg/ports"
)

const mixRate = beep.SampleRate(44100)

// Player implements ports.MediaPlayer on the system speaker. The speaker is
// initialized lazily on the first Play so constructing a Player never
// touches the audio device.
type Player struct {
	once    sync.Once
	initErr error
	mixer   *beep.Mixer
}

// NewPlayer creates a speaker-backed media player.
func NewPlayer() *Player {
	return &Player{mixer: &beep.Mixer{}}
}

func (p *Player) init() error {
	p.once.Do(func() {
		if err := speaker.Init(mixRate, mixRate.N(100*time.Millisecond)); err != nil {
			p.initErr = fmt.Errorf("initializing speaker: %w", err)
			return
		}
		speaker.Play(p.mixer)
	})
	return p.initErr
}

// Play decodes and starts a clip. The returned handle survives natural
// end-of-clip: stopping a finished clip is a no-op.
func (p *Player) Play(ctx context.Context, req ports.MediaRequest) (ports.MediaHandle, error) {
	if err := p.init(); err != nil {
		return nil, err
	}

	f, err := os.Open(req.Src)
	if err != nil {
		return nil, fmt.Errorf("opening clip: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(req.Src)) {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("unsupported clip format: %s", req.Src)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decoding clip %s: %w", req.Src, err)
	}

	var src beep.Streamer = streamer
	if req.Loop {
		src = beep.Loop(-1, streamer)
	}
	if format.SampleRate != mixRate {
		src = beep.Resample(4, format.SampleRate, mixRate, src)
	}

	vol := &effects.Volume{
		Streamer: src,
		Base:     2,
		Volume:   gain(req.Volume),
		Silent:   req.Volume <= 0,
	}

	h := &handle{vol: vol, closer: streamer.Close}
	h.ctrl = &beep.Ctrl{Streamer: beep.Seq(vol, beep.Callback(h.finish))}

	speaker.Lock()
	p.mixer.Add(h.ctrl)
	speaker.Unlock()
	return h, nil
}

// gain maps a linear [0..1] volume onto the exponential Volume effect.
func gain(v float64) float64 {
	if v <= 0 {
		return -10
	}
	if v > 1 {
		v = 1
	}
	return math.Log2(v)
}

type handle struct {
	ctrl *beep.Ctrl
	vol  *effects.Volume

	mu     sync.Mutex
	done   bool
	closer func() error
}

// finish runs on the speaker goroutine when the clip ends naturally.
func (h *handle) finish() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.release()
}

// Stop halts playback and releases the decoder. Safe to call repeatedly.
func (h *handle) Stop() {
	speaker.Lock()
	h.ctrl.Paused = true
	h.ctrl.Streamer = nil
	speaker.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.release()
}

// SetVolume adjusts the gain while playing.
func (h *handle) SetVolume(v float64) {
	speaker.Lock()
	h.vol.Volume = gain(v)
	h.vol.Silent = v <= 0
	speaker.Unlock()
}

// release closes the decoder once. Caller holds h.mu.
func (h *handle) release() {
	if h.done {
		return
	}
	h.done = true
	if h.closer != nil {
		_ = h.closer()
	}
}
