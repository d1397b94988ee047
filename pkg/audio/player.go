// Package audio implements the sequencer's cue player: fire-and-forget
// playback of sound sources with per-cue volume, tracked handles, and a
// discrete-step fade-out so a sequence's last phase doesn't cut audio
// abruptly.
package audio

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/duvall/marquee/internal/logging"
	"github.com/duvall/marquee/pkg/domain"
	"github.com/duvall/marquee/pkg/ports"
	"github.com/duvall/marquee/pkg/timing"
)

// FadeSteps is the number of discrete volume steps a fade-out takes.
const FadeSteps = 10

// Handle controls one tracked cue.
type Handle struct {
	media   ports.MediaHandle
	volume  float64
	stopped atomic.Bool
}

// Stop halts the cue. Safe to call repeatedly and after natural end-of-clip.
func (h *Handle) Stop() {
	if h == nil || h.stopped.Swap(true) {
		return
	}
	if h.media != nil {
		h.media.Stop()
	}
}

// SetVolume adjusts the cue's gain while it plays.
func (h *Handle) SetVolume(v float64) {
	if h == nil || h.stopped.Load() {
		return
	}
	if h.media != nil {
		h.media.SetVolume(v)
	}
}

// Stopped reports whether the handle was stopped.
func (h *Handle) Stopped() bool {
	return h == nil || h.stopped.Load()
}

// CuePlayer starts audio cues against a backend and tracks the resulting
// handles so a sequence's cleanup can stop them together.
type CuePlayer struct {
	backend ports.MediaPlayer
	logger  *slog.Logger

	mu      sync.Mutex
	handles []*Handle
}

// Option configures the CuePlayer.
type Option func(*CuePlayer)

// WithLogger sets the player's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *CuePlayer) {
		p.logger = logger
	}
}

// NewCuePlayer creates a cue player over the given backend. A nil backend
// yields a player that tracks nothing and plays silence.
func NewCuePlayer(backend ports.MediaPlayer, opts ...Option) *CuePlayer {
	p := &CuePlayer{
		backend: backend,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play starts a cue. Fire and forget: a playback-start failure (missing
// file, autoplay restriction, no device) is logged and swallowed, returning
// a handle that is already stopped so the sequence proceeds without sound.
func (p *CuePlayer) Play(ctx context.Context, cue domain.AudioCue) *Handle {
	h := &Handle{volume: cue.Volume}

	if p.backend == nil {
		h.stopped.Store(true)
		return h
	}

	media, err := p.backend.Play(ctx, ports.MediaRequest{
		Src:    cue.Src,
		Volume: cue.Volume,
		Loop:   cue.Loop,
	})
	if err != nil || media == nil {
		p.logger.Debug("audio cue failed to start", "src", cue.Src, "err", err)
		h.stopped.Store(true)
		return h
	}

	h.media = media
	p.mu.Lock()
	p.handles = append(p.handles, h)
	p.mu.Unlock()
	return h
}

// Active returns the number of tracked cues not yet stopped.
func (p *CuePlayer) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, h := range p.handles {
		if !h.Stopped() {
			n++
		}
	}
	return n
}

// StopAll stops every tracked cue and forgets the handles. Idempotent.
func (p *CuePlayer) StopAll() {
	p.mu.Lock()
	handles := p.handles
	p.handles = nil
	p.mu.Unlock()

	for _, h := range handles {
		h.Stop()
	}
}

// FadeOut ramps one cue's volume to zero in FadeSteps discrete steps across
// d, then stops it. Blocks for at most d; honors context cancellation by
// stopping immediately.
func (p *CuePlayer) FadeOut(ctx context.Context, h *Handle, d time.Duration) {
	if h == nil || h.Stopped() {
		return
	}
	if d <= 0 {
		h.Stop()
		return
	}

	step := d / FadeSteps
	for i := 1; i <= FadeSteps; i++ {
		if h.Stopped() {
			return
		}
		if cancelled := timing.WaitTick(ctx, step, step, nil); cancelled {
			break
		}
		h.SetVolume(h.volume * float64(FadeSteps-i) / FadeSteps)
	}
	h.Stop()
}

// FadeOutAll fades every tracked cue concurrently and waits for all of them,
// then forgets the handles.
func (p *CuePlayer) FadeOutAll(ctx context.Context, d time.Duration) {
	p.mu.Lock()
	handles := p.handles
	p.handles = nil
	p.mu.Unlock()

	var wg sync.WaitGroup
	for _, h := range handles {
		wg.Add(1)
		go func(h *Handle) {
			defer wg.Done()
			p.FadeOut(ctx, h, d)
		}(h)
	}
	wg.Wait()
}
