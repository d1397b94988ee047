package audio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duvall/marquee/pkg/domain"
	"github.com/duvall/marquee/pkg/ports"
)

type fakeBackend struct {
	mu      sync.Mutex
	failAll bool
	handles []*fakeHandle
}

type fakeHandle struct {
	mu      sync.Mutex
	volumes []float64
	stops   int
}

func (h *fakeHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stops++
}

func (h *fakeHandle) SetVolume(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volumes = append(h.volumes, v)
}

func (b *fakeBackend) Play(ctx context.Context, req ports.MediaRequest) (ports.MediaHandle, error) {
	if b.failAll {
		return nil, errors.New("no audio device")
	}
	h := &fakeHandle{}
	b.mu.Lock()
	b.handles = append(b.handles, h)
	b.mu.Unlock()
	return h, nil
}

func TestPlay_TracksHandles(t *testing.T) {
	backend := &fakeBackend{}
	p := NewCuePlayer(backend)

	h := p.Play(context.Background(), domain.AudioCue{Src: "stinger.wav", Volume: 0.9})
	require.NotNil(t, h)
	assert.False(t, h.Stopped())
	assert.Equal(t, 1, p.Active())
}

func TestPlay_FailureIsSwallowed(t *testing.T) {
	p := NewCuePlayer(&fakeBackend{failAll: true})

	// A failed start never blocks a sequence: the handle comes back already
	// stopped and the player tracks nothing.
	h := p.Play(context.Background(), domain.AudioCue{Src: "missing.ogg"})
	require.NotNil(t, h)
	assert.True(t, h.Stopped())
	assert.Zero(t, p.Active())
}

func TestPlay_NilBackend(t *testing.T) {
	p := NewCuePlayer(nil)
	h := p.Play(context.Background(), domain.AudioCue{Src: "theme.mp3"})
	require.NotNil(t, h)
	assert.True(t, h.Stopped())
}

func TestStopAll_Idempotent(t *testing.T) {
	backend := &fakeBackend{}
	p := NewCuePlayer(backend)
	p.Play(context.Background(), domain.AudioCue{Src: "a.wav"})
	p.Play(context.Background(), domain.AudioCue{Src: "b.wav"})

	p.StopAll()
	p.StopAll()

	assert.Zero(t, p.Active())
	for _, h := range backend.handles {
		h.mu.Lock()
		assert.Equal(t, 1, h.stops, "repeated StopAll must not re-stop handles")
		h.mu.Unlock()
	}
}

func TestHandle_StopAfterNaturalEnd(t *testing.T) {
	backend := &fakeBackend{}
	p := NewCuePlayer(backend)
	h := p.Play(context.Background(), domain.AudioCue{Src: "a.wav"})

	h.Stop()
	h.Stop()

	backend.handles[0].mu.Lock()
	defer backend.handles[0].mu.Unlock()
	assert.Equal(t, 1, backend.handles[0].stops)
}

func TestFadeOut_RampsThenStops(t *testing.T) {
	backend := &fakeBackend{}
	p := NewCuePlayer(backend)
	h := p.Play(context.Background(), domain.AudioCue{Src: "theme.ogg", Volume: 1.0})

	p.FadeOut(context.Background(), h, 50*time.Millisecond)

	assert.True(t, h.Stopped())
	fh := backend.handles[0]
	fh.mu.Lock()
	defer fh.mu.Unlock()
	require.NotEmpty(t, fh.volumes)
	for i := 1; i < len(fh.volumes); i++ {
		assert.Less(t, fh.volumes[i], fh.volumes[i-1], "fade volume must decrease monotonically")
	}
	assert.InDelta(t, 0, fh.volumes[len(fh.volumes)-1], 1e-9)
	assert.Equal(t, 1, fh.stops)
}

func TestFadeOut_ZeroDurationStopsImmediately(t *testing.T) {
	backend := &fakeBackend{}
	p := NewCuePlayer(backend)
	h := p.Play(context.Background(), domain.AudioCue{Src: "theme.ogg", Volume: 1.0})

	p.FadeOut(context.Background(), h, 0)

	assert.True(t, h.Stopped())
	backend.handles[0].mu.Lock()
	defer backend.handles[0].mu.Unlock()
	assert.Empty(t, backend.handles[0].volumes)
}

func TestFadeOutAll_WaitsForEveryCue(t *testing.T) {
	backend := &fakeBackend{}
	p := NewCuePlayer(backend)
	p.Play(context.Background(), domain.AudioCue{Src: "a.ogg", Volume: 0.8})
	p.Play(context.Background(), domain.AudioCue{Src: "b.ogg", Volume: 0.6})

	p.FadeOutAll(context.Background(), 30*time.Millisecond)

	assert.Zero(t, p.Active())
	for _, h := range backend.handles {
		h.mu.Lock()
		assert.Equal(t, 1, h.stops)
		h.mu.Unlock()
	}
}
