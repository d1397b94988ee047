package sequencer

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duvall/marquee/pkg/audio"
	"github.com/duvall/marquee/pkg/domain"
	"github.com/duvall/marquee/pkg/ports"
	"github.com/duvall/marquee/pkg/scene"
)

// stubMedia records playback requests and the handles it hands out.
type stubMedia struct {
	mu      sync.Mutex
	handles []*stubHandle
}

type stubHandle struct {
	mu      sync.Mutex
	src     string
	volume  float64
	stopped bool
}

func (h *stubHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
}

func (h *stubHandle) SetVolume(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = v
}

func (h *stubHandle) Stopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

func (m *stubMedia) Play(ctx context.Context, req ports.MediaRequest) (ports.MediaHandle, error) {
	h := &stubHandle{src: req.Src, volume: req.Volume}
	m.mu.Lock()
	m.handles = append(m.handles, h)
	m.mu.Unlock()
	return h, nil
}

func (m *stubMedia) playing() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, h := range m.handles {
		if !h.Stopped() {
			n++
		}
	}
	return n
}

func newTestRunner(family string, opts ...Option) (*Runner, *scene.Stage, *stubMedia) {
	stage := scene.NewStage(scene.Size{W: 1920, H: 1080})
	media := &stubMedia{}
	player := audio.NewCuePlayer(media)
	opts = append([]Option{WithTick(2 * time.Millisecond)}, opts...)
	return NewRunner(family, stage, player, opts...), stage, media
}

func phasesOf(holds ...time.Duration) []domain.Phase {
	out := make([]domain.Phase, len(holds))
	for i, h := range holds {
		out[i] = domain.Phase{Name: fmt.Sprintf("phase-%d", i), Hold: h}
	}
	return out
}

func TestRun_SingleFlight(t *testing.T) {
	r, stage, _ := newTestRunner("intro")
	def := domain.SequenceDefinition{Family: "intro", Phases: phasesOf(80 * time.Millisecond)}

	require.NoError(t, r.Start(context.Background(), def, nil))
	assert.True(t, r.Playing())

	// The second request mounts nothing and mutates nothing.
	err := r.Start(context.Background(), def, nil)
	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.ErrorIs(t, r.Run(context.Background(), def, nil), domain.ErrBusy)
	assert.Len(t, stage.Root().Children(), 1)

	require.Eventually(t, func() bool { return !r.Playing() }, time.Second, 5*time.Millisecond)

	// The family is free again after cleanup.
	require.NoError(t, r.Run(context.Background(), def, nil))
}

func TestRun_PhaseOrderAndTiming(t *testing.T) {
	var mu sync.Mutex
	var entered []string
	hooks := domain.LifecycleHooks{
		OnPhaseEnter: func(_ context.Context, ev *domain.SequenceEvent) {
			mu.Lock()
			entered = append(entered, ev.PhaseName)
			mu.Unlock()
		},
	}

	r, _, _ := newTestRunner("intro", WithHooks(hooks))
	def := domain.SequenceDefinition{
		Family: "intro",
		Phases: phasesOf(30*time.Millisecond, 30*time.Millisecond, 30*time.Millisecond),
	}

	start := time.Now()
	require.NoError(t, r.Run(context.Background(), def, nil))

	assert.Equal(t, []string{"phase-0", "phase-1", "phase-2"}, entered)
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond,
		"phase n+1 must not start before phase n's hold elapsed")
}

func TestSkip_AtEveryPhase(t *testing.T) {
	for skipAt := 0; skipAt < 3; skipAt++ {
		t.Run(fmt.Sprintf("skip during phase %d", skipAt), func(t *testing.T) {
			var mu sync.Mutex
			var mutated []int

			var r *Runner
			hooks := domain.LifecycleHooks{
				OnPhaseEnter: func(_ context.Context, ev *domain.SequenceEvent) {
					if ev.Phase == skipAt {
						go r.Skip()
					}
				},
			}
			var stage *scene.Stage
			var media *stubMedia
			r, stage, media = newTestRunner("intro", WithHooks(hooks))

			def := domain.SequenceDefinition{Family: "intro", Teardown: domain.TeardownUnmount}
			for i := 0; i < 3; i++ {
				i := i
				def.Phases = append(def.Phases, domain.Phase{
					Name: fmt.Sprintf("phase-%d", i),
					Mutate: func(c *domain.Context) {
						mu.Lock()
						mutated = append(mutated, i)
						mu.Unlock()
						c.After(time.Hour, func() {})
					},
					Audio: []domain.AudioCue{{Src: fmt.Sprintf("clip-%d.ogg", i), Volume: 0.8}},
					Hold:  10 * time.Second,
				})
			}

			start := time.Now()
			require.NoError(t, r.Run(context.Background(), def, nil))
			assert.Less(t, time.Since(start), 5*time.Second, "skip short-circuits the remaining holds")

			// Cleanup totality: no timers, no audio, no overlay, not playing.
			assert.Zero(t, r.PendingTimers())
			assert.Zero(t, media.playing())
			assert.Nil(t, stage.Mounted("intro"))
			assert.Empty(t, stage.Root().Children())
			assert.False(t, r.Playing())

			// Phases after the skip never mutate the scene.
			mu.Lock()
			defer mu.Unlock()
			for _, i := range mutated {
				assert.LessOrEqual(t, i, skipAt)
			}
		})
	}
}

func TestSkip_Idempotent(t *testing.T) {
	r, stage, _ := newTestRunner("intro")

	// Skip with no active run is a harmless no-op.
	r.Skip()

	def := domain.SequenceDefinition{Family: "intro", Phases: phasesOf(10 * time.Second)}
	require.NoError(t, r.Start(context.Background(), def, nil))

	r.Skip()
	r.Skip()
	r.Skip()

	require.Eventually(t, func() bool { return !r.Playing() }, time.Second, 5*time.Millisecond)
	assert.Nil(t, stage.Mounted("intro"))

	// A skipped family plays again from scratch.
	require.NoError(t, r.Run(context.Background(), domain.SequenceDefinition{
		Family: "intro",
		Phases: phasesOf(5 * time.Millisecond),
	}, nil))
}

func TestMutatePanic_RunsCleanup(t *testing.T) {
	var cleaned bool
	hooks := domain.LifecycleHooks{
		OnCleanup: func(_ context.Context, ev *domain.SequenceEvent) {
			cleaned = true
			assert.True(t, ev.Skipped)
		},
	}

	r, stage, _ := newTestRunner("intro", WithHooks(hooks))
	secondRan := false
	def := domain.SequenceDefinition{
		Family: "intro",
		Phases: []domain.Phase{
			{Name: "boom", Mutate: func(*domain.Context) { panic("malformed payload") }},
			{Name: "after", Mutate: func(*domain.Context) { secondRan = true }},
		},
	}

	require.NoError(t, r.Run(context.Background(), def, nil))

	assert.True(t, cleaned)
	assert.False(t, secondRan, "a panicking phase skips the rest of the run")
	assert.Nil(t, stage.Mounted("intro"))
	assert.False(t, r.Playing())
}

func TestCleanup_TeardownClear(t *testing.T) {
	r, stage, _ := newTestRunner("cutin")
	def := domain.SequenceDefinition{
		Family:   "cutin",
		Teardown: domain.TeardownClear,
		Phases: []domain.Phase{{
			Name: "card",
			Mutate: func(c *domain.Context) {
				c.Root.Append(scene.El("div").Class("cutin-card"))
			},
			Hold: 5 * time.Millisecond,
		}},
	}

	require.NoError(t, r.Run(context.Background(), def, nil))

	mount := stage.Mounted("cutin")
	require.NotNil(t, mount, "clear keeps the overlay root as the hidden baseline")
	assert.Empty(t, mount.Children())
}

func TestCleanup_StopsAudioOnCompletion(t *testing.T) {
	r, _, media := newTestRunner("intro")
	def := domain.SequenceDefinition{
		Family: "intro",
		Phases: []domain.Phase{{
			Name:  "theme",
			Audio: []domain.AudioCue{{Src: "theme.ogg", Volume: 0.8, Loop: true}},
			Hold:  10 * time.Millisecond,
		}},
	}

	require.NoError(t, r.Run(context.Background(), def, nil))
	assert.Zero(t, media.playing(), "looping cues must not outlive the run")
}

func TestCleanup_TailFadeRampsVolume(t *testing.T) {
	r, _, media := newTestRunner("intro")
	def := domain.SequenceDefinition{
		Family:   "intro",
		TailFade: 40 * time.Millisecond,
		Phases: []domain.Phase{{
			Name:  "theme",
			Audio: []domain.AudioCue{{Src: "theme.ogg", Volume: 0.8, Loop: true}},
			Hold:  10 * time.Millisecond,
		}},
	}

	require.NoError(t, r.Run(context.Background(), def, nil))

	require.Len(t, media.handles, 1)
	h := media.handles[0]
	assert.True(t, h.Stopped())
	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Less(t, h.volume, 0.8, "tail fade lowers the volume before stopping")
}

func TestOverlayMount_DefaultRoot(t *testing.T) {
	var rootClass bool
	r, stage, _ := newTestRunner("intro")
	def := domain.SequenceDefinition{
		Family: "intro",
		Design: scene.Size{W: 1920, H: 1080},
		Phases: []domain.Phase{{
			Name: "check",
			Mutate: func(c *domain.Context) {
				rootClass = c.Root.HasClass("intro-overlay")
			},
		}},
		Teardown: domain.TeardownClear,
	}

	require.NoError(t, r.Run(context.Background(), def, nil))
	assert.True(t, rootClass)
	require.NotNil(t, stage.Mounted("intro"))
	assert.Contains(t, stage.Mounted("intro").Style["transform"], "scale(")
}
