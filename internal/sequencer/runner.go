// Package sequencer implements the phase state machine at the heart of
// marquee: it executes a SequenceDefinition's phases in order over the
// family's overlay, starts and tracks audio cues, honors the cooperative
// skip token at every hold, and guarantees cleanup of timers, audio and
// overlay nodes on every exit path.
package sequencer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/duvall/marquee/internal/logging"
	"github.com/duvall/marquee/pkg/audio"
	"github.com/duvall/marquee/pkg/domain"
	"github.com/duvall/marquee/pkg/scene"
	"github.com/duvall/marquee/pkg/timing"
)

// Runner owns one sequence family's execution state: the single-flight
// playing flag, the skip token, and the handle lists of the in-flight run.
// Exactly one instance may be active per family at a time.
type Runner struct {
	family string
	stage  *scene.Stage
	player *audio.CuePlayer
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	tick   time.Duration

	mu      sync.Mutex
	playing bool
	skip    timing.Token
	timers  []*time.Timer
}

// Option configures the Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithHooks registers lifecycle hooks for observability.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.hooks = hooks
	}
}

// WithTick sets the skip-poll granularity of phase holds.
func WithTick(tick time.Duration) Option {
	return func(r *Runner) {
		r.tick = tick
	}
}

// NewRunner creates a runner for one sequence family.
func NewRunner(family string, stage *scene.Stage, player *audio.CuePlayer, opts ...Option) *Runner {
	r := &Runner{
		family: family,
		stage:  stage,
		player: player,
		logger: logging.NewNop(),
		tick:   timing.DefaultTick,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Family returns the runner's sequence family id.
func (r *Runner) Family() string {
	return r.family
}

// Playing reports whether an instance is currently active.
func (r *Runner) Playing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playing
}

// Skip requests cooperative cancellation of the active run. The in-flight
// hold notices within one poll tick and the run jumps straight to cleanup.
// Calling Skip with no active run, or repeatedly, is a harmless no-op.
func (r *Runner) Skip() {
	r.mu.Lock()
	playing := r.playing
	if playing {
		r.skip.Request()
	}
	r.mu.Unlock()

	if playing {
		if r.hooks.OnSkip != nil {
			r.hooks.OnSkip(context.Background(), &domain.SequenceEvent{Family: r.family, Skipped: true})
		}
		r.logger.Debug("skip requested", "family", r.family)
	}
}

// PendingTimers returns the number of tracked timers not yet fired or
// cleared.
func (r *Runner) PendingTimers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// Run executes the definition to completion or skip, then cleans up. It
// returns domain.ErrBusy immediately when an instance of the family is
// already playing; the second request mounts nothing and mutates nothing.
func (r *Runner) Run(ctx context.Context, def domain.SequenceDefinition, payload domain.Payload) error {
	if err := r.begin(); err != nil {
		return err
	}
	r.perform(ctx, def, payload)
	return nil
}

// Start is Run with the phase loop moved to its own goroutine: the busy
// check happens synchronously, the show plays in the background.
func (r *Runner) Start(ctx context.Context, def domain.SequenceDefinition, payload domain.Payload) error {
	if err := r.begin(); err != nil {
		return err
	}
	go r.perform(ctx, def, payload)
	return nil
}

// begin flips the single-flight flag. On the false→true transition the
// handle lists start empty and the skip token is fresh.
func (r *Runner) begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.playing {
		return domain.ErrBusy
	}
	r.playing = true
	r.skip.Reset()
	r.timers = nil
	return nil
}

func (r *Runner) perform(ctx context.Context, def domain.SequenceDefinition, payload domain.Payload) {
	started := time.Now()

	root := r.stage.EnsureMounted(def.Family, func() *scene.Node {
		return scene.El("div").Class(def.Family + "-overlay")
	})
	if def.Design.W > 0 && def.Design.H > 0 {
		r.stage.Fit(def.Family, def.Design)
	}

	sc := &domain.Context{
		Family:  def.Family,
		Payload: payload,
		Stage:   r.stage,
		Root:    root,
		Vars:    make(map[string]any),
	}
	sc.BindScheduler(r.schedule)

	cleanedUp := false
	skipped := false
	lastPhase := -1

	// Both the normal end-of-run path and the deferred guard may reach
	// cleanup; the flag makes the second arrival a no-op.
	cleanup := func() {
		if cleanedUp {
			return
		}
		cleanedUp = true
		r.cleanup(ctx, def, skipped, lastPhase, started)
	}
	defer cleanup()

	if r.hooks.OnSequenceStart != nil {
		r.hooks.OnSequenceStart(ctx, &domain.SequenceEvent{Family: def.Family})
	}
	r.logger.Debug("sequence started", "family", def.Family, "phases", len(def.Phases))

	for i, phase := range def.Phases {
		lastPhase = i
		ev := &domain.SequenceEvent{Family: def.Family, Phase: i, PhaseName: phase.Name}
		if r.hooks.OnPhaseEnter != nil {
			r.hooks.OnPhaseEnter(ctx, ev)
		}

		skipped = r.mutate(sc, phase, i)
		if !skipped {
			for _, cue := range phase.Audio {
				r.player.Play(ctx, cue)
			}
			skipped = timing.WaitTick(ctx, phase.HoldFor(sc), r.tick, r.skip.Requested)
		}

		if r.hooks.OnPhaseLeave != nil {
			ev.Skipped = skipped
			r.hooks.OnPhaseLeave(ctx, ev)
		}
		if skipped {
			break
		}
	}

	cleanup()
}

// mutate applies a phase's scene changes. A panicking mutate (malformed
// payload, broken theme) is logged and treated as an implicit skip so
// cleanup still runs and the other phases never see a half-applied overlay.
func (r *Runner) mutate(sc *domain.Context, phase domain.Phase, index int) (skipped bool) {
	if phase.Mutate == nil {
		return false
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("phase mutate panicked, skipping sequence",
				"family", r.family, "phase", index, "phase_name", phase.Name, "err", rec)
			skipped = true
		}
	}()
	phase.Mutate(sc)
	return false
}

// schedule registers a tracked one-shot timer owned by the current run.
func (r *Runner) schedule(d time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.playing {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		fn()
		r.mu.Lock()
		r.forgetTimer(t)
		r.mu.Unlock()
	})
	r.timers = append(r.timers, t)
}

// forgetTimer drops a fired timer from the tracked list. Caller holds r.mu.
func (r *Runner) forgetTimer(t *time.Timer) {
	for i, other := range r.timers {
		if other == t {
			r.timers = append(r.timers[:i], r.timers[i+1:]...)
			return
		}
	}
}

// cleanup releases everything the run owns: tracked timers are stopped,
// tracked audio is stopped (with the definition's tail fade on natural
// completion), the overlay is cleared or unmounted, and the single-flight
// flag resets. After cleanup no timer is pending, no cue is playing and no
// sequence-owned node remains visible.
func (r *Runner) cleanup(ctx context.Context, def domain.SequenceDefinition, skipped bool, lastPhase int, started time.Time) {
	r.mu.Lock()
	timers := r.timers
	r.timers = nil
	r.mu.Unlock()

	for _, t := range timers {
		t.Stop()
	}

	if skipped || def.TailFade <= 0 {
		r.player.StopAll()
	} else {
		r.player.FadeOutAll(ctx, def.TailFade)
	}

	if def.Teardown == domain.TeardownClear {
		r.stage.Clear(def.Family)
	} else {
		r.stage.Unmount(def.Family)
	}

	r.mu.Lock()
	r.playing = false
	r.mu.Unlock()

	ev := &domain.SequenceEvent{
		Family:  def.Family,
		Phase:   lastPhase,
		Skipped: skipped,
		Elapsed: time.Since(started),
	}
	if r.hooks.OnCleanup != nil {
		r.hooks.OnCleanup(ctx, ev)
	}
	r.logger.Debug("sequence cleaned up",
		"family", def.Family, "skipped", skipped, "elapsed", ev.Elapsed)
}
