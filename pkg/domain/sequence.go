package domain

import (
	"time"

	"github.com/duvall/marquee/pkg/scene"
)

// Payload carries the parameters of one play request. It is an opaque JSON
// object from the sequencer's point of view; themes decode it onto their own
// typed defaults (see DecodePayload).
type Payload map[string]any

// Teardown selects what cleanup does with the family overlay.
type Teardown int

const (
	// TeardownUnmount removes the whole overlay subtree from the stage.
	TeardownUnmount Teardown = iota
	// TeardownClear keeps the overlay root mounted but removes its children,
	// restoring the hidden baseline. Used by families with a persistent stage.
	TeardownClear
)

// Phase is one step of a sequence: a synchronous scene mutation, optional
// audio cues started alongside it, and a skippable hold before the next
// phase runs.
type Phase struct {
	// Name identifies the phase in events and logs.
	Name string

	// Mutate applies the phase's scene changes. It must be cheap and
	// synchronous; a skip request never interrupts it, only the hold after it.
	Mutate func(*Context)

	// Audio cues started when the phase begins. Tracked by the runner and
	// stopped on cleanup.
	Audio []AudioCue

	// Hold is how long the phase waits before the next phase runs.
	Hold time.Duration

	// HoldFunc, when set, computes the hold from the run context and takes
	// precedence over Hold.
	HoldFunc func(*Context) time.Duration
}

// HoldFor resolves the phase's hold duration for the given run.
func (p Phase) HoldFor(c *Context) time.Duration {
	if p.HoldFunc != nil {
		return p.HoldFunc(c)
	}
	return p.Hold
}

// SequenceDefinition is the static description of one playable cinematic:
// an ordered list of phases plus overlay metadata. Immutable once authored.
type SequenceDefinition struct {
	// Family is the sequence family id. It doubles as the overlay mount id,
	// so families render into disjoint subtrees.
	Family string

	// Design is the reference resolution the phases lay out against; the
	// stage scales it to fit the viewport.
	Design scene.Size

	// Phases run strictly in order.
	Phases []Phase

	// TailFade, when positive, ramps still-playing audio down over this
	// duration when the sequence completes naturally. Skips stop audio
	// immediately.
	TailFade time.Duration

	// Teardown selects the cleanup strategy for the overlay.
	Teardown Teardown

	// Queued marks the family as driven through the FIFO queue manager
	// (cut-ins) instead of the single-flight no-op behavior.
	Queued bool
}

// Context is passed to every phase of one run. It carries the payload, the
// overlay handles and accumulated state from prior phases.
type Context struct {
	// Family of the running sequence.
	Family string

	// Payload of the play request that started the run.
	Payload Payload

	// Stage is the shared scene the overlay is mounted on.
	Stage *scene.Stage

	// Root is the family's overlay root node. Phases build under it.
	Root *scene.Node

	// Vars accumulates state across phases of the same run.
	Vars map[string]any

	// schedule registers a tracked timer with the runner; released on cleanup.
	schedule func(time.Duration, func())
}

// After schedules fn after d on a runner-tracked timer. The timer is
// cancelled by cleanup, so phases can spawn short side-effect loops without
// leaking past the end of the run.
func (c *Context) After(d time.Duration, fn func()) {
	if c.schedule != nil {
		c.schedule(d, fn)
	}
}

// BindScheduler wires the runner's timer tracking into the context.
// Intended for the sequence runner; themes never call this.
func (c *Context) BindScheduler(schedule func(time.Duration, func())) {
	c.schedule = schedule
}

// String returns a payload field as a string, or fallback when absent.
func (p Payload) String(key, fallback string) string {
	if v, ok := p[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
