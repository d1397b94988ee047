// Package registry keys sequences and their runner instances by family id.
// Each family's play/skip state lives on its own explicitly owned runner
// rather than in ambient package state, so families are isolated and tests
// can construct registries in isolation.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/duvall/marquee/internal/sequencer"
	"github.com/duvall/marquee/pkg/domain"
)

// Sequence is one registrable family: an id plus a definition factory.
// Themes whose phase list depends on the payload (one card per active
// player) build a fresh definition per play; fixed cinematics use Static.
type Sequence struct {
	Family string
	Queued bool
	Build  func(domain.Payload) (domain.SequenceDefinition, error)
}

// Static wraps a fixed definition as a registrable sequence.
func Static(def domain.SequenceDefinition) Sequence {
	return Sequence{
		Family: def.Family,
		Queued: def.Queued,
		Build: func(domain.Payload) (domain.SequenceDefinition, error) {
			return def, nil
		},
	}
}

type entry struct {
	seq    Sequence
	runner *sequencer.Runner
}

// Registry manages the registered sequence families.
type Registry struct {
	mu       sync.RWMutex
	families map[string]entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		families: make(map[string]entry),
	}
}

// Register adds a family. Re-registering replaces its sequence and runner.
func (r *Registry) Register(seq Sequence, runner *sequencer.Runner) error {
	if seq.Family == "" {
		return fmt.Errorf("sequence has no family id")
	}
	if seq.Build == nil {
		return fmt.Errorf("sequence %q has no definition", seq.Family)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.families[seq.Family] = entry{seq: seq, runner: runner}
	return nil
}

// Has reports whether a family is registered.
func (r *Registry) Has(family string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.families[family]
	return ok
}

// Queued reports whether the family is driven through the cut-in queue.
func (r *Registry) Queued(family string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.families[family].seq.Queued
}

// Families lists the registered family ids.
func (r *Registry) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.families))
	for id := range r.families {
		out = append(out, id)
	}
	return out
}

// Runner returns a family's runner instance.
func (r *Registry) Runner(family string) (*sequencer.Runner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.families[family]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSequence, family)
	}
	return e.runner, nil
}

// resolve builds the family's definition for one play.
func (r *Registry) resolve(family string, payload domain.Payload) (domain.SequenceDefinition, *sequencer.Runner, error) {
	r.mu.RLock()
	e, ok := r.families[family]
	r.mu.RUnlock()
	if !ok {
		return domain.SequenceDefinition{}, nil, fmt.Errorf("%w: %s", domain.ErrUnknownSequence, family)
	}
	def, err := e.seq.Build(payload)
	if err != nil {
		return domain.SequenceDefinition{}, nil, fmt.Errorf("building sequence %s: %w", family, err)
	}
	return def, e.runner, nil
}

// Play runs a family's sequence to completion or skip, blocking the caller.
// Returns domain.ErrUnknownSequence, domain.ErrInvalidPayload or
// domain.ErrBusy.
func (r *Registry) Play(ctx context.Context, family string, payload domain.Payload) error {
	def, runner, err := r.resolve(family, payload)
	if err != nil {
		return err
	}
	return runner.Run(ctx, def, payload)
}

// Start begins a family's sequence without waiting for it: the busy check
// is synchronous, the phases run in the background.
func (r *Registry) Start(ctx context.Context, family string, payload domain.Payload) error {
	def, runner, err := r.resolve(family, payload)
	if err != nil {
		return err
	}
	return runner.Start(ctx, def, payload)
}

// Skip requests cancellation of a family's active run. Unknown families and
// idle runners are no-ops.
func (r *Registry) Skip(family string) {
	runner, err := r.Runner(family)
	if err != nil {
		return
	}
	runner.Skip()
}
