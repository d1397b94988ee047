// Package dsl builds sequence definitions: a fluent programmatic builder
// for themes, and a YAML form for user-authored cinematics.
package dsl

import (
	"fmt"
	"time"

	"github.com/duvall/marquee/pkg/domain"
	"github.com/duvall/marquee/pkg/scene"
)

// Builder assembles a SequenceDefinition phase by phase.
type Builder struct {
	def domain.SequenceDefinition
}

// New starts a definition for the given family.
func New(family string) *Builder {
	return &Builder{def: domain.SequenceDefinition{Family: family}}
}

// Design sets the reference resolution the phases lay out against.
func (b *Builder) Design(w, h float64) *Builder {
	b.def.Design = scene.Size{W: w, H: h}
	return b
}

// TailFade sets the audio ramp-down applied on natural completion.
func (b *Builder) TailFade(d time.Duration) *Builder {
	b.def.TailFade = d
	return b
}

// Teardown sets the overlay cleanup strategy.
func (b *Builder) Teardown(t domain.Teardown) *Builder {
	b.def.Teardown = t
	return b
}

// Queued routes the family through the FIFO queue manager.
func (b *Builder) Queued() *Builder {
	b.def.Queued = true
	return b
}

// Phase opens a new phase with the given name and mutation.
func (b *Builder) Phase(name string, mutate func(*domain.Context)) *PhaseBuilder {
	b.def.Phases = append(b.def.Phases, domain.Phase{Name: name, Mutate: mutate})
	return &PhaseBuilder{builder: b, index: len(b.def.Phases) - 1}
}

// Build validates and returns the definition.
func (b *Builder) Build() (domain.SequenceDefinition, error) {
	if b.def.Family == "" {
		return domain.SequenceDefinition{}, fmt.Errorf("sequence has no family id")
	}
	if len(b.def.Phases) == 0 {
		return domain.SequenceDefinition{}, fmt.Errorf("sequence %q has no phases", b.def.Family)
	}
	return b.def, nil
}

// MustBuild is Build for statically known-good theme definitions.
func (b *Builder) MustBuild() domain.SequenceDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// PhaseBuilder configures the phase opened by Builder.Phase.
type PhaseBuilder struct {
	builder *Builder
	index   int
}

func (p *PhaseBuilder) phase() *domain.Phase {
	return &p.builder.def.Phases[p.index]
}

// Hold sets the phase's skippable hold duration.
func (p *PhaseBuilder) Hold(d time.Duration) *PhaseBuilder {
	p.phase().Hold = d
	return p
}

// HoldFunc computes the hold from the run context.
func (p *PhaseBuilder) HoldFunc(fn func(*domain.Context) time.Duration) *PhaseBuilder {
	p.phase().HoldFunc = fn
	return p
}

// Cue starts an audio cue with the phase.
func (p *PhaseBuilder) Cue(src string, volume float64) *PhaseBuilder {
	p.phase().Audio = append(p.phase().Audio, domain.AudioCue{Src: src, Volume: volume})
	return p
}

// LoopCue starts a looping audio cue with the phase.
func (p *PhaseBuilder) LoopCue(src string, volume float64) *PhaseBuilder {
	p.phase().Audio = append(p.phase().Audio, domain.AudioCue{Src: src, Volume: volume, Loop: true})
	return p
}

// Phase closes this phase and opens the next.
func (p *PhaseBuilder) Phase(name string, mutate func(*domain.Context)) *PhaseBuilder {
	return p.builder.Phase(name, mutate)
}

// Build closes this phase and builds the definition.
func (p *PhaseBuilder) Build() (domain.SequenceDefinition, error) {
	return p.builder.Build()
}

// MustBuild closes this phase and builds, panicking on an invalid
// definition.
func (p *PhaseBuilder) MustBuild() domain.SequenceDefinition {
	return p.builder.MustBuild()
}
