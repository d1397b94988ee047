/*
Package marquee drives cinematic presentation overlays for virtual-tabletop
sessions: multi-phase timed sequences (intros, endings, character cut-ins)
over a shared scene, with cooperative skip, cross-client broadcast
synchronization, audio cues and guaranteed cleanup, plus a visual-novel
dialogue layer driven by a shared last-writer-wins state document.

# Concept

A sequence is pure data: an ordered list of phases, each a cheap synchronous
scene mutation plus optional audio cues and a skippable hold. The Director
owns one runner per sequence family; the runner enforces single-flight
execution, polls the skip token at every hold, and releases every timer,
audio handle and overlay node on both the completion and skip paths. The
broadcast relay mirrors every play and skip to all connected clients over a
pluggable message bus, each client executing its own independent timeline.

# Usage

	d, err := marquee.New()
	if err != nil {
		log.Fatal(err)
	}
	defer d.Close()

	d.RegisterStock() // sin city, machete, jojo ending, group intro, cut-in

	err = d.Play(ctx, themes.FamilySinCity, domain.Payload{
		"campaignName": "黑暗之城",
	})
	if errors.Is(err, domain.ErrBusy) {
		// an intro is already on stage; the repeat trigger is dropped
	}

	d.Skip(ctx, themes.FamilySinCity) // everyone's overlay tears down

Adapters under pkg/adapters connect the Director to the outside world: an
in-process loopback hub, a Redis Pub/Sub bus for multi-host sessions, a chi
HTTP control panel, and a speaker-backed audio player.
*/
package marquee
