// Package domain contains the core types of the marquee sequencer:
// sequence definitions, phases, audio cues, bus messages, lifecycle events
// and sentinel errors. It has no dependencies on adapters or the runtime.
package domain
