// Package ports defines the boundary interfaces of the sequencer: the
// message bus carrying broadcasts between clients, the media playback
// capability, the settings store for presets, and the read-only roster of
// performers. Adapters live under pkg/adapters.
package ports
