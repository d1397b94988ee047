package domain

// AudioCue describes one sound source started alongside a phase.
type AudioCue struct {
	// Src is the clip location (file path or URL, backend dependent).
	Src string `json:"src" yaml:"src"`

	// Volume is the playback gain in [0..1].
	Volume float64 `json:"volume" yaml:"volume"`

	// Loop repeats the clip until stopped.
	Loop bool `json:"loop,omitempty" yaml:"loop,omitempty"`
}
