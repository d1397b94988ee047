package ports

import "context"

// MediaRequest asks the playback backend for one clip.
type MediaRequest struct {
	Src    string
	Volume float64
	Loop   bool
}

// MediaHandle controls one playing clip.
type MediaHandle interface {
	// Stop halts playback. Always safe to call, including after the clip
	// ended naturally or Stop was already called.
	Stop()

	// SetVolume adjusts the gain in [0..1] while playing.
	SetVolume(v float64)
}

// MediaPlayer starts clip playback. Implementations swallow environment
// restrictions (no audio device, autoplay policy) by returning an error the
// cue player logs and drops; a failed start never blocks a sequence.
type MediaPlayer interface {
	Play(ctx context.Context, req MediaRequest) (MediaHandle, error)
}
