package domain

import (
	"context"
	"time"
)

// SequenceEvent describes one lifecycle transition of a running sequence.
type SequenceEvent struct {
	Family    string        `json:"family"`
	Phase     int           `json:"phase"`
	PhaseName string        `json:"phase_name,omitempty"`
	Skipped   bool          `json:"skipped,omitempty"`
	Elapsed   time.Duration `json:"elapsed,omitempty"`
}

// LifecycleHooks defines callbacks for sequencer observability. Any field
// may be nil.
type LifecycleHooks struct {
	OnSequenceStart func(context.Context, *SequenceEvent)
	OnPhaseEnter    func(context.Context, *SequenceEvent)
	OnPhaseLeave    func(context.Context, *SequenceEvent)
	OnSkip          func(context.Context, *SequenceEvent)
	OnCleanup       func(context.Context, *SequenceEvent)
}

// JoinHooks merges hook sets so metrics and user hooks can both observe the
// same runner. Callbacks fire in argument order.
func JoinHooks(sets ...LifecycleHooks) LifecycleHooks {
	join := func(pick func(LifecycleHooks) func(context.Context, *SequenceEvent)) func(context.Context, *SequenceEvent) {
		var fns []func(context.Context, *SequenceEvent)
		for _, s := range sets {
			if fn := pick(s); fn != nil {
				fns = append(fns, fn)
			}
		}
		if len(fns) == 0 {
			return nil
		}
		return func(ctx context.Context, ev *SequenceEvent) {
			for _, fn := range fns {
				fn(ctx, ev)
			}
		}
	}

	return LifecycleHooks{
		OnSequenceStart: join(func(h LifecycleHooks) func(context.Context, *SequenceEvent) { return h.OnSequenceStart }),
		OnPhaseEnter:    join(func(h LifecycleHooks) func(context.Context, *SequenceEvent) { return h.OnPhaseEnter }),
		OnPhaseLeave:    join(func(h LifecycleHooks) func(context.Context, *SequenceEvent) { return h.OnPhaseLeave }),
		OnSkip:          join(func(h LifecycleHooks) func(context.Context, *SequenceEvent) { return h.OnSkip }),
		OnCleanup:       join(func(h LifecycleHooks) func(context.Context, *SequenceEvent) { return h.OnCleanup }),
	}
}
