// Package timing provides the cancellable wait primitive every sequence
// phase blocks on, and the cooperative skip token the waits poll.
package timing

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultTick is the polling granularity of Wait: small enough that a skip
// feels immediate, large enough to stay negligible next to multi-second
// holds.
const DefaultTick = 40 * time.Millisecond

// Token is a cooperative cancellation flag shared between a running sequence
// and its skip controls. Safe for concurrent use.
type Token struct {
	flag atomic.Bool
}

// Request marks the token as skipped. Idempotent.
func (t *Token) Request() {
	t.flag.Store(true)
}

// Requested reports whether a skip has been requested.
func (t *Token) Requested() bool {
	return t.flag.Load()
}

// Reset clears the token for a fresh run.
func (t *Token) Reset() {
	t.flag.Store(false)
}

// Wait blocks for d, polling isSkipped every DefaultTick. It returns true
// when skipped (or the context is cancelled) before d elapsed, false after
// the full duration. It never returns an error and is safe with d <= 0.
func Wait(ctx context.Context, d time.Duration, isSkipped func() bool) bool {
	return WaitTick(ctx, d, DefaultTick, isSkipped)
}

// WaitTick is Wait with an explicit polling granularity.
func WaitTick(ctx context.Context, d time.Duration, tick time.Duration, isSkipped func() bool) bool {
	if isSkipped != nil && isSkipped() {
		return true
	}
	if d <= 0 {
		return false
	}
	if tick <= 0 {
		tick = DefaultTick
	}

	deadline := time.Now().Add(d)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		step := tick
		if remaining < step {
			step = remaining
		}

		select {
		case <-ctx.Done():
			return true
		case <-time.After(step):
		}

		if isSkipped != nil && isSkipped() {
			return true
		}
	}
}
