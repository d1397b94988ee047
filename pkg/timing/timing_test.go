package timing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToken(t *testing.T) {
	var tok Token
	assert.False(t, tok.Requested())

	tok.Request()
	assert.True(t, tok.Requested())

	// Repeated requests stay requested.
	tok.Request()
	assert.True(t, tok.Requested())

	tok.Reset()
	assert.False(t, tok.Requested())
}

func TestWaitTick_FullDuration(t *testing.T) {
	start := time.Now()
	skipped := WaitTick(context.Background(), 50*time.Millisecond, 5*time.Millisecond, func() bool { return false })
	assert.False(t, skipped)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestWaitTick_SkipCutsShort(t *testing.T) {
	var tok Token
	go func() {
		time.Sleep(15 * time.Millisecond)
		tok.Request()
	}()

	start := time.Now()
	skipped := WaitTick(context.Background(), 5*time.Second, 2*time.Millisecond, tok.Requested)
	assert.True(t, skipped)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitTick_AlreadySkipped(t *testing.T) {
	var tok Token
	tok.Request()

	start := time.Now()
	skipped := WaitTick(context.Background(), 5*time.Second, 2*time.Millisecond, tok.Requested)
	assert.True(t, skipped)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestWaitTick_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	skipped := WaitTick(ctx, 5*time.Second, 2*time.Millisecond, nil)
	assert.True(t, skipped)
}

func TestWaitTick_ZeroDuration(t *testing.T) {
	assert.False(t, WaitTick(context.Background(), 0, DefaultTick, nil))
	assert.False(t, WaitTick(context.Background(), -time.Second, DefaultTick, nil))
}
