package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duvall/marquee/pkg/domain"
)

// recorder is a RunFunc that logs the played names in order.
type recorder struct {
	mu     sync.Mutex
	played []string
	block  chan struct{}
}

func (r *recorder) run(ctx context.Context, payload domain.Payload) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.played = append(r.played, payload.String("name", "?"))
	r.mu.Unlock()
	return nil
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.played))
	copy(out, r.played)
	return out
}

func payloadFor(name string) domain.Payload {
	return domain.Payload{"name": name}
}

func TestEnqueue_DrainsFIFO(t *testing.T) {
	rec := &recorder{}
	m := NewManager(rec.run, nil, WithSettle(time.Millisecond))

	m.Enqueue(payloadFor("A"))
	m.Enqueue(payloadFor("B"))
	m.Enqueue(payloadFor("C"))

	require.Eventually(t, func() bool { return !m.Draining() }, time.Second, 2*time.Millisecond)
	assert.Equal(t, []string{"A", "B", "C"}, rec.names())
	assert.Zero(t, m.Pending())
}

func TestEnqueue_RestartsDrainAfterIdle(t *testing.T) {
	rec := &recorder{}
	m := NewManager(rec.run, nil, WithSettle(time.Millisecond))

	m.Enqueue(payloadFor("A"))
	require.Eventually(t, func() bool { return !m.Draining() }, time.Second, 2*time.Millisecond)

	m.Enqueue(payloadFor("B"))
	require.Eventually(t, func() bool { return !m.Draining() }, time.Second, 2*time.Millisecond)

	assert.Equal(t, []string{"A", "B"}, rec.names())
}

func TestSkipCurrent_OnlyWhileActive(t *testing.T) {
	skips := 0
	rec := &recorder{block: make(chan struct{})}
	m := NewManager(rec.run, func() { skips++ }, WithSettle(time.Millisecond))

	// Idle queue: nothing to skip.
	m.SkipCurrent()
	assert.Zero(t, skips)

	m.Enqueue(payloadFor("A"))
	// The pop and the active flag flip under one lock; pending hitting zero
	// while draining means A is the active run.
	require.Eventually(t, func() bool { return m.Draining() && m.Pending() == 0 },
		time.Second, 2*time.Millisecond)

	m.SkipCurrent()
	assert.Equal(t, 1, skips)

	close(rec.block)
	require.Eventually(t, func() bool { return !m.Draining() }, time.Second, 2*time.Millisecond)
}

func TestStopAll_DiscardsPending(t *testing.T) {
	skips := 0
	rec := &recorder{block: make(chan struct{})}
	m := NewManager(rec.run, func() { skips++ }, WithSettle(time.Millisecond))

	m.Enqueue(payloadFor("A"))
	require.Eventually(t, func() bool { return m.Draining() && m.Pending() == 0 },
		time.Second, 2*time.Millisecond)
	m.Enqueue(payloadFor("B"))
	m.Enqueue(payloadFor("C"))

	m.StopAll()
	close(rec.block)
	require.Eventually(t, func() bool { return !m.Draining() }, time.Second, 2*time.Millisecond)

	// The active cut-in was cancelled; B and C never play.
	assert.Equal(t, 1, skips)
	assert.Equal(t, []string{"A"}, rec.names())
	assert.Zero(t, m.Pending())
}

func TestDepthCallback(t *testing.T) {
	var mu sync.Mutex
	var depths []int
	rec := &recorder{}
	m := NewManager(rec.run, nil,
		WithSettle(time.Millisecond),
		WithDepthFunc(func(d int) {
			mu.Lock()
			depths = append(depths, d)
			mu.Unlock()
		}),
	)

	m.Enqueue(payloadFor("A"))
	m.Enqueue(payloadFor("B"))
	require.Eventually(t, func() bool { return !m.Draining() }, time.Second, 2*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, depths)
	assert.Zero(t, depths[len(depths)-1], "depth settles at zero after the drain")
}
