// Package queue serializes cut-in play requests: overlapping triggers are
// queued FIFO and drained one at a time so they never corrupt the shared
// overlay. The queue is not persisted; it lives only as long as the overlay.
package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/duvall/marquee/internal/logging"
	"github.com/duvall/marquee/pkg/domain"
)

// DefaultSettle is the pause between one cut-in finishing and the next
// starting, so back-to-back cards read as distinct beats.
const DefaultSettle = 250 * time.Millisecond

// RunFunc plays one payload to completion or skip. The manager calls it from
// the drain goroutine, one payload at a time.
type RunFunc func(ctx context.Context, payload domain.Payload) error

// SkipFunc cancels the active run.
type SkipFunc func()

// Manager is the cut-in queue: enqueue appends, a single background drain
// loop plays the front payload to completion-or-skip before pulling the
// next.
type Manager struct {
	run    RunFunc
	skip   SkipFunc
	settle time.Duration
	logger *slog.Logger

	onDepth func(int)

	mu       sync.Mutex
	items    []domain.Payload
	draining bool
	active   bool
}

// Option configures the Manager.
type Option func(*Manager)

// WithSettle sets the pause between drained items.
func WithSettle(d time.Duration) Option {
	return func(m *Manager) {
		m.settle = d
	}
}

// WithLogger sets the manager's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithDepthFunc registers a callback observing the queue depth after every
// change, for gauges and skip affordances.
func WithDepthFunc(fn func(int)) Option {
	return func(m *Manager) {
		m.onDepth = fn
	}
}

// NewManager creates a queue manager over the given run and skip functions.
func NewManager(run RunFunc, skip SkipFunc, opts ...Option) *Manager {
	m := &Manager{
		run:    run,
		skip:   skip,
		settle: DefaultSettle,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enqueue appends a payload and starts the drain loop if it is idle.
func (m *Manager) Enqueue(payload domain.Payload) {
	m.mu.Lock()
	m.items = append(m.items, payload)
	start := !m.draining
	if start {
		m.draining = true
	}
	depth := len(m.items)
	m.mu.Unlock()

	m.logger.Debug("cutin enqueued", "depth", depth)
	m.reportDepth(depth)
	if start {
		go m.drain()
	}
}

// Pending returns the number of queued payloads, including none for the one
// currently playing. A viewer skip affordance is shown while the queue is
// backed up.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Draining reports whether the drain loop is running.
func (m *Manager) Draining() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draining
}

// SkipCurrent cancels the cut-in now playing; the drain loop moves on to the
// next queued payload.
func (m *Manager) SkipCurrent() {
	m.mu.Lock()
	active := m.active
	m.mu.Unlock()
	if active && m.skip != nil {
		m.skip()
	}
}

// StopAll clears the queue and cancels the active run. Queued payloads are
// discarded without ever being played.
func (m *Manager) StopAll() {
	m.mu.Lock()
	dropped := len(m.items)
	m.items = nil
	active := m.active
	m.mu.Unlock()

	if dropped > 0 {
		m.logger.Debug("cutin queue cleared", "dropped", dropped)
	}
	m.reportDepth(0)
	if active && m.skip != nil {
		m.skip()
	}
}

func (m *Manager) reportDepth(depth int) {
	if m.onDepth != nil {
		m.onDepth(depth)
	}
}

func (m *Manager) drain() {
	for {
		m.mu.Lock()
		if len(m.items) == 0 {
			m.draining = false
			m.mu.Unlock()
			return
		}
		payload := m.items[0]
		m.items = m.items[1:]
		m.active = true
		depth := len(m.items)
		m.mu.Unlock()
		m.reportDepth(depth)

		err := m.run(context.Background(), payload)
		if err != nil && !errors.Is(err, domain.ErrBusy) {
			m.logger.Warn("cutin playback failed", "err", err)
		}

		m.mu.Lock()
		m.active = false
		empty := len(m.items) == 0
		m.mu.Unlock()

		if !empty {
			time.Sleep(m.settle)
		}
	}
}
