// Package relay bridges the message bus and the local sequencer: outbound,
// it broadcasts play/skip commands so every peer runs the same show;
// inbound, it pattern-matches message actions onto the local registry,
// queue and visual-novel store, mirroring what a privileged local trigger
// would do.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/duvall/marquee/internal/logging"
	"github.com/duvall/marquee/pkg/domain"
	"github.com/duvall/marquee/pkg/ports"
	"github.com/duvall/marquee/pkg/queue"
	"github.com/duvall/marquee/pkg/registry"
	"github.com/duvall/marquee/pkg/vn"
)

// Relay wires one client's sequencer components to the shared bus.
type Relay struct {
	bus    ports.MessageBus
	reg    *registry.Registry
	vn     *vn.Store
	sender string
	logger *slog.Logger

	mu     sync.Mutex
	queues map[string]*queue.Manager
	off    func()
}

// Option configures the Relay.
type Option func(*Relay)

// WithLogger sets the relay's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

// WithVN attaches the visual-novel store so its snapshots ride the same
// dispatcher.
func WithVN(store *vn.Store) Option {
	return func(r *Relay) {
		r.vn = store
	}
}

// New creates a relay for this client. sender identifies the client on the
// wire so its own deliveries are never replayed locally.
func New(bus ports.MessageBus, reg *registry.Registry, sender string, opts ...Option) *Relay {
	r := &Relay{
		bus:    bus,
		reg:    reg,
		sender: sender,
		logger: logging.NewNop(),
		queues: make(map[string]*queue.Manager),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BindQueue routes a family's play commands through a queue manager instead
// of the single-flight runner (the cut-in family).
func (r *Relay) BindQueue(family string, q *queue.Manager) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queues[family] = q
}

// Start subscribes the relay to the bus.
func (r *Relay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.off != nil || r.bus == nil {
		return
	}
	r.off = r.bus.On(r.dispatch)
}

// Stop unsubscribes from the bus.
func (r *Relay) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.off != nil {
		r.off()
		r.off = nil
	}
}

// Play triggers a sequence everywhere: this client starts its local
// timeline immediately and independently emits the broadcast, never waiting
// for its own echo. Queued families enqueue instead of single-flighting.
func (r *Relay) Play(ctx context.Context, family string, payload domain.Payload) error {
	if !r.reg.Has(family) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownSequence, family)
	}

	r.emitPlay(ctx, family, payload)

	if q := r.queue(family); q != nil {
		q.Enqueue(payload)
		return nil
	}
	return r.reg.Start(ctx, family, payload)
}

// Skip cancels a family's run everywhere: local teardown plus a skip
// broadcast so each peer independently tears down its own overlay.
func (r *Relay) Skip(ctx context.Context, family string) {
	if r.bus != nil {
		if err := r.bus.Emit(ctx, domain.SkipMessage(r.sender, family)); err != nil {
			r.logger.Warn("skip broadcast failed", "family", family, "err", err)
		}
	}
	r.skipLocal(family)
}

func (r *Relay) queue(family string) *queue.Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queues[family]
}

func (r *Relay) emitPlay(ctx context.Context, family string, payload domain.Payload) {
	if r.bus == nil {
		return
	}
	msg, err := domain.PlayMessage(r.sender, family, payload)
	if err != nil {
		r.logger.Warn("play broadcast failed", "family", family, "err", err)
		return
	}
	if err := r.bus.Emit(ctx, msg); err != nil {
		r.logger.Warn("play broadcast failed", "family", family, "err", err)
	}
}

func (r *Relay) skipLocal(family string) {
	if q := r.queue(family); q != nil {
		q.SkipCurrent()
		return
	}
	r.reg.Skip(family)
}

// dispatch routes one received message the way a local trigger would run.
// A failing sequence on this client must never affect the peers, so every
// branch swallows its own errors.
func (r *Relay) dispatch(msg domain.Message) {
	if msg.Sender == r.sender {
		return
	}

	switch msg.Action {
	case domain.ActionPlay:
		var payload domain.Payload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				r.logger.Warn("malformed play payload ignored", "family", msg.Family, "err", err)
				return
			}
		}
		if q := r.queue(msg.Family); q != nil {
			q.Enqueue(payload)
			return
		}
		// A busy family drops the request, same as a local repeat trigger.
		if err := r.reg.Start(context.Background(), msg.Family, payload); err != nil &&
			!errors.Is(err, domain.ErrBusy) {
			r.logger.Warn("broadcast play failed", "family", msg.Family, "err", err)
		}

	case domain.ActionSkip:
		r.skipLocal(msg.Family)

	case domain.ActionVNState:
		if r.vn != nil {
			r.vn.HandleMessage(msg)
		}

	default:
		r.logger.Debug("unhandled bus action", "action", msg.Action)
	}
}
