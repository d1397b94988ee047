// Package redis provides a message bus over Redis Pub/Sub and a settings
// store over Redis keys, for running several hosts against one session.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	backend "github.com/redis/go-redis/v9"

	"github.com/duvall/marquee/internal/logging"
	"github.com/duvall/marquee/pkg/domain"
)

const defaultChannel = "marquee:events"

// Bus implements ports.MessageBus over Redis Pub/Sub. Redis echoes
// publications back to the publisher, so the bus filters its own messages
// by a bus-local origin id before they reach handlers, preserving the
// no-echo contract.
type Bus struct {
	client  *backend.Client
	channel string
	origin  string
	logger  *slog.Logger

	mu       sync.Mutex
	handlers map[int]func(domain.Message)
	nextID   int
	cancel   context.CancelFunc
}

type envelope struct {
	Origin  string         `json:"origin"`
	Message domain.Message `json:"message"`
}

// BusOption configures the Bus.
type BusOption func(*Bus)

// WithChannel sets the Pub/Sub channel name.
func WithChannel(channel string) BusOption {
	return func(b *Bus) {
		b.channel = channel
	}
}

// WithBusLogger sets the bus logger.
func WithBusLogger(logger *slog.Logger) BusOption {
	return func(b *Bus) {
		b.logger = logger
	}
}

// NewBus creates a bus from an existing client. origin must be unique per
// process (the director's client id serves).
func NewBus(client *backend.Client, origin string, opts ...BusOption) *Bus {
	b := &Bus{
		client:   client,
		channel:  defaultChannel,
		origin:   origin,
		logger:   logging.NewNop(),
		handlers: make(map[int]func(domain.Message)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start subscribes to the channel and begins dispatching until Close.
func (b *Bus) Start(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	// Force the subscription to be established before returning.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to %s: %w", b.channel, err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	b.mu.Lock()
	b.cancel = cancel
	b.mu.Unlock()

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-runCtx.Done():
				return
			case raw, ok := <-ch:
				if !ok {
					return
				}
				b.receive(raw.Payload)
			}
		}
	}()
	return nil
}

// Close stops the dispatch loop.
func (b *Bus) Close() {
	b.mu.Lock()
	cancel := b.cancel
	b.cancel = nil
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Emit publishes the message to every peer.
func (b *Bus) Emit(ctx context.Context, msg domain.Message) error {
	raw, err := json.Marshal(envelope{Origin: b.origin, Message: msg})
	if err != nil {
		return fmt.Errorf("marshaling bus message: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("publishing to %s: %w", b.channel, err)
	}
	return nil
}

// On registers a handler and returns its unsubscribe function.
func (b *Bus) On(handler func(domain.Message)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

func (b *Bus) receive(payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		b.logger.Warn("malformed bus payload ignored", "err", err)
		return
	}
	if env.Origin == b.origin {
		return
	}

	b.mu.Lock()
	handlers := make([]func(domain.Message), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(env.Message)
	}
}
