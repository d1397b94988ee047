// Package memory provides in-process adapters: a loopback message hub for
// single-host and test use, a settings store, and a static roster.
package memory

import (
	"context"
	"sync"

	"github.com/duvall/marquee/pkg/domain"
)

// Hub connects in-process bus endpoints. Emitting on one endpoint delivers
// synchronously to every other endpoint's handlers, matching the relay's
// assumption that a bus never echoes to its sender.
type Hub struct {
	mu    sync.RWMutex
	peers []*Bus
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// Join attaches a new endpoint, one per simulated client.
func (h *Hub) Join() *Bus {
	b := &Bus{hub: h, handlers: make(map[int]func(domain.Message))}
	h.mu.Lock()
	h.peers = append(h.peers, b)
	h.mu.Unlock()
	return b
}

func (h *Hub) deliver(from *Bus, msg domain.Message) {
	h.mu.RLock()
	peers := make([]*Bus, len(h.peers))
	copy(peers, h.peers)
	h.mu.RUnlock()

	for _, peer := range peers {
		if peer != from {
			peer.receive(msg)
		}
	}
}

// Bus is one client's endpoint on the hub.
type Bus struct {
	hub *Hub

	mu       sync.Mutex
	handlers map[int]func(domain.Message)
	nextID   int
}

// NewBus returns a standalone endpoint with no peers; emits go nowhere.
// Handy for single-client setups and tests that only need the interface.
func NewBus() *Bus {
	return NewHub().Join()
}

// Emit delivers the message to every other endpoint on the hub.
func (b *Bus) Emit(ctx context.Context, msg domain.Message) error {
	b.hub.deliver(b, msg)
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

func (b *Bus) receive(msg domain.Message) {
	b.mu.Lock()
	handlers := make([]func(domain.Message), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(msg)
	}
}
