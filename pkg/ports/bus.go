package ports

import (
	"context"

	"github.com/duvall/marquee/pkg/domain"
)

// MessageBus relays play/skip/state commands to all connected peers.
// Delivery is at most once and unordered across peers; a bus does not echo a
// message back to its own handlers (the triggering client already ran the
// command locally and never waits for its echo).
type MessageBus interface {
	// Emit sends the message to every peer.
	Emit(ctx context.Context, msg domain.Message) error

	// On registers a handler for incoming messages and returns its
	// unsubscribe function.
	On(handler func(domain.Message)) (off func())
}
