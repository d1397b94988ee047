package vn

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/duvall/marquee/internal/logging"
	"github.com/duvall/marquee/pkg/domain"
	"github.com/duvall/marquee/pkg/ports"
)

// RenderFunc re-projects a snapshot into the client's overlay. Called after
// every local or remote state change.
type RenderFunc func(State)

// Store owns the local authoritative presentation state. Every mutation
// applies a shallow patch, bumps the version, emits the entire snapshot to
// peers, and re-renders locally. Remote snapshots replace the whole state
// (last writer wins) unless their version is older than what this client
// already produced or saw.
type Store struct {
	bus    ports.MessageBus
	sender string
	render RenderFunc
	logger *slog.Logger

	mu    sync.Mutex
	state State
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithRender sets the re-render callback.
func WithRender(render RenderFunc) Option {
	return func(s *Store) {
		s.render = render
	}
}

// NewStore creates a presentation store. The bus may be nil for a
// standalone (single-client) store; sender identifies this client on the
// wire.
func NewStore(bus ports.MessageBus, sender string, opts ...Option) *Store {
	s := &Store{
		bus:    bus,
		sender: sender,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetState returns a copy of the current state.
func (s *Store) GetState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Broadcast applies a shallow patch locally, then sends the entire
// resulting snapshot to all peers and re-renders.
func (s *Store) Broadcast(ctx context.Context, patch Patch) {
	s.mu.Lock()
	s.state.apply(patch)
	s.state.Version++
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.emit(ctx, snapshot)
	s.rerender(snapshot)
}

// ApplyRemote installs a received snapshot, last writer wins, and
// re-renders. Snapshots older than the local version are dropped; equal
// versions still win so two same-tick writers converge on whichever
// delivery arrived last (the documented clobber trade-off).
func (s *Store) ApplyRemote(snapshot State) {
	s.mu.Lock()
	if snapshot.Version < s.state.Version {
		s.logger.Debug("stale vn snapshot dropped",
			"got", snapshot.Version, "have", s.state.Version)
		s.mu.Unlock()
		return
	}
	s.state = snapshot.clone()
	s.mu.Unlock()

	s.rerender(snapshot)
}

// HandleMessage feeds a bus message into the store. Non-vn messages and the
// store's own echoes are ignored.
func (s *Store) HandleMessage(msg domain.Message) {
	if msg.Action != domain.ActionVNState || msg.Sender == s.sender {
		return
	}
	var snapshot State
	if err := json.Unmarshal(msg.Payload, &snapshot); err != nil {
		s.logger.Warn("malformed vn snapshot ignored", "err", err)
		return
	}
	s.ApplyRemote(snapshot)
}

// Open shows the visual-novel overlay on every client.
func (s *Store) Open(ctx context.Context) {
	open := true
	s.Broadcast(ctx, Patch{Open: &open})
}

// Close hides the overlay.
func (s *Store) Close(ctx context.Context) {
	open := false
	s.Broadcast(ctx, Patch{Open: &open})
}

// SetBackground replaces the background image.
func (s *Store) SetBackground(ctx context.Context, src string) {
	s.Broadcast(ctx, Patch{Background: &src})
}

// SetChars replaces the character roster wholesale.
func (s *Store) SetChars(ctx context.Context, chars []*Character) {
	s.Broadcast(ctx, Patch{Chars: chars})
}

// ShowDialogue displays the dialogue box with the given speaker and text.
func (s *Store) ShowDialogue(ctx context.Context, speaker, text string) {
	s.Broadcast(ctx, Patch{Dialogue: &DialogueState{Visible: true, Speaker: speaker, Text: text}})
}

// HideDialogue hides the dialogue box, keeping its last content.
func (s *Store) HideDialogue(ctx context.Context) {
	s.mu.Lock()
	d := s.state.Dialogue
	s.mu.Unlock()
	d.Visible = false
	s.Broadcast(ctx, Patch{Dialogue: &d})
}

// ActivateExclusive spotlights one speaker: exactly the named character's
// Active flag is set, every other roster member's is cleared. Unknown ids
// clear the whole roster.
func (s *Store) ActivateExclusive(ctx context.Context, charID string) {
	s.mu.Lock()
	chars := s.state.clone().Chars
	for _, c := range chars {
		c.Active = c.ID == charID
	}
	s.mu.Unlock()

	s.Broadcast(ctx, Patch{Chars: chars})
}

// SetSpeaking marks one character's Active flag without touching the rest
// of the roster. Voice-activity detection drives this path, deliberately
// allowing several simultaneous speakers.
func (s *Store) SetSpeaking(ctx context.Context, charID string, speaking bool) {
	s.mu.Lock()
	chars := s.state.clone().Chars
	found := false
	for _, c := range chars {
		if c.ID == charID {
			c.Active = speaking
			found = true
		}
	}
	s.mu.Unlock()

	if !found {
		return
	}
	s.Broadcast(ctx, Patch{Chars: chars})
}

func (s *Store) emit(ctx context.Context, snapshot State) {
	if s.bus == nil {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Error("vn snapshot marshal failed", "err", err)
		return
	}
	msg := domain.Message{Action: domain.ActionVNState, Sender: s.sender, Payload: raw}
	if err := s.bus.Emit(ctx, msg); err != nil {
		s.logger.Warn("vn snapshot emit failed", "err", err)
	}
}

func (s *Store) rerender(snapshot State) {
	if s.render != nil {
		s.render(snapshot)
	}
}
