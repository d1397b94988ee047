package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/duvall/marquee/pkg/ports"
)

// ErrNoSelection is returned when no performer is selected.
var ErrNoSelection = errors.New("no performer selected")

// Roster implements ports.Roster over a static performer list, for tests
// and standalone setups without a host actor provider.
type Roster struct {
	mu       sync.RWMutex
	selected *ports.Performer
	players  []ports.Performer
}

// NewRoster creates a roster with the given active players.
func NewRoster(players ...ports.Performer) *Roster {
	return &Roster{players: players}
}

// Select marks a performer as the current selection.
func (r *Roster) Select(p ports.Performer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = &p
}

// Selected returns the current selection.
func (r *Roster) Selected(ctx context.Context) (ports.Performer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.selected == nil {
		return ports.Performer{}, ErrNoSelection
	}
	return *r.selected, nil
}

// ActivePlayers returns the player list.
func (r *Roster) ActivePlayers(ctx context.Context) ([]ports.Performer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ports.Performer, len(r.players))
	copy(out, r.players)
	return out, nil
}
