package ports

import "context"

// Performer is the read-only record of one actor/token as the host exposes
// it: display identity plus portrait art. The sequencer never mutates host
// data.
type Performer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Title    string `json:"title,omitempty"`
	Portrait string `json:"portrait,omitempty"`
	UserID   string `json:"user_id,omitempty"`
}

// Roster provides the host's performer data to theme payload builders.
type Roster interface {
	// Selected returns the currently selected token's performer record.
	Selected(ctx context.Context) (Performer, error)

	// ActivePlayers lists the active non-privileged users' assigned
	// characters.
	ActivePlayers(ctx context.Context) ([]Performer, error)
}
