// Package vn implements the visual-novel presentation layer: a shared
// mutable document (background, character roster, dialogue, free-form
// layers) that every client re-projects on every broadcast. The whole
// snapshot travels on each mutation; the last writer wins per field.
package vn

import "github.com/google/uuid"

// Side places a character on the left or right of the stage.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Character is one roster member: identity, placement, visual assets and
// live state.
type Character struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Side   Side    `json:"side"`
	Slot   int     `json:"slot"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	ZIndex int     `json:"z_index"`
	Scale  float64 `json:"scale"`
	Mirror bool    `json:"mirror"`

	Img       string `json:"img"`
	ActiveImg string `json:"active_img,omitempty"`

	Active   bool   `json:"active"`
	Visible  bool   `json:"visible"`
	PlayerID string `json:"player_id,omitempty"`
}

// NewCharacter creates a roster member with a fresh id and neutral
// placement defaults.
func NewCharacter(name string) *Character {
	return &Character{
		ID:      uuid.NewString(),
		Name:    name,
		Side:    SideLeft,
		Scale:   1,
		Visible: true,
	}
}

// DialogueState is the dialogue box content.
type DialogueState struct {
	Visible bool   `json:"visible"`
	Speaker string `json:"speaker,omitempty"`
	Text    string `json:"text,omitempty"`
}

// Layer is a free-form image layer above the background.
type Layer struct {
	ID     string  `json:"id"`
	Img    string  `json:"img"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	ZIndex int     `json:"z_index"`
	Scale  float64 `json:"scale"`
}

// InteractiveImage is a player-draggable image on the stage.
type InteractiveImage struct {
	ID      string  `json:"id"`
	Img     string  `json:"img"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	OwnerID string  `json:"owner_id,omitempty"`
}

// State is the authoritative presentation document. Version increases on
// every local mutation and rides along with each snapshot; it detects stale
// deliveries but deliberately does not merge concurrent edits.
type State struct {
	Open              bool               `json:"open"`
	Background        string             `json:"background,omitempty"`
	BgFit             string             `json:"bg_fit,omitempty"`
	BgColor           string             `json:"bg_color,omitempty"`
	DimBg             float64            `json:"dim_bg,omitempty"`
	Chars             []*Character       `json:"chars"`
	Dialogue          DialogueState      `json:"dialogue"`
	Layers            []Layer            `json:"layers"`
	InteractiveImages []InteractiveImage `json:"interactive_images"`
	Version           uint64             `json:"version"`
}

// Patch is a shallow partial update: nil fields are left alone, set fields
// replace the state's field wholesale. Slices are never deep-merged.
type Patch struct {
	Open              *bool
	Background        *string
	BgFit             *string
	BgColor           *string
	DimBg             *float64
	Chars             []*Character
	Dialogue          *DialogueState
	Layers            []Layer
	InteractiveImages []InteractiveImage
}

// apply merges the patch into the state, shallow per field.
func (s *State) apply(p Patch) {
	if p.Open != nil {
		s.Open = *p.Open
	}
	if p.Background != nil {
		s.Background = *p.Background
	}
	if p.BgFit != nil {
		s.BgFit = *p.BgFit
	}
	if p.BgColor != nil {
		s.BgColor = *p.BgColor
	}
	if p.DimBg != nil {
		s.DimBg = *p.DimBg
	}
	if p.Chars != nil {
		s.Chars = p.Chars
	}
	if p.Dialogue != nil {
		s.Dialogue = *p.Dialogue
	}
	if p.Layers != nil {
		s.Layers = p.Layers
	}
	if p.InteractiveImages != nil {
		s.InteractiveImages = p.InteractiveImages
	}
}

// clone returns a deep enough copy for handing out: characters are copied
// by value so callers cannot mutate the store through a snapshot.
func (s State) clone() State {
	out := s
	out.Chars = make([]*Character, len(s.Chars))
	for i, c := range s.Chars {
		copied := *c
		out.Chars[i] = &copied
	}
	out.Layers = append([]Layer(nil), s.Layers...)
	out.InteractiveImages = append([]InteractiveImage(nil), s.InteractiveImages...)
	return out
}
