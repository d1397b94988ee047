package themes

import (
	"time"

	"github.com/duvall/marquee/pkg/domain"
	"github.com/duvall/marquee/pkg/dsl"
	"github.com/duvall/marquee/pkg/registry"
	"github.com/duvall/marquee/pkg/scene"
)

// FamilyCutin is the character cut-in card family. Cut-ins are the one
// family driven through the FIFO queue: overlapping triggers play one
// after another instead of dropping.
const FamilyCutin = "cutin"

const cutinSlideHold = 400 * time.Millisecond

// CutinPayload parameterizes one cut-in card.
type CutinPayload struct {
	Name     string  `json:"name"`
	Text     string  `json:"text,omitempty"`
	Portrait string  `json:"portrait,omitempty"`
	Side     string  `json:"side,omitempty"`
	HoldMs   int     `json:"holdMs,omitempty"`
	Stinger  string  `json:"stinger,omitempty"`
	Volume   float64 `json:"volume,omitempty"`
}

// CutinDefaults is the baseline the payload merges onto.
func CutinDefaults() CutinPayload {
	return CutinPayload{
		Name:   "???",
		Side:   "left",
		HoldMs: 3000,
		Volume: 0.9,
	}
}

// Cutin is the registrable cut-in sequence: slide the card in with an
// optional stinger, hold, slide it out. The overlay root stays mounted as
// the queue's persistent stage; cleanup clears it back to the hidden
// baseline.
func Cutin() registry.Sequence {
	return registry.Sequence{
		Family: FamilyCutin,
		Queued: true,
		Build:  buildCutin,
	}
}

func buildCutin(payload domain.Payload) (domain.SequenceDefinition, error) {
	p := CutinDefaults()
	if err := domain.DecodePayload(payload, &p); err != nil {
		return domain.SequenceDefinition{}, err
	}

	b := dsl.New(FamilyCutin).
		Design(1920, 1080).
		Teardown(domain.TeardownClear).
		Queued()

	pb := b.Phase("slide-in", func(c *domain.Context) {
		cardNode := card("cutin-card", CardEntry{Name: p.Name, Portrait: p.Portrait}).
			Class("cutin-"+p.Side, "enter")
		if p.Text != "" {
			cardNode.Append(scene.El("span").Class("cutin-text").SetText(p.Text))
		}
		replaceContent(c, cardNode)
	}).Hold(time.Duration(p.HoldMs) * time.Millisecond)
	if p.Stinger != "" {
		pb.Cue(p.Stinger, p.Volume)
	}

	pb.Phase("slide-out", func(c *domain.Context) {
		for _, child := range c.Root.Children() {
			child.RemoveClass("enter")
			child.Class("leave")
		}
	}).Hold(cutinSlideHold)

	return b.Build()
}
