package themes

import (
	"context"
	"fmt"
	"time"

	"github.com/duvall/marquee/pkg/domain"
	"github.com/duvall/marquee/pkg/dsl"
	"github.com/duvall/marquee/pkg/ports"
	"github.com/duvall/marquee/pkg/registry"
)

// FamilyGroupIntro is the whole-party lineup intro family.
const FamilyGroupIntro = "group-intro"

const (
	groupPanelStagger = 400 * time.Millisecond
	groupLineupHold   = 4 * time.Second
	groupExitHold     = 800 * time.Millisecond
)

// GroupIntroPayload parameterizes the lineup.
type GroupIntroPayload struct {
	Heading     string      `json:"heading"`
	Players     []CardEntry `json:"players"`
	ThemeClip   string      `json:"themeClip"`
	ThemeVolume float64     `json:"themeVolume"`
}

// GroupIntroDefaults is the baseline the payload merges onto.
func GroupIntroDefaults() GroupIntroPayload {
	return GroupIntroPayload{
		Heading:     "The Party",
		ThemeVolume: 0.8,
	}
}

// GroupIntro is the registrable party lineup: one panel per player slides
// in on a stagger, the full lineup holds, everything slides out together.
func GroupIntro() registry.Sequence {
	return registry.Sequence{
		Family: FamilyGroupIntro,
		Build:  buildGroupIntro,
	}
}

// GroupIntroFromRoster builds a play payload from the host's active
// players.
func GroupIntroFromRoster(ctx context.Context, roster ports.Roster, heading string) (domain.Payload, error) {
	cards, err := cardsFromRoster(ctx, roster)
	if err != nil {
		return nil, err
	}
	return domain.Payload{
		"heading": heading,
		"players": cards,
	}, nil
}

func buildGroupIntro(payload domain.Payload) (domain.SequenceDefinition, error) {
	p := GroupIntroDefaults()
	if err := domain.DecodePayload(payload, &p); err != nil {
		return domain.SequenceDefinition{}, err
	}

	b := dsl.New(FamilyGroupIntro).
		Design(1920, 1080).
		TailFade(600 * time.Millisecond).
		Teardown(domain.TeardownUnmount)

	pb := b.Phase("panels-in", func(c *domain.Context) {
		c.Root.Class("gi-overlay")
		for i, entry := range p.Players {
			panel := card("gi-panel", entry).WithID(fmt.Sprintf("gi-panel-%d", i))
			c.Root.Append(panel)
			// Panels enter one by one on tracked timers; a skip cancels
			// the stagger along with everything else.
			delay := time.Duration(i) * groupPanelStagger
			c.After(delay, func() { panel.Class("enter") })
		}
	}).HoldFunc(func(c *domain.Context) time.Duration {
		return time.Duration(len(p.Players))*groupPanelStagger + groupLineupHold
	})
	if p.ThemeClip != "" {
		pb.LoopCue(p.ThemeClip, p.ThemeVolume)
	}

	pb.Phase("panels-out", func(c *domain.Context) {
		for _, child := range c.Root.Children() {
			child.RemoveClass("enter")
			child.Class("leave")
		}
	}).Hold(groupExitHold)

	return b.Build()
}
