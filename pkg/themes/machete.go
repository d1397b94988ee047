package themes

import (
	"time"

	"github.com/duvall/marquee/pkg/domain"
	"github.com/duvall/marquee/pkg/dsl"
	"github.com/duvall/marquee/pkg/registry"
	"github.com/duvall/marquee/pkg/scene"
)

// FamilyMachete is the grindhouse trailer intro family.
const FamilyMachete = "machete"

const (
	macheteTitleHold   = 2000 * time.Millisecond
	macheteCardHold    = 3000 * time.Millisecond
	macheteTaglineHold = 2200 * time.Millisecond
	macheteCutHold     = 300 * time.Millisecond
)

// MachetePayload parameterizes the trailer.
type MachetePayload struct {
	CampaignName string      `json:"campaignName"`
	Tagline      string      `json:"tagline"`
	Players      []CardEntry `json:"players"`
	ThemeClip    string      `json:"themeClip"`
	ThemeVolume  float64     `json:"themeVolume"`
}

// MacheteDefaults is the baseline the payload merges onto.
func MacheteDefaults() MachetePayload {
	return MachetePayload{
		CampaignName: "Untitled Campaign",
		Tagline:      "They just messed with the wrong party.",
		ThemeVolume:  0.8,
	}
}

// Machete is the registrable grindhouse intro: scratched title card, hard
// cuts between performer cards, a tagline card, out. Same skeleton as the
// Sin City intro with trailer pacing and its own style classes.
func Machete() registry.Sequence {
	return registry.Sequence{
		Family: FamilyMachete,
		Build:  buildMachete,
	}
}

func buildMachete(payload domain.Payload) (domain.SequenceDefinition, error) {
	p := MacheteDefaults()
	if err := domain.DecodePayload(payload, &p); err != nil {
		return domain.SequenceDefinition{}, err
	}

	b := dsl.New(FamilyMachete).
		Design(1920, 1080).
		TailFade(800 * time.Millisecond).
		Teardown(domain.TeardownUnmount)

	pb := b.Phase("title", func(c *domain.Context) {
		c.Root.Class("mx-overlay", "mx-grain")
		replaceContent(c,
			scene.El("div").Class("mx-card", "mx-title").
				Append(scene.El("span").Class("mx-title-text").SetText(p.CampaignName)))
	}).Hold(macheteTitleHold)
	if p.ThemeClip != "" {
		pb.LoopCue(p.ThemeClip, p.ThemeVolume)
	}

	for _, entry := range p.Players {
		pb = pb.Phase("cut", func(c *domain.Context) {
			c.Root.RemoveChildren()
		}).Hold(macheteCutHold)
		pb = pb.Phase("player-card", func(c *domain.Context) {
			replaceContent(c, card("mx-card", entry).Class("mx-slam"))
		}).Hold(macheteCardHold)
	}

	pb.Phase("tagline", func(c *domain.Context) {
		replaceContent(c,
			scene.El("div").Class("mx-card", "mx-tagline").
				Append(scene.El("span").SetText(p.Tagline)))
	}).Hold(macheteTaglineHold)

	return b.Build()
}
