package themes

import (
	"context"
	"time"

	"github.com/duvall/marquee/pkg/domain"
	"github.com/duvall/marquee/pkg/dsl"
	"github.com/duvall/marquee/pkg/ports"
	"github.com/duvall/marquee/pkg/registry"
	"github.com/duvall/marquee/pkg/scene"
)

// FamilySinCity is the noir title-card intro family.
const FamilySinCity = "sincity"

// Timing of the Sin City intro beats.
const (
	sinCityTitleHold  = 2500 * time.Millisecond
	sinCityCardHold   = 3500 * time.Millisecond
	sinCityCreditHold = 2500 * time.Millisecond
	sinCityCloseHold  = 600 * time.Millisecond
)

// SinCityPayload parameterizes the intro.
type SinCityPayload struct {
	CampaignName string      `json:"campaignName"`
	DirectedBy   string      `json:"directedBy"`
	Players      []CardEntry `json:"players"`
	ThemeClip    string      `json:"themeClip"`
	ThemeVolume  float64     `json:"themeVolume"`
}

// SinCityDefaults is the baseline the payload merges onto.
func SinCityDefaults() SinCityPayload {
	return SinCityPayload{
		CampaignName: "Untitled Campaign",
		DirectedBy:   "the Game Master",
		ThemeVolume:  0.8,
	}
}

// SinCity is the registrable Sin City intro: noir title card, one card per
// active player, a directed-by credit, then a fading close. The phase list
// grows with the player roster, so the definition is built per play.
func SinCity() registry.Sequence {
	return registry.Sequence{
		Family: FamilySinCity,
		Build:  buildSinCity,
	}
}

// SinCityFromRoster builds a play payload from the host's active players.
func SinCityFromRoster(ctx context.Context, roster ports.Roster, campaignName string) (domain.Payload, error) {
	cards, err := cardsFromRoster(ctx, roster)
	if err != nil {
		return nil, err
	}
	return domain.Payload{
		"campaignName": campaignName,
		"players":      cards,
	}, nil
}

func buildSinCity(payload domain.Payload) (domain.SequenceDefinition, error) {
	p := SinCityDefaults()
	if err := domain.DecodePayload(payload, &p); err != nil {
		return domain.SequenceDefinition{}, err
	}

	b := dsl.New(FamilySinCity).
		Design(1920, 1080).
		TailFade(1200 * time.Millisecond).
		Teardown(domain.TeardownUnmount)

	pb := b.Phase("title-open", func(c *domain.Context) {
		c.Root.Class("sc-overlay")
		replaceContent(c,
			scene.El("div").Class("sc-card", "sc-title", "open").
				Append(scene.El("span").Class("sc-title-text").SetText(p.CampaignName)))
	}).Hold(sinCityTitleHold)
	if p.ThemeClip != "" {
		pb.LoopCue(p.ThemeClip, p.ThemeVolume)
	}

	pb = pb.Phase("title-close", closeCard).Hold(sinCityCloseHold)

	for _, entry := range p.Players {
		pb = pb.Phase("player-open", func(c *domain.Context) {
			replaceContent(c, card("sc-card", entry).Class("open"))
		}).Hold(sinCityCardHold)
		pb = pb.Phase("player-close", closeCard).Hold(sinCityCloseHold)
	}

	pb.Phase("directed-open", func(c *domain.Context) {
		replaceContent(c,
			scene.El("div").Class("sc-card", "sc-credit", "open").
				Append(
					scene.El("span").Class("sc-credit-label").SetText("directed by"),
					scene.El("span").Class("sc-credit-name").SetText(p.DirectedBy),
				))
	}).Hold(sinCityCreditHold)

	return b.Build()
}

// closeCard flips the visible card into its closing transition.
func closeCard(c *domain.Context) {
	for _, child := range c.Root.Children() {
		child.RemoveClass("open")
		child.Class("closing")
	}
}
