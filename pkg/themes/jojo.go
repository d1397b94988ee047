package themes

import (
	"time"

	"github.com/duvall/marquee/pkg/domain"
	"github.com/duvall/marquee/pkg/dsl"
	"github.com/duvall/marquee/pkg/registry"
	"github.com/duvall/marquee/pkg/scene"
)

// FamilyJojoEnding is the freeze-frame "to be continued" ending family.
const FamilyJojoEnding = "jojo-ending"

const (
	jojoFreezeHold = 1500 * time.Millisecond
	jojoArrowHold  = 6500 * time.Millisecond
)

// JojoPayload parameterizes the ending.
type JojoPayload struct {
	Caption     string  `json:"caption"`
	ThemeClip   string  `json:"themeClip"`
	ThemeVolume float64 `json:"themeVolume"`
}

// JojoDefaults is the baseline the payload merges onto.
func JojoDefaults() JojoPayload {
	return JojoPayload{
		Caption:     "To Be Continued",
		ThemeVolume: 0.85,
	}
}

// JojoEnding is the registrable ending: the scene freezes into sepia, the
// arrow caption slides in, the theme plays out and everything fades.
func JojoEnding() registry.Sequence {
	return registry.Sequence{
		Family: FamilyJojoEnding,
		Build:  buildJojoEnding,
	}
}

func buildJojoEnding(payload domain.Payload) (domain.SequenceDefinition, error) {
	p := JojoDefaults()
	if err := domain.DecodePayload(payload, &p); err != nil {
		return domain.SequenceDefinition{}, err
	}

	b := dsl.New(FamilyJojoEnding).
		Design(1920, 1080).
		TailFade(1500 * time.Millisecond).
		Teardown(domain.TeardownUnmount)

	pb := b.Phase("freeze", func(c *domain.Context) {
		c.Root.Class("jojo-overlay", "jojo-sepia")
	}).Hold(jojoFreezeHold)
	if p.ThemeClip != "" {
		pb.Cue(p.ThemeClip, p.ThemeVolume)
	}

	pb.Phase("arrow", func(c *domain.Context) {
		replaceContent(c,
			scene.El("div").Class("jojo-arrow", "enter").
				Append(scene.El("span").Class("jojo-caption").SetText(p.Caption)))
	}).Hold(jojoArrowHold)

	return b.Build()
}
