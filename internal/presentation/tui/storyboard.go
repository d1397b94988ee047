package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/duvall/marquee/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// Storyboard formats a sequence definition as a markdown phase table, for
// the validate command's terminal preview.
func Storyboard(def domain.SequenceDefinition) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", def.Family)
	if def.Design.W > 0 || def.Design.H > 0 {
		fmt.Fprintf(&b, "Design %gx%g", def.Design.W, def.Design.H)
	} else {
		b.WriteString("Design viewport-native")
	}
	if def.Queued {
		b.WriteString(", queued")
	}
	if def.TailFade > 0 {
		fmt.Fprintf(&b, ", tail fade %s", def.TailFade)
	}
	b.WriteString("\n\n")

	b.WriteString("| # | Phase | Hold | Audio |\n")
	b.WriteString("|---|-------|------|-------|\n")
	total := time.Duration(0)
	for i, phase := range def.Phases {
		hold := "dynamic"
		if phase.HoldFunc == nil {
			hold = phase.Hold.String()
			total += phase.Hold
		}
		cues := make([]string, 0, len(phase.Audio))
		for _, cue := range phase.Audio {
			label := cue.Src
			if cue.Loop {
				label += " (loop)"
			}
			cues = append(cues, label)
		}
		audio := strings.Join(cues, ", ")
		if audio == "" {
			audio = "-"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", i+1, phase.Name, hold, audio)
	}

	fmt.Fprintf(&b, "\n%d phases, at least %s of fixed holds.\n", len(def.Phases), total)
	return b.String()
}
