// Package themes ships the stock cinematics as data: each theme is a
// payload struct plus a definition factory producing an ordered phase list
// over the shared overlay. No theme keeps state of its own; everything
// flows through the sequence runner.
package themes

import (
	"context"

	"github.com/duvall/marquee/pkg/domain"
	"github.com/duvall/marquee/pkg/ports"
	"github.com/duvall/marquee/pkg/scene"
)

// CardEntry is one performer card in an intro sequence.
type CardEntry struct {
	Name     string `json:"name"`
	Title    string `json:"title,omitempty"`
	Portrait string `json:"portrait,omitempty"`
}

// cardsFromRoster converts the host's active players into card entries.
func cardsFromRoster(ctx context.Context, roster ports.Roster) ([]CardEntry, error) {
	players, err := roster.ActivePlayers(ctx)
	if err != nil {
		return nil, err
	}
	cards := make([]CardEntry, 0, len(players))
	for _, p := range players {
		cards = append(cards, CardEntry{Name: p.Name, Title: p.Title, Portrait: p.Portrait})
	}
	return cards, nil
}

// card builds a performer card node.
func card(class string, entry CardEntry) *scene.Node {
	n := scene.El("div").Class(class)
	if entry.Portrait != "" {
		n.Append(scene.El("img").Class(class+"-portrait").SetAttr("src", entry.Portrait))
	}
	n.Append(scene.El("span").Class(class + "-name").SetText(entry.Name))
	if entry.Title != "" {
		n.Append(scene.El("span").Class(class + "-title").SetText(entry.Title))
	}
	return n
}

// replaceContent swaps the overlay's children for the given nodes.
func replaceContent(c *domain.Context, nodes ...*scene.Node) {
	c.Root.RemoveChildren()
	c.Root.Append(nodes...)
}
