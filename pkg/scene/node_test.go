package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_Classes(t *testing.T) {
	n := El("div").Class("open", "sc-card")
	assert.True(t, n.HasClass("open"))

	n.RemoveClass("open").Class("closing")
	assert.False(t, n.HasClass("open"))
	assert.True(t, n.HasClass("closing"))
	assert.True(t, n.HasClass("sc-card"))
}

func TestNode_AppendReparents(t *testing.T) {
	a := El("div")
	b := El("div")
	child := El("span")

	a.Append(child)
	require.Len(t, a.Children(), 1)

	b.Append(child)
	assert.Empty(t, a.Children(), "append detaches from the previous parent")
	assert.Same(t, b, child.Parent())
}

func TestNode_RemoveChildren(t *testing.T) {
	n := El("div").Append(El("span"), El("span"))
	children := n.Children()

	n.RemoveChildren()

	assert.Empty(t, n.Children())
	for _, c := range children {
		assert.Nil(t, c.Parent())
	}
}

func TestNode_Find(t *testing.T) {
	root := El("div").Append(
		El("div").WithID("panel-1").Append(
			El("span").Class("gi-name").SetText("Marv"),
		),
		El("div").WithID("panel-2"),
	)

	assert.NotNil(t, root.FindByID("panel-2"))
	assert.Nil(t, root.FindByID("panel-3"))

	name := root.FindByClass("gi-name")
	require.NotNil(t, name)
	assert.Equal(t, "Marv", name.Text)
}
