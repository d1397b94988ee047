package scene

import "fmt"

// Size is a width/height pair in design or viewport units.
type Size struct {
	W float64 `json:"width" yaml:"width"`
	H float64 `json:"height" yaml:"height"`
}

// Transform is the scale and centering offsets that fit a design resolution
// into a viewport.
type Transform struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// FitToViewport computes scale = min(vw/dw, vh/dh) and the offsets that
// center the scaled design inside the viewport. A zero design size yields
// the identity transform.
func FitToViewport(viewport, design Size) Transform {
	if design.W <= 0 || design.H <= 0 {
		return Transform{Scale: 1}
	}

	scale := viewport.W / design.W
	if v := viewport.H / design.H; v < scale {
		scale = v
	}

	return Transform{
		Scale:   scale,
		OffsetX: (viewport.W - design.W*scale) / 2,
		OffsetY: (viewport.H - design.H*scale) / 2,
	}
}

// Apply writes the transform onto a node's style.
func (t Transform) Apply(n *Node) {
	n.SetStyle("transform", fmt.Sprintf("scale(%.4f)", t.Scale))
	n.SetStyle("left", fmt.Sprintf("%.1fpx", t.OffsetX))
	n.SetStyle("top", fmt.Sprintf("%.1fpx", t.OffsetY))
}
