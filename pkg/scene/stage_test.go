package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureMounted_Idempotent(t *testing.T) {
	s := NewStage(Size{W: 1920, H: 1080})

	built := 0
	build := func() *Node {
		built++
		return El("div").Class("intro-overlay")
	}

	first := s.EnsureMounted("intro", build)
	second := s.EnsureMounted("intro", build)

	assert.Same(t, first, second)
	assert.Equal(t, 1, built, "build must run once regardless of remount calls")
	assert.Len(t, s.Root().Children(), 1)
	assert.Equal(t, "intro", first.ID, "mount inherits the family id")
}

func TestEnsureMounted_NilBuild(t *testing.T) {
	s := NewStage(Size{W: 100, H: 100})
	mount := s.EnsureMounted("bare", nil)
	require.NotNil(t, mount)
	assert.Equal(t, "bare", mount.ID)
}

func TestClear_KeepsMountAttached(t *testing.T) {
	s := NewStage(Size{W: 100, H: 100})
	mount := s.EnsureMounted("cutin", nil)
	mount.Append(El("div").Class("cutin-card"))

	s.Clear("cutin")

	assert.Empty(t, mount.Children())
	assert.Same(t, mount, s.Mounted("cutin"), "clear keeps the hidden baseline mounted")
}

func TestUnmount_DetachesSubtreeAndResizeSub(t *testing.T) {
	s := NewStage(Size{W: 100, H: 100})
	s.EnsureMounted("intro", nil)

	resizes := 0
	s.OnResize("intro", func(Size) { resizes++ })

	s.Unmount("intro")

	assert.Nil(t, s.Mounted("intro"))
	assert.Empty(t, s.Root().Children())

	s.SetViewport(Size{W: 200, H: 200})
	assert.Zero(t, resizes, "unmount drops the family's resize subscription")
}

func TestOnResize_SingleSubscriberPerFamily(t *testing.T) {
	s := NewStage(Size{W: 100, H: 100})

	first, second := 0, 0
	s.OnResize("intro", func(Size) { first++ })
	s.OnResize("intro", func(Size) { second++ })

	s.SetViewport(Size{W: 300, H: 300})

	assert.Zero(t, first, "re-registration replaces the previous subscriber")
	assert.Equal(t, 1, second)
}

func TestFit_ScalesAndRefitsOnResize(t *testing.T) {
	s := NewStage(Size{W: 960, H: 540})
	mount := s.EnsureMounted("intro", nil)

	s.Fit("intro", Size{W: 1920, H: 1080})
	assert.Equal(t, "scale(0.5000)", mount.Style["transform"])

	s.SetViewport(Size{W: 1920, H: 1080})
	assert.Equal(t, "scale(1.0000)", mount.Style["transform"])
}

func TestFitToViewport(t *testing.T) {
	t.Run("letterboxed wide viewport", func(t *testing.T) {
		tr := FitToViewport(Size{W: 3840, H: 1080}, Size{W: 1920, H: 1080})
		assert.InDelta(t, 1.0, tr.Scale, 1e-9)
		assert.InDelta(t, 960, tr.OffsetX, 1e-9)
		assert.InDelta(t, 0, tr.OffsetY, 1e-9)
	})

	t.Run("downscale", func(t *testing.T) {
		tr := FitToViewport(Size{W: 960, H: 540}, Size{W: 1920, H: 1080})
		assert.InDelta(t, 0.5, tr.Scale, 1e-9)
		assert.InDelta(t, 0, tr.OffsetX, 1e-9)
		assert.InDelta(t, 0, tr.OffsetY, 1e-9)
	})

	t.Run("zero design is identity", func(t *testing.T) {
		tr := FitToViewport(Size{W: 960, H: 540}, Size{})
		assert.Equal(t, Transform{Scale: 1}, tr)
	})
}
