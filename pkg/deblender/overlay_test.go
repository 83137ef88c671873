package deblender

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDeblendOverlay(t *testing.T) {
	r := image.Rect(0, 0, 20, 16)
	parent := NewImage(r)
	parent.Set(5, 8, 100)
	parent.Set(14, 8, 80)

	children := []*Footprint{
		NewFootprint(NewSpanSet([]Span{
			{Y: 7, X0: 4, X1: 6},
			{Y: 8, X0: 3, X1: 7},
			{Y: 9, X0: 4, X1: 6},
		})),
		NewFootprint(NewSpanSet([]Span{
			{Y: 8, X0: 13, X1: 15},
		})),
	}
	peaks := []Peak{{Ix: 5, Iy: 8}, {Ix: 14, Iy: 8}}

	img := RenderDeblendOverlay(parent, children, peaks)
	require.NotNil(t, img)
	assert.Equal(t, image.Rect(0, 0, 20, 16), img.Bounds())

	// Footprint boundaries are drawn solid in the palette color.
	assert.Equal(t, childPalette[0], img.RGBAAt(4, 7))
	assert.Equal(t, childPalette[1], img.RGBAAt(13, 8))

	// Background stays gray: equal channels.
	bg := img.RGBAAt(0, 0)
	assert.Equal(t, bg.R, bg.G)
	assert.Equal(t, bg.G, bg.B)

	// Something other than the background was drawn near each peak.
	assert.NotEqual(t, color.RGBA{A: 255}, img.RGBAAt(5, 8))
}
