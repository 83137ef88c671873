package deblender

import (
	"fmt"
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var childPalette = []color.RGBA{
	{R: 230, G: 80, B: 80, A: 255},
	{R: 80, G: 200, B: 90, A: 255},
	{R: 90, G: 120, B: 240, A: 255},
	{R: 230, G: 200, B: 60, A: 255},
	{R: 200, G: 90, B: 220, A: 255},
	{R: 70, G: 210, B: 210, A: 255},
	{R: 240, G: 150, B: 60, A: 255},
}

// RenderDeblendOverlay renders a deblend of one parent into an RGBA
// image for inspection: the parent image in grayscale, each child
// template footprint tinted from a small palette with its boundary
// drawn solid, and peak markers with index labels. The caller is
// responsible for encoding the result.
func RenderDeblendOverlay(parent *Image, children []*Footprint, peaks []Peak) *image.RGBA {
	b := parent.BBox()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	// Grayscale background scaled to the parent's pixel range.
	lo, hi := parent.At(b.Min.X, b.Min.Y), parent.At(b.Min.X, b.Min.Y)
	for _, v := range parent.Pix() {
		lo = math32.Min(lo, v)
		hi = math32.Max(hi, v)
	}
	scale := float32(0)
	if hi > lo {
		scale = 255 / (hi - lo)
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := uint8((parent.At(x, y) - lo) * scale)
			img.Set(x-b.Min.X, y-b.Min.Y, color.RGBA{R: g, G: g, B: g, A: 255})
		}
	}

	// Tint each child footprint, boundaries solid.
	for i, child := range children {
		if child == nil {
			continue
		}
		c := childPalette[i%len(childPalette)]
		tint := color.RGBA{R: c.R / 2, G: c.G / 2, B: c.B / 2, A: 255}
		for _, s := range child.Spans().Spans() {
			for x := s.X0; x <= s.X1; x++ {
				blend(img, x-b.Min.X, s.Y-b.Min.Y, tint)
			}
		}
		for _, s := range child.Spans().FindEdgePixels().Spans() {
			for x := s.X0; x <= s.X1; x++ {
				img.Set(x-b.Min.X, s.Y-b.Min.Y, c)
			}
		}
	}

	// Peak markers and index labels.
	face := basicfont.Face7x13
	for i, pk := range peaks {
		c := childPalette[i%len(childPalette)]
		drawMarker(img, pk.Ix-b.Min.X, pk.Iy-b.Min.Y, c)
		drawLabel(img, face, fmt.Sprintf("%d", i), pk.Ix-b.Min.X+4, pk.Iy-b.Min.Y-4, c)
	}
	return img
}

// blend mixes c into the pixel at (x, y) at half weight.
func blend(img *image.RGBA, x, y int, c color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	old := img.RGBAAt(x, y)
	img.SetRGBA(x, y, color.RGBA{
		R: uint8((uint16(old.R) + uint16(c.R)) / 2),
		G: uint8((uint16(old.G) + uint16(c.G)) / 2),
		B: uint8((uint16(old.B) + uint16(c.B)) / 2),
		A: 255,
	})
}

// drawMarker draws a small cross centered at (x, y).
func drawMarker(img *image.RGBA, x, y int, c color.RGBA) {
	for d := -2; d <= 2; d++ {
		img.Set(x+d, y, c)
		img.Set(x, y+d, c)
	}
}

// drawLabel draws a string at (x, y) using the given font face.
func drawLabel(img *image.RGBA, face font.Face, s string, x, y int, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
