package deblender

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoSourceScene builds a parent image holding two overlapping
// pyramid-profile sources and the footprint covering them.
func twoSourceScene() (*MaskedImage, *Footprint) {
	r := image.Rect(0, 0, 16, 9)
	mi := NewMaskedImage(r)
	mi.Variance.Fill(1)

	add := func(cx, cy int, peak float32) {
		for y := 0; y < 9; y++ {
			for x := 0; x < 16; x++ {
				d := max(abs(x-cx), abs(y-cy))
				v := peak - 8*float32(d)
				if v > 0 {
					mi.Image.Set(x, y, mi.Image.At(x, y)+v)
				}
			}
		}
	}
	add(5, 4, 40)
	add(10, 4, 32)

	foots := FootprintsFromImage(mi.Image, 1)
	foot := foots[0]
	foot.SetPeaks([]Peak{{Ix: 5, Iy: 4}, {Ix: 10, Iy: 4}})
	return mi, foot
}

func TestDeblendTwoSources(t *testing.T) {
	mi, foot := twoSourceScene()
	require.Len(t, foot.Peaks(), 2)

	params := NewDeblendParams()
	res, err := Deblend(mi, foot, params)
	require.NoError(t, err)

	require.Len(t, res.Templates, 2)
	require.NotNil(t, res.Templates[0])
	require.NotNil(t, res.Templates[1])
	require.NotNil(t, res.Portions[0])
	require.NotNil(t, res.Portions[1])
	assert.Greater(t, res.Sigma1, 0.0)

	// Templates are symmetric about their peaks and non-negative.
	for i, pk := range foot.Peaks() {
		timg := res.Templates[i]
		tfoot := res.TemplateFootprints[i]
		for _, s := range tfoot.Spans().Spans() {
			for x := s.X0; x <= s.X1; x++ {
				v := timg.At(x, s.Y)
				assert.GreaterOrEqual(t, v, float32(0))
				mx, my := 2*pk.Ix-x, 2*pk.Iy-s.Y
				if tfoot.Contains(mx, my) {
					assert.Equal(t, timg.At(mx, my), v)
				}
			}
		}
	}

	// The apportioned flux plus stray flux reproduces the parent.
	got := NewImage(mi.BBox())
	for _, port := range res.Portions {
		if port == nil {
			continue
		}
		pb := port.BBox().Intersect(got.BBox())
		for y := pb.Min.Y; y < pb.Max.Y; y++ {
			for x := pb.Min.X; x < pb.Max.X; x++ {
				got.Set(x, y, got.At(x, y)+port.Image.At(x, y))
			}
		}
	}
	for _, stray := range res.Strays {
		if stray == nil {
			continue
		}
		i := 0
		for _, s := range stray.Spans().Spans() {
			for x := s.X0; x <= s.X1; x++ {
				got.Set(x, s.Y, got.At(x, s.Y)+stray.Image[i])
				i++
			}
		}
	}
	for _, s := range foot.Spans().Spans() {
		for x := s.X0; x <= s.X1; x++ {
			if mi.Image.At(x, s.Y) > 0 {
				assert.InDelta(t, float64(mi.Image.At(x, s.Y)), float64(got.At(x, s.Y)), 1e-3,
					"at (%d,%d)", x, s.Y)
			}
		}
	}

	// At its own peak, the first source is the only claimant and keeps
	// the full flux.
	assert.InDelta(t, float64(mi.Image.At(5, 4)), float64(res.Portions[0].Image.At(5, 4)), 1e-3)
}

func TestDeblendPeakOutsideFootprint(t *testing.T) {
	mi, foot := twoSourceScene()
	foot.SetPeaks([]Peak{{Ix: 5, Iy: 4}, {Ix: 0, Iy: 8}})

	res, err := Deblend(mi, foot, NewDeblendParams())
	require.NoError(t, err)
	require.NotNil(t, res.Templates[0])
	assert.Nil(t, res.Templates[1])
	assert.Nil(t, res.Portions[1])
	require.NotNil(t, res.Portions[0])
}

func TestDeblendNoPeaks(t *testing.T) {
	mi, foot := twoSourceScene()
	foot.SetPeaks(nil)
	_, err := Deblend(mi, foot, NewDeblendParams())
	assert.Error(t, err)
}

func TestDeblendPointSourceFlagLength(t *testing.T) {
	mi, foot := twoSourceScene()
	params := NewDeblendParams()
	params.IsPointSource = []bool{true}
	_, err := Deblend(mi, foot, params)
	assert.Error(t, err)
}
