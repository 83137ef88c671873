package deblender

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpanSetNormalizes(t *testing.T) {
	ss := NewSpanSet([]Span{
		{Y: 1, X0: 4, X1: 6},
		{Y: 0, X0: 2, X1: 3},
		{Y: 1, X0: 7, X1: 9}, // adjacent to [4,6], must merge
		{Y: 1, X0: 5, X1: 8}, // overlapping, must merge
		{Y: 2, X0: 5, X1: 4}, // invalid, must be dropped
		{Y: 0, X0: 0, X1: 0},
	})
	assert.Equal(t, []Span{
		{Y: 0, X0: 0, X1: 0},
		{Y: 0, X0: 2, X1: 3},
		{Y: 1, X0: 4, X1: 9},
	}, ss.Spans())
	assert.Equal(t, 9, ss.Area())
	assert.Equal(t, image.Rect(0, 0, 10, 2), ss.BBox())
}

func TestSpanSetContains(t *testing.T) {
	ss := NewSpanSet([]Span{
		{Y: 0, X0: 2, X1: 4},
		{Y: 2, X0: 0, X1: 1},
	})
	assert.True(t, ss.Contains(2, 0))
	assert.True(t, ss.Contains(4, 0))
	assert.True(t, ss.Contains(0, 2))
	assert.False(t, ss.Contains(1, 0))
	assert.False(t, ss.Contains(5, 0))
	assert.False(t, ss.Contains(2, 1))
	assert.False(t, ss.Contains(2, 2))

	empty := NewSpanSet(nil)
	assert.True(t, empty.Empty())
	assert.False(t, empty.Contains(0, 0))
	assert.Equal(t, image.Rectangle{}, empty.BBox())
}

func TestSpanSetFindEdgePixels(t *testing.T) {
	// A 3x3 block: every pixel but the center is on the edge.
	square := NewSpanSet([]Span{
		{Y: 0, X0: 0, X1: 2},
		{Y: 1, X0: 0, X1: 2},
		{Y: 2, X0: 0, X1: 2},
	})
	assert.Equal(t, []Span{
		{Y: 0, X0: 0, X1: 2},
		{Y: 1, X0: 0, X1: 0},
		{Y: 1, X0: 2, X1: 2},
		{Y: 2, X0: 0, X1: 2},
	}, square.FindEdgePixels().Spans())

	// A single row is all edge.
	row := NewSpanSet([]Span{{Y: 5, X0: 3, X1: 7}})
	assert.Equal(t, []Span{{Y: 5, X0: 3, X1: 7}}, row.FindEdgePixels().Spans())
}

func TestSpanSetStampAndCopy(t *testing.T) {
	ss := NewSpanSet([]Span{
		{Y: 1, X0: 1, X1: 3},
		{Y: 2, X0: 0, X1: 5}, // partly outside the image
	})
	img := NewImage(image.Rect(0, 0, 4, 4))
	ss.SetImage(img, 7)
	assert.Equal(t, float32(7), img.At(1, 1))
	assert.Equal(t, float32(7), img.At(3, 1))
	assert.Equal(t, float32(0), img.At(0, 1))
	assert.Equal(t, float32(7), img.At(3, 2))

	dst := NewImage(image.Rect(0, 0, 4, 4))
	ss.CopyImage(img, dst)
	assert.Equal(t, img.Pix(), dst.Pix())

	lab := NewU16Image(image.Rect(0, 0, 4, 4))
	ss.SetImageU16(lab, 3)
	assert.Equal(t, uint16(3), lab.At(2, 1))
	assert.Equal(t, uint16(0), lab.At(0, 0))
}

func TestHeavyFootprintRoundTrip(t *testing.T) {
	r := image.Rect(0, 0, 4, 3)
	mi := NewMaskedImage(r)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			mi.Image.Set(x, y, float32(10*y+x))
			mi.Variance.Set(x, y, float32(x+1))
			mi.Mask.Set(x, y, uint16(y))
		}
	}
	foot := NewFootprint(NewSpanSet([]Span{
		{Y: 0, X0: 1, X1: 2},
		{Y: 2, X0: 0, X1: 3},
	}))

	h := MakeHeavy(foot, mi)
	require.Equal(t, foot.Area(), len(h.Image))
	assert.Equal(t, []float32{1, 2, 20, 21, 22, 23}, h.Image)
	assert.Equal(t, []uint16{0, 0, 2, 2, 2, 2}, h.Mask)

	out := NewMaskedImage(r)
	h.Insert(out)
	for _, s := range foot.Spans().Spans() {
		for x := s.X0; x <= s.X1; x++ {
			assert.Equal(t, mi.Image.At(x, s.Y), out.Image.At(x, s.Y))
			assert.Equal(t, mi.Variance.At(x, s.Y), out.Variance.At(x, s.Y))
		}
	}
	assert.Equal(t, float32(0), out.Image.At(0, 0))
}

func TestFootprintsFromImage(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 7, 4))
	// Two separate blobs; the second is L-shaped.
	for _, p := range [][3]int{
		{1, 1, 5}, {2, 1, 9}, {1, 2, 4},
		{5, 0, 3}, {5, 1, 3}, {6, 1, 8},
	} {
		img.Set(p[0], p[1], float32(p[2]))
	}
	foots := FootprintsFromImage(img, 1)
	require.Len(t, foots, 2)

	assert.Equal(t, []Span{
		{Y: 0, X0: 5, X1: 5},
		{Y: 1, X0: 5, X1: 6},
	}, foots[0].Spans().Spans())
	assert.Equal(t, []Peak{{Ix: 6, Iy: 1}}, foots[0].Peaks())

	assert.Equal(t, []Span{
		{Y: 1, X0: 1, X1: 2},
		{Y: 2, X0: 1, X1: 1},
	}, foots[1].Spans().Spans())
	assert.Equal(t, []Peak{{Ix: 2, Iy: 1}}, foots[1].Peaks())
}
