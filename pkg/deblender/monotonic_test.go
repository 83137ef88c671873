package deblender

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeMonotonicFlatPlateau(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 5, 5))
	img.Fill(10)
	MakeMonotonic(img, Peak{Ix: 2, Iy: 2})
	for _, v := range img.Pix() {
		assert.Equal(t, float32(10), v)
	}
}

func TestMakeMonotonicSingleBrightPixel(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 7, 7))
	img.Set(3, 3, 100)
	MakeMonotonic(img, Peak{Ix: 3, Iy: 3})
	for y := 0; y < 7; y++ {
		for x := 0; x < 7; x++ {
			want := float32(0)
			if x == 3 && y == 3 {
				want = 100
			}
			assert.Equal(t, want, img.At(x, y), "at (%d,%d)", x, y)
		}
	}
}

func TestMakeMonotonicShadowsBrightRing(t *testing.T) {
	// Center 100, first ring 50, second ring 80. The second ring's
	// axis and diagonal pixels sit in the shadow cones of the first
	// ring and drop to 50; the in-between pixels of the ring receive
	// no shadow at this radius and keep their value.
	img := NewImage(image.Rect(0, 0, 5, 5))
	img.Fill(80)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			img.Set(2+dx, 2+dy, 50)
		}
	}
	img.Set(2, 2, 100)

	MakeMonotonic(img, Peak{Ix: 2, Iy: 2})

	want := [5][5]float32{
		{50, 80, 50, 80, 50},
		{80, 50, 50, 50, 80},
		{50, 50, 100, 50, 50},
		{80, 50, 50, 50, 80},
		{50, 80, 50, 80, 50},
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			assert.Equal(t, want[y][x], img.At(x, y), "at (%d,%d)", x, y)
		}
	}
}

func TestMakeMonotonicDecreasingRay(t *testing.T) {
	// An outward-increasing profile must come out non-increasing along
	// the axes beyond the first ring.
	img := NewImage(image.Rect(0, 0, 11, 11))
	for y := 0; y < 11; y++ {
		for x := 0; x < 11; x++ {
			d := max(abs(x-5), abs(y-5))
			img.Set(x, y, float32(10+5*d))
		}
	}
	MakeMonotonic(img, Peak{Ix: 5, Iy: 5})

	for _, dir := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {-1, -1}, {1, -1}, {-1, 1}} {
		prev := img.At(5+dir[0], 5+dir[1])
		for d := 2; d <= 5; d++ {
			cur := img.At(5+d*dir[0], 5+d*dir[1])
			assert.LessOrEqual(t, cur, prev, "direction %v distance %d", dir, d)
			prev = cur
		}
	}
}

func TestMakeMonotonicOffsetOrigin(t *testing.T) {
	// Parent coordinates: the image need not start at (0, 0).
	img := NewImage(image.Rect(10, 20, 15, 25))
	img.Fill(7)
	img.Set(12, 22, 9)
	MakeMonotonic(img, Peak{Ix: 12, Iy: 22})
	for y := 20; y < 25; y++ {
		for x := 10; x < 15; x++ {
			want := float32(7)
			if x == 12 && y == 22 {
				want = 9
			}
			assert.Equal(t, want, img.At(x, y))
		}
	}
}
