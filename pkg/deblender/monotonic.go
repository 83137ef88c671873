/*
Ported from the LSST meas_deblender baseline utilities.
Original Copyright © 2008-2017 AURA/LSST.
Licensed under GPL-3.0.
Ported to Go.
*/

package deblender

import (
	"math"
)

// MakeMonotonic overwrites img so that pixels further from the peak
// have values no larger than those close to it, making the profile
// monotonic-decreasing along radial shadow paths.
//
// The basic idea is "casting a shadow" from a pixel onto pixels farther
// from the peak in the same direction. Done naively this gives very
// narrow shadows and ragged profiles, so each pixel shadows a wedge of
// slopes instead. A naive wedge widens too quickly: working outward in
// square rings, the shadowed pixel at the largest angle from its
// shadowing pixel would shade a yet-larger wedge. To bound the
// widening, the rings are processed in chunks of five, and the image
// casting the shadows is only refreshed from the partially-shaded
// result at the end of each chunk.
//
// Mask and variance planes of any enclosing container are untouched;
// this operates on a bare image plane.
func MakeMonotonic(img *Image, peak Peak) {
	cx := peak.Ix
	cy := peak.Iy
	ix0 := img.X0()
	iy0 := img.Y0()
	iw := img.Width()
	ih := img.Height()
	pix := img.Pix()

	shadowing := img.Clone()
	shpix := shadowing.Pix()

	dw := max(cx-ix0, ix0+iw-cx)
	dh := max(cy-iy0, iy0+ih-cy)

	// Chunk size, in rings; also the shadow length per pixel.
	const S = 5
	// Half-width of the range of slopes shadowed by one pixel.
	const A = 0.3

	for s := 0; s < max(dw, dh); s += S {
		for p := 0; p < S; p++ {
			// Visit the pixels at L_inf distance L from the peak: the
			// L'th square ring, 8*L pixels, starting at (L, -L) and
			// turning every 2*L steps.
			l := s + p
			x, y := l, -l
			dx, dy := 0, 0
			for i := 0; i < 8*l; i, x, y = i+1, x+dx, y+dy {
				if i%(2*l) == 0 {
					leg := i / (2 * l)
					// dx = [0, -1, 0, 1][leg], dy = [1, 0, -1, 0][leg]
					dx = (leg % 2) * (-1 + 2*(leg/2))
					dy = ((leg + 1) % 2) * (1 - 2*(leg/2))
				}
				px := cx + x - ix0
				py := cy + y - iy0
				if px < 0 || px >= iw || py < 0 || py >= ih {
					continue
				}
				// The pixel casting the shadow.
				v := shpix[py*iw+px]

				// Cast the shadow S pixels long in a cone covering the
				// slope range [ds0, ds1].
				if dx == 0 {
					// Vertical edge of the ring; x is +-L, so no
					// division by zero.
					ds0 := float64(y)/float64(x) - A
					ds1 := ds0 + 2.0*A
					xsign := 1
					if x < 0 {
						xsign = -1
					}
					for shx := 1; shx <= S; shx++ {
						// The column being shadowed.
						psx := cx + x + xsign*shx - ix0
						if psx < 0 || psx >= iw {
							continue
						}
						// The shadow covers a range of rows set by the
						// slopes.
						lo := lround(float64(shx) * ds0)
						hi := lround(float64(shx) * ds1)
						for shy := lo; shy <= hi; shy++ {
							psy := cy + y + xsign*shy - iy0
							if psy < 0 || psy >= ih {
								continue
							}
							if v < pix[psy*iw+psx] {
								pix[psy*iw+psx] = v
							}
						}
					}
				} else {
					// Horizontal edge; y is +-L.
					ds0 := float64(x)/float64(y) - A
					ds1 := ds0 + 2.0*A
					ysign := 1
					if y < 0 {
						ysign = -1
					}
					for shy := 1; shy <= S; shy++ {
						psy := cy + y + ysign*shy - iy0
						if psy < 0 || psy >= ih {
							continue
						}
						lo := lround(float64(shy) * ds0)
						hi := lround(float64(shy) * ds1)
						for shx := lo; shx <= hi; shx++ {
							psx := cx + x + ysign*shx - ix0
							if psx < 0 || psx >= iw {
								continue
							}
							if v < pix[psy*iw+psx] {
								pix[psy*iw+psx] = v
							}
						}
					}
				}
			}
		}
		copy(shpix, pix)
	}
}

// lround rounds half away from zero, like the C library function.
func lround(v float64) int {
	return int(math.Round(v))
}
