/*
Ported from the LSST meas_deblender baseline utilities.
Original Copyright © 2008-2017 AURA/LSST.
Licensed under GPL-3.0.
Ported to Go.
*/

package deblender

import (
	"sort"
)

// MedianFilter runs a square spatial median over in, writing results to
// out. halfsize is half the box size: a halfsize of 50 means each
// output pixel is the median of a 101x101 box in the input. Both images
// must share the same bounding box.
//
// Margins are handled crudely: the median is computed only for pixels
// more than halfsize away from every edge; pixels nearer an edge are
// copied unchanged from in to out.
func MedianFilter(in, out *Image, halfsize int) {
	if in.BBox() != out.BBox() {
		panic("median filter input and output must share a bounding box")
	}
	s := halfsize*2 + 1
	ss := s * s
	w := in.Width()
	h := in.Height()
	src := in.Pix()
	dst := out.Pix()

	vals := make([]float32, ss)
	for y := halfsize; y < h-halfsize; y++ {
		for x := halfsize; x < w-halfsize; x++ {
			k := 0
			for dy := -halfsize; dy <= halfsize; dy++ {
				row := (y + dy) * w
				for dx := -halfsize; dx <= halfsize; dx++ {
					vals[k] = src[row+x+dx]
					k++
				}
			}
			sort.Slice(vals, func(i, j int) bool { return vals[i] < vals[j] })
			dst[y*w+x] = vals[ss/2]
		}
	}

	// Copy the margins.
	for y := 0; y < h; y++ {
		row := y * w
		if y < halfsize || y >= h-halfsize {
			copy(dst[row:row+w], src[row:row+w])
			continue
		}
		for x := 0; x < halfsize && x < w; x++ {
			dst[row+x] = src[row+x]
		}
		for x := max(w-halfsize, 0); x < w; x++ {
			dst[row+x] = src[row+x]
		}
	}
}
