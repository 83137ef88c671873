/*
Ported from the LSST meas_deblender baseline utilities.
Original Copyright © 2008-2017 AURA/LSST.
Licensed under GPL-3.0.
Ported to Go.
*/

package deblender

// HasSignificantFluxAtEdge reports whether the footprint sfoot has flux
// at or above thresh on its edge in img. Edge template pixels with
// significant flux usually mean the symmetric mirrors were outside the
// footprint, clipped by an image edge.
func HasSignificantFluxAtEdge(img *Image, sfoot *Footprint, thresh float32) bool {
	for _, sp := range sfoot.Spans().FindEdgePixels().Spans() {
		for x := sp.X0; x <= sp.X1; x++ {
			if img.At(x, sp.Y) >= thresh {
				return true
			}
		}
	}
	return false
}

// GetSignificantEdgePixels returns the pixels on the edge of sfoot with
// flux at or above thresh in img, as a footprint of maximal runs along
// each edge row. Runs split where the flux drops below thresh.
func GetSignificantEdgePixels(img *Image, sfoot *Footprint, thresh float32) *Footprint {
	var tmp []Span
	for _, sp := range sfoot.Spans().FindEdgePixels().Spans() {
		y := sp.Y
		onSpan := false
		xSpan := 0 // starting x of the run
		for x := sp.X0; x <= sp.X1; x++ {
			if img.At(x, y) >= thresh {
				if !onSpan {
					onSpan = true
					xSpan = x
				}
			} else if onSpan {
				onSpan = false
				tmp = append(tmp, Span{Y: y, X0: xSpan, X1: x - 1})
			}
		}
		if onSpan {
			tmp = append(tmp, Span{Y: y, X0: xSpan, X1: sp.X1})
		}
	}
	return NewFootprint(NewSpanSet(tmp))
}
