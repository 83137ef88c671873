/*
Ported from the LSST meas_deblender baseline utilities.
Original Copyright © 2008-2017 AURA/LSST.
Licensed under GPL-3.0.
Ported to Go.
*/

package deblender

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
)

// TemplateParams holds the knobs of BuildSymmetricTemplate.
type TemplateParams struct {
	// Sigma1 is the per-pixel noise level of the parent image. It is
	// accepted for interface compatibility and does not affect output.
	Sigma1 float64
	// MinZero clamps template pixels at zero.
	MinZero bool
	// PatchEdge grows the template over spans whose mirrors fall
	// outside the footprint's bounding box when the symmetrized
	// footprint carries EDGE pixels.
	PatchEdge bool
}

// NewTemplateParams returns the default template-building parameters.
func NewTemplateParams() TemplateParams {
	return TemplateParams{MinZero: true, PatchEdge: true}
}

// BuildSymmetricTemplate creates a symmetric template around the peak:
// an image T over the symmetrized footprint where
//
//	T(cx+dx, cy+dy) = T(cx-dx, cy-dy)
//	               = min(img(cx+dx, cy+dy), img(cx-dx, cy-dy))
//
// clamped at zero when minZero is set. Returns the template image, the
// symmetrized footprint, and whether edge patching took place. When the
// peak lies outside the footprint both results are nil.
//
// If patchEdge is set and the symmetrized footprint covers pixels with
// the EDGE mask bit, spans whose symmetric mirrors fall outside the footprint's
// bounding box are added back to the template with their image values
// copied directly.
func BuildSymmetricTemplate(img *MaskedImage, foot *Footprint, peak Peak, sigma1 float64,
	minZero, patchEdge bool) (*Image, *Footprint, bool, error) {
	_ = sigma1

	cx := peak.Ix
	cy := peak.Iy

	if !rectContains(img.BBox(), foot.BBox()) {
		return nil, nil, false, fmt.Errorf("image bbox %v too small for footprint bbox %v",
			img.BBox(), foot.BBox())
	}

	sfoot := SymmetrizeFootprint(foot, cx, cy)
	if sfoot == nil {
		return nil, nil, false, nil
	}

	if !rectContains(img.BBox(), sfoot.BBox()) {
		return nil, nil, false, fmt.Errorf("image bbox %v too small for symmetrized footprint bbox %v",
			img.BBox(), sfoot.BBox())
	}
	spans := sfoot.Spans().Spans()

	// Does this footprint touch an EDGE?
	touchesEdge := false
	if patchEdge {
		edgebit := img.Mask.PlaneBitMask("EDGE")
	scan:
		for _, s := range spans {
			for x := s.X0; x <= s.X1; x++ {
				if img.Mask.At(x, s.Y)&edgebit != 0 {
					touchesEdge = true
					break scan
				}
			}
		}
	}

	target := NewImage(sfoot.BBox())

	// The symmetrized span set pairs each span with its mirror at the
	// opposite end of the list, so walk inward from both ends at once.
	theimg := img.Image
	for fi, bi := 0, len(spans)-1; fi <= bi; fi, bi = fi+1, bi-1 {
		fs := spans[fi]
		bs := spans[bi]
		fy := fs.Y
		by := bs.Y
		for fx, bx := fs.X0, bs.X1; fx <= fs.X1; fx, bx = fx+1, bx-1 {
			// Mask planes are not propagated into the template.
			pix := math32.Min(theimg.At(fx, fy), theimg.At(bx, by))
			if minZero {
				pix = math32.Max(pix, 0)
			}
			target.Set(fx, fy, pix)
			target.Set(bx, by, pix)
		}
	}

	if touchesEdge {
		// Find spans whose mirrors fall outside the bounds, grow the
		// footprint to include them, and plug in their pixel values.
		// It is the footprint's bounding box that counts here, not the
		// image's: the footprint may stop short of the image edge.
		bb := sfoot.BBox()
		imbb := foot.BBox()
		debugf("buildSymmetricTemplate: footprint touches EDGE, start bbox %v", bb)

		ospans := foot.Spans().Spans()
		for _, s := range ospans {
			ym := cy + (cy - s.Y)
			xm := cx + (cx - s.X0)
			if !(image.Point{X: xm, Y: ym}).In(imbb) {
				bb = rectInclude(bb, s.X0, s.Y)
			}
			xm = cx + (cx - s.X1)
			if !(image.Point{X: xm, Y: ym}).In(imbb) {
				bb = rectInclude(bb, s.X1, s.Y)
			}
		}
		debugf("buildSymmetricTemplate: grown bbox %v", bb)

		target2 := NewImage(bb)
		sfoot.Spans().CopyImage(target, target2)

		// Copy original image pixels for the portions of spans whose
		// mirrors are out of bounds.
		newSpans := append([]Span(nil), spans...)
		for _, s := range ospans {
			y := s.Y
			x0 := s.X0
			x1 := s.X1
			ym := cy + (cy - y)
			xm0 := cx + (cx - x0)
			xm1 := cx + (cx - x1)
			in0 := (image.Point{X: xm0, Y: ym}).In(imbb)
			in1 := (image.Point{X: xm1, Y: ym}).In(imbb)
			if in0 && in1 {
				// Both mirrored endpoints are in bounds; nothing to do.
				continue
			}
			if in0 {
				// The mirror of x0 is in bounds; move x0 to the first
				// column whose mirror falls outside.
				x0 = cx + (cx - (imbb.Min.X - 1))
			}
			if in1 {
				x1 = cx + (cx - imbb.Max.X)
			}
			if x0 > x1 {
				continue
			}
			debugf("buildSymmetricTemplate: span y=%d x=[%d,%d] mirror out of bounds; clipped to [%d,%d]",
				y, s.X0, s.X1, x0, x1)
			tb := target2.BBox()
			for x := x0; x <= x1; x++ {
				if (image.Point{X: x, Y: y}).In(tb) {
					target2.Set(x, y, theimg.At(x, y))
				}
			}
			newSpans = append(newSpans, Span{Y: y, X0: x0, X1: x1})
		}
		sfoot.SetSpans(NewSpanSet(newSpans))
		target = target2
	}

	return target, sfoot, touchesEdge, nil
}
