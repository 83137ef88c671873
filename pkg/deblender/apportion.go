/*
Ported from the LSST meas_deblender baseline utilities.
Original Copyright © 2008-2017 AURA/LSST.
Licensed under GPL-3.0.
Ported to Go.
*/

package deblender

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Stray-flux option bits for ApportionFlux.
const (
	// AssignStrayFlux assigns flux in the parent footprint not covered
	// by any template footprint.
	AssignStrayFlux = 0x1
	// StrayFluxToPointSourcesWhenNecessary includes point sources in
	// the stray-flux split only when no extended source claims a pixel.
	StrayFluxToPointSourcesWhenNecessary = 0x2
	// StrayFluxToPointSourcesAlways always includes point sources.
	StrayFluxToPointSourcesAlways = 0x4
	// StrayFluxRToFootprint splits stray flux by 1/(1+r^2) of the
	// minimum distance to each template footprint.
	StrayFluxRToFootprint = 0x8
	// StrayFluxNearestFootprint assigns each stray pixel wholly to the
	// template footprint at the smallest Manhattan distance.
	StrayFluxNearestFootprint = 0x10
	// StrayFluxTrim is reserved; the bit value is kept for
	// compatibility and the option is a no-op.
	StrayFluxTrim = 0x20
)

// SumTemplates accumulates tsum += max(0, timg) for each template,
// clipping each template's bounding box to tsum's. Templates may
// "ramp" beyond the parent, hence the clipping.
func SumTemplates(timgs []*Image, tsum *Image) {
	sumbb := tsum.BBox()
	for _, timg := range timgs {
		tbb := timg.BBox().Intersect(sumbb)
		for y := tbb.Min.Y; y < tbb.Max.Y; y++ {
			for x := tbb.Min.X; x < tbb.Max.X; x++ {
				if v := timg.At(x, y); v > 0 {
					tsum.Set(x, y, tsum.At(x, y)+v)
				}
			}
		}
	}
}

// contribRToFootprint computes the 1/(1+r^2) stray-flux weight of the
// pixel (x, y) for a template footprint, where r is the minimum
// distance from the pixel to any span of the footprint.
func contribRToFootprint(x, y int, tfoot *Footprint) float64 {
	minr2 := 1e12
	for _, sp := range tfoot.Spans().Spans() {
		var mindx int
		if dx := sp.X0 - x; dx >= 0 {
			// Span is to the right of the pixel.
			mindx = dx
		} else if dx := x - sp.X1; dx >= 0 {
			// Span is to the left of the pixel.
			mindx = dx
		} else {
			// Span contains the pixel in x.
			mindx = 0
		}
		dy := sp.Y - y
		if r2 := float64(mindx*mindx + dy*dy); r2 < minr2 {
			minr2 = r2
		}
	}
	return 1. / (1. + minr2)
}

// ApportionFlux splits the flux in img, within the parent footprint
// foot, among the templates timgs/tfoots. This is where the actual
// deblending takes place: flux is assigned to templates according to
// their relative heights at each pixel.
//
// tsum, when non-nil, receives the sum of max(0, template); when nil a
// scratch sum over the footprint's bounding box is used.
//
// If strayFluxOptions includes AssignStrayFlux, parent-footprint flux
// not covered by any template footprint is distributed among the
// templates and returned as per-template heavy footprints (nil entries
// for templates that received none). StrayFluxRToFootprint splits it
// by 1/(1+r^2) of the minimum distance to each template footprint,
// StrayFluxNearestFootprint assigns it to the template at the lowest
// Manhattan distance, and otherwise the split is 1/(1+r^2) from the
// peaks. Point sources take part per the two policy bits; stray
// portions below clipStrayFluxFraction of the total are clipped to
// zero.
//
// When stray flux is requested, pkx and pky give per-template peak
// coordinates and must match the template count; ispsf flags
// point-source templates and must be empty or match the template
// count.
func ApportionFlux(img *MaskedImage, foot *Footprint, timgs []*Image, tfoots []*Footprint,
	tsum *Image, ispsf []bool, pkx, pky []int,
	strayFluxOptions int, clipStrayFluxFraction float64) ([]*MaskedImage, []*HeavyFootprint, error) {

	if len(timgs) != len(tfoots) {
		return nil, nil, fmt.Errorf("template images must be the same length as template footprints (%d vs %d)",
			len(timgs), len(tfoots))
	}
	for i := range timgs {
		if !rectContains(timgs[i].BBox(), tfoots[i].BBox()) {
			return nil, nil, fmt.Errorf("template image %d must contain its template footprint", i)
		}
	}
	if !rectContains(img.BBox(), foot.BBox()) {
		return nil, nil, fmt.Errorf("image bbox must contain parent footprint")
	}

	if tsum == nil {
		tsum = NewImage(foot.BBox())
	}
	if !rectContains(tsum.BBox(), foot.BBox()) {
		return nil, nil, fmt.Errorf("template sum image must contain parent footprint")
	}
	sumbb := tsum.BBox()

	SumTemplates(timgs, tsum)

	// Compute the flux portions.
	portions := make([]*MaskedImage, 0, len(timgs))
	for _, timg := range timgs {
		port := NewMaskedImage(timg.BBox())
		portions = append(portions, port)

		// Split flux = image * template / tsum.
		tbb := timg.BBox().Intersect(sumbb)
		for y := tbb.Min.Y; y < tbb.Max.Y; y++ {
			for x := tbb.Min.X; x < tbb.Max.X; x++ {
				ts := tsum.At(x, y)
				if ts == 0 {
					continue
				}
				frac := math32.Max(timg.At(x, y), 0) / ts
				port.Mask.Set(x, y, img.Mask.At(x, y))
				port.Variance.Set(x, y, img.Variance.At(x, y))
				port.Image.Set(x, y, img.Image.At(x, y)*frac)
			}
		}
	}

	var strays []*HeavyFootprint
	if strayFluxOptions&AssignStrayFlux != 0 {
		if len(ispsf) > 0 && len(ispsf) != len(timgs) {
			return nil, nil, fmt.Errorf("ispsf must be the same length as templates (%d vs %d)",
				len(ispsf), len(timgs))
		}
		if len(pkx) != len(timgs) || len(pky) != len(timgs) {
			return nil, nil, fmt.Errorf("pkx and pky must be the same length as templates (%d,%d vs %d)",
				len(pkx), len(pky), len(timgs))
		}
		strays = findStrayFlux(foot, tsum, img, strayFluxOptions, tfoots,
			ispsf, pkx, pky, clipStrayFluxFraction)
	}
	return portions, strays, nil
}

// findStrayFlux distributes parent-footprint flux claimed by no
// template: pixels where the template sum is zero and the image is
// positive.
func findStrayFlux(foot *Footprint, tsum *Image, img *MaskedImage, strayFluxOptions int,
	tfoots []*Footprint, ispsf []bool, pkx, pky []int,
	clipStrayFluxFraction float64) []*HeavyFootprint {

	n := len(tfoots)
	straySpans := make([][]Span, n)
	strayPix := make([][]float32, n)
	strayMask := make([][]uint16, n)
	strayVar := make([][]float32, n)

	always := strayFluxOptions&StrayFluxToPointSourcesAlways != 0

	var nearest *U16Image
	if strayFluxOptions&StrayFluxNearestFootprint != 0 {
		// Compute the map of which footprint is closest to each pixel
		// in the bbox.
		footlist := tfoots
		if !always && len(ispsf) > 0 {
			// Swap empty footprints in place of the point sources.
			empty := NewFootprint(NewSpanSet(nil))
			footlist = make([]*Footprint, n)
			for i := range tfoots {
				if ispsf[i] {
					footlist[i] = empty
				} else {
					footlist[i] = tfoots[i]
				}
			}
		}
		nearest, _ = NearestFootprint(footlist, tsum.BBox())
	}

	contrib := make([]float64, n)

	// Go through the parent footprint looking for stray flux: pixels
	// not claimed by any template, with positive input.
	for _, s := range foot.Spans().Spans() {
		y := s.Y
		for x := s.X0; x <= s.X1; x++ {
			if tsum.At(x, y) > 0 || img.Image.At(x, y) <= 0 {
				continue
			}

			if strayFluxOptions&StrayFluxRToFootprint != 0 {
				// Computed just in time below.
				for i := range contrib {
					contrib[i] = -1.0
				}
			} else if strayFluxOptions&StrayFluxNearestFootprint != 0 {
				for i := range contrib {
					contrib[i] = 0.0
				}
				if idx := nearest.At(x, y); idx != NearestNone && int(idx) < n {
					contrib[idx] = 1.0
				}
			} else {
				// Split by 1/(1+r^2) to the peaks.
				for i := range contrib {
					dx := pkx[i] - x
					dy := pky[i] - y
					contrib[i] = 1. / (1. + float64(dx*dx+dy*dy))
				}
			}

			// Round one: skip point sources unless they always take a
			// share.
			ptsrcs := always
			csum := 0.
			for i := range contrib {
				if !ptsrcs && len(ispsf) > 0 && ispsf[i] {
					continue
				}
				if contrib[i] == -1.0 {
					contrib[i] = contribRToFootprint(x, y, tfoots[i])
				}
				csum += contrib[i]
			}
			if csum == 0. && strayFluxOptions&StrayFluxToPointSourcesWhenNecessary != 0 {
				// No extended sources; assign to point sources.
				ptsrcs = true
				for i := range contrib {
					if contrib[i] == -1.0 {
						contrib[i] = contribRToFootprint(x, y, tfoots[i])
					}
					csum += contrib[i]
				}
			}

			// Drop the small contributions.
			strayclip := clipStrayFluxFraction * csum
			csum = 0.
			for i := range contrib {
				if !ptsrcs && len(ispsf) > 0 && ispsf[i] {
					contrib[i] = 0.
					continue
				}
				if contrib[i] < strayclip {
					contrib[i] = 0.
					continue
				}
				csum += contrib[i]
			}

			for i := range contrib {
				if contrib[i] == 0. {
					continue
				}
				// The stray flux to give to template i.
				p := float32((contrib[i] / csum) * float64(img.Image.At(x, y)))
				straySpans[i] = append(straySpans[i], Span{Y: y, X0: x, X1: x})
				strayPix[i] = append(strayPix[i], p)
				strayMask[i] = append(strayMask[i], img.Mask.At(x, y))
				strayVar[i] = append(strayVar[i], img.Variance.At(x, y))
			}
		}
	}

	// Package the stray flux into heavy footprints. The pixels were
	// recorded in lexicographic order, which is exactly the span
	// iteration order of the coalesced span set.
	strays := make([]*HeavyFootprint, 0, n)
	for i := 0; i < n; i++ {
		if len(straySpans[i]) == 0 {
			strays = append(strays, nil)
			continue
		}
		sfoot := NewFootprint(NewSpanSet(straySpans[i]))
		if sfoot.Area() != len(strayPix[i]) {
			panic(fmt.Sprintf("stray footprint %d area %d != %d recorded pixels",
				i, sfoot.Area(), len(strayPix[i])))
		}
		strays = append(strays, &HeavyFootprint{
			Footprint: sfoot,
			Image:     strayPix[i],
			Mask:      strayMask[i],
			Variance:  strayVar[i],
		})
	}
	return strays
}
