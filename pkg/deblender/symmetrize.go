/*
Ported from the LSST meas_deblender baseline utilities.
Original Copyright © 2008-2017 AURA/LSST.
Licensed under GPL-3.0.
Ported to Go.
*/

package deblender

import (
	"log"
	"sort"
)

// Verbose enables debug logging of the span sweeps.
var Verbose bool

func debugf(format string, args ...any) {
	if Verbose {
		log.Printf(format, args...)
	}
}

// relativeSpanIterator walks a sorted span slice either forward or
// backward, exposing dx,dy coordinates relative to a center (cx, cy).
// The forward and backward directions then read almost identically:
// dxlo/dxhi are the span's column extent measured from the center, with
// the backward direction mirrored.
type relativeSpanIterator struct {
	spans   []Span
	idx     int
	cx, cy  int
	forward bool
}

func (it relativeSpanIterator) notDone() bool {
	if it.forward {
		return it.idx < len(it.spans)
	}
	return it.idx >= 0
}

func (it *relativeSpanIterator) advance() {
	if it.forward {
		it.idx++
	} else {
		it.idx--
	}
}

func (it relativeSpanIterator) span() Span { return it.spans[it.idx] }

func (it relativeSpanIterator) dxlo() int {
	if it.forward {
		return it.span().X0 - it.cx
	}
	return it.cx - it.span().X1
}

func (it relativeSpanIterator) dxhi() int {
	if it.forward {
		return it.span().X1 - it.cx
	}
	return it.cx - it.span().X0
}

func (it relativeSpanIterator) dy() int {
	d := it.span().Y - it.cy
	if d < 0 {
		return -d
	}
	return d
}

// SymmetrizeFootprint returns a footprint symmetric around (cx, cy)
// with twofold rotational symmetry: the AND of the input footprint with
// its own 180-degree rotation about the peak. Returns nil (with a
// warning) when no span of the footprint contains the peak.
func SymmetrizeFootprint(foot *Footprint, cx, cy int) *Footprint {
	spans := foot.Spans().Spans()

	// Find the span containing the peak. The search returns the first
	// span greater than (cy, cx, cx); the covering span, if present, is
	// that one or its predecessor.
	target := Span{Y: cy, X0: cx, X1: cx}
	pos := sort.Search(len(spans), func(i int) bool { return target.Less(spans[i]) })

	peakIdx := -1
	switch {
	case len(spans) == 0:
		// fall through to the warning below
	case pos == 0:
		if spans[0].Contains(cx, cy) {
			peakIdx = 0
		}
	case spans[pos-1].Contains(cx, cy):
		peakIdx = pos - 1
	case pos < len(spans) && spans[pos].Contains(cx, cy):
		peakIdx = pos
	}
	if peakIdx < 0 {
		log.Printf("symmetrizeFootprint: no span contains peak (%d,%d); footprint bbox %v",
			cx, cy, foot.BBox())
		return nil
	}
	debugf("symmetrizeFootprint: span containing (%d,%d): x=[%d,%d], y=%d",
		cx, cy, spans[peakIdx].X0, spans[peakIdx].X1, spans[peakIdx].Y)

	// The symmetric footprint is an AND of the footprint pixels and its
	// 180-degree-rotated self, rotated around the peak (cx, cy).
	//
	// We iterate forward and backward simultaneously, starting from the
	// span containing the peak and moving out, row by row. In the loop
	// below we search for the next pair of spans that overlap (in dx
	// from the center), emit the overlapping portion, and advance
	// either the fwd or the back iterator. When no overlapping pair
	// remains in the current row pair, we move to the next dy.
	fwd := relativeSpanIterator{spans: spans, idx: peakIdx, cx: cx, cy: cy, forward: true}
	back := relativeSpanIterator{spans: spans, idx: peakIdx, cx: cx, cy: cy, forward: false}

	dy := 0
	var tmp []Span
	for fwd.notDone() && back.notDone() {
		fy := cy + dy
		by := cy - dy
		fdxlo := fwd.dxlo()
		bdxlo := back.dxlo()

		// fend: the end of this row in the forward direction; bend:
		// likewise backward.
		fend := fwd
		for fend.notDone() && fend.dy() == dy {
			fend.advance()
		}
		bend := back
		for bend.notDone() && bend.dy() == dy {
			bend.advance()
		}

		// Find a possibly-overlapping span pair.
		if bdxlo > fdxlo {
			// The forward span is entirely to the "left" of the
			// backward span in dx coords: |---fwd---X   X---back---|
			for fwd.idx != fend.idx && fwd.dxhi() < bdxlo {
				fwd.advance()
			}
		} else if fdxlo > bdxlo {
			for back.idx != bend.idx && back.dxhi() < fdxlo {
				back.advance()
			}
		}

		if fwd.idx == fend.idx || back.idx == bend.idx {
			// Reached the end of the row without an overlap candidate.
			fwd = fend
			back = bend
			dy++
			continue
		}

		// Emit the overlapping portion, mirrored into both rows.
		dxlo := max(fwd.dxlo(), back.dxlo())
		dxhi := min(fwd.dxhi(), back.dxhi())
		if dxlo <= dxhi {
			debugf("symmetrizeFootprint: adding spans %d,[%d,%d] and %d,[%d,%d]",
				fy, cx+dxlo, cx+dxhi, by, cx-dxhi, cx-dxlo)
			tmp = append(tmp,
				Span{Y: fy, X0: cx + dxlo, X1: cx + dxhi},
				Span{Y: by, X0: cx - dxhi, X1: cx - dxlo})
		}

		// Advance the iterator whose hi edge is smaller.
		if fwd.dxhi() < back.dxhi() {
			fwd.advance()
		} else {
			back.advance()
		}

		if fwd.idx == fend.idx || back.idx == bend.idx {
			fwd = fend
			back = bend
			dy++
		}
	}

	return NewFootprint(NewSpanSet(tmp))
}
