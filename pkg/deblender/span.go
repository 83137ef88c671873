package deblender

import (
	"image"
	"sort"
)

// Span is the inclusive horizontal pixel run {(Y, x) : X0 <= x <= X1}.
type Span struct {
	Y, X0, X1 int
}

// Less orders spans lexicographically by (Y, X0, X1).
func (s Span) Less(o Span) bool {
	if s.Y != o.Y {
		return s.Y < o.Y
	}
	if s.X0 != o.X0 {
		return s.X0 < o.X0
	}
	return s.X1 < o.X1
}

// Contains reports whether the span covers the pixel (x, y).
func (s Span) Contains(x, y int) bool {
	return y == s.Y && x >= s.X0 && x <= s.X1
}

// Width is the number of pixels in the span.
func (s Span) Width() int { return s.X1 - s.X0 + 1 }

// SpanSet is a sorted collection of non-overlapping spans. The
// constructor normalizes its input, so a SpanSet is always sorted and
// coalesced once built.
type SpanSet struct {
	spans []Span
}

// NewSpanSet builds a span set from arbitrary spans: they are sorted,
// spans with X0 > X1 are dropped, and overlapping or adjacent runs in
// the same row are merged.
func NewSpanSet(spans []Span) *SpanSet {
	tmp := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.X0 <= s.X1 {
			tmp = append(tmp, s)
		}
	}
	sort.Slice(tmp, func(i, j int) bool { return tmp[i].Less(tmp[j]) })

	out := tmp[:0]
	for _, s := range tmp {
		if n := len(out); n > 0 && out[n-1].Y == s.Y && s.X0 <= out[n-1].X1+1 {
			if s.X1 > out[n-1].X1 {
				out[n-1].X1 = s.X1
			}
			continue
		}
		out = append(out, s)
	}
	return &SpanSet{spans: out}
}

// Spans returns the underlying sorted slice. Callers must not mutate it.
func (ss *SpanSet) Spans() []Span { return ss.spans }

func (ss *SpanSet) Len() int    { return len(ss.spans) }
func (ss *SpanSet) Empty() bool { return len(ss.spans) == 0 }

// Area is the total number of pixels covered.
func (ss *SpanSet) Area() int {
	n := 0
	for _, s := range ss.spans {
		n += s.Width()
	}
	return n
}

// BBox returns the tight bounding box of the set (exclusive max), or
// the zero rectangle when empty.
func (ss *SpanSet) BBox() image.Rectangle {
	if len(ss.spans) == 0 {
		return image.Rectangle{}
	}
	x0, x1 := ss.spans[0].X0, ss.spans[0].X1
	for _, s := range ss.spans[1:] {
		if s.X0 < x0 {
			x0 = s.X0
		}
		if s.X1 > x1 {
			x1 = s.X1
		}
	}
	return image.Rect(x0, ss.spans[0].Y, x1+1, ss.spans[len(ss.spans)-1].Y+1)
}

// Contains reports whether the pixel (x, y) is covered by the set.
func (ss *SpanSet) Contains(x, y int) bool {
	target := Span{Y: y, X0: x, X1: x}
	// First span strictly greater than (y, x, x); the covering span, if
	// any, is that one or the one before it.
	i := sort.Search(len(ss.spans), func(i int) bool { return target.Less(ss.spans[i]) })
	if i > 0 && ss.spans[i-1].Contains(x, y) {
		return true
	}
	return i < len(ss.spans) && ss.spans[i].Contains(x, y)
}

// SetImage stamps v on every covered pixel that falls inside img.
func (ss *SpanSet) SetImage(img *Image, v float32) {
	b := img.BBox()
	for _, s := range ss.spans {
		if s.Y < b.Min.Y || s.Y >= b.Max.Y {
			continue
		}
		x0, x1 := s.X0, s.X1
		if x0 < b.Min.X {
			x0 = b.Min.X
		}
		if x1 > b.Max.X-1 {
			x1 = b.Max.X - 1
		}
		for x := x0; x <= x1; x++ {
			img.Set(x, s.Y, v)
		}
	}
}

// SetImageU16 stamps v on every covered pixel that falls inside img.
func (ss *SpanSet) SetImageU16(img *U16Image, v uint16) {
	b := img.BBox()
	for _, s := range ss.spans {
		if s.Y < b.Min.Y || s.Y >= b.Max.Y {
			continue
		}
		x0, x1 := s.X0, s.X1
		if x0 < b.Min.X {
			x0 = b.Min.X
		}
		if x1 > b.Max.X-1 {
			x1 = b.Max.X - 1
		}
		for x := x0; x <= x1; x++ {
			img.Set(x, s.Y, v)
		}
	}
}

// CopyImage copies src to dst over the covered pixels, skipping pixels
// outside either buffer.
func (ss *SpanSet) CopyImage(src, dst *Image) {
	b := src.BBox().Intersect(dst.BBox())
	for _, s := range ss.spans {
		if s.Y < b.Min.Y || s.Y >= b.Max.Y {
			continue
		}
		x0, x1 := s.X0, s.X1
		if x0 < b.Min.X {
			x0 = b.Min.X
		}
		if x1 > b.Max.X-1 {
			x1 = b.Max.X - 1
		}
		for x := x0; x <= x1; x++ {
			dst.Set(x, s.Y, src.At(x, s.Y))
		}
	}
}

// FindEdgePixels returns the covered pixels having at least one
// 4-neighbor outside the set, as a new span set of maximal runs.
func (ss *SpanSet) FindEdgePixels() *SpanSet {
	var edge []Span
	for _, s := range ss.spans {
		run := -1 // start of the current edge run, or -1
		for x := s.X0; x <= s.X1; x++ {
			isEdge := x == s.X0 || x == s.X1 ||
				!ss.Contains(x, s.Y-1) || !ss.Contains(x, s.Y+1)
			if isEdge {
				if run < 0 {
					run = x
				}
				continue
			}
			if run >= 0 {
				edge = append(edge, Span{Y: s.Y, X0: run, X1: x - 1})
				run = -1
			}
		}
		if run >= 0 {
			edge = append(edge, Span{Y: s.Y, X0: run, X1: s.X1})
		}
	}
	return NewSpanSet(edge)
}
