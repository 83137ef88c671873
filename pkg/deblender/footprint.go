package deblender

import (
	"image"
)

// Peak is a local maximum inside a footprint, at integer pixel
// coordinates.
type Peak struct {
	Ix, Iy int
}

// Footprint pairs a span set with the peaks found inside it.
type Footprint struct {
	spans *SpanSet
	peaks []Peak
}

func NewFootprint(spans *SpanSet) *Footprint {
	return &Footprint{spans: spans}
}

func (f *Footprint) Spans() *SpanSet        { return f.spans }
func (f *Footprint) SetSpans(ss *SpanSet)   { f.spans = ss }
func (f *Footprint) Peaks() []Peak          { return f.peaks }
func (f *Footprint) SetPeaks(peaks []Peak)  { f.peaks = peaks }
func (f *Footprint) AddPeak(ix, iy int)     { f.peaks = append(f.peaks, Peak{Ix: ix, Iy: iy}) }
func (f *Footprint) BBox() image.Rectangle  { return f.spans.BBox() }
func (f *Footprint) Area() int              { return f.spans.Area() }
func (f *Footprint) Contains(x, y int) bool { return f.spans.Contains(x, y) }

// HeavyFootprint is a footprint whose per-pixel image, mask and
// variance values are stored densely, in span-iteration order.
type HeavyFootprint struct {
	*Footprint
	Image    []float32
	Mask     []uint16
	Variance []float32
}

// MakeHeavy extracts the pixels of mi covered by foot into a new heavy
// footprint. The footprint must lie inside mi's bounding box.
func MakeHeavy(foot *Footprint, mi *MaskedImage) *HeavyFootprint {
	n := foot.Area()
	h := &HeavyFootprint{
		Footprint: foot,
		Image:     make([]float32, 0, n),
		Mask:      make([]uint16, 0, n),
		Variance:  make([]float32, 0, n),
	}
	for _, s := range foot.Spans().Spans() {
		for x := s.X0; x <= s.X1; x++ {
			h.Image = append(h.Image, mi.Image.At(x, s.Y))
			h.Mask = append(h.Mask, mi.Mask.At(x, s.Y))
			h.Variance = append(h.Variance, mi.Variance.At(x, s.Y))
		}
	}
	return h
}

// Insert stamps the heavy footprint's stored pixels back into mi,
// skipping pixels outside mi's bounding box.
func (h *HeavyFootprint) Insert(mi *MaskedImage) {
	b := mi.BBox()
	i := 0
	for _, s := range h.Spans().Spans() {
		for x := s.X0; x <= s.X1; x++ {
			if (image.Point{X: x, Y: s.Y}).In(b) {
				mi.Image.Set(x, s.Y, h.Image[i])
				mi.Mask.Set(x, s.Y, h.Mask[i])
				mi.Variance.Set(x, s.Y, h.Variance[i])
			}
			i++
		}
	}
}

// FootprintsFromImage finds the connected regions (8-connectivity) of
// pixels at or above threshold and returns one footprint per region,
// each carrying a single peak at its brightest pixel. Regions are
// returned in raster order of their first pixel.
func FootprintsFromImage(img *Image, threshold float32) []*Footprint {
	b := img.BBox()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	pix := img.Pix()
	claimed := make([]bool, len(pix))

	on := func(x, y int) bool { // zero-based coordinates
		return x >= 0 && x < w && y >= 0 && y < h &&
			!claimed[y*w+x] && pix[y*w+x] >= threshold
	}

	var foots []*Footprint
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !on(x, y) {
				continue
			}

			// Flood out from (x, y) one horizontal run at a time.
			var spans []Span
			px, py := x, y
			pv := pix[y*w+x]
			type run struct{ y, x0, x1 int }
			stack := []run{}

			grab := func(x, y int) run {
				x0, x1 := x, x
				for on(x0-1, y) {
					x0--
				}
				for on(x1+1, y) {
					x1++
				}
				for i := x0; i <= x1; i++ {
					claimed[y*w+i] = true
					if pix[y*w+i] > pv {
						pv = pix[y*w+i]
						px, py = i, y
					}
				}
				return run{y: y, x0: x0, x1: x1}
			}

			stack = append(stack, grab(x, y))
			for len(stack) > 0 {
				r := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				spans = append(spans, Span{
					Y:  b.Min.Y + r.y,
					X0: b.Min.X + r.x0,
					X1: b.Min.X + r.x1,
				})
				for _, ny := range [2]int{r.y - 1, r.y + 1} {
					for nx := r.x0 - 1; nx <= r.x1+1; nx++ {
						if on(nx, ny) {
							stack = append(stack, grab(nx, ny))
						}
					}
				}
			}

			foot := NewFootprint(NewSpanSet(spans))
			foot.AddPeak(b.Min.X+px, b.Min.Y+py)
			foots = append(foots, foot)
		}
	}
	return foots
}
