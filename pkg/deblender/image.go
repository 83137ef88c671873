package deblender

import (
	"fmt"
	"image"
)

// Image is a dense float32 pixel buffer covering an integer bounding
// box. All accessors take parent coordinates: the pixel at (x, y) lives
// at offset (y-y0)*width + (x-x0) in the backing slice, where (x0, y0)
// is the minimum corner of the bounding box.
type Image struct {
	rect image.Rectangle
	pix  []float32
}

// NewImage allocates a zero-filled image over the given bounding box.
func NewImage(r image.Rectangle) *Image {
	return &Image{rect: r, pix: make([]float32, r.Dx()*r.Dy())}
}

func (im *Image) BBox() image.Rectangle { return im.rect }
func (im *Image) X0() int               { return im.rect.Min.X }
func (im *Image) Y0() int               { return im.rect.Min.Y }
func (im *Image) Width() int            { return im.rect.Dx() }
func (im *Image) Height() int           { return im.rect.Dy() }

// Pix returns the backing slice in row-major order.
func (im *Image) Pix() []float32 { return im.pix }

func (im *Image) offset(x, y int) int {
	return (y-im.rect.Min.Y)*im.rect.Dx() + (x - im.rect.Min.X)
}

// At returns the pixel at parent coordinates (x, y).
func (im *Image) At(x, y int) float32 { return im.pix[im.offset(x, y)] }

// Set writes the pixel at parent coordinates (x, y).
func (im *Image) Set(x, y int, v float32) { im.pix[im.offset(x, y)] = v }

// Row returns the backing slice for row y (parent coordinate), indexed
// from column x0.
func (im *Image) Row(y int) []float32 {
	w := im.rect.Dx()
	off := (y - im.rect.Min.Y) * w
	return im.pix[off : off+w]
}

func (im *Image) Clone() *Image {
	out := &Image{rect: im.rect, pix: make([]float32, len(im.pix))}
	copy(out.pix, im.pix)
	return out
}

// Fill sets every pixel to v.
func (im *Image) Fill(v float32) {
	for i := range im.pix {
		im.pix[i] = v
	}
}

// U16Image is a dense uint16 buffer with the same parent-coordinate
// addressing as Image. It backs the distance and label planes of the
// nearest-footprint transform.
type U16Image struct {
	rect image.Rectangle
	pix  []uint16
}

func NewU16Image(r image.Rectangle) *U16Image {
	return &U16Image{rect: r, pix: make([]uint16, r.Dx()*r.Dy())}
}

func (im *U16Image) BBox() image.Rectangle { return im.rect }
func (im *U16Image) Width() int            { return im.rect.Dx() }
func (im *U16Image) Height() int           { return im.rect.Dy() }
func (im *U16Image) Pix() []uint16         { return im.pix }

func (im *U16Image) At(x, y int) uint16 {
	return im.pix[(y-im.rect.Min.Y)*im.rect.Dx()+(x-im.rect.Min.X)]
}

func (im *U16Image) Set(x, y int, v uint16) {
	im.pix[(y-im.rect.Min.Y)*im.rect.Dx()+(x-im.rect.Min.X)] = v
}

// Default mask planes, in bit order.
var defaultMaskPlanes = []string{
	"BAD", "SAT", "INTRP", "CR", "EDGE",
	"DETECTED", "DETECTED_NEGATIVE", "SUSPECT", "NO_DATA",
}

// Mask is a dense uint16 bit-field buffer with named bit planes.
type Mask struct {
	rect   image.Rectangle
	pix    []uint16
	planes map[string]uint
}

// NewMask allocates a mask over the given bounding box carrying the
// default plane set.
func NewMask(r image.Rectangle) *Mask {
	planes := make(map[string]uint, len(defaultMaskPlanes))
	for i, name := range defaultMaskPlanes {
		planes[name] = uint(i)
	}
	return &Mask{rect: r, pix: make([]uint16, r.Dx()*r.Dy()), planes: planes}
}

func (m *Mask) BBox() image.Rectangle { return m.rect }
func (m *Mask) Pix() []uint16         { return m.pix }

// PlaneBitMask returns the bit corresponding to the named plane.
func (m *Mask) PlaneBitMask(name string) uint16 {
	bit, ok := m.planes[name]
	if !ok {
		panic(fmt.Sprintf("mask has no plane named %q", name))
	}
	return 1 << bit
}

func (m *Mask) At(x, y int) uint16 {
	return m.pix[(y-m.rect.Min.Y)*m.rect.Dx()+(x-m.rect.Min.X)]
}

func (m *Mask) Set(x, y int, v uint16) {
	m.pix[(y-m.rect.Min.Y)*m.rect.Dx()+(x-m.rect.Min.X)] = v
}

// Or sets the given bits at (x, y), leaving the rest untouched.
func (m *Mask) Or(x, y int, bits uint16) {
	m.pix[(y-m.rect.Min.Y)*m.rect.Dx()+(x-m.rect.Min.X)] |= bits
}

// MaskedImage is the co-located triple of image, mask and variance
// planes sharing one bounding box.
type MaskedImage struct {
	Image    *Image
	Mask     *Mask
	Variance *Image
}

func NewMaskedImage(r image.Rectangle) *MaskedImage {
	return &MaskedImage{
		Image:    NewImage(r),
		Mask:     NewMask(r),
		Variance: NewImage(r),
	}
}

func (mi *MaskedImage) BBox() image.Rectangle { return mi.Image.BBox() }

// rectContains reports whether outer contains the whole of inner. An
// empty inner rectangle is contained everywhere.
func rectContains(outer, inner image.Rectangle) bool {
	return inner.Empty() || inner.In(outer)
}

// rectInclude grows r to include the pixel at (x, y).
func rectInclude(r image.Rectangle, x, y int) image.Rectangle {
	if r.Empty() {
		return image.Rect(x, y, x+1, y+1)
	}
	return r.Union(image.Rect(x, y, x+1, y+1))
}
