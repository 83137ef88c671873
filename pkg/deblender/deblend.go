package deblender

import (
	"fmt"
)

// DeblendParams contains all parameters for deblending one parent
// footprint.
type DeblendParams struct {
	Template TemplateParams
	// Monotonic enforces radially non-increasing template profiles.
	Monotonic bool
	// SmoothKernelSize, when >= 3 and odd, Gaussian-smooths each
	// template before flux apportioning. Zero disables smoothing.
	SmoothKernelSize int
	// IsPointSource flags per-peak point sources; empty means none.
	IsPointSource []bool
	// StrayFluxOptions is a bitmask of the stray-flux option bits.
	StrayFluxOptions int
	// ClipStrayFluxFraction clips per-template stray portions below
	// this fraction of the total.
	ClipStrayFluxFraction float64
}

// NewDeblendParams creates a DeblendParams with default values.
func NewDeblendParams() *DeblendParams {
	return &DeblendParams{
		Template:              NewTemplateParams(),
		Monotonic:             true,
		StrayFluxOptions:      AssignStrayFlux | StrayFluxToPointSourcesWhenNecessary,
		ClipStrayFluxFraction: 0.001,
	}
}

// DeblendResult is the output of Deblend, indexed by peak. Entries for
// peaks whose template could not be built are nil.
type DeblendResult struct {
	Templates          []*Image
	TemplateFootprints []*Footprint
	PatchedEdges       []bool
	Portions           []*MaskedImage
	Strays             []*HeavyFootprint
	Sigma1             float64
}

// Deblend runs the full per-parent pipeline: for each peak of foot it
// builds a symmetric template, optionally enforces monotonicity and
// smooths it, then apportions the parent's flux among the templates.
// Peaks whose template cannot be built (peak outside the footprint)
// keep nil entries and take no part in the apportioning.
func Deblend(img *MaskedImage, foot *Footprint, params *DeblendParams) (*DeblendResult, error) {
	peaks := foot.Peaks()
	if len(peaks) == 0 {
		return nil, fmt.Errorf("parent footprint has no peaks")
	}
	if len(params.IsPointSource) > 0 && len(params.IsPointSource) != len(peaks) {
		return nil, fmt.Errorf("IsPointSource must be empty or match the peak count (%d vs %d)",
			len(params.IsPointSource), len(peaks))
	}

	res := &DeblendResult{
		Templates:          make([]*Image, len(peaks)),
		TemplateFootprints: make([]*Footprint, len(peaks)),
		PatchedEdges:       make([]bool, len(peaks)),
		Sigma1:             params.Template.Sigma1,
	}
	if res.Sigma1 == 0 {
		res.Sigma1 = EstimateSigma(img)
	}

	for i, pk := range peaks {
		timg, tfoot, patched, err := BuildSymmetricTemplate(img, foot, pk,
			res.Sigma1, params.Template.MinZero, params.Template.PatchEdge)
		if err != nil {
			return nil, fmt.Errorf("template for peak %d: %w", i, err)
		}
		if timg == nil {
			continue
		}
		if params.Monotonic {
			MakeMonotonic(timg, pk)
		}
		if params.SmoothKernelSize >= 3 {
			SmoothTemplate(timg, params.SmoothKernelSize)
		}
		res.Templates[i] = timg
		res.TemplateFootprints[i] = tfoot
		res.PatchedEdges[i] = patched
	}

	// Collapse to the peaks that produced templates.
	var (
		timgs  []*Image
		tfoots []*Footprint
		ispsf  []bool
		pkx    []int
		pky    []int
		live   []int
	)
	for i := range peaks {
		if res.Templates[i] == nil {
			continue
		}
		timgs = append(timgs, res.Templates[i])
		tfoots = append(tfoots, res.TemplateFootprints[i])
		if len(params.IsPointSource) > 0 {
			ispsf = append(ispsf, params.IsPointSource[i])
		}
		pkx = append(pkx, peaks[i].Ix)
		pky = append(pky, peaks[i].Iy)
		live = append(live, i)
	}
	if len(timgs) == 0 {
		return res, nil
	}

	portions, strays, err := ApportionFlux(img, foot, timgs, tfoots, nil,
		ispsf, pkx, pky, params.StrayFluxOptions, params.ClipStrayFluxFraction)
	if err != nil {
		return nil, err
	}

	res.Portions = make([]*MaskedImage, len(peaks))
	res.Strays = make([]*HeavyFootprint, len(peaks))
	for j, i := range live {
		res.Portions[i] = portions[j]
		if strays != nil {
			res.Strays[i] = strays[j]
		}
	}
	return res, nil
}
