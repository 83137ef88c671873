package deblender

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// EstimateSigma estimates the per-pixel noise level of a masked image
// as the square root of the median of its variance plane. This is the
// statistic usually passed as sigma1 to BuildSymmetricTemplate.
func EstimateSigma(mimg *MaskedImage) float64 {
	vpix := mimg.Variance.Pix()
	if len(vpix) == 0 {
		return 0
	}
	vals := make([]float64, len(vpix))
	for i, v := range vpix {
		vals[i] = float64(v)
	}
	sort.Float64s(vals)
	return math.Sqrt(stat.Quantile(0.5, stat.Empirical, vals, nil))
}

// KappaSigmaResult holds the background estimate of KappaSigmaClip.
type KappaSigmaResult struct {
	Sigma          float64
	BackgroundMean float64
	NumIterations  int
}

// KappaSigmaClip estimates the background mean and noise sigma of an
// image by iterative sigma clipping: pixels at or above
// mean + kappa*sigma are excluded and the statistics recomputed until sigma changes by
// less than allowedError or maxIterations is reached.
func KappaSigmaClip(img *Image, kappa, allowedError float64, maxIterations int) KappaSigmaResult {
	pix := img.Pix()

	threshold := math.MaxFloat64
	lastSigma := 1.0
	lastMean := 1.0
	numIterations := 0

	for numIterations < maxIterations {
		var sum float64
		var count int
		for _, v := range pix {
			if fv := float64(v); fv < threshold {
				sum += fv
				count++
			}
		}
		if count == 0 {
			break
		}
		mean := sum / float64(count)
		var sse float64
		for _, v := range pix {
			if fv := float64(v); fv < threshold {
				d := fv - mean
				sse += d * d
			}
		}
		sigma := math.Sqrt(sse / float64(count))

		numIterations++
		if numIterations > 1 && math.Abs(sigma-lastSigma) <= allowedError {
			lastSigma = sigma
			lastMean = mean
			break
		}
		threshold = mean + kappa*sigma
		lastSigma = sigma
		lastMean = mean
	}

	return KappaSigmaResult{
		Sigma:          lastSigma,
		BackgroundMean: lastMean,
		NumIterations:  numIterations,
	}
}
