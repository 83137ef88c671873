//go:build purego || js

package deblender

import (
	"math"
)

func reflectIndex(idx, size int) int {
	if idx < 0 {
		idx = -idx
	}
	for idx >= size {
		idx = 2*size - 2 - idx
		if idx < 0 {
			idx = -idx
		}
	}
	return idx
}

func gaussianKernel1D(size int, sigma float64) []float32 {
	k := make([]float32, size)
	half := size / 2
	sum := 0.0
	for i := 0; i < size; i++ {
		x := float64(i - half)
		v := math.Exp(-x * x / (2 * sigma * sigma))
		k[i] = float32(v)
		sum += v
	}
	for i := range k {
		k[i] = float32(float64(k[i]) / sum)
	}
	return k
}

// sepGaussianBlur convolves img in place with a separated Gaussian
// kernel, reflecting at the borders.
func sepGaussianBlur(img *Image, kernelSize int, sigma float64) {
	k := gaussianKernel1D(kernelSize, sigma)
	half := kernelSize / 2
	rows := img.Height()
	cols := img.Width()
	pix := img.Pix()

	temp := make([]float32, len(pix))

	// Horizontal pass.
	for r := 0; r < rows; r++ {
		row := r * cols
		for c := 0; c < cols; c++ {
			var sum float32
			if c >= half && c < cols-half {
				base := row + c - half
				for i := 0; i < kernelSize; i++ {
					sum += pix[base+i] * k[i]
				}
			} else {
				for i := 0; i < kernelSize; i++ {
					cc := reflectIndex(c+i-half, cols)
					sum += pix[row+cc] * k[i]
				}
			}
			temp[row+c] = sum
		}
	}

	// Vertical pass.
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			var sum float32
			for i := 0; i < kernelSize; i++ {
				rr := reflectIndex(r+i-half, rows)
				sum += temp[rr*cols+c] * k[i]
			}
			pix[r*cols+c] = sum
		}
	}
}
