//go:build !purego && !js

package deblender

import (
	"image"

	"gocv.io/x/gocv"
)

// sepGaussianBlur convolves img in place with a separated Gaussian
// kernel via OpenCV, reflecting at the borders.
func sepGaussianBlur(img *Image, kernelSize int, sigma float64) {
	rows := img.Height()
	cols := img.Width()
	if rows == 0 || cols == 0 {
		return
	}
	pix := img.Pix()

	src := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32F)
	defer src.Close()
	data, _ := src.DataPtrFloat32()
	copy(data, pix)

	kernel := gocv.GetGaussianKernel(kernelSize, sigma)
	defer kernel.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.SepFilter2D(src, &dst, gocv.MatTypeCV32F, kernel, kernel,
		image.Pt(-1, -1), 0, gocv.BorderReflect)

	out, _ := dst.DataPtrFloat32()
	copy(pix, out)
}
