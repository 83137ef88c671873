package deblender

// SmoothTemplate applies a separated Gaussian convolution to the image
// in place, with reflected borders. Templates built from noisy parents
// can be smoothed before apportioning so single-pixel noise does not
// steer the flux split. kernelSize must be a positive odd number >= 3.
func SmoothTemplate(img *Image, kernelSize int) {
	if kernelSize < 3 || kernelSize%2 == 0 {
		panic("kernelSize must be a positive odd number >= 3")
	}
	sigma := 0.159758 * float64(kernelSize)
	sepGaussianBlur(img, kernelSize, sigma)
}
