package metrics

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/Ana-Lujan/Restauracion-Imagen/tool"
)

// Stability constants from the SSIM reference formulation, for an 8-bit
// dynamic range: (0.01*255)^2 and (0.03*255)^2.
const (
	ssimC1 = 6.5025
	ssimC2 = 58.5225
)

// SSIM computes the mean structural similarity over the luminance plane
// using an 11x11 Gaussian window with sigma 1.5.
func SSIM(original, processed image.Image) (float64, error) {
	if !sameSize(original, processed) {
		return 0, ErrDimensionMismatch
	}
	if minDim(original) < minWindowDim {
		return 0, ErrTooSmall
	}

	a := tool.LuminancePlane(imaging.Clone(original))
	b := tool.LuminancePlane(imaging.Clone(processed))
	w, h := original.Bounds().Dx(), original.Bounds().Dy()
	return ssimPlane(a, b, w, h), nil
}

// ssimPlane runs the windowed SSIM formula over two equally sized float
// planes. Local means and variances come from Gaussian-blurred moment
// planes, so the window slides implicitly.
func ssimPlane(a, b []float64, w, h int) float64 {
	kernel := tool.GaussianKernel1D(ssimWindow, ssimSigma)

	aa := make([]float64, len(a))
	bb := make([]float64, len(a))
	ab := make([]float64, len(a))
	for i := range a {
		aa[i] = a[i] * a[i]
		bb[i] = b[i] * b[i]
		ab[i] = a[i] * b[i]
	}

	mu1 := tool.BlurPlane(a, w, h, kernel)
	mu2 := tool.BlurPlane(b, w, h, kernel)
	eAA := tool.BlurPlane(aa, w, h, kernel)
	eBB := tool.BlurPlane(bb, w, h, kernel)
	eAB := tool.BlurPlane(ab, w, h, kernel)

	var sum float64
	for i := range a {
		m1, m2 := mu1[i], mu2[i]
		v1 := eAA[i] - m1*m1
		v2 := eBB[i] - m2*m2
		cov := eAB[i] - m1*m2

		num := (2*m1*m2 + ssimC1) * (2*cov + ssimC2)
		den := (m1*m1 + m2*m2 + ssimC1) * (v1 + v2 + ssimC2)
		sum += num / den
	}
	return sum / float64(len(a))
}
