// Package metrics scores a processed image against its original: PSNR,
// windowed SSIM, MSE/RMSE, histogram correlation and edge preservation.
// Metrics that need equal dimensions or a minimum comparison window report
// themselves as unavailable instead of returning a misleading number.
package metrics

import (
	"errors"
	"image"
	"math"
)

var (
	// ErrDimensionMismatch marks metrics that require both images to have
	// the same dimensions, as after super-resolution.
	ErrDimensionMismatch = errors.New("metrics: las dimensiones no coinciden")
	// ErrTooSmall marks images below the minimum comparison window.
	ErrTooSmall = errors.New("metrics: imagen más pequeña que la ventana de comparación")
)

const (
	// minWindowDim is the smallest dimension the windowed metrics accept.
	minWindowDim = 7
	// ssimWindow is the Gaussian window size for SSIM.
	ssimWindow = 11
	ssimSigma  = 1.5
)

// Result carries every computed metric. A nil field means the metric was
// not computable for this pair of images, which is different from zero.
type Result struct {
	PSNR                *float64
	SSIM                *float64
	MSE                 *float64
	RMSE                *float64
	HistogramSimilarity *float64
	EdgePreservation    *float64
}

// Unavailable is the all-unavailable result used when processing degraded
// to returning the original image.
func Unavailable() Result {
	return Result{}
}

func sameSize(a, b image.Image) bool {
	return a.Bounds().Dx() == b.Bounds().Dx() && a.Bounds().Dy() == b.Bounds().Dy()
}

func minDim(img image.Image) int {
	b := img.Bounds()
	if b.Dx() < b.Dy() {
		return b.Dx()
	}
	return b.Dy()
}

// MSE computes the mean squared error over the three color channels.
func MSE(original, processed image.Image) (float64, error) {
	if !sameSize(original, processed) {
		return 0, ErrDimensionMismatch
	}
	ob, pb := original.Bounds(), processed.Bounds()
	w, h := ob.Dx(), ob.Dy()
	if w == 0 || h == 0 {
		return 0, ErrDimensionMismatch
	}

	var sum float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			or, og, obl, _ := original.At(ob.Min.X+x, ob.Min.Y+y).RGBA()
			pr, pg, pbl, _ := processed.At(pb.Min.X+x, pb.Min.Y+y).RGBA()
			dr := float64(or>>8) - float64(pr>>8)
			dg := float64(og>>8) - float64(pg>>8)
			db := float64(obl>>8) - float64(pbl>>8)
			sum += dr*dr + dg*dg + db*db
		}
	}
	return sum / float64(w*h*3), nil
}

// RMSE is the square root of MSE.
func RMSE(original, processed image.Image) (float64, error) {
	mse, err := MSE(original, processed)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// PSNR computes the peak signal-to-noise ratio in decibels. Identical
// images yield +Inf. Like SSIM it requires equal dimensions and the
// minimum comparison window.
func PSNR(original, processed image.Image) (float64, error) {
	if !sameSize(original, processed) {
		return 0, ErrDimensionMismatch
	}
	if minDim(original) < minWindowDim {
		return 0, ErrTooSmall
	}
	mse, err := MSE(original, processed)
	if err != nil {
		return 0, err
	}
	if mse == 0 {
		return math.Inf(1), nil
	}
	return 20 * math.Log10(255.0/math.Sqrt(mse)), nil
}

// Comprehensive computes every metric, marking the non-computable ones as
// unavailable.
func Comprehensive(original, processed image.Image) Result {
	var res Result

	hist := HistogramSimilarity(original, processed)
	res.HistogramSimilarity = &hist

	if mse, err := MSE(original, processed); err == nil {
		res.MSE = ptr(mse)
		res.RMSE = ptr(math.Sqrt(mse))
	}
	if v, err := PSNR(original, processed); err == nil {
		res.PSNR = ptr(v)
	}
	if v, err := SSIM(original, processed); err == nil {
		res.SSIM = ptr(v)
	}
	if v, err := EdgePreservation(original, processed); err == nil {
		res.EdgePreservation = ptr(v)
	}
	return res
}

func ptr(v float64) *float64 { return &v }
