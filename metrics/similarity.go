package metrics

import (
	"image"
	"math"

	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"

	"github.com/Ana-Lujan/Restauracion-Imagen/tool"
)

// HistogramSimilarity correlates the brightness histograms of both images
// and maps the Pearson coefficient from [-1, 1] to [0, 1]. It does not
// depend on image dimensions, so it stays available after upscaling.
func HistogramSimilarity(original, processed image.Image) float64 {
	ha := brightnessHistogram(imaging.Clone(original))
	hb := brightnessHistogram(imaging.Clone(processed))
	r := correlation(ha, hb)
	return (r + 1) / 2
}

func brightnessHistogram(img *image.NRGBA) [256]float64 {
	var hist [256]float64
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			v := tool.BrightnessValue(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
			hist[v]++
			i += 4
		}
	}
	return hist
}

// correlation is the Pearson coefficient over histogram bins. Correlation
// is scale invariant, so raw bin counts need no normalization. Flat
// histograms have no variance to correlate and count as a perfect match.
func correlation(a, b [256]float64) float64 {
	var meanA, meanB float64
	for i := 0; i < 256; i++ {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= 256
	meanB /= 256

	var cov, varA, varB float64
	for i := 0; i < 256; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	den := math.Sqrt(varA * varB)
	if den < 1e-12 {
		return 1
	}
	return cov / den
}

// EdgePreservation measures how well the processing kept the original
// edge structure: both images go through a Sobel operator and the edge
// maps are compared with SSIM.
func EdgePreservation(original, processed image.Image) (float64, error) {
	if !sameSize(original, processed) {
		return 0, ErrDimensionMismatch
	}
	if minDim(original) < minWindowDim {
		return 0, ErrTooSmall
	}

	ea, w, h := sobelPlane(original)
	eb, _, _ := sobelPlane(processed)
	return ssimPlane(ea, eb, w, h), nil
}

func sobelPlane(img image.Image) ([]float64, int, int) {
	gray := tool.Luminance(imaging.Clone(img))
	g := gift.New(gift.Sobel())
	edges := image.NewGray(g.Bounds(gray.Bounds()))
	g.Draw(edges, gray)
	return tool.GrayPlane(edges)
}
