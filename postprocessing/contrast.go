package postprocessing

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/montanaflynn/stats"

	"github.com/Ana-Lujan/Restauracion-Imagen/tool"
)

// FinalContrast performs the last contrast pass over the luminance
// channel. Method "auto" stretches the 1st..99th percentile range to the
// full scale; "stretch" uses plain min-max normalization. Any other method
// returns the image unchanged.
func FinalContrast(img image.Image, method string) *image.NRGBA {
	switch method {
	case "auto", "":
		return stretchLuminance(img, percentileRange)
	case "stretch":
		return stretchLuminance(img, minMaxRange)
	default:
		return imaging.Clone(img)
	}
}

func percentileRange(values []float64) (float64, float64, bool) {
	p1, err := stats.Percentile(stats.Float64Data(values), 1)
	if err != nil {
		return 0, 0, false
	}
	p99, err := stats.Percentile(stats.Float64Data(values), 99)
	if err != nil {
		return 0, 0, false
	}
	return p1, p99, true
}

func minMaxRange(values []float64) (float64, float64, bool) {
	if len(values) == 0 {
		return 0, 0, false
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, true
}

// stretchLuminance maps the luminance interval [lo, hi] to [0, 255] and
// rebuilds the image with the original chroma. Degenerate ranges leave the
// image unchanged.
func stretchLuminance(img image.Image, bounds func([]float64) (float64, float64, bool)) *image.NRGBA {
	src := imaging.Clone(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return src
	}

	type yuv struct{ y, u, v float64 }
	planes := make([]yuv, w*h)
	values := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*src.Stride + x*4
			py, pu, pv := tool.RGBToYUV(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
			planes[y*w+x] = yuv{py, pu, pv}
			values[y*w+x] = py
		}
	}

	lo, hi, ok := bounds(values)
	if !ok || hi-lo < 1e-6 {
		return src
	}

	scale := 255.0 / (hi - lo)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*src.Stride + x*4
			p := planes[y*w+x]
			stretched := tool.ClampF((p.y-lo)*scale, 0, 255)
			r, g, b := tool.YUVToRGB(stretched, p.u, p.v)
			src.Pix[i] = r
			src.Pix[i+1] = g
			src.Pix[i+2] = b
		}
	}
	return src
}
