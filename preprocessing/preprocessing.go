// Package preprocessing holds the operators applied before the main
// transformation of an image: white balance, local and global contrast,
// color-cast correction, artifact smoothing and tone mapping. Every
// operator is a pure function that returns a new image with the same
// dimensions as its input.
package preprocessing

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/Ana-Lujan/Restauracion-Imagen/tool"
)

// WhiteBalance applies the Gray World algorithm: each channel is scaled so
// that the scene average becomes neutral gray. Channels with a zero mean
// are left untouched.
func WhiteBalance(img image.Image) *image.NRGBA {
	src := imaging.Clone(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return src
	}

	var sumR, sumG, sumB float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*src.Stride + x*4
			sumR += float64(src.Pix[i])
			sumG += float64(src.Pix[i+1])
			sumB += float64(src.Pix[i+2])
		}
	}
	n := float64(w * h)
	avgR, avgG, avgB := sumR/n, sumG/n, sumB/n
	avgGray := (avgR + avgG + avgB) / 3.0

	scaleR, scaleG, scaleB := 1.0, 1.0, 1.0
	if avgR > 0 {
		scaleR = avgGray / avgR
	}
	if avgG > 0 {
		scaleG = avgGray / avgG
	}
	if avgB > 0 {
		scaleB = avgGray / avgB
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*src.Stride + x*4
			src.Pix[i] = tool.Clamp(float64(src.Pix[i]) * scaleR)
			src.Pix[i+1] = tool.Clamp(float64(src.Pix[i+1]) * scaleG)
			src.Pix[i+2] = tool.Clamp(float64(src.Pix[i+2]) * scaleB)
		}
	}
	return src
}

// ColorCorrection cancels global color casts by moving the LAB chroma
// channels halfway back toward neutral.
func ColorCorrection(img image.Image) *image.NRGBA {
	src := imaging.Clone(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return src
	}

	lum := make([]float64, w*h)
	chA := make([]float64, w*h)
	chB := make([]float64, w*h)
	var sumA, sumB float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*src.Stride + x*4
			l, a, b := tool.RGBToLab(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
			lum[y*w+x] = l
			chA[y*w+x] = a
			chB[y*w+x] = b
			sumA += a
			sumB += b
		}
	}
	n := float64(w * h)
	shiftA := (sumA/n - 128.0) * 0.5
	shiftB := (sumB/n - 128.0) * 0.5

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*src.Stride + x*4
			r, g, b := tool.LabToRGB(lum[y*w+x], chA[y*w+x]-shiftA, chB[y*w+x]-shiftB)
			src.Pix[i] = r
			src.Pix[i+1] = g
			src.Pix[i+2] = b
		}
	}
	return src
}

// GammaCorrection maps every channel through 255·(v/255)^(1/gamma), built
// once as a 256-entry lookup table.
func GammaCorrection(img image.Image, gamma float64) *image.NRGBA {
	return tool.ApplyLUT(img, tool.GammaLUT(gamma))
}

// AdaptiveContrast improves contrast with the selected method: "clahe"
// (default), "gamma" (brightness-adaptive gamma) or "histogram" (global
// equalization of the luminance channel). Unknown methods return the image
// unchanged.
func AdaptiveContrast(img image.Image, method string) *image.NRGBA {
	switch method {
	case "clahe", "":
		return CLAHE(img, 2.0, 8)
	case "gamma":
		gray := tool.Luminance(img)
		var sum float64
		for _, v := range gray.Pix {
			sum += float64(v)
		}
		mean := 0.0
		if len(gray.Pix) > 0 {
			mean = sum / float64(len(gray.Pix)) / 255.0
		}
		gamma := tool.ClampF(1.0/(mean+0.1), 0.5, 2.0)
		return GammaCorrection(img, gamma)
	case "histogram":
		return EqualizeHistogram(img)
	default:
		return imaging.Clone(img)
	}
}

// EqualizeHistogram equalizes the global luminance histogram, leaving the
// chroma untouched.
func EqualizeHistogram(img image.Image) *image.NRGBA {
	src := imaging.Clone(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return src
	}

	type yuv struct{ y, u, v float64 }
	planes := make([]yuv, w*h)
	var hist [256]int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*src.Stride + x*4
			py, pu, pv := tool.RGBToYUV(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
			planes[y*w+x] = yuv{py, pu, pv}
			hist[tool.Clamp(py)]++
		}
	}

	lut := equalizeLUT(hist, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*src.Stride + x*4
			p := planes[y*w+x]
			r, g, b := tool.YUVToRGB(float64(lut[tool.Clamp(p.y)]), p.u, p.v)
			src.Pix[i] = r
			src.Pix[i+1] = g
			src.Pix[i+2] = b
		}
	}
	return src
}

// EqualizeGray equalizes a grayscale image in place of the luminance path.
func EqualizeGray(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}

	var hist [256]int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hist[gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y]++
		}
	}
	lut := equalizeLUT(hist, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Pix[y*dst.Stride+x] = lut[gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y]
		}
	}
	return dst
}

// equalizeLUT builds the classic equalization mapping, ignoring the mass
// below the first occupied bin so the darkest value maps to zero.
func equalizeLUT(hist [256]int, total int) [256]uint8 {
	var lut [256]uint8
	cdfMin := 0
	for i := 0; i < 256; i++ {
		if hist[i] > 0 {
			cdfMin = hist[i]
			break
		}
	}
	denom := total - cdfMin
	if denom <= 0 {
		// Flat image: identity mapping.
		for i := 0; i < 256; i++ {
			lut[i] = uint8(i)
		}
		return lut
	}

	cdf := 0
	for i := 0; i < 256; i++ {
		cdf += hist[i]
		v := float64(cdf-cdfMin) / float64(denom) * 255.0
		lut[i] = tool.Clamp(v)
	}
	return lut
}

// ReduceJPEGArtifacts smooths block and ringing artifacts with a bilateral
// filter and blends the result back at the given strength. Strength zero is
// the identity.
func ReduceJPEGArtifacts(img image.Image, strength float64) *image.NRGBA {
	if strength <= 0 {
		return imaging.Clone(img)
	}
	d := int(15 * strength)
	if d < 5 {
		d = 5
	}
	sigma := float64(int(100 * strength))
	if sigma < 10 {
		sigma = 10
	}
	filtered := tool.Bilateral(img, d, sigma, sigma)
	return tool.Blend(img, filtered, strength)
}

// HDRToneMap applies a simple Reinhard curve with a gamma lift controlled
// by the intensity parameter.
func HDRToneMap(img image.Image, intensity float64) *image.NRGBA {
	var lut [256]uint8
	exp := 1.0 / (intensity + 0.1)
	for i := 0; i < 256; i++ {
		v := float64(i) / 255.0
		v = v / (1.0 + v)
		v = math.Pow(v, exp)
		lut[i] = tool.Clamp(v * 255.0)
	}
	return tool.ApplyLUT(img, &lut)
}
