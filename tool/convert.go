package tool

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Clamp converts a float value to uint8, saturating outside [0, 255].
func Clamp(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// ClampF limits a float value to the [min, max] interval.
func ClampF(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Blend mixes two images of the same size: (1-s)·a + s·b per channel.
// s=0 returns a copy of a, s=1 a copy of b. Alpha comes from a.
func Blend(a, b image.Image, s float64) *image.NRGBA {
	dst := imaging.Clone(a)
	if s <= 0 {
		return dst
	}
	src := imaging.Clone(b)
	if s >= 1 {
		return src
	}

	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*dst.Stride + x*4
			j := y*src.Stride + x*4
			for c := 0; c < 3; c++ {
				dst.Pix[i+c] = Clamp((1-s)*float64(dst.Pix[i+c]) + s*float64(src.Pix[j+c]))
			}
		}
	}
	return dst
}

// ApplyLUT maps every color channel through a 256-entry lookup table.
// Alpha is preserved.
func ApplyLUT(img image.Image, lut *[256]uint8) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 0; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = lut[dst.Pix[i]]
		dst.Pix[i+1] = lut[dst.Pix[i+1]]
		dst.Pix[i+2] = lut[dst.Pix[i+2]]
	}
	return dst
}

// GammaLUT builds the lookup table 255·(i/255)^(1/gamma).
func GammaLUT(gamma float64) *[256]uint8 {
	inv := 1.0 / gamma
	var lut [256]uint8
	for i := 0; i < 256; i++ {
		lut[i] = Clamp(math.Pow(float64(i)/255.0, inv) * 255.0)
	}
	return &lut
}

// ReplicateGray expands a grayscale image to three identical RGB channels.
func ReplicateGray(gray *image.Gray) *image.NRGBA {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g := gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y
			i := y*dst.Stride + x*4
			dst.Pix[i] = g
			dst.Pix[i+1] = g
			dst.Pix[i+2] = g
			dst.Pix[i+3] = 255
		}
	}
	return dst
}

// Opaque returns a copy with every alpha value forced to 255.
func Opaque(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 255
	}
	return dst
}
