package tool

import (
	"image"
	"math"
)

// Luminance converts an image to an 8-bit grayscale plane using the
// BT.601 weights (0.299, 0.587, 0.114).
func Luminance(img image.Image) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bb, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			v := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(bb>>8)
			dst.Pix[y*dst.Stride+x] = Clamp(v)
		}
	}
	return dst
}

// LuminancePlane extracts the BT.601 luminance of every pixel as float64,
// row-major, without rounding to 8 bits.
func LuminancePlane(img *image.NRGBA) []float64 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	plane := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*img.Stride + x*4
			plane[y*w+x] = 0.299*float64(img.Pix[i]) + 0.587*float64(img.Pix[i+1]) + 0.114*float64(img.Pix[i+2])
		}
	}
	return plane
}

// RGBToYUV converts an 8-bit RGB triple to full-range YUV with the chroma
// channels offset by 128.
func RGBToYUV(r, g, b uint8) (y, u, v float64) {
	rf, gf, bf := float64(r), float64(g), float64(b)
	y = 0.299*rf + 0.587*gf + 0.114*bf
	u = (bf-y)*0.565 + 128
	v = (rf-y)*0.713 + 128
	return
}

// YUVToRGB is the inverse of RGBToYUV, saturating to [0, 255].
func YUVToRGB(y, u, v float64) (r, g, b uint8) {
	r = Clamp(y + 1.403*(v-128))
	g = Clamp(y - 0.344*(u-128) - 0.714*(v-128))
	b = Clamp(y + 1.773*(u-128))
	return
}

// D65 reference white.
const (
	labXn = 0.950456
	labYn = 1.0
	labZn = 1.088754
)

func labF(t float64) float64 {
	if t > 0.008856 {
		return math.Cbrt(t)
	}
	return 7.787*t + 16.0/116.0
}

func labFInv(t float64) float64 {
	t3 := t * t * t
	if t3 > 0.008856 {
		return t3
	}
	return (t - 16.0/116.0) / 7.787
}

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func linearToSRGB(c float64) float64 {
	if c <= 0.0031308 {
		return c * 12.92
	}
	return 1.055*math.Pow(c, 1.0/2.4) - 0.055
}

// RGBToLab converts an 8-bit RGB triple to CIELAB scaled to 8-bit ranges:
// L in [0, 255], a and b offset by 128.
func RGBToLab(r8, g8, b8 uint8) (l, a, b float64) {
	r := srgbToLinear(float64(r8) / 255.0)
	g := srgbToLinear(float64(g8) / 255.0)
	bl := srgbToLinear(float64(b8) / 255.0)

	x := 0.412453*r + 0.357580*g + 0.180423*bl
	y := 0.212671*r + 0.715160*g + 0.072169*bl
	z := 0.019334*r + 0.119193*g + 0.950227*bl

	fx := labF(x / labXn)
	fy := labF(y / labYn)
	fz := labF(z / labZn)

	l = (116.0*fy - 16.0) * 255.0 / 100.0
	a = 500.0*(fx-fy) + 128.0
	b = 200.0*(fy-fz) + 128.0
	return
}

// LabToRGB is the inverse of RGBToLab.
func LabToRGB(l, a, b float64) (r8, g8, b8 uint8) {
	ll := l * 100.0 / 255.0
	fy := (ll + 16.0) / 116.0
	fx := fy + (a-128.0)/500.0
	fz := fy - (b-128.0)/200.0

	x := labFInv(fx) * labXn
	y := labFInv(fy) * labYn
	z := labFInv(fz) * labZn

	r := 3.240479*x - 1.537150*y - 0.498535*z
	g := -0.969256*x + 1.875992*y + 0.041556*z
	bl := 0.055648*x - 0.204043*y + 1.057311*z

	r8 = Clamp(linearToSRGB(ClampF(r, 0, 1)) * 255.0)
	g8 = Clamp(linearToSRGB(ClampF(g, 0, 1)) * 255.0)
	b8 = Clamp(linearToSRGB(ClampF(bl, 0, 1)) * 255.0)
	return
}

// BrightnessValue returns the HSV value channel, max(R, G, B).
func BrightnessValue(r, g, b uint8) uint8 {
	v := r
	if g > v {
		v = g
	}
	if b > v {
		v = b
	}
	return v
}
