package tool

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Bilateral applies an edge-preserving smoothing filter over a square
// neighborhood of diameter d, weighting each neighbor by spatial and by
// color proximity. Parameters follow the usual convention: larger sigmas
// mean stronger smoothing.
func Bilateral(img image.Image, d int, sigmaColor, sigmaSpace float64) *image.NRGBA {
	src := imaging.Clone(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 || d < 1 {
		return src
	}

	radius := d / 2
	if radius < 1 {
		radius = 1
	}

	// exp(-(a²+b²+c²)/2σ²) factors into per-difference terms, so a single
	// 256-entry table per sigma covers every channel difference.
	var colorW [256]float64
	for i := 0; i < 256; i++ {
		colorW[i] = math.Exp(-float64(i*i) / (2 * sigmaColor * sigmaColor))
	}
	spaceW := make([]float64, radius+1)
	for i := 0; i <= radius; i++ {
		spaceW[i] = math.Exp(-float64(i*i) / (2 * sigmaSpace * sigmaSpace))
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*src.Stride + x*4

			var sumR, sumG, sumB, sumW float64
			for ky := -radius; ky <= radius; ky++ {
				ny := y + ky
				if ny < 0 {
					ny = 0
				} else if ny >= h {
					ny = h - 1
				}
				for kx := -radius; kx <= radius; kx++ {
					nx := x + kx
					if nx < 0 {
						nx = 0
					} else if nx >= w {
						nx = w - 1
					}
					j := ny*src.Stride + nx*4
					nr := float64(src.Pix[j])
					ng := float64(src.Pix[j+1])
					nb := float64(src.Pix[j+2])

					wgt := spaceW[abs(ky)] * spaceW[abs(kx)] *
						colorW[absDiff(src.Pix[i], src.Pix[j])] *
						colorW[absDiff(src.Pix[i+1], src.Pix[j+1])] *
						colorW[absDiff(src.Pix[i+2], src.Pix[j+2])]

					sumR += nr * wgt
					sumG += ng * wgt
					sumB += nb * wgt
					sumW += wgt
				}
			}

			// The center weight is always 1, so sumW never reaches zero.
			o := y*dst.Stride + x*4
			dst.Pix[o] = Clamp(sumR / sumW)
			dst.Pix[o+1] = Clamp(sumG / sumW)
			dst.Pix[o+2] = Clamp(sumB / sumW)
			dst.Pix[o+3] = src.Pix[i+3]
		}
	}
	return dst
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// GaussianKernel1D builds a normalized one-dimensional Gaussian kernel of
// the given odd size.
func GaussianKernel1D(size int, sigma float64) []float64 {
	if size < 1 {
		size = 1
	}
	if size%2 == 0 {
		size++
	}
	k := make([]float64, size)
	center := size / 2
	sum := 0.0
	for i := 0; i < size; i++ {
		d := float64(i - center)
		k[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// BlurPlane convolves a row-major float plane with a separable kernel,
// replicating edge values at the borders.
func BlurPlane(plane []float64, w, h int, kernel []float64) []float64 {
	if w == 0 || h == 0 {
		return plane
	}
	radius := len(kernel) / 2

	tmp := make([]float64, len(plane))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				nx := x + k
				if nx < 0 {
					nx = 0
				} else if nx >= w {
					nx = w - 1
				}
				sum += plane[y*w+nx] * kernel[k+radius]
			}
			tmp[y*w+x] = sum
		}
	}

	out := make([]float64, len(plane))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				ny := y + k
				if ny < 0 {
					ny = 0
				} else if ny >= h {
					ny = h - 1
				}
				sum += tmp[ny*w+x] * kernel[k+radius]
			}
			out[y*w+x] = sum
		}
	}
	return out
}

// GrayPlane copies an 8-bit grayscale image into a float plane.
func GrayPlane(img *image.Gray) ([]float64, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			plane[y*w+x] = float64(img.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
		}
	}
	return plane, w, h
}
