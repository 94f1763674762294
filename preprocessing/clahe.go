package preprocessing

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/Ana-Lujan/Restauracion-Imagen/tool"
)

// CLAHE applies contrast-limited adaptive histogram equalization to the
// luminance channel only. The image is moved to LAB, L is equalized tile by
// tile with the given clip limit and grid, and the chroma channels pass
// through untouched.
func CLAHE(img image.Image, clipLimit float64, tiles int) *image.NRGBA {
	src := imaging.Clone(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return src
	}

	lum := make([]uint8, w*h)
	chA := make([]float64, w*h)
	chB := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*src.Stride + x*4
			l, a, b := tool.RGBToLab(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
			lum[y*w+x] = tool.Clamp(l)
			chA[y*w+x] = a
			chB[y*w+x] = b
		}
	}

	eq := clahePlane(lum, w, h, clipLimit, tiles)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*src.Stride + x*4
			r, g, b := tool.LabToRGB(float64(eq[y*w+x]), chA[y*w+x], chB[y*w+x])
			src.Pix[i] = r
			src.Pix[i+1] = g
			src.Pix[i+2] = b
		}
	}
	return src
}

// CLAHEGray equalizes a grayscale image directly, without any color-space
// round trip.
func CLAHEGray(gray *image.Gray, clipLimit float64, tiles int) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}

	plane := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			plane[y*w+x] = gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y
		}
	}
	eq := clahePlane(plane, w, h, clipLimit, tiles)
	for y := 0; y < h; y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], eq[y*w:(y+1)*w])
	}
	return dst
}

// clahePlane runs the tile-based equalization over a row-major 8-bit plane.
func clahePlane(plane []uint8, w, h int, clipLimit float64, tiles int) []uint8 {
	if tiles < 1 {
		tiles = 1
	}
	tileW := (w + tiles - 1) / tiles
	tileH := (h + tiles - 1) / tiles
	if tileW < 1 {
		tileW = 1
	}
	if tileH < 1 {
		tileH = 1
	}
	nx := (w + tileW - 1) / tileW
	ny := (h + tileH - 1) / tileH

	// One clipped-histogram mapping per tile.
	luts := make([][256]uint8, nx*ny)
	for ty := 0; ty < ny; ty++ {
		for tx := 0; tx < nx; tx++ {
			x0, x1 := tx*tileW, (tx+1)*tileW
			y0, y1 := ty*tileH, (ty+1)*tileH
			if x1 > w {
				x1 = w
			}
			if y1 > h {
				y1 = h
			}

			var hist [256]int
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[plane[y*w+x]]++
				}
			}
			area := (x1 - x0) * (y1 - y0)

			clip := int(clipLimit * float64(area) / 256.0)
			if clip < 1 {
				clip = 1
			}
			excess := 0
			for i := 0; i < 256; i++ {
				if hist[i] > clip {
					excess += hist[i] - clip
					hist[i] = clip
				}
			}
			// Redistribute the clipped mass: the bulk evenly, the
			// remainder at a fixed stride across the range.
			incr := excess / 256
			rest := excess % 256
			for i := 0; i < 256; i++ {
				hist[i] += incr
			}
			if rest > 0 {
				step := 256 / rest
				if step < 1 {
					step = 1
				}
				for i := 0; i < 256 && rest > 0; i += step {
					hist[i]++
					rest--
				}
			}

			cdf := 0
			for i := 0; i < 256; i++ {
				cdf += hist[i]
				luts[ty*nx+tx][i] = tool.Clamp(float64(cdf) * 255.0 / float64(area))
			}
		}
	}

	// Bilinear interpolation between the four surrounding tile mappings.
	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		gy := (float64(y) - float64(tileH)/2 + 0.5) / float64(tileH)
		ty0 := int(math.Floor(gy))
		fy := gy - float64(ty0)
		ty1 := ty0 + 1
		if ty0 < 0 {
			ty0, ty1, fy = 0, 0, 0
		}
		if ty1 > ny-1 {
			ty1 = ny - 1
			if ty0 > ny-1 {
				ty0, fy = ny-1, 0
			}
		}
		for x := 0; x < w; x++ {
			gx := (float64(x) - float64(tileW)/2 + 0.5) / float64(tileW)
			tx0 := int(math.Floor(gx))
			fx := gx - float64(tx0)
			tx1 := tx0 + 1
			if tx0 < 0 {
				tx0, tx1, fx = 0, 0, 0
			}
			if tx1 > nx-1 {
				tx1 = nx - 1
				if tx0 > nx-1 {
					tx0, fx = nx-1, 0
				}
			}

			v := plane[y*w+x]
			v00 := float64(luts[ty0*nx+tx0][v])
			v01 := float64(luts[ty0*nx+tx1][v])
			v10 := float64(luts[ty1*nx+tx0][v])
			v11 := float64(luts[ty1*nx+tx1][v])

			top := v00*(1-fx) + v01*fx
			bottom := v10*(1-fx) + v11*fx
			out[y*w+x] = tool.Clamp(top*(1-fy) + bottom*fy)
		}
	}
	return out
}
