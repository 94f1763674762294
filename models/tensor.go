package models

import (
	"image"

	"github.com/Ana-Lujan/Restauracion-Imagen/tool"
)

// imageToTensor lays the image out as NCHW float32 in RGB order,
// normalized to [0, 1], the layout the exported models expect.
func imageToTensor(img *image.NRGBA) ([]float32, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := w * h
	data := make([]float32, 3*plane)

	for y := 0; y < h; y++ {
		i := img.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			idx := y*w + x
			data[idx] = float32(img.Pix[i]) / 255.0
			data[plane+idx] = float32(img.Pix[i+1]) / 255.0
			data[2*plane+idx] = float32(img.Pix[i+2]) / 255.0
			i += 4
		}
	}
	return data, w, h
}

// tensorToImage denormalizes an NCHW float32 tensor back into an opaque
// image, clamping each channel to [0, 255].
func tensorToImage(data []float32, w, h int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	plane := w * h

	for y := 0; y < h; y++ {
		i := out.PixOffset(0, y)
		for x := 0; x < w; x++ {
			idx := y*w + x
			out.Pix[i] = tool.Clamp(float64(data[idx]) * 255.0)
			out.Pix[i+1] = tool.Clamp(float64(data[plane+idx]) * 255.0)
			out.Pix[i+2] = tool.Clamp(float64(data[2*plane+idx]) * 255.0)
			out.Pix[i+3] = 255
			i += 4
		}
	}
	return out
}
