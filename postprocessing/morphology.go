package postprocessing

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// MorphOp selects a morphological operation.
type MorphOp string

const (
	MorphOpening  MorphOp = "opening"
	MorphClosing  MorphOp = "closing"
	MorphErosion  MorphOp = "erosion"
	MorphDilation MorphOp = "dilation"
)

// Morphology applies the selected operation with a square structuring
// element of the given size. Opening removes bright specks, closing fills
// dark gaps. Unknown operations return the image unchanged.
func Morphology(img image.Image, op MorphOp, kernelSize int) *image.NRGBA {
	radius := float64(kernelSize / 2)
	if radius < 1 {
		radius = 1
	}

	switch op {
	case MorphOpening:
		return imaging.Clone(effect.Dilate(effect.Erode(img, radius), radius))
	case MorphClosing:
		return imaging.Clone(effect.Erode(effect.Dilate(img, radius), radius))
	case MorphErosion:
		return imaging.Clone(effect.Erode(img, radius))
	case MorphDilation:
		return imaging.Clone(effect.Dilate(img, radius))
	default:
		return imaging.Clone(img)
	}
}
