// Package imageio decodes, validates and encodes the images the processing
// pipeline works on. Every decoded image is normalized to an opaque
// three-channel NRGBA representation before any operator touches it.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	log "github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Ana-Lujan/Restauracion-Imagen/tool"
)

// Decode parses raw bytes into a canonical RGB image. It fails with
// *DecodeError on malformed or unsupported data and with
// *InvalidImageError when the decoded image is degenerate.
func Decode(data []byte) (*image.NRGBA, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if err := Validate(img); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"formato": format,
		"ancho":   img.Bounds().Dx(),
		"alto":    img.Bounds().Dy(),
	}).Debugln("imagen decodificada")
	return ToRGB(img), nil
}

// Validate checks the structural invariants of a decoded image: it must
// exist and both dimensions must be at least one pixel.
func Validate(img image.Image) error {
	if img == nil {
		return &InvalidImageError{Reason: "la imagen está vacía"}
	}
	b := img.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return &InvalidImageError{Reason: fmt.Sprintf("dimensiones degeneradas %dx%d", b.Dx(), b.Dy())}
	}
	return nil
}

// ToRGB converts any decoded image (grayscale, palette, premultiplied) to
// the canonical three-channel form with full alpha.
func ToRGB(img image.Image) *image.NRGBA {
	return tool.Opaque(img)
}

// EncodePNG serializes an image as PNG, the lossless boundary format.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("imageio: codificación PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// Open reads and decodes an image file from disk.
func Open(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if err := Validate(img); err != nil {
		return nil, err
	}
	return ToRGB(img), nil
}

// Save writes an image to disk, choosing the format by file extension.
func Save(img image.Image, path string, opts ...imaging.EncodeOption) error {
	if err := imaging.Save(img, path, opts...); err != nil {
		return fmt.Errorf("imageio: guardar %q: %w", path, err)
	}
	return nil
}

// SupportedInput reports whether the file extension belongs to a format the
// decoder registers.
func SupportedInput(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return true
	}
	return false
}

// SupportedOutput reports whether the file extension belongs to a format
// Save can encode. WebP can be read but not written.
func SupportedOutput(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}

// Info summarizes an image for diagnostics.
type Info struct {
	Width    int
	Height   int
	Channels int
	SizeMB   float64
	MinValue uint8
	MaxValue uint8
}

// Describe computes basic information about an image.
func Describe(img *image.NRGBA) Info {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	info := Info{
		Width:    w,
		Height:   h,
		Channels: 3,
		SizeMB:   float64(w*h*3) / (1024 * 1024),
		MinValue: 255,
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*img.Stride + x*4
			for c := 0; c < 3; c++ {
				v := img.Pix[i+c]
				if v < info.MinValue {
					info.MinValue = v
				}
				if v > info.MaxValue {
					info.MaxValue = v
				}
			}
		}
	}
	if w == 0 || h == 0 {
		info.MinValue = 0
	}
	return info
}
