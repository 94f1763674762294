package metrics

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/disintegration/imaging"
	"golang.org/x/exp/rand"
)

func makeSolidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

// makeRampImage builds a mid-range horizontal gray ramp with enough
// headroom on both ends for additive noise.
func makeRampImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*img.Stride + x*4
			v := uint8(64 + x*4%128)
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 255
		}
	}
	return img
}

// addNoise applies the same seeded delta to the three channels of every
// pixel, so the luminance noise has the full amplitude.
func addNoise(img *image.NRGBA, amplitude int) *image.NRGBA {
	rng := rand.New(rand.NewSource(7))
	out := imaging.Clone(img)
	for i := 0; i < len(out.Pix); i += 4 {
		delta := rng.Intn(2*amplitude+1) - amplitude
		for c := 0; c < 3; c++ {
			v := int(out.Pix[i+c]) + delta
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			out.Pix[i+c] = uint8(v)
		}
	}
	return out
}

func TestMSEIdentical(t *testing.T) {
	img := makeRampImage(16, 16)
	got, err := MSE(img, img)
	if err != nil {
		t.Fatalf("MSE returned error: %v", err)
	}
	if got != 0 {
		t.Errorf("MSE of an image against itself = %v, want 0", got)
	}
}

func TestMSEKnownValue(t *testing.T) {
	a := makeSolidImage(8, 8, color.NRGBA{100, 100, 100, 255})
	b := makeSolidImage(8, 8, color.NRGBA{110, 110, 110, 255})
	got, err := MSE(a, b)
	if err != nil {
		t.Fatalf("MSE returned error: %v", err)
	}
	if math.Abs(got-100) > 1e-9 {
		t.Errorf("MSE = %v, want 100", got)
	}
}

func TestMSESingleChannelDiff(t *testing.T) {
	a := makeSolidImage(8, 8, color.NRGBA{100, 100, 100, 255})
	b := makeSolidImage(8, 8, color.NRGBA{110, 100, 100, 255})
	got, err := MSE(a, b)
	if err != nil {
		t.Fatalf("MSE returned error: %v", err)
	}
	if math.Abs(got-100.0/3) > 1e-9 {
		t.Errorf("MSE = %v, want 100/3 with the error on one channel", got)
	}
}

func TestMSEDimensionMismatch(t *testing.T) {
	a := makeSolidImage(8, 8, color.NRGBA{100, 100, 100, 255})
	b := makeSolidImage(16, 16, color.NRGBA{100, 100, 100, 255})
	if _, err := MSE(a, b); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("MSE error = %v, want ErrDimensionMismatch", err)
	}
}

func TestRMSEKnownValue(t *testing.T) {
	a := makeSolidImage(8, 8, color.NRGBA{100, 100, 100, 255})
	b := makeSolidImage(8, 8, color.NRGBA{110, 110, 110, 255})
	got, err := RMSE(a, b)
	if err != nil {
		t.Fatalf("RMSE returned error: %v", err)
	}
	if math.Abs(got-10) > 1e-9 {
		t.Errorf("RMSE = %v, want 10", got)
	}
}

func TestPSNRIdenticalIsInfinite(t *testing.T) {
	img := makeRampImage(16, 16)
	got, err := PSNR(img, img)
	if err != nil {
		t.Fatalf("PSNR returned error: %v", err)
	}
	if !math.IsInf(got, 1) {
		t.Errorf("PSNR of an image against itself = %v, want +Inf", got)
	}
}

func TestPSNRKnownValue(t *testing.T) {
	a := makeSolidImage(8, 8, color.NRGBA{100, 100, 100, 255})
	b := makeSolidImage(8, 8, color.NRGBA{110, 110, 110, 255})
	got, err := PSNR(a, b)
	if err != nil {
		t.Fatalf("PSNR returned error: %v", err)
	}
	want := 20 * math.Log10(255.0/10.0)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("PSNR = %v, want %v", got, want)
	}
}

func TestPSNRDropsWithLargerError(t *testing.T) {
	a := makeSolidImage(8, 8, color.NRGBA{100, 100, 100, 255})
	near := makeSolidImage(8, 8, color.NRGBA{105, 105, 105, 255})
	far := makeSolidImage(8, 8, color.NRGBA{130, 130, 130, 255})

	high, err := PSNR(a, near)
	if err != nil {
		t.Fatalf("PSNR returned error: %v", err)
	}
	low, err := PSNR(a, far)
	if err != nil {
		t.Fatalf("PSNR returned error: %v", err)
	}
	if low >= high {
		t.Errorf("PSNR %v for a large error vs %v for a small one, want a drop", low, high)
	}
}

func TestPSNRGates(t *testing.T) {
	big := makeSolidImage(16, 16, color.NRGBA{100, 100, 100, 255})
	small := makeSolidImage(6, 6, color.NRGBA{100, 100, 100, 255})

	if _, err := PSNR(big, small); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("PSNR error on mismatched sizes = %v, want ErrDimensionMismatch", err)
	}
	if _, err := PSNR(small, small); !errors.Is(err, ErrTooSmall) {
		t.Errorf("PSNR error on a 6x6 image = %v, want ErrTooSmall", err)
	}
}

func TestSSIMIdenticalIsOne(t *testing.T) {
	img := makeRampImage(32, 32)
	got, err := SSIM(img, img)
	if err != nil {
		t.Fatalf("SSIM returned error: %v", err)
	}
	if got < 0.999 || got > 1.000001 {
		t.Errorf("SSIM of an image against itself = %v, want 1", got)
	}
}

func TestSSIMDetectsDegradation(t *testing.T) {
	img := makeRampImage(32, 32)
	noisy := addNoise(img, 50)
	got, err := SSIM(img, noisy)
	if err != nil {
		t.Fatalf("SSIM returned error: %v", err)
	}
	if got >= 0.9 {
		t.Errorf("SSIM against a heavily noised copy = %v, want below 0.9", got)
	}
	if got < -1 || got > 1 {
		t.Errorf("SSIM = %v, outside [-1, 1]", got)
	}
}

func TestSSIMGates(t *testing.T) {
	big := makeRampImage(16, 16)
	small := makeRampImage(6, 6)

	if _, err := SSIM(big, small); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("SSIM error on mismatched sizes = %v, want ErrDimensionMismatch", err)
	}
	if _, err := SSIM(small, small); !errors.Is(err, ErrTooSmall) {
		t.Errorf("SSIM error on a 6x6 image = %v, want ErrTooSmall", err)
	}
}

func TestHistogramSimilarityIdentical(t *testing.T) {
	img := makeRampImage(32, 32)
	got := HistogramSimilarity(img, img)
	if math.Abs(got-1) > 1e-6 {
		t.Errorf("HistogramSimilarity of an image against itself = %v, want 1", got)
	}
}

func TestHistogramSimilarityIgnoresDimensions(t *testing.T) {
	// Correlation works on distributions, so this is the one metric that
	// stays available after the dimensions change.
	a := makeSolidImage(10, 10, color.NRGBA{100, 100, 100, 255})
	b := makeSolidImage(20, 20, color.NRGBA{100, 100, 100, 255})
	got := HistogramSimilarity(a, b)
	if math.Abs(got-1) > 1e-6 {
		t.Errorf("HistogramSimilarity across sizes = %v, want 1 for the same distribution", got)
	}
}

func TestHistogramSimilarityDifferentContent(t *testing.T) {
	ramp := makeRampImage(32, 32)
	flat := makeSolidImage(32, 32, color.NRGBA{100, 100, 100, 255})
	got := HistogramSimilarity(ramp, flat)
	if got >= 0.9 {
		t.Errorf("HistogramSimilarity between a ramp and a flat image = %v, want below 0.9", got)
	}
	if got < 0 || got > 1 {
		t.Errorf("HistogramSimilarity = %v, outside [0, 1]", got)
	}
}

func TestEdgePreservationIdentical(t *testing.T) {
	img := makeRampImage(32, 32)
	got, err := EdgePreservation(img, img)
	if err != nil {
		t.Fatalf("EdgePreservation returned error: %v", err)
	}
	if got < 0.999 || got > 1.000001 {
		t.Errorf("EdgePreservation of an image against itself = %v, want 1", got)
	}
}

func TestEdgePreservationDetectsBlur(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			i := y*img.Stride + x*4
			v := uint8(0)
			if x/4%2 == 0 {
				v = 255
			}
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 255
		}
	}

	got, err := EdgePreservation(img, imaging.Blur(img, 2.0))
	if err != nil {
		t.Fatalf("EdgePreservation returned error: %v", err)
	}
	if got >= 0.95 {
		t.Errorf("EdgePreservation after a strong blur = %v, want below 0.95", got)
	}
}

func TestEdgePreservationGates(t *testing.T) {
	big := makeRampImage(16, 16)
	small := makeRampImage(6, 6)

	if _, err := EdgePreservation(big, small); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("EdgePreservation error on mismatched sizes = %v, want ErrDimensionMismatch", err)
	}
	if _, err := EdgePreservation(small, small); !errors.Is(err, ErrTooSmall) {
		t.Errorf("EdgePreservation error on a 6x6 image = %v, want ErrTooSmall", err)
	}
}

func TestComprehensiveAllAvailable(t *testing.T) {
	a := makeSolidImage(16, 16, color.NRGBA{100, 100, 100, 255})
	b := makeSolidImage(16, 16, color.NRGBA{110, 110, 110, 255})
	res := Comprehensive(a, b)

	if res.PSNR == nil || res.SSIM == nil || res.MSE == nil ||
		res.RMSE == nil || res.HistogramSimilarity == nil || res.EdgePreservation == nil {
		t.Fatalf("Comprehensive left metrics unavailable on same-size images: %+v", res)
	}
	if math.Abs(*res.MSE-100) > 1e-9 {
		t.Errorf("Comprehensive MSE = %v, want 100", *res.MSE)
	}
	if math.Abs(*res.RMSE-10) > 1e-9 {
		t.Errorf("Comprehensive RMSE = %v, want 10", *res.RMSE)
	}
	want := 20 * math.Log10(255.0 / 10.0)
	if math.Abs(*res.PSNR-want) > 1e-9 {
		t.Errorf("Comprehensive PSNR = %v, want %v", *res.PSNR, want)
	}
}

func TestComprehensiveMismatchedDimensions(t *testing.T) {
	a := makeRampImage(10, 10)
	b := makeRampImage(20, 20)
	res := Comprehensive(a, b)

	if res.PSNR != nil || res.SSIM != nil || res.MSE != nil ||
		res.RMSE != nil || res.EdgePreservation != nil {
		t.Errorf("dimension-bound metrics present on mismatched sizes: %+v", res)
	}
	if res.HistogramSimilarity == nil {
		t.Error("HistogramSimilarity missing, it has no dimension requirement")
	}
}

func TestComprehensiveTinyImage(t *testing.T) {
	img := makeRampImage(4, 4)
	res := Comprehensive(img, img)

	if res.MSE == nil || res.RMSE == nil || res.HistogramSimilarity == nil {
		t.Errorf("unwindowed metrics missing on a tiny image: %+v", res)
	}
	if res.PSNR != nil || res.SSIM != nil || res.EdgePreservation != nil {
		t.Errorf("windowed metrics present below the minimum size: %+v", res)
	}
}

func TestUnavailable(t *testing.T) {
	res := Unavailable()
	if res.PSNR != nil || res.SSIM != nil || res.MSE != nil ||
		res.RMSE != nil || res.HistogramSimilarity != nil || res.EdgePreservation != nil {
		t.Errorf("Unavailable returned computed metrics: %+v", res)
	}
}
