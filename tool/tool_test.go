package tool

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"
)

func makeTestImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*img.Stride + x*4
			img.Pix[i] = uint8((x * 7) % 256)
			img.Pix[i+1] = uint8((y * 5) % 256)
			img.Pix[i+2] = uint8((x + 2*y) % 256)
			img.Pix[i+3] = 255
		}
	}
	return img
}

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

func TestClampSaturates(t *testing.T) {
	cases := []struct {
		in   float64
		want uint8
	}{
		{-10, 0},
		{0, 0},
		{127.4, 127},
		{127.6, 128},
		{255, 255},
		{300, 255},
	}
	for _, c := range cases {
		if got := Clamp(c.in); got != c.want {
			t.Errorf("Clamp(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestClampF(t *testing.T) {
	if got := ClampF(-1, 0.1, 2.0); got != 0.1 {
		t.Errorf("ClampF(-1) = %v, want 0.1", got)
	}
	if got := ClampF(5, 0.1, 2.0); got != 2.0 {
		t.Errorf("ClampF(5) = %v, want 2.0", got)
	}
	if got := ClampF(1.5, 0.1, 2.0); got != 1.5 {
		t.Errorf("ClampF(1.5) = %v, want 1.5", got)
	}
}

func TestBlendEndpoints(t *testing.T) {
	a := makeTestImage(16, 16)
	b := makeSolidImage(16, 16, color.NRGBA{200, 100, 50, 255})

	if got := Blend(a, b, 0); !bytes.Equal(got.Pix, a.Pix) {
		t.Fatal("Blend with s=0 should be pixel-identical to the first image")
	}
	if got := Blend(a, b, 1); !bytes.Equal(got.Pix, b.Pix) {
		t.Fatal("Blend with s=1 should be pixel-identical to the second image")
	}
}

func TestBlendMidpoint(t *testing.T) {
	a := makeSolidImage(8, 8, color.NRGBA{100, 100, 100, 255})
	b := makeSolidImage(8, 8, color.NRGBA{200, 200, 200, 255})

	got := Blend(a, b, 0.5)
	for c := 0; c < 3; c++ {
		if got.Pix[c] != 150 {
			t.Fatalf("Blend midpoint channel %d = %d, want 150", c, got.Pix[c])
		}
	}
}

func TestGammaLUTIdentity(t *testing.T) {
	lut := GammaLUT(1.0)
	for i := 0; i < 256; i++ {
		if lut[i] != uint8(i) {
			t.Fatalf("GammaLUT(1)[%d] = %d, want %d", i, lut[i], i)
		}
	}
}

func TestGammaLUTMonotonic(t *testing.T) {
	lut := GammaLUT(2.2)
	if lut[0] != 0 || lut[255] != 255 {
		t.Fatalf("GammaLUT endpoints = %d, %d, want 0, 255", lut[0], lut[255])
	}
	for i := 1; i < 256; i++ {
		if lut[i] < lut[i-1] {
			t.Fatalf("GammaLUT not monotonic at %d: %d < %d", i, lut[i], lut[i-1])
		}
	}
}

func TestApplyLUTPreservesAlpha(t *testing.T) {
	img := makeSolidImage(4, 4, color.NRGBA{10, 20, 30, 77})
	var invert [256]uint8
	for i := 0; i < 256; i++ {
		invert[i] = uint8(255 - i)
	}

	got := ApplyLUT(img, &invert)
	if got.Pix[0] != 245 || got.Pix[1] != 235 || got.Pix[2] != 225 {
		t.Fatalf("ApplyLUT values = %v, want 245 235 225", got.Pix[:3])
	}
	if got.Pix[3] != 77 {
		t.Fatalf("ApplyLUT alpha = %d, want 77", got.Pix[3])
	}
}

func TestReplicateGray(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(40 * i)
	}

	got := ReplicateGray(gray)
	for p := 0; p < 6; p++ {
		i := p * 4
		want := gray.Pix[p]
		if got.Pix[i] != want || got.Pix[i+1] != want || got.Pix[i+2] != want {
			t.Fatalf("pixel %d channels = %v, want all %d", p, got.Pix[i:i+3], want)
		}
		if got.Pix[i+3] != 255 {
			t.Fatalf("pixel %d alpha = %d, want 255", p, got.Pix[i+3])
		}
	}
}

func TestOpaque(t *testing.T) {
	img := makeSolidImage(4, 4, color.NRGBA{10, 20, 30, 40})
	got := Opaque(img)
	if got.Pix[0] != 10 || got.Pix[1] != 20 || got.Pix[2] != 30 {
		t.Fatalf("Opaque changed colors: %v", got.Pix[:3])
	}
	if got.Pix[3] != 255 {
		t.Fatalf("Opaque alpha = %d, want 255", got.Pix[3])
	}
}

func TestLuminanceWeights(t *testing.T) {
	cases := []struct {
		c    color.NRGBA
		want uint8
	}{
		{color.NRGBA{255, 0, 0, 255}, 76},
		{color.NRGBA{0, 255, 0, 255}, 150},
		{color.NRGBA{0, 0, 255, 255}, 29},
		{color.NRGBA{255, 255, 255, 255}, 255},
	}
	for _, c := range cases {
		gray := Luminance(makeSolidImage(2, 2, c.c))
		if got := gray.Pix[0]; got != c.want {
			t.Errorf("Luminance(%v) = %d, want %d", c.c, got, c.want)
		}
	}
}

func TestYUVRoundTrip(t *testing.T) {
	colors := []color.NRGBA{
		{0, 0, 0, 255},
		{255, 255, 255, 255},
		{200, 30, 100, 255},
		{12, 240, 87, 255},
	}
	for _, c := range colors {
		y, u, v := RGBToYUV(c.R, c.G, c.B)
		r, g, b := YUVToRGB(y, u, v)
		if absDiff(r, c.R) > 2 || absDiff(g, c.G) > 2 || absDiff(b, c.B) > 2 {
			t.Errorf("YUV round trip of %v gave (%d, %d, %d)", c, r, g, b)
		}
	}
}

func TestLabNeutralAxis(t *testing.T) {
	_, a, b := RGBToLab(128, 128, 128)
	if math.Abs(a-128) > 0.5 || math.Abs(b-128) > 0.5 {
		t.Fatalf("gray should be chroma-neutral, got a=%v b=%v", a, b)
	}
}

func TestLabRoundTrip(t *testing.T) {
	colors := []color.NRGBA{
		{0, 0, 0, 255},
		{255, 255, 255, 255},
		{180, 60, 200, 255},
		{30, 144, 255, 255},
	}
	for _, c := range colors {
		l, a, b := RGBToLab(c.R, c.G, c.B)
		r8, g8, b8 := LabToRGB(l, a, b)
		if absDiff(r8, c.R) > 3 || absDiff(g8, c.G) > 3 || absDiff(b8, c.B) > 3 {
			t.Errorf("Lab round trip of %v gave (%d, %d, %d)", c, r8, g8, b8)
		}
	}
}

func TestBrightnessValue(t *testing.T) {
	if got := BrightnessValue(10, 200, 30); got != 200 {
		t.Fatalf("BrightnessValue = %d, want 200", got)
	}
	if got := BrightnessValue(0, 0, 0); got != 0 {
		t.Fatalf("BrightnessValue of black = %d, want 0", got)
	}
}

func TestBilateralSolidUnchanged(t *testing.T) {
	img := makeSolidImage(12, 12, color.NRGBA{90, 120, 150, 255})
	got := Bilateral(img, 5, 75, 75)
	if !bytes.Equal(got.Pix, img.Pix) {
		t.Fatal("Bilateral should leave a solid image unchanged")
	}
}

func TestBilateralKeepsHardEdges(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			i := y*img.Stride + x*4
			v := uint8(0)
			if x >= 8 {
				v = 255
			}
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 255
		}
	}

	got := Bilateral(img, 5, 10, 75)
	for y := 0; y < 8; y++ {
		left := got.Pix[y*got.Stride+7*4]
		right := got.Pix[y*got.Stride+8*4]
		if left > 5 || right < 250 {
			t.Fatalf("edge smeared at row %d: left=%d right=%d", y, left, right)
		}
	}
}

func TestBilateralTinyImage(t *testing.T) {
	img := makeSolidImage(1, 1, color.NRGBA{50, 60, 70, 255})
	got := Bilateral(img, 9, 75, 75)
	if got.Rect.Dx() != 1 || got.Rect.Dy() != 1 {
		t.Fatalf("bounds changed: %v", got.Rect)
	}
	if got.Pix[0] != 50 || got.Pix[1] != 60 || got.Pix[2] != 70 {
		t.Fatalf("1x1 pixel changed: %v", got.Pix[:3])
	}
}

func TestGaussianKernel1D(t *testing.T) {
	k := GaussianKernel1D(5, 1.5)
	if len(k) != 5 {
		t.Fatalf("kernel size = %d, want 5", len(k))
	}
	sum := 0.0
	for _, v := range k {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("kernel sum = %v, want 1", sum)
	}
	if k[0] != k[4] || k[1] != k[3] {
		t.Fatal("kernel should be symmetric")
	}

	if got := GaussianKernel1D(4, 1.0); len(got) != 5 {
		t.Fatalf("even size should be promoted to odd, got %d", len(got))
	}
}

func TestBlurPlaneConstant(t *testing.T) {
	w, h := 9, 7
	plane := make([]float64, w*h)
	for i := range plane {
		plane[i] = 42
	}

	out := BlurPlane(plane, w, h, GaussianKernel1D(5, 1.5))
	for i, v := range out {
		if math.Abs(v-42) > 1e-9 {
			t.Fatalf("constant plane changed at %d: %v", i, v)
		}
	}
}

func TestGrayPlane(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i * 10)
	}

	plane, w, h := GrayPlane(gray)
	if w != 3 || h != 2 || len(plane) != 6 {
		t.Fatalf("plane dims = %dx%d len %d", w, h, len(plane))
	}
	for i, v := range plane {
		if v != float64(i*10) {
			t.Fatalf("plane[%d] = %v, want %d", i, v, i*10)
		}
	}
}
