package pipeline

import (
	"image"
	"sort"
	"time"

	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"

	"github.com/Ana-Lujan/Restauracion-Imagen/models"
	"github.com/Ana-Lujan/Restauracion-Imagen/postprocessing"
	"github.com/Ana-Lujan/Restauracion-Imagen/preprocessing"
	"github.com/Ana-Lujan/Restauracion-Imagen/tool"
	"github.com/Ana-Lujan/Restauracion-Imagen/upscale"
)

// Registered method names.
const (
	MethodOpenCV             = "opencv"
	MethodSRCNN              = "srcnn"
	MethodRealESRGAN         = "real-esrgan"
	MethodGFPGAN             = "gfpgan"
	MethodBeautyFace         = "beauty_face"
	MethodPerfectEnhancement = "perfect_enhancement"
	MethodBlackWhite         = "black_white"
	MethodVintageFilters     = "vintage_filters"
)

// RestoreFunc processes at the original size.
type RestoreFunc func(p *Pipeline, img *image.NRGBA, par Params) (*image.NRGBA, error)

// EnhanceFunc processes and multiplies both dimensions by scale.
type EnhanceFunc func(p *Pipeline, img *image.NRGBA, scale int, par Params) (*image.NRGBA, error)

// Style is one registered processing method.
type Style struct {
	Name    string
	Summary string
	Restore RestoreFunc
	Enhance EnhanceFunc
}

var styles = make(map[string]Style)

// Register adds a style to the dispatch table, replacing any previous
// entry under the same name. It is meant to run from init functions.
func Register(s Style) {
	styles[s.Name] = s
}

// Lookup returns the style registered under name.
func Lookup(name string) (Style, bool) {
	s, ok := styles[name]
	return s, ok
}

// Methods lists the registered style names in sorted order.
func Methods() []string {
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(Style{
		Name:    MethodOpenCV,
		Summary: "Cadena clásica completa e interpolación bilineal",
		Restore: func(_ *Pipeline, img *image.NRGBA, par Params) (*image.NRGBA, error) {
			return classicRestore(img, par), nil
		},
		Enhance: func(_ *Pipeline, img *image.NRGBA, scale int, par Params) (*image.NRGBA, error) {
			out := enhancePre(img)
			out = upscale.Upscale(out, scale, upscale.Bilinear)
			return enhancePost(out, par), nil
		},
	})

	Register(Style{
		Name:    MethodSRCNN,
		Summary: "Red de super-resolución, con Lanczos como alternativa",
		Restore: func(_ *Pipeline, img *image.NRGBA, _ Params) (*image.NRGBA, error) {
			return applyFilters(img, gift.UnsharpMask(1.0, 1.5, 3.0/255)), nil
		},
		Enhance: func(p *Pipeline, img *image.NRGBA, scale int, par Params) (*image.NRGBA, error) {
			out := enhancePre(img)
			out = modelUpscale(p.srcnn, out, scale, upscale.Lanczos)
			return enhancePost(out, par), nil
		},
	})

	Register(Style{
		Name:    MethodRealESRGAN,
		Summary: "Super-resolución con recuperación de detalle",
		Restore: func(_ *Pipeline, img *image.NRGBA, _ Params) (*image.NRGBA, error) {
			return applyFilters(img, detailFilter()), nil
		},
		Enhance: func(p *Pipeline, img *image.NRGBA, scale int, par Params) (*image.NRGBA, error) {
			out := enhancePre(img)
			if p != nil && p.realesrgan.Available() {
				out = modelUpscale(p.realesrgan, out, scale, upscale.Bicubic)
			} else {
				out = upscale.Upscale(out, scale, upscale.Bicubic)
				out = applyFilters(out, detailFilter())
			}
			return enhancePost(out, par), nil
		},
	})

	Register(Style{
		Name:    MethodGFPGAN,
		Summary: "Restauración facial, con enfoque clásico como alternativa",
		Restore: func(p *Pipeline, img *image.NRGBA, _ Params) (*image.NRGBA, error) {
			return gfpganCore(p, img), nil
		},
		Enhance: func(p *Pipeline, img *image.NRGBA, scale int, par Params) (*image.NRGBA, error) {
			out := enhancePre(img)
			out = gfpganCore(p, out)
			out = upscale.Upscale(out, scale, upscale.Lanczos)
			return enhancePost(out, par), nil
		},
	})

	Register(classicStyle(MethodBeautyFace, "Suavizado de piel y color cálido", beautyCore))
	Register(classicStyle(MethodPerfectEnhancement, "Contraste, brillo y nitidez reforzados", perfectCore))
	Register(classicStyle(MethodBlackWhite, "Monocromo ecualizado de alto contraste", blackWhiteCore))
	Register(classicStyle(MethodVintageFilters, "Tono sepia con grano de película", vintageCore))
}

// classicStyle wraps a same-size core into a full style: restoration is
// the core itself and enhancement runs the core between the shared
// enhancement stages.
func classicStyle(name, summary string, core func(*image.NRGBA) *image.NRGBA) Style {
	return Style{
		Name:    name,
		Summary: summary,
		Restore: func(_ *Pipeline, img *image.NRGBA, _ Params) (*image.NRGBA, error) {
			return core(img), nil
		},
		Enhance: func(_ *Pipeline, img *image.NRGBA, scale int, par Params) (*image.NRGBA, error) {
			out := enhancePre(img)
			out = core(out)
			out = upscale.Upscale(out, scale, upscale.Lanczos)
			return enhancePost(out, par), nil
		},
	}
}

// classicRestore is the consolidated restoration chain shared by the
// classical styles: color normalization, denoising, local contrast,
// artifact cleanup and adaptive sharpening, in that order.
func classicRestore(img *image.NRGBA, par Params) *image.NRGBA {
	out := preprocessing.ColorCorrection(img)
	out = preprocessing.WhiteBalance(out)
	out = postprocessing.BilateralDenoise(out, orDefault(par.Denoise, 0.3))
	out = postprocessing.Morphology(out, postprocessing.MorphOpening, orDefaultInt(par.MorphKernel, 3))
	out = preprocessing.AdaptiveContrast(out, par.ContrastMethod)
	out = postprocessing.CompressionArtifactReduction(out, orDefault(par.CompressionReduction, 0.5))
	out = postprocessing.AdaptiveSharpen(out, orDefault(par.Sharpness, 0.5))
	out = postprocessing.EdgeEnhance(out, orDefault(par.EdgeEnhancement, 0.2))
	return postprocessing.FinalContrast(out, "auto")
}

// enhancePre normalizes color before any resolution change.
func enhancePre(img *image.NRGBA) *image.NRGBA {
	out := preprocessing.ColorCorrection(img)
	out = preprocessing.WhiteBalance(out)
	return preprocessing.CLAHE(out, 2.0, 8)
}

// enhancePost runs after the resolution change, at the output size.
func enhancePost(img *image.NRGBA, par Params) *image.NRGBA {
	out := postprocessing.AdaptiveSharpen(img, orDefault(par.Sharpness, 0.3))
	return preprocessing.HDRToneMap(out, orDefault(par.HDRIntensity, 0.5))
}

// modelUpscale runs the slot when it is usable and fits the output to the
// exact requested scale. Any model problem falls back to the classical
// kernel.
func modelUpscale(slot *models.Slot, img *image.NRGBA, scale int, fallback upscale.Kernel) *image.NRGBA {
	b := img.Bounds()
	width, height := b.Dx()*scale, b.Dy()*scale

	if slot.Available() {
		out, err := slot.Enhance(img)
		if err == nil {
			return upscale.Fit(out, width, height, upscale.Lanczos)
		}
		log.WithError(err).Warnln("La inferencia falló, se usará interpolación clásica")
	}
	return upscale.Upscale(img, scale, fallback)
}

// gfpganCore restores at the original size, through the face model when
// it is usable.
func gfpganCore(p *Pipeline, img *image.NRGBA) *image.NRGBA {
	if p != nil && p.gfpgan.Available() {
		out, err := p.gfpgan.Enhance(img)
		if err == nil {
			b := img.Bounds()
			return upscale.Fit(out, b.Dx(), b.Dy(), upscale.Lanczos)
		}
		log.WithError(err).Warnln("La inferencia falló, se usará restauración clásica")
	}
	out := applyFilters(img, gift.UnsharpMask(2.0, 1.5, 3.0/255))
	return imaging.Blur(out, 1.0)
}

func beautyCore(img *image.NRGBA) *image.NRGBA {
	out := preprocessing.CLAHE(img, 5.0, 8)
	out = postprocessing.BilateralDenoise(out, 0.6)
	return imaging.AdjustSaturation(out, 30)
}

func perfectCore(img *image.NRGBA) *image.NRGBA {
	out := preprocessing.CLAHE(img, 4.0, 8)
	out = postprocessing.IntensityTransform(out, 1.0, 1.2, 15)
	return applyFilters(out, gift.UnsharpMask(2.0, 1.5, 0.01))
}

// blackWhiteCore keeps every stage on the gray plane, so the replicated
// output has exactly equal channels.
func blackWhiteCore(img *image.NRGBA) *image.NRGBA {
	gray := tool.Luminance(img)
	gray = preprocessing.CLAHEGray(gray, 2.0, 8)
	gray = preprocessing.EqualizeGray(gray)

	g := gift.New(gift.UnsharpMask(1.0, 1.0, 0.01))
	sharp := image.NewGray(g.Bounds(gray.Bounds()))
	g.Draw(sharp, gray)
	return tool.ReplicateGray(sharp)
}

func vintageCore(img *image.NRGBA) *image.NRGBA {
	out := applyFilters(img, gift.Sepia(100))
	out = postprocessing.IntensityTransform(out, 1.0, 0.9, -10)
	return filmGrain(out, 8)
}

// filmGrain adds the same normal-distributed delta to the three channels
// of each pixel, so gray pixels stay gray.
func filmGrain(img *image.NRGBA, sigma float64) *image.NRGBA {
	rng := rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	out := imaging.Clone(img)
	b := out.Bounds()

	for y := 0; y < b.Dy(); y++ {
		i := out.PixOffset(0, y)
		for x := 0; x < b.Dx(); x++ {
			delta := rng.NormFloat64() * sigma
			out.Pix[i] = tool.Clamp(float64(out.Pix[i]) + delta)
			out.Pix[i+1] = tool.Clamp(float64(out.Pix[i+1]) + delta)
			out.Pix[i+2] = tool.Clamp(float64(out.Pix[i+2]) + delta)
			i += 4
		}
	}
	return out
}

// detailFilter is the fine-detail convolution used around the
// super-resolution paths.
func detailFilter() gift.Filter {
	return gift.Convolution(
		[]float32{
			0, -1, 0,
			-1, 10, -1,
			0, -1, 0,
		},
		true, false, false, 0,
	)
}

func applyFilters(img image.Image, filters ...gift.Filter) *image.NRGBA {
	g := gift.New(filters...)
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}
