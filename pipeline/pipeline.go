// Package pipeline dispatches processing requests to the registered
// styles, scores the results and renders the user-facing report. A chain
// failure degrades to the original image; only a request that cannot be
// decoded or re-encoded fails hard.
package pipeline

import (
	"errors"
	"fmt"
	"image"

	log "github.com/sirupsen/logrus"

	"github.com/Ana-Lujan/Restauracion-Imagen/config"
	"github.com/Ana-Lujan/Restauracion-Imagen/imageio"
	"github.com/Ana-Lujan/Restauracion-Imagen/metrics"
	"github.com/Ana-Lujan/Restauracion-Imagen/models"
)

// Enhancement types accepted by Process.
const (
	TypeRestoration = "restauracion"
	TypeEnhancement = "enhancement"
)

var (
	ErrInvalidType   = errors.New("pipeline: tipo de enhancement no válido")
	ErrInvalidMethod = errors.New("pipeline: método de enhancement desconocido")
)

// ProcessingError marks a failure inside a processing chain. Process
// reacts by degrading to the original image instead of failing the
// request.
type ProcessingError struct {
	Stage string
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("pipeline: etapa %q: %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// Params carries the optional per-request strengths. A nil field keeps
// the default of the chain that reads it; restoration and enhancement
// do not share all defaults.
type Params struct {
	Denoise              *float64
	Sharpness            *float64
	ContrastMethod       string
	CompressionReduction *float64
	EdgeEnhancement      *float64
	HDRIntensity         *float64
	MorphKernel          *int
}

func orDefault(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

func orDefaultInt(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}

// Float is a convenience for building Params literals.
func Float(v float64) *float64 { return &v }

// Int is a convenience for building Params literals.
func Int(v int) *int { return &v }

// Request names what to do with one image.
type Request struct {
	// Type is restauracion or enhancement.
	Type string
	// Method selects the registered style.
	Method string
	// Scale multiplies both dimensions during enhancement, 2 or 4.
	Scale int
	Params Params
}

// Outcome is everything the caller gets back for one request.
type Outcome struct {
	// Image is the result re-encoded as PNG.
	Image []byte
	// Metrics compares the result against the original.
	Metrics metrics.Result
	// Report is the rendered summary.
	Report string
	// Degraded reports that the chain failed and Image carries the
	// original.
	Degraded bool
}

// Pipeline binds the style registry to the model slots.
type Pipeline struct {
	srcnn      *models.Slot
	realesrgan *models.Slot
	gfpgan     *models.Slot
}

// New builds a pipeline from the configuration. Models stay untouched
// until the first request that needs one.
func New(cfg *config.Config) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	lib := cfg.ONNXRuntimeLibrary
	return &Pipeline{
		srcnn:      models.NewSlot("srcnn", slotOptions(cfg.Models.SRCNN, lib)),
		realesrgan: models.NewSlot("real-esrgan", slotOptions(cfg.Models.RealESRGAN, lib)),
		gfpgan:     models.NewSlot("gfpgan", slotOptions(cfg.Models.GFPGAN, lib)),
	}
}

func slotOptions(m config.Model, lib string) models.Options {
	return models.Options{
		ModelPath:   m.Path,
		InputName:   m.InputName,
		OutputName:  m.OutputName,
		LibraryPath: lib,
	}
}

// Close releases any loaded model sessions.
func (p *Pipeline) Close() {
	p.srcnn.Close()
	p.realesrgan.Close()
	p.gfpgan.Close()
}

// Process decodes the image, runs the requested chain and scores the
// result. The returned outcome always carries a PNG and a report, even
// when the chain degraded.
func (p *Pipeline) Process(data []byte, req Request) (*Outcome, error) {
	if req.Type != TypeRestoration && req.Type != TypeEnhancement {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, req.Type)
	}
	style, ok := Lookup(req.Method)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, req.Method)
	}
	if req.Type == TypeEnhancement && req.Scale != 2 && req.Scale != 4 {
		log.WithField("escala", req.Scale).Warnln("Escala no soportada, se usará x2")
		req.Scale = 2
	}

	original, err := imageio.Decode(data)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"tipo":   req.Type,
		"método": req.Method,
		"ancho":  original.Bounds().Dx(),
		"alto":   original.Bounds().Dy(),
	}).Infoln("Procesando imagen")

	if log.IsLevelEnabled(log.DebugLevel) {
		info := imageio.Describe(original)
		log.WithFields(log.Fields{
			"canales": info.Channels,
			"mb":      fmt.Sprintf("%.2f", info.SizeMB),
			"mín":     info.MinValue,
			"máx":     info.MaxValue,
		}).Debugln("Información de la imagen de entrada")
	}

	processed, perr := p.run(style, original, req)
	if perr != nil {
		log.WithError(perr).Warnln("La cadena de procesamiento falló, se devuelve la imagen original")
		encoded, err := imageio.EncodePNG(original)
		if err != nil {
			return nil, fmt.Errorf("pipeline: recodificar la imagen original: %w", err)
		}
		return &Outcome{
			Image:    encoded,
			Metrics:  metrics.Unavailable(),
			Report:   degradedReport(),
			Degraded: true,
		}, nil
	}

	encoded, err := imageio.EncodePNG(processed)
	if err != nil {
		return nil, fmt.Errorf("pipeline: recodificar el resultado: %w", err)
	}

	result := metrics.Comprehensive(original, processed)
	log.WithFields(log.Fields{
		"ancho": processed.Bounds().Dx(),
		"alto":  processed.Bounds().Dy(),
	}).Infoln("Procesamiento completado")

	return &Outcome{
		Image:   encoded,
		Metrics: result,
		Report:  buildReport(req, result),
	}, nil
}

func (p *Pipeline) run(style Style, original *image.NRGBA, req Request) (*image.NRGBA, error) {
	switch req.Type {
	case TypeRestoration:
		out, err := style.Restore(p, original, req.Params)
		if err != nil {
			return nil, &ProcessingError{Stage: req.Method, Err: err}
		}
		return out, nil
	default:
		out, err := style.Enhance(p, original, req.Scale, req.Params)
		if err != nil {
			return nil, &ProcessingError{Stage: req.Method, Err: err}
		}
		return out, nil
	}
}
