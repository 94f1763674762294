// Package models wraps the optional ONNX super-resolution models behind
// capability slots. A slot loads its model at most once, on first use;
// when the runtime or the model file is missing the failure is memoized
// and callers fall back to classical interpolation.
package models

import (
	"fmt"
	"image"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"
)

// Options locates one exported model and the runtime it needs.
type Options struct {
	// ModelPath points at the .onnx file. Empty leaves the slot
	// permanently unavailable.
	ModelPath string
	// InputName and OutputName are the exported tensor names. They
	// default to "input" and "output", the names used by the exporter.
	InputName  string
	OutputName string
	// LibraryPath points at the onnxruntime shared library. Empty keeps
	// the loader default.
	LibraryPath string
}

var (
	envOnce sync.Once
	envErr  error
)

// initEnvironment brings up the shared onnxruntime environment once for
// the whole process. Every slot shares the outcome.
func initEnvironment(libraryPath string) error {
	envOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		envErr = ort.InitializeEnvironment()
	})
	return envErr
}

// Slot is a lazily loaded model. Build it with NewSlot; the zero value
// reports itself as unavailable.
type Slot struct {
	name string
	opts Options

	once    sync.Once
	session *ort.DynamicAdvancedSession
	err     error
}

// NewSlot prepares a slot without touching the model file yet.
func NewSlot(name string, opts Options) *Slot {
	if opts.InputName == "" {
		opts.InputName = "input"
	}
	if opts.OutputName == "" {
		opts.OutputName = "output"
	}
	return &Slot{name: name, opts: opts}
}

// load runs at most once; concurrent callers block on the same load and
// share the memoized outcome.
func (s *Slot) load() error {
	if s == nil {
		return fmt.Errorf("models: slot sin inicializar")
	}
	s.once.Do(func() {
		if s.opts.ModelPath == "" {
			s.err = fmt.Errorf("models: %s sin ruta de modelo", s.name)
			log.WithField("modelo", s.name).Debugln("Slot sin modelo configurado")
			return
		}
		if _, err := os.Stat(s.opts.ModelPath); err != nil {
			s.err = fmt.Errorf("models: modelo %q: %w", s.opts.ModelPath, err)
			s.warn()
			return
		}
		if err := initEnvironment(s.opts.LibraryPath); err != nil {
			s.err = fmt.Errorf("models: entorno onnxruntime: %w", err)
			s.warn()
			return
		}
		session, err := ort.NewDynamicAdvancedSession(
			s.opts.ModelPath,
			[]string{s.opts.InputName},
			[]string{s.opts.OutputName},
			nil,
		)
		if err != nil {
			s.err = fmt.Errorf("models: cargar %q: %w", s.opts.ModelPath, err)
			s.warn()
			return
		}
		s.session = session
		log.WithFields(log.Fields{
			"modelo": s.name,
			"ruta":   s.opts.ModelPath,
		}).Infoln("Modelo ONNX cargado")
	})
	return s.err
}

func (s *Slot) warn() {
	log.WithError(s.err).WithField("modelo", s.name).Warnln("Modelo ONNX no disponible, se usará interpolación clásica")
}

// Available reports whether the model loaded. The first call performs
// the load; later calls reuse the memoized result.
func (s *Slot) Available() bool {
	return s.load() == nil
}

// Enhance feeds the image through the model and returns the inferred
// image at whatever size the model produces.
func (s *Slot) Enhance(img *image.NRGBA) (*image.NRGBA, error) {
	if err := s.load(); err != nil {
		return nil, err
	}

	data, w, h := imageToTensor(img)
	input, err := ort.NewTensor(ort.NewShape(1, 3, int64(h), int64(w)), data)
	if err != nil {
		return nil, fmt.Errorf("models: tensor de entrada: %w", err)
	}
	defer input.Destroy()

	// A nil output lets onnxruntime allocate the tensor, so the output
	// size stays a property of the model.
	outputs := []ort.Value{nil}
	if err := s.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("models: inferencia %s: %w", s.name, err)
	}

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("models: %s produjo un tensor de tipo inesperado", s.name)
	}
	defer out.Destroy()

	shape := out.GetShape()
	if len(shape) != 4 || shape[1] != 3 {
		return nil, fmt.Errorf("models: %s produjo una forma inesperada %v", s.name, shape)
	}
	return tensorToImage(out.GetData(), int(shape[3]), int(shape[2])), nil
}

// Close releases the loaded session, if any.
func (s *Slot) Close() {
	if s == nil || s.session == nil {
		return
	}
	if err := s.session.Destroy(); err != nil {
		log.WithError(err).WithField("modelo", s.name).Warnln("No se pudo liberar la sesión ONNX")
	}
	s.session = nil
}
