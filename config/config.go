package config

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Params holds the default strengths for the tunable operators.
type Params struct {
	Denoise              float64 `yaml:"denoise"`
	Sharpness            float64 `yaml:"sharpness"`
	ContrastMethod       string  `yaml:"contrastMethod"`
	CompressionReduction float64 `yaml:"compressionReduction"`
	EdgeEnhancement      float64 `yaml:"edgeEnhancement"`
	HDRIntensity         float64 `yaml:"hdrIntensity"`
	MorphKernel          int     `yaml:"morphKernel"`
}

// Model describes one optional ONNX model slot.
type Model struct {
	Path       string `yaml:"path"`
	InputName  string `yaml:"inputName"`
	OutputName string `yaml:"outputName"`
}

// Config is the run configuration for the processing pipeline.
type Config struct {
	Params Params `yaml:"params"`

	// Path to the onnxruntime shared library. Empty leaves the runtime
	// default lookup in place.
	ONNXRuntimeLibrary string `yaml:"onnxruntimeLibrary"`

	// Quality used when the output file is a JPEG.
	JPEGQuality int `yaml:"jpegQuality"`

	Models struct {
		SRCNN      Model `yaml:"srcnn"`
		RealESRGAN Model `yaml:"realesrgan"`
		GFPGAN     Model `yaml:"gfpgan"`
	} `yaml:"models"`
}

// Default returns the documented defaults: the slider values of the demo.
func Default() *Config {
	cfg := &Config{
		Params: Params{
			Denoise:              0.3,
			Sharpness:            0.5,
			ContrastMethod:       "clahe",
			CompressionReduction: 0.5,
			EdgeEnhancement:      0.2,
			HDRIntensity:         0.5,
			MorphKernel:          3,
		},
		JPEGQuality: 95,
	}
	cfg.Models.SRCNN = Model{Path: "model/srcnn.onnx", InputName: "input", OutputName: "output"}
	cfg.Models.RealESRGAN = Model{InputName: "input", OutputName: "output"}
	cfg.Models.GFPGAN = Model{InputName: "input", OutputName: "output"}
	return cfg
}

// Load reads the configuration from a YAML file. Missing fields keep their
// default values.
func Load(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		log.WithError(err).Errorln("No se pudo abrir el archivo de configuración")
		return nil, fmt.Errorf("config: abrir %q: %w", filePath, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		log.WithError(err).Errorln("No se pudo interpretar el archivo de configuración")
		return nil, fmt.Errorf("config: interpretar %q: %w", filePath, err)
	}
	return cfg, nil
}
