package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/jimmywmt/gotool"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/Ana-Lujan/Restauracion-Imagen/config"
	"github.com/Ana-Lujan/Restauracion-Imagen/imageio"
	"github.com/Ana-Lujan/Restauracion-Imagen/pipeline"
)

var cfg = config.Default()

func init() {
	log.SetFormatter(&log.TextFormatter{
		ForceQuote:      true,
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})

	log.SetOutput(os.Stdout)
}

// configParams copies the configured defaults into request parameters.
func configParams(c *config.Config) pipeline.Params {
	p := c.Params
	return pipeline.Params{
		Denoise:              &p.Denoise,
		Sharpness:            &p.Sharpness,
		ContrastMethod:       p.ContrastMethod,
		CompressionReduction: &p.CompressionReduction,
		EdgeEnhancement:      &p.EdgeEnhancement,
		HDRIntensity:         &p.HDRIntensity,
		MorphKernel:          &p.MorphKernel,
	}
}

// defaultOutput places the result next to the input, keeping the original
// extension when that format can be written back and falling back to PNG
// otherwise.
func defaultOutput(path string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	if !imageio.SupportedOutput(path) {
		return stem + "_procesada.png"
	}
	return stem + "_procesada" + ext
}

// saveResult writes the processed PNG bytes directly, or re-encodes them
// when the output path asks for another format.
func saveResult(pngData []byte, outPath string) error {
	if strings.EqualFold(filepath.Ext(outPath), ".png") {
		if err := os.WriteFile(outPath, pngData, 0o644); err != nil {
			return fmt.Errorf("escribir %q: %w", outPath, err)
		}
		return nil
	}
	img, err := imageio.Decode(pngData)
	if err != nil {
		return err
	}
	return imageio.Save(img, outPath, imaging.JPEGQuality(cfg.JPEGQuality))
}

func processFile(pipe *pipeline.Pipeline, inPath, outPath string, req pipeline.Request) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("leer %q: %w", inPath, err)
	}

	outcome, err := pipe.Process(data, req)
	if err != nil {
		return err
	}

	if err := saveResult(outcome.Image, outPath); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"entrada": inPath,
		"salida":  outPath,
	}).Infoln("Imagen guardada")
	fmt.Println(outcome.Report)
	return nil
}

func requestFromContext(c *cli.Context) pipeline.Request {
	return pipeline.Request{
		Type:   gotool.CompressStr(c.String("type")),
		Method: gotool.CompressStr(c.String("method")),
		Scale:  c.Int("scale"),
		Params: configParams(cfg),
	}
}

var processingFlags = []cli.Flag{
	&cli.StringFlag{
		Name:        "type",
		Aliases:     []string{"t"},
		Usage:       "tipo de procesamiento (restauracion, enhancement)",
		Value:       "restauracion",
		DefaultText: "restauracion",
	},
	&cli.StringFlag{
		Name:        "method",
		Aliases:     []string{"m"},
		Usage:       "método de procesamiento (ver comando metodos)",
		Value:       "opencv",
		DefaultText: "opencv",
	},
	&cli.IntFlag{
		Name:        "scale",
		Aliases:     []string{"s"},
		Usage:       "factor de escala para enhancement (2 o 4)",
		Value:       2,
		DefaultText: "2",
	},
}

func main() {
	const version = "v1.0.0"

	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "muestra la versión",
	}

	app := &cli.App{
		Name:    "restauracion-imagen",
		Usage:   "Sistema de restauración y enhancement de imágenes",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "loglevel",
				Aliases:     []string{"l"},
				Usage:       "establece el nivel de log (debug, info, warn, error, fatal, panic)",
				Value:       "info",
				DefaultText: "info",
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "ruta del archivo de configuración YAML",
				Value:       "",
				DefaultText: "",
			},
		},

		Before: func(c *cli.Context) error {
			switch c.String("loglevel") {
			case "debug":
				log.SetLevel(log.DebugLevel)
			case "info":
				log.SetLevel(log.InfoLevel)
			case "warn", "warm":
				log.SetLevel(log.WarnLevel)
			case "error":
				log.SetLevel(log.ErrorLevel)
			case "fatal":
				log.SetLevel(log.FatalLevel)
			case "panic":
				log.SetLevel(log.PanicLevel)
			}
			if path := c.String("config"); path != "" {
				loaded, err := config.Load(path)
				if err != nil {
					log.WithError(err).Fatalln("No se pudo leer la configuración")
				} else {
					cfg = loaded
				}
			}

			return nil
		},

		Commands: []*cli.Command{
			{
				Name:    "procesar",
				Aliases: []string{"p"},
				Usage:   "procesa una imagen y guarda el resultado",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:        "output",
						Aliases:     []string{"o"},
						Usage:       "ruta del archivo de salida",
						Value:       "",
						DefaultText: "junto a la original",
					},
				}, processingFlags...),
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return fmt.Errorf("se requiere la ruta de la imagen")
					}
					inPath := c.Args().Get(0)
					outPath := c.String("output")
					if outPath == "" {
						outPath = defaultOutput(inPath)
					}

					pipe := pipeline.New(cfg)
					defer pipe.Close()
					return processFile(pipe, inPath, outPath, requestFromContext(c))
				},
			},
			{
				Name:    "lote",
				Aliases: []string{"L"},
				Usage:   "procesa todas las imágenes de una carpeta",
				Flags:   processingFlags,
				Action: func(c *cli.Context) error {
					dir := c.Args().Get(0)
					if dir == "" {
						dir = "."
					}
					fileList, err := gotool.DirRegListFiles(dir, ".*")
					if err != nil {
						return fmt.Errorf("leer la carpeta %q: %w", dir, err)
					}

					pipe := pipeline.New(cfg)
					defer pipe.Close()
					req := requestFromContext(c)

					processed := 0
					for _, fileName := range fileList {
						if !imageio.SupportedInput(*fileName) {
							continue
						}
						if err := processFile(pipe, *fileName, defaultOutput(*fileName), req); err != nil {
							log.WithError(err).WithField("archivo", *fileName).Warnln("No se pudo procesar la imagen")
							continue
						}
						processed++
					}
					log.WithFields(log.Fields{
						"carpeta":    dir,
						"procesadas": processed,
					}).Infoln("Lote completado")
					return nil
				},
			},
			{
				Name:    "metodos",
				Aliases: []string{"m"},
				Usage:   "lista los métodos de procesamiento disponibles",
				Action: func(c *cli.Context) error {
					for _, name := range pipeline.Methods() {
						style, _ := pipeline.Lookup(name)
						fmt.Printf("%-22s %s\n", name, style.Summary)
					}
					return nil
				},
			},
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
