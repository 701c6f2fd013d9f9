// Command detect runs a YOLOv8 or YOLO11 ONNX model on images and prints the detections.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-yolo/config"
	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/inference"
	"github.com/nvr-ai/go-yolo/models"
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/util"
)

// options holds the command line flags.
type options struct {
	configPath string
	imagePath  string
	dirPath    string
	modelPath  string
	useOpenCV  bool
	printJSON  bool
	debug      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to the YAML pipeline configuration (defaults when empty)")
	flag.StringVar(&opts.imagePath, "image", "", "Path to the image file (.jpg, .jpeg, .png, .bmp, .webp)")
	flag.StringVar(&opts.dirPath, "dir", "", "Directory of images to process in frame order")
	flag.StringVar(&opts.modelPath, "model", "", "Override the model path of the configuration")
	flag.BoolVar(&opts.useOpenCV, "opencv", false, "Decode the image with OpenCV instead of the Go image decoders")
	flag.BoolVar(&opts.printJSON, "json", false, "Print the detections as JSON on stdout")
	flag.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, log, opts)
	stop()
	if err != nil {
		log.WithError(err).Fatal("detection failed")
	}
}

func run(ctx context.Context, log *logrus.Logger, opts options) error {
	paths, err := inputPaths(opts)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	if opts.debug {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	args, err := cfg.ModelArgs(log)
	if err != nil {
		return err
	}
	m, err := models.NewModel(args)
	if err != nil {
		return errors.Wrap(err, "create model")
	}

	provider, err := inference.ParseProvider(cfg.Runtime.Provider)
	if err != nil {
		return err
	}
	session, err := inference.NewSession(inference.SessionConfig{
		ModelPath:      cfg.Model.Path,
		LibraryPath:    cfg.Runtime.LibraryPath,
		InputName:      cfg.Model.InputName,
		OutputName:     cfg.Model.OutputName,
		InputWidth:     cfg.Model.InputWidth,
		InputHeight:    cfg.Model.InputHeight,
		Classes:        cfg.Model.Classes,
		Provider:       provider,
		IntraOpThreads: cfg.Runtime.IntraOpThreads,
	}, log)
	if err != nil {
		return errors.Wrap(err, "create session")
	}
	defer session.Close()

	results := make([]result, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		img, err := loadImage(path, opts.useOpenCV)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"image":    path,
			"size":     img.Bounds().String(),
			"checksum": images.ComputeChecksum(img),
		}).Debug("image loaded")

		detections, err := detect(ctx, m, session, img)
		if err != nil {
			return errors.Wrapf(err, "image %s", path)
		}

		for _, d := range detections {
			log.WithFields(logrus.Fields{
				"image": path,
				"label": d.Label,
				"class": d.Class,
				"score": d.Score,
				"box":   d.Box.String(),
			}).Info("detection")
		}
		log.WithFields(logrus.Fields{
			"image":      path,
			"detections": len(detections),
		}).Info("image processed")

		if detections == nil {
			detections = []model.Detection{}
		}
		results = append(results, result{Image: path, Detections: detections})
	}

	if opts.printJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(results), "encode detections")
	}
	return nil
}

// result is the JSON output for one image.
type result struct {
	Image      string            `json:"image"`
	Detections []model.Detection `json:"detections"`
}

// inputPaths resolves the images selected by -image and -dir.
func inputPaths(opts options) ([]string, error) {
	switch {
	case opts.imagePath != "" && opts.dirPath != "":
		return nil, errors.New("-image and -dir are mutually exclusive")
	case opts.imagePath != "":
		return []string{opts.imagePath}, nil
	case opts.dirPath != "":
		files, err := util.ListDirectoryImageFiles(opts.dirPath)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, errors.Errorf("no images in %s", opts.dirPath)
		}
		paths := make([]string, len(files))
		for i, f := range files {
			paths[i] = f.Path
		}
		return paths, nil
	default:
		return nil, errors.New("-image or -dir is required")
	}
}

func loadConfig(opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.modelPath != "" {
		cfg.Model.Path = opts.modelPath
	}
	return cfg, nil
}
