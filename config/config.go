// Package config - YAML configuration of the detection pipeline.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-yolo/common"
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/model/preprocess"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

// Config is the full pipeline configuration.
type Config struct {
	Model       ModelConfig       `json:"model" yaml:"model"`
	Preprocess  PreprocessConfig  `json:"preprocess" yaml:"preprocess"`
	Postprocess PostprocessConfig `json:"postprocess" yaml:"postprocess"`
	Runtime     RuntimeConfig     `json:"runtime" yaml:"runtime"`
	Log         LogConfig         `json:"log" yaml:"log"`
}

// ModelConfig describes the exported model file.
type ModelConfig struct {
	Name        model.Name `json:"name" yaml:"name"`
	Path        string     `json:"path" yaml:"path"`
	InputWidth  int        `json:"input_width" yaml:"input_width"`
	InputHeight int        `json:"input_height" yaml:"input_height"`
	InputName   string     `json:"input_name" yaml:"input_name"`
	OutputName  string     `json:"output_name" yaml:"output_name"`
	// Classes is the number of class scores per anchor.
	Classes int `json:"classes" yaml:"classes"`
}

// PreprocessConfig is the input normalization.
type PreprocessConfig struct {
	Scale     float32              `json:"scale" yaml:"scale"`
	Mean      []float32            `json:"mean" yaml:"mean"`
	Std       []float32            `json:"std" yaml:"std"`
	ColorMode preprocess.ColorMode `json:"color_mode" yaml:"color_mode"`
}

// PostprocessConfig is the output decoding and suppression.
type PostprocessConfig struct {
	ConfidenceThreshold float32                      `json:"confidence_threshold" yaml:"confidence_threshold"`
	IoUThreshold        float32                      `json:"iou_threshold" yaml:"iou_threshold"`
	Decoder             postprocess.DecodeConvention `json:"decoder" yaml:"decoder"`
	ClassAware          bool                         `json:"class_aware" yaml:"class_aware"`
	MaxDetections       int                          `json:"max_detections" yaml:"max_detections"`
}

// RuntimeConfig configures the onnxruntime session.
type RuntimeConfig struct {
	// LibraryPath is the onnxruntime shared library. Empty uses the platform default.
	LibraryPath string `json:"library_path" yaml:"library_path"`
	// Provider is the execution provider: cpu, cuda, coreml or openvino.
	Provider string `json:"provider" yaml:"provider"`
	// IntraOpThreads is the number of threads inside graph nodes. Zero lets onnxruntime decide.
	IntraOpThreads int `json:"intra_op_threads" yaml:"intra_op_threads"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// Default returns the configuration of a standard 640x640 YOLOv8 COCO export.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Name:        model.ModelNameYOLOv8,
			Path:        "yolov8n.onnx",
			InputWidth:  postprocess.DefaultNetworkWidth,
			InputHeight: postprocess.DefaultNetworkHeight,
			InputName:   "images",
			OutputName:  "output0",
			Classes:     80,
		},
		Preprocess: PreprocessConfig{
			Scale:     1.0 / 255.0,
			Mean:      []float32{0, 0, 0},
			Std:       []float32{1, 1, 1},
			ColorMode: preprocess.ColorModeRGB,
		},
		Postprocess: PostprocessConfig{
			ConfidenceThreshold: postprocess.DefaultConfidenceThreshold,
			IoUThreshold:        postprocess.DefaultIoUThreshold,
			Decoder:             postprocess.ConventionCenterLetterbox,
		},
		Runtime: RuntimeConfig{Provider: "cpu"},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads and validates the configuration file at path.
//
// Arguments:
//   - path: The YAML file.
//
// Returns:
//   - The configuration, defaults overlaid with the file.
//   - An error if the file cannot be read, parsed or validated.
//
// @example
// cfg, err := config.Load("configs/yolov8n.yaml")
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML data over Default and validates the result. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decode yaml")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section for unusable values.
func (c *Config) Validate() error {
	if c.Model.Path == "" {
		return common.InvalidArgument("model path is empty")
	}
	if c.Model.InputName == "" || c.Model.OutputName == "" {
		return common.InvalidArgument("model input and output names are required")
	}
	if c.Model.Classes < 0 {
		return common.InvalidArgument("model classes %d is negative", c.Model.Classes)
	}
	if c.Runtime.IntraOpThreads < 0 {
		return common.InvalidArgument("intra op threads %d is negative", c.Runtime.IntraOpThreads)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if err := c.PreprocessConfig().Validate(); err != nil {
		return errors.Wrap(err, "preprocess")
	}
	if _, err := c.PostprocessConfig(); err != nil {
		return errors.Wrap(err, "postprocess")
	}
	return nil
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (logrus.Level, error) {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return 0, common.InvalidArgument("log level %q: %v", c.Log.Level, err)
	}
	return level, nil
}

// PreprocessConfig builds the preprocessing configuration of the model input.
func (c *Config) PreprocessConfig() *preprocess.ModelConfig {
	return &preprocess.ModelConfig{
		Name:          string(c.Model.Name),
		InputWidth:    c.Model.InputWidth,
		InputHeight:   c.Model.InputHeight,
		InputChannels: 3,
		Scale:         c.Preprocess.Scale,
		MeanValues:    c.Preprocess.Mean,
		StdValues:     c.Preprocess.Std,
		ColorMode:     c.Preprocess.ColorMode,
	}
}

// PostprocessConfig builds the post-processing configuration.
func (c *Config) PostprocessConfig() (postprocess.Config, error) {
	decoder, err := postprocess.NewBoxDecoder(c.Postprocess.Decoder, c.Model.InputWidth, c.Model.InputHeight)
	if err != nil {
		return postprocess.Config{}, err
	}

	pc := postprocess.Config{
		ConfidenceThreshold: c.Postprocess.ConfidenceThreshold,
		Decoder:             decoder,
		NMS: postprocess.NMSConfig{
			IoUThreshold:  c.Postprocess.IoUThreshold,
			ClassAware:    c.Postprocess.ClassAware,
			MaxDetections: c.Postprocess.MaxDetections,
		},
	}
	if err := pc.Validate(); err != nil {
		return postprocess.Config{}, err
	}
	return pc, nil
}

// ModelArgs builds the arguments of models.NewModel.
//
// Arguments:
//   - log: The logger handed to the model. Nil uses the standard logger.
//
// Returns:
//   - The model arguments.
//   - An error if the configuration is invalid.
func (c *Config) ModelArgs(log logrus.FieldLogger) (model.NewModelArgs, error) {
	post, err := c.PostprocessConfig()
	if err != nil {
		return model.NewModelArgs{}, errors.Wrap(err, "postprocess")
	}
	return model.NewModelArgs{
		Name:        c.Model.Name,
		Path:        c.Model.Path,
		Classes:     c.Model.Classes,
		Preprocess:  *c.PreprocessConfig(),
		Postprocess: post,
		Logger:      log,
	}, nil
}
