// Package preprocess - Letterbox resizing and blob construction for detection models.
package preprocess

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-yolo/common"
	"github.com/nvr-ai/go-yolo/images"
)

// ColorMode defines the channel order the model expects.
type ColorMode string

const (
	// ColorModeRGB keeps the source channel order.
	ColorModeRGB ColorMode = "rgb"
	// ColorModeBGR reverses the source channel order while building the blob.
	ColorModeBGR ColorMode = "bgr"
)

// ModelConfig defines preprocessing configuration for a specific model.
type ModelConfig struct {
	// Name of the model for logging purposes.
	Name string `json:"name" yaml:"name"`
	// InputWidth is the expected width of the model input.
	InputWidth int `json:"input_width" yaml:"input_width"`
	// InputHeight is the expected height of the model input.
	InputHeight int `json:"input_height" yaml:"input_height"`
	// InputChannels is the number of channels the model consumes.
	InputChannels int `json:"input_channels" yaml:"input_channels"`
	// Scale multiplies every pixel byte.
	Scale float32 `json:"scale" yaml:"scale"`
	// MeanValues are subtracted per channel after scaling.
	MeanValues []float32 `json:"mean" yaml:"mean"`
	// StdValues divide per channel after the mean is subtracted.
	StdValues []float32 `json:"std" yaml:"std"`
	// ColorMode is the channel order the model expects relative to the source image.
	ColorMode ColorMode `json:"color_mode" yaml:"color_mode"`
}

// Normalization returns the blob normalization described by the config.
func (c *ModelConfig) Normalization() Normalization[float32] {
	return Normalization[float32]{
		Scale:  c.Scale,
		Mean:   c.MeanValues,
		Std:    c.StdValues,
		SwapRB: c.ColorMode == ColorModeBGR,
	}
}

// Validate checks the config for unusable values.
//
// Returns:
//   - An error matching common.ErrInvalidArgument if the config is unusable.
func (c *ModelConfig) Validate() error {
	if c.InputWidth <= 0 || c.InputHeight <= 0 {
		return common.InvalidArgument("invalid input dimensions: %dx%d", c.InputWidth, c.InputHeight)
	}
	if c.InputChannels <= 0 {
		return common.InvalidArgument("invalid input channels: %d", c.InputChannels)
	}
	switch c.ColorMode {
	case ColorModeRGB, ColorModeBGR:
	default:
		return common.InvalidArgument("unknown color mode: %q", c.ColorMode)
	}
	return c.Normalization().validate(c.InputChannels)
}

// PreprocessingResult contains the preprocessed tensor and the metadata needed to map
// detections back to the source image.
type PreprocessingResult struct {
	// Data is the channel-major float32 tensor.
	Data []float32
	// Shape is the tensor shape [1, C, H, W].
	Shape []int64
	// OriginalWidth is the source image width.
	OriginalWidth int
	// OriginalHeight is the source image height.
	OriginalHeight int
	// Letterbox is the geometry applied while resizing.
	Letterbox images.Letterbox
}

// Preprocessor turns source images into model input tensors.
type Preprocessor struct {
	config *ModelConfig
	log    logrus.FieldLogger
}

// NewPreprocessor creates a new preprocessor with the given configuration.
//
// Arguments:
// - config: The model-specific preprocessing configuration.
//
// Returns:
// - A configured Preprocessor instance.
// - An error if the configuration is invalid.
//
// @example
//
//	preprocessor, err := NewPreprocessor(GetYOLOv8Config(640))
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewPreprocessor(config *ModelConfig) (*Preprocessor, error) {
	if config == nil {
		return nil, common.InvalidArgument("preprocess config is nil")
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "preprocess config")
	}

	return &Preprocessor{
		config: config,
		log:    logrus.StandardLogger(),
	}, nil
}

// SetLogger replaces the logger used for debug output.
//
// Arguments:
// - log: The logger to use.
func (p *Preprocessor) SetLogger(log logrus.FieldLogger) {
	if log != nil {
		p.log = log
	}
}

// Config returns the preprocessing configuration.
func (p *Preprocessor) Config() *ModelConfig {
	return p.config
}

// Preprocess letterboxes and normalizes img into the model input tensor.
//
// Arguments:
// - img: The source image, with the channel count the model expects.
//
// Returns:
// - PreprocessingResult containing the tensor and letterbox metadata.
// - error if preprocessing fails.
//
// @example
//
// result, err := preprocessor.Preprocess(img)
//
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// tensor := result.Data
func (p *Preprocessor) Preprocess(img *images.Image) (*PreprocessingResult, error) {
	if err := img.Validate(); err != nil {
		return nil, errors.Wrap(err, "input validation failed")
	}
	if img.Channels != p.config.InputChannels {
		return nil, common.InvalidArgument("image has %d channels, model %q expects %d",
			img.Channels, p.config.Name, p.config.InputChannels)
	}

	blob, lb, err := MakeBlob(img, p.config.InputWidth, p.config.InputHeight, p.config.Normalization())
	if err != nil {
		return nil, errors.Wrap(err, "blob construction failed")
	}

	p.log.WithFields(logrus.Fields{
		"model":   p.config.Name,
		"source":  []int{img.Width, img.Height},
		"content": []int{lb.NewWidth, lb.NewHeight},
		"pad":     []int{lb.PadX, lb.PadY},
	}).Debug("preprocessed image")

	return &PreprocessingResult{
		Data:           blob,
		Shape:          []int64{1, int64(p.config.InputChannels), int64(p.config.InputHeight), int64(p.config.InputWidth)},
		OriginalWidth:  img.Width,
		OriginalHeight: img.Height,
		Letterbox:      lb,
	}, nil
}

// GetYOLOv8Config returns the standard configuration for YOLOv8 and YOLO11 exports.
//
// Arguments:
// - inputSize: The square input size (typically 640).
//
// Returns:
// - A configured ModelConfig.
//
// @example
// config := GetYOLOv8Config(640)
func GetYOLOv8Config(inputSize int) *ModelConfig {
	return &ModelConfig{
		Name:          "yolov8",
		InputWidth:    inputSize,
		InputHeight:   inputSize,
		InputChannels: 3,
		Scale:         1.0 / 255.0,
		MeanValues:    []float32{0, 0, 0},
		ColorMode:     ColorModeRGB,
	}
}

// GetImageNetConfig returns a configuration using ImageNet mean and std statistics, as used by
// transformer-based detectors.
//
// Arguments:
// - inputSize: The square input size.
//
// Returns:
// - A configured ModelConfig.
func GetImageNetConfig(inputSize int) *ModelConfig {
	return &ModelConfig{
		Name:          "imagenet",
		InputWidth:    inputSize,
		InputHeight:   inputSize,
		InputChannels: 3,
		Scale:         1.0 / 255.0,
		MeanValues:    []float32{0.485, 0.456, 0.406},
		StdValues:     []float32{0.229, 0.224, 0.225},
		ColorMode:     ColorModeRGB,
	}
}
