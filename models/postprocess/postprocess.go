package postprocess

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-yolo/common"
)

// DefaultConfidenceThreshold is the minimum best-class score of a candidate.
const DefaultConfidenceThreshold = 0.5

// Config controls the post-processing of one model output.
type Config struct {
	// ConfidenceThreshold filters anchors whose best class score is not above it.
	ConfidenceThreshold float32 `json:"confidence_threshold" yaml:"confidence_threshold"`
	// Decoder is the box convention of the exporting model.
	Decoder BoxDecoder `json:"-" yaml:"-"`
	// NMS controls overlap suppression.
	NMS NMSConfig `json:"nms" yaml:"nms"`
}

// DefaultConfig returns the configuration for a standard 640x640 YOLOv8 export.
//
// Returns:
//   - Config: Confidence 0.5, letterboxed center-form boxes, class-agnostic NMS at IoU 0.5.
//
// @example
// config := DefaultConfig()
// config.ConfidenceThreshold = 0.25
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		Decoder:             CenterLetterbox{NetworkWidth: DefaultNetworkWidth, NetworkHeight: DefaultNetworkHeight},
		NMS:                 DefaultNMSConfig(),
	}
}

// Validate checks the configuration for unusable values.
func (c Config) Validate() error {
	if !(c.ConfidenceThreshold >= 0 && c.ConfidenceThreshold <= 1) {
		return common.InvalidArgument("confidence threshold %v outside [0, 1]", c.ConfidenceThreshold)
	}
	if c.Decoder == nil {
		return common.InvalidArgument("box decoder is nil")
	}
	if err := c.Decoder.Validate(); err != nil {
		return err
	}
	return c.NMS.Validate()
}

// Postprocess decodes, filters and de-duplicates one raw model output.
//
// Arguments:
//   - t: The raw output tensor of shape [1, 4+classes, anchors].
//   - frameWidth, frameHeight: The source image dimensions.
//   - config: The post-processing configuration.
//
// Returns:
//   - The detections in acceptance order. No detections is an empty Output, not an error.
//   - An error matching common.ErrInvalidArgument on invalid arguments.
//
// @example
//
//	t, err := NewTensor(data, []int64{1, 84, 8400})
//	out, err := Postprocess(t, 1920, 1080, DefaultConfig())
//	for i, box := range out.Boxes {
//	    fmt.Println(box, out.Confidences[i], out.ClassIDs[i])
//	}
func Postprocess(t *Tensor, frameWidth, frameHeight int, config Config) (*Output, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "postprocess config")
	}

	candidates, err := DecodeCandidates(t, frameWidth, frameHeight, config.ConfidenceThreshold, config.Decoder)
	if err != nil {
		return nil, errors.Wrap(err, "decode candidates")
	}

	return newOutput(ApplyGreedyNMS(candidates, &config.NMS)), nil
}

// PostprocessRaw wraps data in a tensor view of the given shape and post-processes it.
//
// Arguments:
//   - data: The raw output values, borrowed for the duration of the call.
//   - shape: The shape triple [1, 4+classes, anchors].
//   - frameWidth, frameHeight: The source image dimensions.
//   - config: The post-processing configuration.
//
// Returns:
//   - The detections in acceptance order.
//   - An error matching common.ErrInvalidArgument on invalid arguments.
func PostprocessRaw(data []float32, shape []int64, frameWidth, frameHeight int, config Config) (*Output, error) {
	t, err := NewTensor(data, shape)
	if err != nil {
		return nil, errors.Wrap(err, "output tensor")
	}
	return Postprocess(t, frameWidth, frameHeight, config)
}
