// Package yolov8 - YOLOv8 and YOLO11 detection models.
//
// Both generations export a single [1, 4+classes, anchors] output with center-form boxes in
// letterboxed input pixels, so one binding serves them.
package yolov8

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-yolo/common"
	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/model/preprocess"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

// Model is the instance of a YOLOv8 or YOLO11 model.
type Model struct {
	name         model.Name
	path         string
	classes      int
	labels       model.Labels
	preprocessor *preprocess.Preprocessor
	postprocess  postprocess.Config
	log          logrus.FieldLogger
}

var _ model.Model = (*Model)(nil)

// NewModel creates a new model.
//
// A nil postprocess decoder defaults to the letterbox convention at the preprocessing input
// size. A letterbox decoder with a different network size is rejected, since boxes would be
// mapped back through the wrong geometry.
//
// Arguments:
//   - args: The arguments for creating a new model.
//
// Returns:
//   - The model.
//   - An error matching common.ErrInvalidArgument for an unsupported name or invalid config.
//
// @example
//
//	m, err := NewModel(model.NewModelArgs{
//	    Name:        model.ModelNameYOLOv8,
//	    Path:        "yolov8n.onnx",
//	    Preprocess:  *preprocess.GetYOLOv8Config(640),
//	    Postprocess: postprocess.DefaultConfig(),
//	})
func NewModel(args model.NewModelArgs) (*Model, error) {
	if args.Name != model.ModelNameYOLOv8 && args.Name != model.ModelNameYOLO11 {
		return nil, common.InvalidArgument("model %q is not a yolov8 generation model", args.Name)
	}
	if args.Classes < 0 {
		return nil, common.InvalidArgument("class count %d is negative", args.Classes)
	}

	pre := args.Preprocess
	if pre.Name == "" {
		pre.Name = string(args.Name)
	}
	preprocessor, err := preprocess.NewPreprocessor(&pre)
	if err != nil {
		return nil, errors.Wrapf(err, "model %s", args.Name)
	}

	post := args.Postprocess
	if post.Decoder == nil {
		post.Decoder = postprocess.CenterLetterbox{NetworkWidth: pre.InputWidth, NetworkHeight: pre.InputHeight}
	}
	if lb, ok := post.Decoder.(postprocess.CenterLetterbox); ok {
		if lb.NetworkWidth != pre.InputWidth || lb.NetworkHeight != pre.InputHeight {
			return nil, common.InvalidArgument("decoder network size %dx%d does not match input %dx%d",
				lb.NetworkWidth, lb.NetworkHeight, pre.InputWidth, pre.InputHeight)
		}
	}
	if err := post.Validate(); err != nil {
		return nil, errors.Wrapf(err, "model %s", args.Name)
	}

	log := args.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("model", args.Name)
	preprocessor.SetLogger(log)

	return &Model{
		name:         args.Name,
		path:         args.Path,
		classes:      args.Classes,
		labels:       args.Labels,
		preprocessor: preprocessor,
		postprocess:  post,
		log:          log,
	}, nil
}

// Name implements model.Model.
func (m *Model) Name() model.Name {
	return m.name
}

// Family implements model.Model.
func (m *Model) Family() model.Family {
	return model.ModelFamilyYOLO
}

// Path implements model.Model.
func (m *Model) Path() string {
	return m.path
}

// Labels implements model.Model.
func (m *Model) Labels() model.Labels {
	return m.labels
}

// InputConfig returns the preprocessing configuration.
func (m *Model) InputConfig() preprocess.ModelConfig {
	return *m.preprocessor.Config()
}

// PostprocessConfig returns the post-processing configuration.
func (m *Model) PostprocessConfig() postprocess.Config {
	return m.postprocess
}

// PreProcess implements model.Model.
func (m *Model) PreProcess(img *images.Image) (*preprocess.PreprocessingResult, error) {
	return m.preprocessor.Preprocess(img)
}

// PostProcess implements model.Model.
//
// Arguments:
//   - t: The raw output tensor.
//   - frameWidth, frameHeight: The source image dimensions.
//
// Returns:
//   - The detections in acceptance order.
//   - An error matching common.ErrInvalidArgument when the output does not match the model.
func (m *Model) PostProcess(t *postprocess.Tensor, frameWidth, frameHeight int) (*postprocess.Output, error) {
	if t != nil && m.classes > 0 && t.Classes() != m.classes {
		return nil, common.InvalidArgument("output %s has %d classes, model declares %d", t, t.Classes(), m.classes)
	}

	out, err := postprocess.Postprocess(t, frameWidth, frameHeight, m.postprocess)
	if err != nil {
		return nil, errors.Wrapf(err, "model %s", m.name)
	}

	m.log.WithFields(logrus.Fields{
		"anchors":    t.Anchors(),
		"detections": out.Len(),
		"frame":      images.Rect{Width: frameWidth, Height: frameHeight},
	}).Debug("postprocessed output")

	return out, nil
}

// Detect implements model.Model.
func (m *Model) Detect(t *postprocess.Tensor, frameWidth, frameHeight int) ([]model.Detection, error) {
	out, err := m.PostProcess(t, frameWidth, frameHeight)
	if err != nil {
		return nil, err
	}
	return m.labels.Annotate(out), nil
}
