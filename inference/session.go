// Package inference - onnxruntime sessions producing raw detection outputs.
package inference

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nvr-ai/go-yolo/common"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

// Strides are the feature map strides of the three YOLOv8 detection heads.
var Strides = []int{8, 16, 32}

// AnchorCount returns the number of anchors a YOLOv8 head emits for an input size.
//
// @example
// AnchorCount(640, 640) // 8400
func AnchorCount(inputWidth, inputHeight int) int {
	n := 0
	for _, s := range Strides {
		n += (inputWidth / s) * (inputHeight / s)
	}
	return n
}

// SessionConfig describes one single-input, single-output detection model.
type SessionConfig struct {
	// ModelPath is the exported ONNX file.
	ModelPath string
	// LibraryPath is the onnxruntime shared library. Empty uses DefaultLibraryPath.
	LibraryPath string
	InputName   string
	OutputName  string
	InputWidth  int
	InputHeight int
	// Classes sizes the output when the model declares dynamic output dimensions.
	Classes        int
	Provider       Provider
	IntraOpThreads int
}

// Validate checks the config for unusable values.
func (c SessionConfig) Validate() error {
	if c.ModelPath == "" {
		return common.InvalidArgument("model path is empty")
	}
	if c.InputName == "" || c.OutputName == "" {
		return common.InvalidArgument("input and output names are required")
	}
	if c.InputWidth <= 0 || c.InputHeight <= 0 {
		return common.InvalidArgument("invalid input dimensions: %dx%d", c.InputWidth, c.InputHeight)
	}
	if c.Classes < 0 || c.IntraOpThreads < 0 {
		return common.InvalidArgument("classes %d and intra op threads %d must not be negative", c.Classes, c.IntraOpThreads)
	}
	if _, err := ParseProvider(string(c.Provider)); err != nil {
		return err
	}
	return nil
}

// outputShape resolves the static output shape [1, 4+classes, anchors]. Declared model
// dimensions win. Dynamic dimensions fall back to the configured class count and the anchor
// count of the input size.
func (c SessionConfig) outputShape(declared ort.Shape) (ort.Shape, error) {
	if len(declared) == 3 && declared[0] > 0 && declared[1] > 0 && declared[2] > 0 {
		return declared, nil
	}
	if c.Classes <= 0 {
		return nil, common.InvalidArgument("output %q has dynamic shape %v, classes must be configured", c.OutputName, declared)
	}
	return ort.NewShape(1, int64(postprocess.BoxAttributes+c.Classes), int64(AnchorCount(c.InputWidth, c.InputHeight))), nil
}

// Session is an onnxruntime session with preallocated input and output tensors.
//
// Run calls are serialized since the tensors are shared.
type Session struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	log     logrus.FieldLogger
}

// NewSession creates a new onnxruntime session.
//
// Order of operations:
//  1. Environment setup: loads the shared library once per process.
//  2. Output discovery: reads the declared output shape from the model.
//  3. Tensor allocation: prepares fixed-shape buffers for input and output data.
//  4. Session options: threading, graph optimization and the execution provider.
//  5. Session creation: loads the model and binds the tensors.
//
// Arguments:
//   - config: The session configuration.
//   - log: The logger. Nil uses the standard logger.
//
// Returns:
//   - *Session: The session. The caller must Close it.
//   - error: An error if the session creation fails.
func NewSession(config SessionConfig, log logrus.FieldLogger) (*Session, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	provider, _ := ParseProvider(string(config.Provider))
	if log == nil {
		log = logrus.StandardLogger()
	}

	if err := InitializeEnvironment(config.LibraryPath); err != nil {
		return nil, err
	}

	var declared ort.Shape
	_, outputs, err := ort.GetInputOutputInfo(config.ModelPath)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading model %s", config.ModelPath)
	}
	for _, o := range outputs {
		if o.Name == config.OutputName {
			declared = o.Dimensions
		}
	}
	outputShape, err := config.outputShape(declared)
	if err != nil {
		return nil, err
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, int64(config.InputHeight), int64(config.InputWidth)))
	if err != nil {
		return nil, errors.Wrap(err, "error creating input tensor")
	}
	output, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "error creating output tensor")
	}

	session, err := newAdvancedSession(config, provider, input, output)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"model":    config.ModelPath,
		"provider": provider,
		"output":   outputShape.String(),
	}).Info("inference session created")

	return &Session{
		session: session,
		input:   input,
		output:  output,
		log:     log,
	}, nil
}

func newAdvancedSession(
	config SessionConfig,
	provider Provider,
	input, output *ort.Tensor[float32],
) (*ort.AdvancedSession, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "error creating ORT session options")
	}
	defer options.Destroy()

	if err := options.SetIntraOpNumThreads(config.IntraOpThreads); err != nil {
		return nil, errors.Wrap(err, "error setting intra op threads")
	}
	if err := options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended); err != nil {
		return nil, errors.Wrap(err, "error setting graph optimization level")
	}
	if err := appendProvider(options, provider); err != nil {
		return nil, err
	}

	session, err := ort.NewAdvancedSession(
		config.ModelPath,
		[]string{config.InputName},
		[]string{config.OutputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		options,
	)
	if err != nil {
		return nil, errors.Wrap(err, "error creating ORT session")
	}
	return session, nil
}

// InputShape returns the input tensor shape [1, 3, H, W].
func (s *Session) InputShape() []int64 {
	return s.input.GetShape().Clone()
}

// OutputShape returns the output tensor shape [1, 4+classes, anchors].
func (s *Session) OutputShape() []int64 {
	return s.output.GetShape().Clone()
}

// Run executes the model on one preprocessed blob.
//
// Arguments:
//   - ctx: Checked before the run starts. A started run is not interrupted.
//   - blob: The CHW input blob, sized to the input tensor.
//
// Returns:
//   - *postprocess.Tensor: The raw output. It owns a copy of the data and stays valid after
//     later runs.
//   - error: An error if the blob does not fit or the run fails.
func (s *Session) Run(ctx context.Context, blob []float32) (*postprocess.Tensor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, errors.New("session is closed")
	}
	dst := s.input.GetData()
	if len(blob) != len(dst) {
		return nil, common.InvalidArgument("blob has %d values, input %v needs %d", len(blob), s.input.GetShape(), len(dst))
	}
	copy(dst, blob)

	start := time.Now()
	if err := s.session.Run(); err != nil {
		return nil, errors.Wrap(err, "error running ORT session")
	}
	s.log.WithField("duration", time.Since(start)).Debug("inference run")

	data := append([]float32(nil), s.output.GetData()...)
	return postprocess.NewTensor(data, s.output.GetShape())
}

// Close releases the resources associated with the Session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
	if s.session != nil {
		err := s.session.Destroy()
		s.session = nil
		if err != nil {
			return errors.Wrap(err, "error destroying ORT session")
		}
	}
	return nil
}

// TensorFromORT builds a view over an onnxruntime output tensor. The view borrows the
// tensor's data and is invalidated by the next run or by Destroy.
//
// @example
// t, err := TensorFromORT(output)
func TensorFromORT(t *ort.Tensor[float32]) (*postprocess.Tensor, error) {
	if t == nil {
		return nil, common.InvalidArgument("ort tensor is nil")
	}
	view, err := postprocess.NewTensor(t.GetData(), t.GetShape())
	if err != nil {
		return nil, errors.Wrap(err, "ort tensor")
	}
	return view, nil
}
