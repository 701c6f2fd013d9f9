package inference

import (
	"context"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nvr-ai/go-yolo/common"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

// modelPathEnv points the integration tests at an exported YOLOv8 model.
const modelPathEnv = "YOLO_MODEL"

func validSessionConfig() SessionConfig {
	return SessionConfig{
		ModelPath:   "yolov8n.onnx",
		InputName:   "images",
		OutputName:  "output0",
		InputWidth:  640,
		InputHeight: 640,
		Classes:     80,
	}
}

func TestAnchorCount(t *testing.T) {
	assert.Equal(t, 8400, AnchorCount(640, 640))
	assert.Equal(t, 2100, AnchorCount(320, 320))
	assert.Equal(t, 5040, AnchorCount(640, 384))
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		name     string
		expected Provider
	}{
		{"", CPUExecutionProvider},
		{"cpu", CPUExecutionProvider},
		{"CUDA", CUDAExecutionProvider},
		{" coreml ", CoreMLExecutionProvider},
		{"openvino", OpenVINOExecutionProvider},
	}
	for _, tt := range tests {
		p, err := ParseProvider(tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, p)
	}

	_, err := ParseProvider("tpu")
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))
}

func TestSessionConfigValidate(t *testing.T) {
	require.NoError(t, validSessionConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*SessionConfig)
	}{
		{"empty model path", func(c *SessionConfig) { c.ModelPath = "" }},
		{"empty input name", func(c *SessionConfig) { c.InputName = "" }},
		{"zero height", func(c *SessionConfig) { c.InputHeight = 0 }},
		{"negative classes", func(c *SessionConfig) { c.Classes = -1 }},
		{"negative threads", func(c *SessionConfig) { c.IntraOpThreads = -1 }},
		{"unknown provider", func(c *SessionConfig) { c.Provider = "tpu" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validSessionConfig()
			tt.mutate(&c)
			assert.True(t, errors.Is(c.Validate(), common.ErrInvalidArgument))

			_, err := NewSession(c, nil)
			assert.True(t, errors.Is(err, common.ErrInvalidArgument))
		})
	}
}

func TestSessionConfigOutputShape(t *testing.T) {
	c := validSessionConfig()

	shape, err := c.outputShape(ort.NewShape(1, 6, 100))
	require.NoError(t, err)
	assert.Equal(t, ort.NewShape(1, 6, 100), shape)

	shape, err = c.outputShape(ort.NewShape(-1, 84, -1))
	require.NoError(t, err)
	assert.Equal(t, ort.NewShape(1, 84, 8400), shape)

	shape, err = c.outputShape(nil)
	require.NoError(t, err)
	assert.Equal(t, ort.NewShape(1, 84, 8400), shape)

	c.Classes = 0
	_, err = c.outputShape(ort.NewShape(1, -1, -1))
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))
}

func TestDefaultLibraryPath(t *testing.T) {
	t.Setenv(LibraryPathEnv, "/opt/onnxruntime/lib/libonnxruntime.so")
	path, err := DefaultLibraryPath()
	require.NoError(t, err)
	assert.Equal(t, "/opt/onnxruntime/lib/libonnxruntime.so", path)
}

func TestTensorFromORTNil(t *testing.T) {
	_, err := TensorFromORT(nil)
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))
}

// requireRuntime skips tests that need the native onnxruntime library.
func requireRuntime(t *testing.T) {
	t.Helper()
	path, err := DefaultLibraryPath()
	if err != nil {
		t.Skip(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Skipf("onnxruntime library not available: %v", err)
	}
	require.NoError(t, InitializeEnvironment(path))
}

func TestTensorFromORT(t *testing.T) {
	requireRuntime(t)

	data := []float32{
		320, 100,
		320, 100,
		64, 20,
		64, 20,
		0.95, 0.05,
		0.01, 0.6,
	}
	tensor, err := ort.NewTensor(ort.NewShape(1, 6, 2), data)
	require.NoError(t, err)
	defer tensor.Destroy()

	view, err := TensorFromORT(tensor)
	require.NoError(t, err)
	assert.Equal(t, "1x6x2", view.String())

	out, err := postprocess.Postprocess(view, 640, 640, postprocess.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, out.ClassIDs)

	flat, err := ort.NewTensor(ort.NewShape(12), data)
	require.NoError(t, err)
	defer flat.Destroy()
	_, err = TensorFromORT(flat)
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))
}

func TestSessionRun(t *testing.T) {
	modelPath := os.Getenv(modelPathEnv)
	if modelPath == "" {
		t.Skipf("%s not set", modelPathEnv)
	}
	requireRuntime(t)

	c := validSessionConfig()
	c.ModelPath = modelPath
	session, err := NewSession(c, nil)
	require.NoError(t, err)
	defer session.Close()

	assert.Equal(t, []int64{1, 3, 640, 640}, session.InputShape())

	out, err := session.Run(context.Background(), make([]float32, 3*640*640))
	require.NoError(t, err)
	assert.Equal(t, session.OutputShape(), out.Shape())

	_, err = session.Run(context.Background(), make([]float32, 10))
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = session.Run(ctx, make([]float32, 3*640*640))
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, session.Close())
	_, err = session.Run(context.Background(), make([]float32, 3*640*640))
	assert.Error(t, err)
}
