package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/nvr-ai/go-yolo/config"
	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/models"
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

// fakeRunner returns a fixed raw output and records the blob it was given.
type fakeRunner struct {
	output *postprocess.Tensor
	blob   []float32
	err    error
}

func (f *fakeRunner) Run(_ context.Context, blob []float32) (*postprocess.Tensor, error) {
	f.blob = blob
	return f.output, f.err
}

func writeTestImage(t *testing.T, name string, encode func(*os.File, image.Image) error) string {
	t.Helper()
	src := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, encode(f, src))
	return path
}

func TestLoadImage(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		encode func(*os.File, image.Image) error
		format images.ImageFormat
	}{
		{"png", "frame.png", func(f *os.File, img image.Image) error { return png.Encode(f, img) }, images.FormatPNG},
		{"bmp", "frame.bmp", func(f *os.File, img image.Image) error { return bmp.Encode(f, img) }, images.FormatRaw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestImage(t, tt.file, tt.encode)

			img, err := loadImage(path, false)
			require.NoError(t, err)
			assert.Equal(t, 40, img.Width)
			assert.Equal(t, 30, img.Height)
			assert.Equal(t, 3, img.Channels)
			assert.Equal(t, tt.format, img.Format)

			offset := img.PixelOffset(7, 5)
			assert.Equal(t, []byte{7, 5, 200}, img.Data[offset:offset+3])
		})
	}

	_, err := loadImage(filepath.Join(t.TempDir(), "missing.png"), false)
	assert.Error(t, err)
}

func TestDetect(t *testing.T) {
	logger, hook := test.NewNullLogger()
	cfg := config.Default()
	cfg.Model.InputWidth = 64
	cfg.Model.InputHeight = 64
	cfg.Model.Classes = 2

	args, err := cfg.ModelArgs(logger)
	require.NoError(t, err)
	m, err := models.NewModel(args)
	require.NoError(t, err)

	output, err := postprocess.NewTensor([]float32{32, 32, 16, 16, 0.1, 0.8}, []int64{1, 6, 1})
	require.NoError(t, err)
	r := &fakeRunner{output: output}

	img, err := images.NewImage(64, 64, 3)
	require.NoError(t, err)

	detections, err := detect(context.Background(), m, r, img)
	require.NoError(t, err)
	require.Len(t, detections, 1)
	assert.Equal(t, "bicycle", detections[0].Label)
	assert.Equal(t, images.Rect{X: 24, Y: 24, Width: 16, Height: 16}, detections[0].Box)
	assert.Len(t, r.blob, 3*64*64)
	assert.Empty(t, hook.AllEntries(), "info level hides debug output")

	r.err = errors.New("device lost")
	_, err = detect(context.Background(), m, r, img)
	assert.ErrorContains(t, err, "device lost")
}

// labellingModel overrides Detect so the test can tell which labelling path detect used.
type labellingModel struct {
	model.Model
	calls int
}

func (l *labellingModel) Detect(t *postprocess.Tensor, frameWidth, frameHeight int) ([]model.Detection, error) {
	l.calls++
	detections, err := l.Model.Detect(t, frameWidth, frameHeight)
	for i := range detections {
		detections[i].Label = "tracked-" + detections[i].Label
	}
	return detections, err
}

func TestDetectLabelsThroughModel(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := config.Default()
	cfg.Model.InputWidth = 64
	cfg.Model.InputHeight = 64
	cfg.Model.Classes = 2

	args, err := cfg.ModelArgs(logger)
	require.NoError(t, err)
	base, err := models.NewModel(args)
	require.NoError(t, err)
	m := &labellingModel{Model: base}

	output, err := postprocess.NewTensor([]float32{32, 32, 16, 16, 0.9, 0.1}, []int64{1, 6, 1})
	require.NoError(t, err)

	img, err := images.NewImage(64, 64, 3)
	require.NoError(t, err)

	detections, err := detect(context.Background(), m, &fakeRunner{output: output}, img)
	require.NoError(t, err)
	assert.Equal(t, 1, m.calls)
	require.Len(t, detections, 1)
	assert.Equal(t, "tracked-person", detections[0].Label)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig(options{modelPath: "custom.onnx"})
	require.NoError(t, err)
	assert.Equal(t, "custom.onnx", cfg.Model.Path)

	_, err = loadConfig(options{configPath: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestInputPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"frame-1.jpg", "frame-0.jpg", "readme.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	paths, err := inputPaths(options{dirPath: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "frame-0.jpg"), filepath.Join(dir, "frame-1.jpg")}, paths)

	paths, err = inputPaths(options{imagePath: "a.png"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png"}, paths)

	_, err = inputPaths(options{})
	assert.Error(t, err)
	_, err = inputPaths(options{imagePath: "a.png", dirPath: dir})
	assert.Error(t, err)
	_, err = inputPaths(options{dirPath: t.TempDir()})
	assert.Error(t, err)
}
