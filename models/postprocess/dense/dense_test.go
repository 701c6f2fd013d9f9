package dense

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-yolo/common"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

func TestToTensor(t *testing.T) {
	// Two anchors, attribute-major: cx, cy, w, h, class 0, class 1.
	data := []float32{
		320, 100,
		320, 100,
		64, 20,
		64, 20,
		0.95, 0.05,
		0.01, 0.6,
	}
	d := tensor.New(tensor.WithShape(1, 6, 2), tensor.WithBacking(data))

	view, err := ToTensor(d)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 6, 2}, view.Shape())
	assert.Equal(t, float32(0.6), view.At(5, 1))

	out, err := postprocess.Postprocess(view, 640, 640, postprocess.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, out.ClassIDs)
}

func TestToTensorInvalid(t *testing.T) {
	_, err := ToTensor(nil)
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))

	doubles := tensor.New(tensor.WithShape(1, 6, 1), tensor.WithBacking(make([]float64, 6)))
	_, err = ToTensor(doubles)
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))

	flat := tensor.New(tensor.WithShape(6, 2), tensor.WithBacking(make([]float32, 12)))
	_, err = ToTensor(flat)
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))
}
