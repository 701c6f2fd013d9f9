package postprocess

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-yolo/common"
)

// buildOutput lays out anchor columns [cx, cy, w, h, scores...] attribute-major, the way the
// exported models emit them.
func buildOutput(t testing.TB, anchors ...[]float32) ([]float32, []int64) {
	t.Helper()
	require.NotEmpty(t, anchors)
	attrs := len(anchors[0])
	data := make([]float32, attrs*len(anchors))
	for i, a := range anchors {
		require.Len(t, a, attrs)
		for attr, v := range a {
			data[attr*len(anchors)+i] = v
		}
	}
	return data, []int64{1, int64(attrs), int64(len(anchors))}
}

func mustTensor(t testing.TB, anchors ...[]float32) *Tensor {
	t.Helper()
	data, shape := buildOutput(t, anchors...)
	tensor, err := NewTensor(data, shape)
	require.NoError(t, err)
	return tensor
}

func TestNewTensor(t *testing.T) {
	tensor := mustTensor(t,
		[]float32{1, 2, 3, 4, 0.5, 0.6},
		[]float32{5, 6, 7, 8, 0.7, 0.8},
	)

	assert.Equal(t, 6, tensor.Attributes())
	assert.Equal(t, 2, tensor.Anchors())
	assert.Equal(t, 2, tensor.Classes())
	assert.Equal(t, []int64{1, 6, 2}, tensor.Shape())
	assert.Equal(t, "1x6x2", tensor.String())
	assert.Equal(t, float32(5), tensor.At(0, 1))
	assert.Equal(t, float32(0.6), tensor.At(5, 0))
	assert.Equal(t, []float32{3, 7}, tensor.row(2))

	assert.Panics(t, func() { tensor.At(6, 0) })
	assert.Panics(t, func() { tensor.At(0, 2) })
	assert.Panics(t, func() { tensor.At(-1, 0) })
}

func TestNewTensorEmptyAnchors(t *testing.T) {
	tensor, err := NewTensor(nil, []int64{1, 84, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, tensor.Anchors())
}

func TestNewTensorInvalid(t *testing.T) {
	tests := []struct {
		name  string
		data  []float32
		shape []int64
	}{
		{"two dimensions", make([]float32, 12), []int64{6, 2}},
		{"batch of two", make([]float32, 24), []int64{2, 6, 2}},
		{"no class rows", make([]float32, 8), []int64{1, 4, 2}},
		{"negative anchors", nil, []int64{1, 6, -1}},
		{"length mismatch", make([]float32, 11), []int64{1, 6, 2}},
		{"product overflows", nil, []int64{1, 1 << 32, 1 << 32}},
		{"product exceeds data", make([]float32, 12), []int64{1, 1 << 40, 1 << 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTensor(tt.data, tt.shape)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrInvalidArgument))
		})
	}
}
