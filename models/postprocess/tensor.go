package postprocess

import (
	"fmt"
	"math"
	"strings"

	"github.com/nvr-ai/go-yolo/common"
)

// BoxAttributes is the number of box parameters that precede the class scores in each anchor
// column.
const BoxAttributes = 4

// Tensor is a read-only view over a raw detection output of shape [1, attributes, anchors],
// laid out attribute-major: row a holds attribute a for every anchor.
//
// The view borrows its data. It must not outlive the buffer it was built from and never
// writes to it.
type Tensor struct {
	data       []float32
	attributes int
	anchors    int
}

// NewTensor wraps data with the given shape.
//
// Arguments:
//   - data: The raw output values.
//   - shape: The shape triple [batch, attributes, anchors]. Batch must be 1 and attributes
//     must hold the 4 box parameters plus at least one class score.
//
// Returns:
//   - The tensor view.
//   - An error matching common.ErrInvalidArgument if the shape is malformed or does not
//     match len(data).
//
// @example
// t, err := NewTensor(output.GetData(), []int64{1, 84, 8400})
func NewTensor(data []float32, shape []int64) (*Tensor, error) {
	if len(shape) != 3 {
		return nil, common.InvalidArgument("tensor shape %v must have 3 dimensions", shape)
	}
	if shape[0] != 1 {
		return nil, common.InvalidArgument("tensor batch %d is not supported, expected 1", shape[0])
	}
	if shape[1] < BoxAttributes+1 {
		return nil, common.InvalidArgument("tensor has %d attribute rows, need at least %d", shape[1], BoxAttributes+1)
	}
	if shape[2] < 0 {
		return nil, common.InvalidArgument("tensor anchor count %d is negative", shape[2])
	}
	if shape[1] > math.MaxInt || shape[2] > math.MaxInt {
		return nil, common.InvalidArgument("tensor shape %v exceeds the platform int range", shape)
	}
	// Divide before multiplying so oversized shapes cannot wrap around.
	if shape[2] > 0 && shape[1] > int64(len(data))/shape[2] {
		return nil, common.InvalidArgument("tensor holds %d values, shape %v needs more", len(data), shape)
	}
	if want := shape[1] * shape[2]; int64(len(data)) != want {
		return nil, common.InvalidArgument("tensor holds %d values, shape %v needs %d", len(data), shape, want)
	}

	return &Tensor{
		data:       data,
		attributes: int(shape[1]),
		anchors:    int(shape[2]),
	}, nil
}

// Attributes returns the number of attribute rows (4 + classes).
func (t *Tensor) Attributes() int {
	return t.attributes
}

// Anchors returns the number of anchor columns.
func (t *Tensor) Anchors() int {
	return t.anchors
}

// Classes returns the number of class score rows.
func (t *Tensor) Classes() int {
	return t.attributes - BoxAttributes
}

// Shape returns the shape triple [1, attributes, anchors].
func (t *Tensor) Shape() []int64 {
	return []int64{1, int64(t.attributes), int64(t.anchors)}
}

// At returns attribute attr of anchor i. It panics when either index is outside the
// declared shape.
func (t *Tensor) At(attr, anchor int) float32 {
	if attr < 0 || attr >= t.attributes || anchor < 0 || anchor >= t.anchors {
		panic(fmt.Sprintf("postprocess: index [%d, %d] out of range for tensor %s", attr, anchor, t))
	}
	return t.data[attr*t.anchors+anchor]
}

// row returns the values of one attribute across every anchor.
func (t *Tensor) row(attr int) []float32 {
	return t.data[attr*t.anchors : (attr+1)*t.anchors : (attr+1)*t.anchors]
}

// String formats the shape as 1x84x8400.
func (t *Tensor) String() string {
	dims := t.Shape()
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = fmt.Sprint(d)
	}
	return strings.Join(parts, "x")
}
