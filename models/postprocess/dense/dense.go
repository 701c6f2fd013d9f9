// Package dense adapts gorgonia dense tensors to post-processing tensor views.
package dense

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-yolo/common"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

// ToTensor builds a view over a gorgonia dense tensor holding a [1, attributes, anchors]
// float32 output. Views such as transposes are materialized first so the data is read in
// logical order.
//
// Arguments:
//   - d: The dense tensor.
//
// Returns:
//   - The tensor view.
//   - An error if the tensor is nil, not float32 or has an unsupported shape.
//
// @example
// out := tensor.New(tensor.WithShape(1, 84, 8400), tensor.WithBacking(data))
// t, err := dense.ToTensor(out)
func ToTensor(d *tensor.Dense) (*postprocess.Tensor, error) {
	if d == nil {
		return nil, common.InvalidArgument("dense tensor is nil")
	}
	if d.Dtype() != tensor.Float32 {
		return nil, common.InvalidArgument("dense tensor dtype %v is not float32", d.Dtype())
	}

	if d.IsMaterializable() {
		m, ok := d.Materialize().(*tensor.Dense)
		if !ok {
			return nil, common.InvalidArgument("dense tensor view cannot be materialized")
		}
		d = m
	}

	data, ok := d.Data().([]float32)
	if !ok {
		return nil, common.InvalidArgument("dense tensor does not hold a float32 slice")
	}

	dims := d.Shape()
	shape := make([]int64, len(dims))
	for i, v := range dims {
		shape[i] = int64(v)
	}

	t, err := postprocess.NewTensor(data, shape)
	if err != nil {
		return nil, errors.Wrap(err, "dense tensor")
	}
	return t, nil
}
