// Package cv - Conversions between OpenCV matrices and pipeline image buffers.
package cv

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-yolo/common"
	"github.com/nvr-ai/go-yolo/images"
)

// FromMat copies an 8-bit OpenCV matrix into an interleaved image buffer.
//
// OpenCV decodes colour images in BGR order, so callers feeding an RGB model should either
// convert the Mat first or enable channel swapping when building the blob.
//
// Arguments:
//   - mat: The matrix to copy. It is not modified or closed.
//
// Returns:
//   - The image buffer.
//   - An error if the matrix is empty or not 8-bit.
//
// @example
//
//	mat := gocv.IMRead("frame.jpg", gocv.IMReadColor)
//	defer mat.Close()
//	img, err := cv.FromMat(mat)
func FromMat(mat gocv.Mat) (*images.Image, error) {
	if mat.Empty() {
		return nil, common.InvalidArgument("mat is empty")
	}

	switch mat.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
	default:
		return nil, common.InvalidArgument("unsupported mat type: %d", int(mat.Type()))
	}

	img := &images.Image{
		Format:   images.FormatRaw,
		Data:     mat.ToBytes(),
		Width:    mat.Cols(),
		Height:   mat.Rows(),
		Channels: mat.Channels(),
	}
	if err := img.Validate(); err != nil {
		return nil, errors.Wrap(err, "mat conversion")
	}
	return img, nil
}

// ToMat copies an image buffer into a new 8-bit OpenCV matrix that shares no memory with img.
// The caller owns the result and must Close it.
//
// Arguments:
//   - img: The image buffer with 1, 3 or 4 channels.
//
// Returns:
//   - The matrix.
//   - An error if the image is invalid.
func ToMat(img *images.Image) (gocv.Mat, error) {
	if err := img.Validate(); err != nil {
		return gocv.NewMat(), err
	}

	var matType gocv.MatType
	switch img.Channels {
	case 1:
		matType = gocv.MatTypeCV8UC1
	case 3:
		matType = gocv.MatTypeCV8UC3
	case 4:
		matType = gocv.MatTypeCV8UC4
	default:
		return gocv.NewMat(), common.InvalidArgument("unsupported channel count: %d", img.Channels)
	}

	// NewMatFromBytes wraps the Go buffer without copying.
	view, err := gocv.NewMatFromBytes(img.Height, img.Width, matType, img.Data)
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "create mat")
	}
	defer view.Close()
	return view.Clone(), nil
}
