package preprocess

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-yolo/common"
	"github.com/nvr-ai/go-yolo/images"
)

// Float is the element type of a blob.
type Float interface {
	~float32 | ~float64
}

// Normalization describes how pixel bytes become blob values:
//
//	blob[c, y, x] = (pixel[y, x, sel(c)] * Scale - Mean[c]) / Std[c]
//
// where sel(c) = channels-1-c when SwapRB is set, and c otherwise.
type Normalization[T Float] struct {
	// Scale multiplies every pixel byte. Must not be zero.
	Scale T `json:"scale" yaml:"scale"`
	// Mean is subtracted per channel after scaling. Nil means zero.
	Mean []T `json:"mean" yaml:"mean"`
	// Std divides per channel after the mean is subtracted. Nil means one.
	Std []T `json:"std" yaml:"std"`
	// SwapRB reverses the channel order (RGB <-> BGR) while planarizing.
	SwapRB bool `json:"swap_rb" yaml:"swap_rb"`
}

// DefaultNormalization scales bytes to [0, 1] with no mean or std and no channel swap.
func DefaultNormalization[T Float]() Normalization[T] {
	return Normalization[T]{Scale: T(1.0 / 255.0)}
}

func (n Normalization[T]) validate(channels int) error {
	if n.Scale == 0 {
		return common.InvalidArgument("normalization scale is zero")
	}
	if n.Mean != nil && len(n.Mean) < channels {
		return common.InvalidArgument("mean has %d values, image has %d channels", len(n.Mean), channels)
	}
	if n.Std != nil {
		if len(n.Std) < channels {
			return common.InvalidArgument("std has %d values, image has %d channels", len(n.Std), channels)
		}
		for c := 0; c < channels; c++ {
			if n.Std[c] == 0 {
				return common.InvalidArgument("std for channel %d is zero", c)
			}
		}
	}
	return nil
}

// CreateBlob converts an interleaved image into a channel-major (CHW) tensor.
//
// The image must already be at the model's input resolution, no resizing happens here.
//
// Arguments:
//   - img: The interleaved source image.
//   - norm: The normalization to apply.
//
// Returns:
//   - A fresh blob of length channels*height*width.
//   - An error if the image or normalization is invalid.
//
// @example
// blob, err := CreateBlob(resized, DefaultNormalization[float32]())
func CreateBlob[T Float](img *images.Image, norm Normalization[T]) ([]T, error) {
	if err := img.Validate(); err != nil {
		return nil, errors.Wrap(err, "blob source")
	}
	channels := img.Channels
	if err := norm.validate(channels); err != nil {
		return nil, err
	}

	plane := img.Width * img.Height
	blob := make([]T, channels*plane)

	for c := 0; c < channels; c++ {
		src := c
		if norm.SwapRB {
			src = channels - 1 - c
		}

		var mean T
		if norm.Mean != nil {
			mean = norm.Mean[c]
		}
		std := T(1)
		if norm.Std != nil {
			std = norm.Std[c]
		}

		dst := blob[c*plane : (c+1)*plane]
		for p := range dst {
			dst[p] = (T(img.Data[p*channels+src])*norm.Scale - mean) / std
		}
	}

	return blob, nil
}

// MakeBlob letterboxes img into a targetWidth x targetHeight canvas and converts the result
// into a channel-major tensor.
//
// Arguments:
//   - img: The source image at its original resolution.
//   - targetWidth, targetHeight: The model input dimensions.
//   - norm: The normalization to apply.
//
// Returns:
//   - A blob of length channels*targetWidth*targetHeight.
//   - The letterbox geometry, needed to map detections back to the source image.
//   - An error if any argument is invalid.
//
// @example
// blob, lb, err := MakeBlob(frame, 640, 640, DefaultNormalization[float32]())
func MakeBlob[T Float](img *images.Image, targetWidth, targetHeight int, norm Normalization[T]) ([]T, images.Letterbox, error) {
	if err := img.Validate(); err != nil {
		return nil, images.Letterbox{}, errors.Wrap(err, "blob source")
	}
	if err := norm.validate(img.Channels); err != nil {
		return nil, images.Letterbox{}, err
	}

	resized, lb, err := images.LetterboxResize(img, targetWidth, targetHeight)
	if err != nil {
		return nil, images.Letterbox{}, errors.Wrap(err, "letterbox resize")
	}

	blob, err := CreateBlob(resized, norm)
	if err != nil {
		return nil, images.Letterbox{}, err
	}
	return blob, lb, nil
}
