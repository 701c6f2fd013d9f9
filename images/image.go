// Package images - Image buffers and geometry used by the detection pipeline.
package images

import (
	"image"

	"github.com/nvr-ai/go-yolo/common"
)

// ImageFormat represents the encoding an image buffer was decoded from.
type ImageFormat string

const (
	// FormatRaw is an already-decoded interleaved pixel buffer.
	FormatRaw ImageFormat = "raw"
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
)

// Image is a decoded, row-major pixel buffer with interleaved channels.
type Image struct {
	// The format the pixels were decoded from.
	Format ImageFormat `json:"format" yaml:"format"`
	// The interleaved pixel data, len(Data) == Width*Height*Channels.
	Data []byte `json:"data" yaml:"data"`
	// The width of the image.
	Width int `json:"width" yaml:"width"`
	// The height of the image.
	Height int `json:"height" yaml:"height"`
	// The number of interleaved channels per pixel (commonly 3).
	Channels int `json:"channels" yaml:"channels"`
}

// NewImage allocates a zeroed image of the given dimensions.
//
// Arguments:
//   - width: The width of the image.
//   - height: The height of the image.
//   - channels: The number of interleaved channels.
//
// Returns:
//   - The zeroed image.
//   - An error if any dimension is not positive.
func NewImage(width, height, channels int) (*Image, error) {
	if width <= 0 || height <= 0 || channels <= 0 {
		return nil, common.InvalidArgument("invalid image dimensions: %dx%dx%d", width, height, channels)
	}
	return &Image{
		Format:   FormatRaw,
		Data:     make([]byte, width*height*channels),
		Width:    width,
		Height:   height,
		Channels: channels,
	}, nil
}

// Validate checks the buffer against its declared dimensions.
//
// Returns:
//   - An error matching common.ErrInvalidArgument if the image is unusable.
//
// @example
//
//	if err := img.Validate(); err != nil {
//	    return nil, err
//	}
func (i *Image) Validate() error {
	if i == nil {
		return common.InvalidArgument("image is nil")
	}
	if len(i.Data) == 0 {
		return common.InvalidArgument("image data is empty")
	}
	if i.Width <= 0 || i.Height <= 0 || i.Channels <= 0 {
		return common.InvalidArgument("invalid image dimensions: %dx%dx%d", i.Width, i.Height, i.Channels)
	}
	if want := i.Width * i.Height * i.Channels; len(i.Data) != want {
		return common.InvalidArgument("image data holds %d bytes, %dx%dx%d needs %d",
			len(i.Data), i.Width, i.Height, i.Channels, want)
	}
	return nil
}

// Bounds returns the image rectangle anchored at the origin.
func (i *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.Width, i.Height)
}

// PixelOffset returns the index of the first channel of the pixel at (x, y).
func (i *Image) PixelOffset(x, y int) int {
	return (y*i.Width + x) * i.Channels
}
