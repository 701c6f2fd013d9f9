package images

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-yolo/common"
)

// Letterbox describes how a source image is placed into a fixed canvas while preserving its
// aspect ratio.
type Letterbox struct {
	// SrcWidth, SrcHeight are the source image dimensions.
	SrcWidth, SrcHeight int
	// DstWidth, DstHeight are the canvas dimensions.
	DstWidth, DstHeight int
	// NewWidth, NewHeight are the dimensions of the scaled content region.
	NewWidth, NewHeight int
	// PadX, PadY are the left and top padding. Any odd remainder goes to the right and bottom.
	PadX, PadY int
	// ScaleX, ScaleY are the source pixels per content pixel along each axis.
	ScaleX, ScaleY float64
}

// ComputeLetterbox calculates the content region and padding for a letterbox resize.
//
// The binding axis is chosen by comparing aspect ratios: a source wider than the canvas
// fills the canvas width, anything else fills the canvas height. The scaled side is
// truncated to an integer.
//
// Arguments:
//   - srcWidth, srcHeight: The source image dimensions.
//   - dstWidth, dstHeight: The canvas dimensions.
//
// Returns:
//   - The letterbox geometry.
//   - An error matching common.ErrInvalidArgument for non-positive dimensions or an aspect
//     ratio so extreme that the scaled content would be empty.
//
// @example
// lb, err := ComputeLetterbox(1280, 720, 640, 640) // NewWidth=640 NewHeight=360 PadY=140
func ComputeLetterbox(srcWidth, srcHeight, dstWidth, dstHeight int) (Letterbox, error) {
	if srcWidth <= 0 || srcHeight <= 0 {
		return Letterbox{}, common.InvalidArgument("invalid source dimensions: %dx%d", srcWidth, srcHeight)
	}
	if dstWidth <= 0 || dstHeight <= 0 {
		return Letterbox{}, common.InvalidArgument("invalid target dimensions: %dx%d", dstWidth, dstHeight)
	}

	aspectImage := float64(srcWidth) / float64(srcHeight)
	aspectTarget := float64(dstWidth) / float64(dstHeight)

	var newWidth, newHeight int
	if aspectImage > aspectTarget {
		newWidth = dstWidth
		newHeight = int(float64(dstWidth) / aspectImage)
	} else {
		newHeight = dstHeight
		newWidth = int(float64(dstHeight) * aspectImage)
	}

	if newWidth <= 0 || newHeight <= 0 {
		return Letterbox{}, common.InvalidArgument("letterbox of %dx%d into %dx%d has empty content",
			srcWidth, srcHeight, dstWidth, dstHeight)
	}

	return Letterbox{
		SrcWidth:  srcWidth,
		SrcHeight: srcHeight,
		DstWidth:  dstWidth,
		DstHeight: dstHeight,
		NewWidth:  newWidth,
		NewHeight: newHeight,
		PadX:      (dstWidth - newWidth) / 2,
		PadY:      (dstHeight - newHeight) / 2,
		ScaleX:    float64(srcWidth) / float64(newWidth),
		ScaleY:    float64(srcHeight) / float64(newHeight),
	}, nil
}

// Content returns the canvas region covered by the scaled image.
func (l Letterbox) Content() Rect {
	return Rect{X: l.PadX, Y: l.PadY, Width: l.NewWidth, Height: l.NewHeight}
}

// LetterboxResize scales img into a zeroed dstWidth x dstHeight canvas with nearest-neighbour
// sampling, centring the content and leaving the padding black.
//
// The source buffer is only read. The returned image has the same channel count as img.
//
// Arguments:
//   - img: The source image.
//   - dstWidth, dstHeight: The canvas dimensions.
//
// Returns:
//   - The letterboxed image.
//   - The geometry that was applied.
//   - An error if the image or the dimensions are invalid.
//
// @example
// resized, lb, err := LetterboxResize(frame, 640, 640)
func LetterboxResize(img *Image, dstWidth, dstHeight int) (*Image, Letterbox, error) {
	if err := img.Validate(); err != nil {
		return nil, Letterbox{}, errors.Wrap(err, "letterbox source")
	}

	lb, err := ComputeLetterbox(img.Width, img.Height, dstWidth, dstHeight)
	if err != nil {
		return nil, Letterbox{}, err
	}

	dst, err := NewImage(dstWidth, dstHeight, img.Channels)
	if err != nil {
		return nil, Letterbox{}, err
	}

	// Source column offsets are the same for every row.
	channels := img.Channels
	srcCols := make([]int, lb.NewWidth)
	for x := range srcCols {
		srcCols[x] = min(int(float64(x)*lb.ScaleX), img.Width-1) * channels
	}

	for y := 0; y < lb.NewHeight; y++ {
		srcY := min(int(float64(y)*lb.ScaleY), img.Height-1)
		srcRow := img.Data[srcY*img.Width*channels : (srcY+1)*img.Width*channels]
		dstRow := dst.Data[dst.PixelOffset(lb.PadX, y+lb.PadY):]
		for x, srcX := range srcCols {
			copy(dstRow[x*channels:(x+1)*channels], srcRow[srcX:srcX+channels])
		}
	}

	return dst, lb, nil
}
