package images

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-yolo/common"
)

// FromImage converts a decoded image.Image into a 3-channel interleaved RGB buffer.
//
// Arguments:
//   - src: The decoded image.
//
// Returns:
//   - The RGB image buffer.
//   - An error if src is nil or empty.
//
// @example
//
//	decoded, _, err := image.Decode(f)
//	img, err := images.FromImage(decoded)
func FromImage(src image.Image) (*Image, error) {
	if src == nil {
		return nil, common.InvalidArgument("image is nil")
	}
	b := src.Bounds()
	dst, err := NewImage(b.Dx(), b.Dy(), 3)
	if err != nil {
		return nil, errors.Wrap(err, "convert image")
	}

	// Fast path for the layouts the standard decoders produce.
	rgba, ok := src.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	}

	origin := rgba.Bounds().Min
	for y := 0; y < dst.Height; y++ {
		row := rgba.Pix[rgba.PixOffset(origin.X, origin.Y+y):]
		out := dst.Data[dst.PixelOffset(0, y):]
		for x := 0; x < dst.Width; x++ {
			out[x*3+0] = row[x*4+0]
			out[x*3+1] = row[x*4+1]
			out[x*3+2] = row[x*4+2]
		}
	}

	return dst, nil
}

// ToRGBA converts the buffer into an *image.RGBA so external renderers and encoders can use it.
// One channel is expanded to gray, three are read as RGB and a fourth is used as alpha.
//
// Returns:
//   - The RGBA image.
//   - An error if the buffer is invalid or has an unsupported channel count.
func (i *Image) ToRGBA() (*image.RGBA, error) {
	if err := i.Validate(); err != nil {
		return nil, err
	}
	if i.Channels != 1 && i.Channels != 3 && i.Channels != 4 {
		return nil, common.InvalidArgument("unsupported channel count: %d", i.Channels)
	}

	dst := image.NewRGBA(i.Bounds())
	for y := 0; y < i.Height; y++ {
		for x := 0; x < i.Width; x++ {
			p := i.Data[i.PixelOffset(x, y):]
			var c color.RGBA
			switch i.Channels {
			case 1:
				c = color.RGBA{R: p[0], G: p[0], B: p[0], A: 0xff}
			case 3:
				c = color.RGBA{R: p[0], G: p[1], B: p[2], A: 0xff}
			default:
				c = color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
			}
			dst.SetRGBA(x, y, c)
		}
	}
	return dst, nil
}
