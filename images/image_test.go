package images

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-yolo/common"
)

func TestNewImage(t *testing.T) {
	img, err := NewImage(4, 3, 3)
	require.NoError(t, err)
	assert.Len(t, img.Data, 36)
	assert.Equal(t, FormatRaw, img.Format)
	assert.NoError(t, img.Validate())
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	assert.Equal(t, (2*4+1)*3, img.PixelOffset(1, 2))

	_, err = NewImage(0, 3, 3)
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))
}

func TestImageValidate(t *testing.T) {
	tests := []struct {
		name string
		img  *Image
	}{
		{"nil", nil},
		{"empty data", &Image{Width: 1, Height: 1, Channels: 3}},
		{"zero width", &Image{Width: 0, Height: 1, Channels: 3, Data: []byte{1, 2, 3}}},
		{"zero channels", &Image{Width: 1, Height: 1, Channels: 0, Data: []byte{1}}},
		{"short data", &Image{Width: 2, Height: 1, Channels: 3, Data: []byte{1, 2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.img.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrInvalidArgument))
		})
	}
}

// TestFromImageRoundTrip converts an image.Image to an RGB buffer and back.
func TestFromImageRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			src.Set(x, y, color.NRGBA{R: uint8(10 * x), G: uint8(20 * y), B: 200, A: 255})
		}
	}

	img, err := FromImage(src)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Channels)
	assert.Equal(t, []byte{20, 20, 200}, img.Data[img.PixelOffset(2, 1):img.PixelOffset(2, 1)+3])

	rgba, err := img.ToRGBA()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 20, G: 20, B: 200, A: 255}, rgba.RGBAAt(2, 1))
}

// TestFromImageSubImage ensures non-zero origins are read from the right offset.
func TestFromImageSubImage(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 4, 4))
	base.SetRGBA(2, 2, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	sub := base.SubImage(image.Rect(2, 2, 4, 4))

	img, err := FromImage(sub)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Width)
	assert.Equal(t, []byte{1, 2, 3}, img.Data[:3])

	_, err = FromImage(nil)
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))
}

func TestToRGBAChannels(t *testing.T) {
	gray := &Image{Width: 1, Height: 1, Channels: 1, Data: []byte{7}}
	rgba, err := gray.ToRGBA()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{7, 7, 7, 255}, rgba.RGBAAt(0, 0))

	two := &Image{Width: 1, Height: 1, Channels: 2, Data: []byte{7, 8}}
	_, err = two.ToRGBA()
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))
}

func TestComputeChecksum(t *testing.T) {
	assert.Equal(t, "empty", ComputeChecksum(nil))
	a := &Image{Width: 1, Height: 1, Channels: 1, Data: []byte{1}}
	b := &Image{Width: 1, Height: 1, Channels: 1, Data: []byte{2}}
	assert.NotEqual(t, ComputeChecksum(a), ComputeChecksum(b))
	assert.Len(t, ComputeChecksum(a), 32)

	data := []byte{1, 2, 3, 4, 5, 6}
	wide := &Image{Width: 2, Height: 3, Channels: 1, Data: data}
	tall := &Image{Width: 3, Height: 2, Channels: 1, Data: data}
	assert.NotEqual(t, ComputeChecksum(wide), ComputeChecksum(tall))
	assert.Equal(t, ComputeChecksum(wide), ComputeChecksum(&Image{Width: 2, Height: 3, Channels: 1, Data: data}))
}
