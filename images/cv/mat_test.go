package cv

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-yolo/common"
	"github.com/nvr-ai/go-yolo/images"
)

func TestMatRoundTrip(t *testing.T) {
	img := &images.Image{Width: 3, Height: 2, Channels: 3, Data: []byte{
		1, 2, 3, 4, 5, 6, 7, 8, 9,
		10, 11, 12, 13, 14, 15, 16, 17, 18,
	}}

	mat, err := ToMat(img)
	require.NoError(t, err)
	defer mat.Close()

	assert.Equal(t, 3, mat.Cols())
	assert.Equal(t, 2, mat.Rows())

	back, err := FromMat(mat)
	require.NoError(t, err)
	assert.Equal(t, img.Data, back.Data)
	assert.Equal(t, images.FormatRaw, back.Format)
}

func TestToMatOwnsBuffer(t *testing.T) {
	img := &images.Image{Width: 2, Height: 2, Channels: 1, Data: []byte{10, 20, 30, 40}}

	mat, err := ToMat(img)
	require.NoError(t, err)
	defer mat.Close()

	mat.SetUCharAt(0, 0, 255)
	assert.Equal(t, uint8(255), mat.GetUCharAt(0, 0))
	assert.Equal(t, []byte{10, 20, 30, 40}, img.Data)

	img.Data[3] = 0
	assert.Equal(t, uint8(40), mat.GetUCharAt(1, 1))
}

func TestFromMatInvalid(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	_, err := FromMat(empty)
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))

	floats := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV32F)
	defer floats.Close()

	_, err = FromMat(floats)
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))

	_, err = ToMat(&images.Image{Width: 1, Height: 1, Channels: 2, Data: []byte{1, 2}})
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))
}
