package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolution_GetMegaPixels(t *testing.T) {
	testCases := []struct {
		name     string
		res      ResolutionType
		expected float64
	}{
		{"Full HD 1080p", ResolutionTypeFHD1080p, 2.07},
		{"4K UHD", ResolutionType4KUHD, 8.29},
		{"1MP (5:4)", ResolutionType1MP54, 1.31},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, ok := GetResolutionByType(tc.res)
			require.True(t, ok)
			assert.Equal(t, tc.expected, res.GetMegaPixels())
		})
	}

	assert.Equal(t, 0.0, Resolution{Width: 0, Height: 1080}.GetMegaPixels())
	assert.Equal(t, "Full HD 1080p (1920x1080, 2.07MP)", resolutions[ResolutionTypeFHD1080p].String())
}

func TestGetAllResolutions(t *testing.T) {
	all := GetAllResolutions()
	require.Len(t, all, len(resolutions))
	assert.Equal(t, ResolutionTypeNHD, all[0].Name)
	assert.Equal(t, ResolutionType4KUHD, all[len(all)-1].Name)

	_, ok := GetResolutionByType("16K UHD")
	assert.False(t, ok)
}

// TestResolution_Letterbox checks the letterbox of every camera resolution into the standard
// 640x640 input: one side fills the canvas and the padding is centered.
func TestResolution_Letterbox(t *testing.T) {
	for _, res := range GetAllResolutions() {
		t.Run(string(res.Name), func(t *testing.T) {
			lb, err := res.Letterbox(640, 640)
			require.NoError(t, err)

			assert.True(t, lb.NewWidth == 640 || lb.NewHeight == 640)
			assert.LessOrEqual(t, lb.NewWidth, 640)
			assert.LessOrEqual(t, lb.NewHeight, 640)
			assert.Equal(t, (640-lb.NewWidth)/2, lb.PadX)
			assert.Equal(t, (640-lb.NewHeight)/2, lb.PadY)

			aspect := float64(res.Width) / float64(res.Height)
			assert.InDelta(t, aspect, float64(lb.NewWidth)/float64(lb.NewHeight), aspect*2/float64(min(lb.NewWidth, lb.NewHeight)))
		})
	}
}
