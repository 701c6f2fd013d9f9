package images

import (
	"fmt"
	"math"
	"sort"
)

// AspectRatio represents a camera aspect ratio by name (e.g., "16:9").
type AspectRatio string

// Standard aspect ratios of surveillance camera sensors.
const (
	AspectRatio169 AspectRatio = "16:9"
	AspectRatio43  AspectRatio = "4:3"
	AspectRatio54  AspectRatio = "5:4"
	AspectRatio916 AspectRatio = "9:16"
)

// ResolutionType represents the common name of a camera resolution.
type ResolutionType string

// Supported camera resolutions.
const (
	ResolutionTypeNHD      ResolutionType = "nHD"
	ResolutionTypeVGA      ResolutionType = "VGA"
	ResolutionTypeHD720p   ResolutionType = "HD 720p"
	ResolutionType1MP54    ResolutionType = "1MP (5:4)"
	ResolutionTypeFHD1080p ResolutionType = "Full HD 1080p"
	ResolutionType3MP43    ResolutionType = "3MP (4:3)"
	ResolutionTypeQHD1440p ResolutionType = "QHD 1440p"
	ResolutionType4KUHD    ResolutionType = "4K UHD"
	ResolutionTypePortrait ResolutionType = "Portrait 1080p"
)

// Resolution describes a source frame size a detector is fed with.
type Resolution struct {
	Name        ResolutionType `json:"name" yaml:"name"`
	AspectRatio AspectRatio    `json:"aspectRatio" yaml:"aspectRatio"`
	Width       int            `json:"width" yaml:"width"`
	Height      int            `json:"height" yaml:"height"`
}

// GetMegaPixels returns the pixel count in megapixels, rounded to two decimal places.
func (r Resolution) GetMegaPixels() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0.0
	}
	mp := float64(r.Width*r.Height) / 1_000_000.0
	return math.Round(mp*100) / 100
}

// String returns a human-readable summary of the resolution.
func (r Resolution) String() string {
	return fmt.Sprintf("%s (%dx%d, %.2fMP)", r.Name, r.Width, r.Height, r.GetMegaPixels())
}

// Letterbox computes the letterbox of a frame of this resolution into a dstWidth x dstHeight
// model input.
func (r Resolution) Letterbox(dstWidth, dstHeight int) (Letterbox, error) {
	return ComputeLetterbox(r.Width, r.Height, dstWidth, dstHeight)
}

var resolutions = map[ResolutionType]Resolution{
	ResolutionTypeNHD:      {Name: ResolutionTypeNHD, AspectRatio: AspectRatio169, Width: 640, Height: 360},
	ResolutionTypeVGA:      {Name: ResolutionTypeVGA, AspectRatio: AspectRatio43, Width: 640, Height: 480},
	ResolutionTypeHD720p:   {Name: ResolutionTypeHD720p, AspectRatio: AspectRatio169, Width: 1280, Height: 720},
	ResolutionType1MP54:    {Name: ResolutionType1MP54, AspectRatio: AspectRatio54, Width: 1280, Height: 1024},
	ResolutionTypeFHD1080p: {Name: ResolutionTypeFHD1080p, AspectRatio: AspectRatio169, Width: 1920, Height: 1080},
	ResolutionType3MP43:    {Name: ResolutionType3MP43, AspectRatio: AspectRatio43, Width: 2048, Height: 1536},
	ResolutionTypeQHD1440p: {Name: ResolutionTypeQHD1440p, AspectRatio: AspectRatio169, Width: 2560, Height: 1440},
	ResolutionType4KUHD:    {Name: ResolutionType4KUHD, AspectRatio: AspectRatio169, Width: 3840, Height: 2160},
	ResolutionTypePortrait: {Name: ResolutionTypePortrait, AspectRatio: AspectRatio916, Width: 1080, Height: 1920},
}

// GetAllResolutions returns every defined resolution ordered by pixel count.
func GetAllResolutions() []Resolution {
	all := make([]Resolution, 0, len(resolutions))
	for _, res := range resolutions {
		all = append(all, res)
	}
	sort.Slice(all, func(i, j int) bool {
		if a, b := all[i].Width*all[i].Height, all[j].Width*all[j].Height; a != b {
			return a < b
		}
		return all[i].Name < all[j].Name
	})
	return all
}

// GetResolutionByType retrieves a specific resolution by its type.
func GetResolutionByType(t ResolutionType) (Resolution, bool) {
	res, ok := resolutions[t]
	return res, ok
}
