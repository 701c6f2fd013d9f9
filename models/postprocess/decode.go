package postprocess

import (
	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-yolo/common"
	"github.com/nvr-ai/go-yolo/images"
)

// DecodeConvention names the box parameter format a model was exported with.
type DecodeConvention string

const (
	// ConventionCenterLetterbox is (cx, cy, w, h) in letterboxed network input pixels.
	ConventionCenterLetterbox DecodeConvention = "center-letterbox"
	// ConventionCornerNormalized is (x1, y1, x2, y2) as fractions of the frame.
	ConventionCornerNormalized DecodeConvention = "corner-normalized"
)

const (
	// DefaultNetworkWidth is the input width of the standard YOLOv8 exports.
	DefaultNetworkWidth = 640
	// DefaultNetworkHeight is the input height of the standard YOLOv8 exports.
	DefaultNetworkHeight = 640
)

// BoxDecoder maps the four box parameters of one anchor into a clamped source image box.
type BoxDecoder interface {
	// Convention returns the convention the decoder implements.
	Convention() DecodeConvention
	// DecodeBox converts box parameters to a box inside a frameWidth x frameHeight frame.
	DecodeBox(box [BoxAttributes]float32, frameWidth, frameHeight int) images.Rect
	// Validate reports decoder parameters that cannot produce boxes.
	Validate() error
}

// CenterLetterbox decodes center-form boxes predicted on a letterboxed network input and
// undoes the letterbox to recover source image coordinates.
type CenterLetterbox struct {
	NetworkWidth  int `json:"network_width" yaml:"network_width"`
	NetworkHeight int `json:"network_height" yaml:"network_height"`
}

// Convention implements BoxDecoder.
func (CenterLetterbox) Convention() DecodeConvention {
	return ConventionCenterLetterbox
}

// Validate implements BoxDecoder.
func (d CenterLetterbox) Validate() error {
	if d.NetworkWidth <= 0 || d.NetworkHeight <= 0 {
		return common.InvalidArgument("invalid network dimensions: %dx%d", d.NetworkWidth, d.NetworkHeight)
	}
	return nil
}

// DecodeBox implements BoxDecoder.
//
// The axis that bound the letterbox resize is found the same way the resize chose it: when
// the height ratio is larger the width filled the canvas, so the vertical padding is removed
// and every edge is divided by the width ratio. The other case is symmetric.
func (d CenterLetterbox) DecodeBox(box [BoxAttributes]float32, frameWidth, frameHeight int) images.Rect {
	nw := float32(d.NetworkWidth)
	nh := float32(d.NetworkHeight)
	fw := float32(frameWidth)
	fh := float32(frameHeight)

	rw := nw / fw
	rh := nh / fh

	cx, cy, w, h := box[0], box[1], box[2], box[3]
	left, right := cx-w/2, cx+w/2
	top, bottom := cy-h/2, cy+h/2

	if rh > rw {
		pad := (nh - rw*fh) / 2
		top -= pad
		bottom -= pad
		left, right, top, bottom = left/rw, right/rw, top/rw, bottom/rw
	} else {
		pad := (nw - rh*fw) / 2
		left -= pad
		right -= pad
		left, right, top, bottom = left/rh, right/rh, top/rh, bottom/rh
	}

	return clampBox(left, top, right, bottom, frameWidth, frameHeight)
}

// CornerNormalized decodes corner-form boxes given as fractions of the frame.
type CornerNormalized struct{}

// Convention implements BoxDecoder.
func (CornerNormalized) Convention() DecodeConvention {
	return ConventionCornerNormalized
}

// Validate implements BoxDecoder.
func (CornerNormalized) Validate() error {
	return nil
}

// DecodeBox implements BoxDecoder.
func (CornerNormalized) DecodeBox(box [BoxAttributes]float32, frameWidth, frameHeight int) images.Rect {
	fw := float32(frameWidth)
	fh := float32(frameHeight)
	return clampBox(box[0]*fw, box[1]*fh, box[2]*fw, box[3]*fh, frameWidth, frameHeight)
}

// NewBoxDecoder builds the decoder for a convention.
//
// Arguments:
//   - convention: The export convention of the model.
//   - networkWidth, networkHeight: The model input size, used by the letterbox convention.
//
// Returns:
//   - The decoder.
//   - An error matching common.ErrInvalidArgument for an unknown convention or invalid size.
//
// @example
// decoder, err := NewBoxDecoder(ConventionCenterLetterbox, 640, 640)
func NewBoxDecoder(convention DecodeConvention, networkWidth, networkHeight int) (BoxDecoder, error) {
	var d BoxDecoder
	switch convention {
	case ConventionCenterLetterbox:
		d = CenterLetterbox{NetworkWidth: networkWidth, NetworkHeight: networkHeight}
	case ConventionCornerNormalized:
		d = CornerNormalized{}
	default:
		return nil, common.InvalidArgument("unknown decode convention: %q", convention)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// clampBox clamps each edge to [0, dim-1], rounds it to the nearest pixel and returns the
// canonical box, so width and height are never negative.
func clampBox(left, top, right, bottom float32, frameWidth, frameHeight int) images.Rect {
	maxX := float32(frameWidth - 1)
	maxY := float32(frameHeight - 1)

	l := int(math32.Round(clamp(left, 0, maxX)))
	r := int(math32.Round(clamp(right, 0, maxX)))
	t := int(math32.Round(clamp(top, 0, maxY)))
	b := int(math32.Round(clamp(bottom, 0, maxY)))

	if r < l {
		l, r = r, l
	}
	if b < t {
		t, b = b, t
	}
	return images.Rect{X: l, Y: t, Width: r - l, Height: b - t}
}

// clamp restricts val to [lo, hi]. NaN clamps to lo.
func clamp(val, lo, hi float32) float32 {
	if !(val > lo) {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// DecodeCandidates scans the raw output and emits one candidate per anchor whose best class
// score exceeds confidenceThreshold.
//
// The tensor is never transposed. Class rows are walked contiguously while a per-anchor
// running maximum is kept, which yields the argmax with the lowest class id winning ties.
// Candidates are returned in anchor order.
//
// Arguments:
//   - t: The raw output tensor.
//   - frameWidth, frameHeight: The source image dimensions.
//   - confidenceThreshold: The minimum best-class score, exclusive, within [0, 1].
//   - decoder: The box decoding convention of the model.
//
// Returns:
//   - The candidates, possibly empty.
//   - An error matching common.ErrInvalidArgument on invalid arguments.
//
// @example
// candidates, err := DecodeCandidates(t, 1920, 1080, 0.5, CenterLetterbox{640, 640})
func DecodeCandidates(
	t *Tensor,
	frameWidth, frameHeight int,
	confidenceThreshold float32,
	decoder BoxDecoder,
) ([]Result, error) {
	if t == nil {
		return nil, common.InvalidArgument("tensor is nil")
	}
	if frameWidth <= 0 || frameHeight <= 0 {
		return nil, common.InvalidArgument("invalid frame dimensions: %dx%d", frameWidth, frameHeight)
	}
	if !(confidenceThreshold >= 0 && confidenceThreshold <= 1) {
		return nil, common.InvalidArgument("confidence threshold %v outside [0, 1]", confidenceThreshold)
	}
	if decoder == nil {
		return nil, common.InvalidArgument("box decoder is nil")
	}
	if err := decoder.Validate(); err != nil {
		return nil, err
	}

	n := t.Anchors()
	if n == 0 {
		return []Result{}, nil
	}
	best := make([]float32, n)
	bestClass := make([]int, n)
	copy(best, t.row(BoxAttributes))

	for c := 1; c < t.Classes(); c++ {
		for i, v := range t.row(BoxAttributes + c) {
			if v > best[i] {
				best[i] = v
				bestClass[i] = c
			}
		}
	}

	xs, ys, ws, hs := t.row(0), t.row(1), t.row(2), t.row(3)
	candidates := make([]Result, 0)
	for i, score := range best {
		if !(score > confidenceThreshold) {
			continue
		}
		box := [BoxAttributes]float32{xs[i], ys[i], ws[i], hs[i]}
		candidates = append(candidates, Result{
			Box:   decoder.DecodeBox(box, frameWidth, frameHeight),
			Score: score,
			Class: bestClass[i],
		})
	}

	return candidates, nil
}
