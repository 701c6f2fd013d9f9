// Package images - Image processing utilities
package images

import (
	"fmt"
	"image"
)

// Rect is an integer bounding box in image space.
type Rect struct {
	// X, Y are the top-left corner.
	X, Y int
	// Width, Height are the extent of the box, never negative for pipeline output.
	Width, Height int
}

// Right returns the exclusive right edge.
func (r Rect) Right() int {
	return r.X + r.Width
}

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

// Area returns the area in pixels. Boxes with a non-positive side have zero area.
func (r Rect) Area() int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Empty reports whether the box covers no pixels.
func (r Rect) Empty() bool {
	return r.Area() == 0
}

// ToRectangle converts the box to an image.Rectangle for use with the image packages.
func (r Rect) ToRectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.Right(), r.Bottom())
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// CalculateIoU returns the Intersection over Union of two boxes.
//
// IoU = Area of Intersection / Area of Union
//
//   - 1.0 means the boxes are identical.
//   - 0.0 means the boxes don't overlap, including boxes that only touch at an edge.
//
// The union is only zero when both boxes have zero area, in which case the IoU is 0 rather
// than NaN.
//
// Arguments:
//   - r: The first box.
//   - o: The other box.
//
// Returns:
//   - float32: A value between 0.0 and 1.0.
//
// Example Usage:
// ```go
//
//	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
//	b := Rect{X: 5, Y: 5, Width: 10, Height: 10}
//	iou := CalculateIoU(a, b) // 25 / 175 = 0.142857
//
// ```
func CalculateIoU(r, o Rect) float32 {
	ix1 := max(r.X, o.X)
	iy1 := max(r.Y, o.Y)
	ix2 := min(r.Right(), o.Right())
	iy2 := min(r.Bottom(), o.Bottom())

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	unionArea := r.Area() + o.Area() - interArea
	if unionArea <= 0 {
		return 0.0
	}

	return float32(interArea) / float32(unionArea)
}
