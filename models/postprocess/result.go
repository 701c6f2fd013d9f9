// Package postprocess - Decoding, suppression and result types for YOLO detection outputs.
package postprocess

import "github.com/nvr-ai/go-yolo/images"

// Result represents a single detection result.
type Result struct {
	// The bounding box of the result in source image space.
	Box images.Rect
	// The confidence score of the result.
	Score float32
	// The predicted class index of the result.
	Class int
}

// Output is the final detection list as parallel slices, ordered by suppression acceptance
// (descending confidence).
type Output struct {
	Boxes       []images.Rect `json:"boxes" yaml:"boxes"`
	Confidences []float32     `json:"confidences" yaml:"confidences"`
	ClassIDs    []int         `json:"class_ids" yaml:"class_ids"`
}

func newOutput(results []Result) *Output {
	out := &Output{
		Boxes:       make([]images.Rect, 0, len(results)),
		Confidences: make([]float32, 0, len(results)),
		ClassIDs:    make([]int, 0, len(results)),
	}
	for _, r := range results {
		out.Boxes = append(out.Boxes, r.Box)
		out.Confidences = append(out.Confidences, r.Score)
		out.ClassIDs = append(out.ClassIDs, r.Class)
	}
	return out
}

// Len returns the number of detections.
func (o *Output) Len() int {
	return len(o.Boxes)
}

// Results zips the parallel slices back into results.
func (o *Output) Results() []Result {
	results := make([]Result, o.Len())
	for i := range results {
		results[i] = Result{Box: o.Boxes[i], Score: o.Confidences[i], Class: o.ClassIDs[i]}
	}
	return results
}
