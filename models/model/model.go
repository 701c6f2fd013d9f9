// Package model - Definitions shared by the detection model bindings.
package model

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/models/model/preprocess"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

// Family is the family of models.
type Family string

const (
	// ModelFamilyYOLO is the YOLO model family: zero-based COCO classes, no background.
	ModelFamilyYOLO Family = "yolo"
	// ModelFamilyCOCO is the COCO model family: "__background__" at index 0.
	ModelFamilyCOCO Family = "coco"
)

// Name is the unique identifier of a model.
type Name string

const (
	// ModelNameYOLOv8 is the name of the YOLOv8 model.
	ModelNameYOLOv8 Name = "yolov8"
	// ModelNameYOLO11 is the name of the YOLO11 model. It shares the YOLOv8 output layout.
	ModelNameYOLO11 Name = "yolo11"
)

// Labels maps class ids to human-readable names.
type Labels []string

// Label returns the name of class id, or unknown_<id> when the id has no name.
func (l Labels) Label(id int) string {
	if id < 0 || id >= len(l) {
		return fmt.Sprintf("unknown_%d", id)
	}
	return l[id]
}

// Detection is a single labelled detection in source image space.
type Detection struct {
	Box   images.Rect `json:"box" yaml:"box"`
	Score float32     `json:"score" yaml:"score"`
	Class int         `json:"class" yaml:"class"`
	Label string      `json:"label" yaml:"label"`
}

// Annotate attaches labels to every detection of out, keeping its order.
func (l Labels) Annotate(out *postprocess.Output) []Detection {
	if out == nil {
		return nil
	}
	detections := make([]Detection, out.Len())
	for i := range detections {
		detections[i] = Detection{
			Box:   out.Boxes[i],
			Score: out.Confidences[i],
			Class: out.ClassIDs[i],
			Label: l.Label(out.ClassIDs[i]),
		}
	}
	return detections
}

// Model binds the pre- and post-processing of one exported detection model.
type Model interface {
	// Name returns the model name.
	Name() Name
	// Family returns the label family of the model outputs.
	Family() Family
	// Path returns the path of the exported model file.
	Path() string
	// PreProcess letterboxes and normalizes img into the model input blob.
	PreProcess(img *images.Image) (*preprocess.PreprocessingResult, error)
	// PostProcess decodes one raw output into detections for a frameWidth x frameHeight frame.
	PostProcess(t *postprocess.Tensor, frameWidth, frameHeight int) (*postprocess.Output, error)
	// Detect post-processes one raw output and labels the detections.
	Detect(t *postprocess.Tensor, frameWidth, frameHeight int) ([]Detection, error)
	// Labels returns the class labels of the model outputs.
	Labels() Labels
}

// NewModelArgs is the arguments for creating a new model.
type NewModelArgs struct {
	Name Name   `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
	// Classes is the number of class scores per anchor. Zero skips the output check.
	Classes     int                    `json:"classes" yaml:"classes"`
	Preprocess  preprocess.ModelConfig `json:"preprocess" yaml:"preprocess"`
	Postprocess postprocess.Config     `json:"postprocess" yaml:"postprocess"`
	// Labels defaults to the label set of the model family.
	Labels Labels             `json:"labels" yaml:"labels"`
	Logger logrus.FieldLogger `json:"-" yaml:"-"`
}
