package models

import (
	"github.com/nvr-ai/go-yolo/common"
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/yolov8"
)

// NewModel creates a new detection model instance based on the specified model name.
//
// This factory function is the entry point for model creation. It routes requests to the
// model-specific constructors and fills the label set of the model family when args carries
// none.
//
// Arguments:
//   - args: Configuration parameters specifying the model name, file and processing setup.
//
// Returns:
//   - model.Model: A configured model instance implementing the Model interface.
//   - error: An error if the model name is unsupported or the configuration is invalid.
//
// Example:
//
//	m, err := NewModel(model.NewModelArgs{
//	    Name:        model.ModelNameYOLOv8,
//	    Path:        "/models/yolov8n.onnx",
//	    Preprocess:  *preprocess.GetYOLOv8Config(640),
//	    Postprocess: postprocess.DefaultConfig(),
//	})
//	if err != nil {
//	    log.Fatalf("Failed to create detection model: %v", err)
//	}
func NewModel(args model.NewModelArgs) (model.Model, error) {
	switch args.Name {
	case model.ModelNameYOLOv8, model.ModelNameYOLO11:
		if args.Labels == nil {
			args.Labels = YOLOClasses.Labels()
		}
		m, err := yolov8.NewModel(args)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, common.InvalidArgument("unsupported model name: %s", args.Name)
	}
}
