// Package models - Model registry and output class label sets.
package models

import (
	"sync"

	"github.com/nvr-ai/go-yolo/common"
	"github.com/nvr-ai/go-yolo/models/model"
)

// OutputClass represents one detection label.
type OutputClass struct {
	// The integer index returned by the model.
	Index int
	// The human-readable label.
	Name string
}

// OutputClassSet ties a model family to its full list of labels.
type OutputClassSet struct {
	// Family of the models emitting these indices.
	Style model.Family
	// Classes ordered by index.
	Classes []OutputClass

	once      sync.Once
	nameToIdx map[string]int
}

// Label returns the name for index idx, or unknown_<idx> when idx has no name.
func (s *OutputClassSet) Label(idx int) string {
	if idx < 0 || idx >= len(s.Classes) {
		return model.Labels(nil).Label(idx)
	}
	return s.Classes[idx].Name
}

// Index returns the index of the class called name.
func (s *OutputClassSet) Index(name string) (int, error) {
	s.once.Do(func() {
		s.nameToIdx = make(map[string]int, len(s.Classes))
		for _, c := range s.Classes {
			s.nameToIdx[c.Name] = c.Index
		}
	})
	idx, ok := s.nameToIdx[name]
	if !ok {
		return -1, common.InvalidArgument("name %q not found in style %q", name, s.Style)
	}
	return idx, nil
}

// Labels returns the names ordered by index.
func (s *OutputClassSet) Labels() model.Labels {
	labels := make(model.Labels, len(s.Classes))
	for i, c := range s.Classes {
		labels[i] = c.Name
	}
	return labels
}

// COCOClasses is the full 80 COCO classes plus "__background__" at index 0.
var COCOClasses = &OutputClassSet{
	Style: model.ModelFamilyCOCO,
	Classes: []OutputClass{
		{0, "__background__"},
		{1, "person"},
		{2, "bicycle"},
		{3, "car"},
		{4, "motorcycle"},
		{5, "airplane"},
		{6, "bus"},
		{7, "train"},
		{8, "truck"},
		{9, "boat"},
		{10, "traffic light"},
		{11, "fire hydrant"},
		{12, "stop sign"},
		{13, "parking meter"},
		{14, "bench"},
		{15, "bird"},
		{16, "cat"},
		{17, "dog"},
		{18, "horse"},
		{19, "sheep"},
		{20, "cow"},
		{21, "elephant"},
		{22, "bear"},
		{23, "zebra"},
		{24, "giraffe"},
		{25, "backpack"},
		{26, "umbrella"},
		{27, "handbag"},
		{28, "tie"},
		{29, "suitcase"},
		{30, "frisbee"},
		{31, "skis"},
		{32, "snowboard"},
		{33, "sports ball"},
		{34, "kite"},
		{35, "baseball bat"},
		{36, "baseball glove"},
		{37, "skateboard"},
		{38, "surfboard"},
		{39, "tennis racket"},
		{40, "bottle"},
		{41, "wine glass"},
		{42, "cup"},
		{43, "fork"},
		{44, "knife"},
		{45, "spoon"},
		{46, "bowl"},
		{47, "banana"},
		{48, "apple"},
		{49, "sandwich"},
		{50, "orange"},
		{51, "broccoli"},
		{52, "carrot"},
		{53, "hot dog"},
		{54, "pizza"},
		{55, "donut"},
		{56, "cake"},
		{57, "chair"},
		{58, "couch"},
		{59, "potted plant"},
		{60, "bed"},
		{61, "dining table"},
		{62, "toilet"},
		{63, "tv"},
		{64, "laptop"},
		{65, "mouse"},
		{66, "remote"},
		{67, "keyboard"},
		{68, "cell phone"},
		{69, "microwave"},
		{70, "oven"},
		{71, "toaster"},
		{72, "sink"},
		{73, "refrigerator"},
		{74, "book"},
		{75, "clock"},
		{76, "vase"},
		{77, "scissors"},
		{78, "teddy bear"},
		{79, "hair drier"},
		{80, "toothbrush"},
	},
}

// YOLOClasses is the 80 COCO classes (no background).
// YOLO models index directly into this zero-based list.
var YOLOClasses = &OutputClassSet{
	Style: model.ModelFamilyYOLO,
	Classes: func() []OutputClass {
		classes := make([]OutputClass, len(COCOClasses.Classes)-1)
		for i, c := range COCOClasses.Classes[1:] {
			classes[i] = OutputClass{i, c.Name}
		}
		return classes
	}(),
}

// ClassSet returns the label set of a model family.
func ClassSet(family model.Family) (*OutputClassSet, error) {
	switch family {
	case model.ModelFamilyYOLO:
		return YOLOClasses, nil
	case model.ModelFamilyCOCO:
		return COCOClasses, nil
	default:
		return nil, common.InvalidArgument("style %q not registered", family)
	}
}
