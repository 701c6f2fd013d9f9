// Package postprocess - provides Non-Maximum Suppression for detection results.
package postprocess

import (
	"sort"

	"github.com/nvr-ai/go-yolo/common"
	"github.com/nvr-ai/go-yolo/images"
)

// DefaultIoUThreshold is the overlap above which the lower scored box is suppressed.
const DefaultIoUThreshold = 0.5

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	// IoUThreshold is the overlap threshold for suppression, exclusive.
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold"`
	// ClassAware restricts suppression to boxes of the same class. All classes compete in one
	// pool when false.
	ClassAware bool `json:"class_aware" yaml:"class_aware"`
	// MaxDetections caps the number of accepted boxes. Zero means no cap.
	MaxDetections int `json:"max_detections" yaml:"max_detections"`
}

// DefaultNMSConfig returns class-agnostic suppression at DefaultIoUThreshold.
func DefaultNMSConfig() NMSConfig {
	return NMSConfig{IoUThreshold: DefaultIoUThreshold}
}

// Validate checks the config for unusable values.
func (c NMSConfig) Validate() error {
	if !(c.IoUThreshold >= 0 && c.IoUThreshold <= 1) {
		return common.InvalidArgument("iou threshold %v outside [0, 1]", c.IoUThreshold)
	}
	if c.MaxDetections < 0 {
		return common.InvalidArgument("max detections %d is negative", c.MaxDetections)
	}
	return nil
}

// ApplyGreedyNMS performs standard greedy Non-Maximum Suppression.
//
// Candidates are ranked by descending score, equal scores keeping their input order. Each
// candidate not yet suppressed is accepted and suppresses every later candidate whose IoU with
// it exceeds the threshold. The input slice is not modified.
//
// Arguments:
//   - candidates: Detections in decode order, already filtered by confidence.
//   - config: NMS configuration. Nil uses DefaultNMSConfig.
//
// Returns:
//   - Accepted detections in acceptance order. If no candidates are provided, returns nil.
func ApplyGreedyNMS(candidates []Result, config *NMSConfig) []Result {
	n := len(candidates)
	if n == 0 {
		return nil
	}
	if config == nil {
		def := DefaultNMSConfig()
		config = &def
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return candidates[order[a]].Score > candidates[order[b]].Score
	})

	filtered := make([]Result, 0, n)
	used := make([]bool, n)

	for i, idx := range order {
		if used[idx] {
			continue
		}
		if config.MaxDetections > 0 && len(filtered) >= config.MaxDetections {
			break
		}

		anchor := candidates[idx]
		filtered = append(filtered, anchor)
		used[idx] = true

		for _, other := range order[i+1:] {
			if used[other] {
				continue
			}
			if config.ClassAware && candidates[other].Class != anchor.Class {
				continue
			}
			if images.CalculateIoU(anchor.Box, candidates[other].Box) > config.IoUThreshold {
				used[other] = true
			}
		}
	}

	return filtered
}
