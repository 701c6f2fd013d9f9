package inference

import (
	"strings"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nvr-ai/go-yolo/common"
)

// Provider represents an onnxruntime execution provider.
type Provider string

const (
	// CPUExecutionProvider uses the default CPU kernels.
	CPUExecutionProvider Provider = "cpu"
	// CUDAExecutionProvider uses NVIDIA CUDA for GPU acceleration.
	CUDAExecutionProvider Provider = "cuda"
	// CoreMLExecutionProvider uses Apple CoreML for macOS acceleration.
	CoreMLExecutionProvider Provider = "coreml"
	// OpenVINOExecutionProvider uses Intel OpenVINO.
	OpenVINOExecutionProvider Provider = "openvino"
)

// ParseProvider parses a provider name. Empty selects the CPU provider.
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	switch p {
	case "":
		return CPUExecutionProvider, nil
	case CPUExecutionProvider, CUDAExecutionProvider, CoreMLExecutionProvider, OpenVINOExecutionProvider:
		return p, nil
	default:
		return "", common.InvalidArgument("unknown execution provider: %q", name)
	}
}

// appendProvider enables provider p on options. The CPU provider needs no registration.
func appendProvider(options *ort.SessionOptions, p Provider) error {
	switch p {
	case CPUExecutionProvider:
		return nil
	case CoreMLExecutionProvider:
		return errors.Wrap(options.AppendExecutionProviderCoreML(0), "error enabling CoreML")
	case OpenVINOExecutionProvider:
		// See:
		// https://onnxruntime.ai/docs/execution-providers/OpenVINO-ExecutionProvider.html#summary-of-options
		err := options.AppendExecutionProviderOpenVINO(map[string]string{
			"device_type": "CPU",
			"precision":   "FP32",
		})
		return errors.Wrap(err, "error enabling OpenVINO")
	case CUDAExecutionProvider:
		cuda, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return errors.Wrap(err, "error creating CUDA options")
		}
		defer cuda.Destroy()
		if err := cuda.Update(map[string]string{"device_id": "0"}); err != nil {
			return errors.Wrap(err, "error updating CUDA options")
		}
		return errors.Wrap(options.AppendExecutionProviderCUDA(cuda), "error enabling CUDA")
	default:
		return common.InvalidArgument("unknown execution provider: %q", p)
	}
}
