package inference

import (
	"os"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// LibraryPathEnv overrides the default onnxruntime shared library location.
const LibraryPathEnv = "ONNXRUNTIME_LIB"

var envMu sync.Mutex

// DefaultLibraryPath returns the onnxruntime shared library for the current platform.
//
// Returns:
//   - string: The value of LibraryPathEnv when set, otherwise the bundled library path.
//   - error: An error if the platform has no bundled library.
func DefaultLibraryPath() (string, error) {
	if path := os.Getenv(LibraryPathEnv); path != "" {
		return path, nil
	}
	switch runtime.GOOS {
	case "windows":
		if runtime.GOARCH == "amd64" {
			return "./third_party/onnxruntime.dll", nil
		}
	case "darwin":
		return "./third_party/libonnxruntime.dylib", nil
	case "linux":
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.so", nil
		}
		return "./third_party/onnxruntime.so", nil
	}
	return "", errors.Errorf("no onnxruntime library for %s/%s", runtime.GOOS, runtime.GOARCH)
}

// InitializeEnvironment loads the onnxruntime library once per process. Later calls are
// no-ops, whatever libraryPath they pass.
//
// Arguments:
//   - libraryPath: The shared library. Empty uses DefaultLibraryPath.
//
// Returns:
//   - error: An error if the library is missing or fails to initialize.
func InitializeEnvironment(libraryPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}

	if libraryPath == "" {
		path, err := DefaultLibraryPath()
		if err != nil {
			return err
		}
		libraryPath = path
	}
	if _, err := os.Stat(libraryPath); err != nil {
		return errors.Wrapf(err, "onnxruntime library not found at %s", libraryPath)
	}

	ort.SetSharedLibraryPath(libraryPath)
	if err := ort.InitializeEnvironment(); err != nil {
		return errors.Wrap(err, "error initializing ORT environment")
	}
	return nil
}
