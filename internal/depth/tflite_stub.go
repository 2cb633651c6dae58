//go:build !tflite

package depth

import "fmt"

func openTFLite(Options) (Estimator, error) {
	return nil, fmt.Errorf("%w: %s (rebuild with -tags tflite)", ErrBackendUnavailable, BackendTFLite)
}
