// Package depth wraps the pretrained monocular depth model behind the
// Estimator interface.
//
// Two backends exist:
//   - remote: an inference server speaking the KServe v2 protocol over HTTP
//   - tflite: an in-process TensorFlow Lite interpreter (build tag "tflite")
package depth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

var (
	// ErrUnknownEncoder is returned for encoder names other than vits, vitb and vitl.
	ErrUnknownEncoder = errors.New("unknown encoder")
	// ErrUnknownBackend is returned for backend names Open does not know.
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrBackendUnavailable is returned when a backend is not compiled in.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrModelNotReady is returned when the model cannot serve requests.
	ErrModelNotReady = errors.New("model not ready")
)

// Backend names accepted by Open.
const (
	BackendRemote = "remote"
	BackendTFLite = "tflite"
)

// Map is a relative depth map at inference resolution, rows = H, cols = W.
type Map struct {
	*mat.Dense
}

// NewMap wraps values in row-major order. len(values) must equal rows*cols.
func NewMap(rows, cols int, values []float64) *Map {
	return &Map{Dense: mat.NewDense(rows, cols, values)}
}

// Estimator runs depth inference on a preprocessed (1, 3, H, W) tensor.
type Estimator interface {
	Estimate(ctx context.Context, input *tensor.Dense) (*Map, error)
	Close() error
}

// Encoder is the backbone size of the model.
type Encoder string

// Supported encoders.
const (
	EncoderSmall Encoder = "vits"
	EncoderBase  Encoder = "vitb"
	EncoderLarge Encoder = "vitl"
)

// DefaultEncoder is used when none is configured.
const DefaultEncoder = EncoderLarge

// ParseEncoder validates an encoder name.
func ParseEncoder(name string) (Encoder, error) {
	switch e := Encoder(strings.ToLower(strings.TrimSpace(name))); e {
	case EncoderSmall, EncoderBase, EncoderLarge:
		return e, nil
	case "":
		return DefaultEncoder, nil
	default:
		return "", fmt.Errorf("%w: %q (want vits, vitb or vitl)", ErrUnknownEncoder, name)
	}
}

// Checkpoint returns the pretrained checkpoint name, e.g. depth_anything_vitl14.
func (e Encoder) Checkpoint() string {
	return "depth_anything_" + string(e) + "14"
}

// Params returns the nominal parameter count in millions.
func (e Encoder) Params() float64 {
	switch e {
	case EncoderSmall:
		return 24.8
	case EncoderBase:
		return 97.5
	case EncoderLarge:
		return 335.3
	}
	return 0
}

// Options configures Open.
type Options struct {
	Backend   string
	Encoder   Encoder
	ModelURL  string       // remote: server base URL
	ModelsDir string       // tflite: directory holding <checkpoint>.tflite
	Threads   int          // tflite: interpreter threads, 0 = all CPUs
	Client    *http.Client // remote: nil = default client with timeout
}

// Open loads the model for the configured backend. Errors are fatal to the run.
func Open(ctx context.Context, opts Options) (Estimator, error) {
	if opts.Encoder == "" {
		opts.Encoder = DefaultEncoder
	}
	if _, err := ParseEncoder(string(opts.Encoder)); err != nil {
		return nil, err
	}

	switch strings.ToLower(opts.Backend) {
	case "", BackendRemote:
		return openRemote(ctx, opts)
	case BackendTFLite:
		return openTFLite(opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

// mapFromOutput converts a (1, H, W), (1, 1, H, W) or (H, W) float output.
func mapFromOutput(shape []int, data []float32) (*Map, error) {
	dims := make([]int, 0, len(shape))
	for i, d := range shape {
		// Leading singleton axes are batch and channel.
		if d == 1 && len(shape)-i > 2 {
			continue
		}
		dims = append(dims, d)
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("unexpected output shape %v", shape)
	}

	rows, cols := dims[0], dims[1]
	if rows <= 0 || cols <= 0 || len(data) != rows*cols {
		return nil, fmt.Errorf("output shape %v does not match %d values", shape, len(data))
	}

	values := make([]float64, len(data))
	for i, v := range data {
		values[i] = float64(v)
	}
	return NewMap(rows, cols, values), nil
}

// inputData checks that t is a (1, 3, H, W) float32 tensor and returns its backing.
func inputData(t *tensor.Dense) ([]int, []float32, error) {
	shape := []int(t.Shape())
	if len(shape) != 4 || shape[0] != 1 || shape[1] != 3 {
		return nil, nil, fmt.Errorf("unexpected input shape %v", shape)
	}
	data, ok := t.Data().([]float32)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected input type %T", t.Data())
	}
	return shape, data, nil
}
