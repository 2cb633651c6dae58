//go:build tflite

package depth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"

	tflite "github.com/mattn/go-tflite"
	"gorgonia.org/tensor"

	"github.com/smazurov/depthvideo/internal/logging"
)

// tfliteEstimator runs the model in-process. The interpreter is not safe
// for concurrent use.
type tfliteEstimator struct {
	mu          sync.Mutex
	model       *tflite.Model
	options     *tflite.InterpreterOptions
	interpreter *tflite.Interpreter
	inputShape  []int
}

func openTFLite(opts Options) (Estimator, error) {
	path := filepath.Join(opts.ModelsDir, opts.Encoder.Checkpoint()+".tflite")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelNotReady, err)
	}

	model := tflite.NewModelFromFile(path)
	if model == nil {
		return nil, fmt.Errorf("%w: failed to load %s", ErrModelNotReady, path)
	}

	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	logger := logging.GetLogger("depth").With("backend", BackendTFLite)
	options := tflite.NewInterpreterOptions()
	if options == nil {
		model.Delete()
		return nil, errors.New("interpreter options failed to be created")
	}
	options.SetNumThread(threads)
	options.SetErrorReporter(func(msg string, _ interface{}) {
		logger.Error(msg)
	}, nil)

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		options.Delete()
		model.Delete()
		return nil, fmt.Errorf("%w: failed to create interpreter", ErrModelNotReady)
	}

	logger.Info("Loaded tflite model", "path", path, "threads", threads)
	return &tfliteEstimator{model: model, options: options, interpreter: interpreter}, nil
}

// Estimate implements Estimator.
func (e *tfliteEstimator) Estimate(_ context.Context, input *tensor.Dense) (*Map, error) {
	shape, data, err := inputData(input)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !slices.Equal(shape, e.inputShape) {
		dims := make([]int32, len(shape))
		for i, d := range shape {
			dims[i] = int32(d)
		}
		if status := e.interpreter.ResizeInputTensor(0, dims); status != tflite.OK {
			return nil, fmt.Errorf("resizing input tensor to %v failed", shape)
		}
		if status := e.interpreter.AllocateTensors(); status != tflite.OK {
			return nil, errors.New("failed to allocate tensors")
		}
		e.inputShape = shape
	}

	if status := e.interpreter.GetInputTensor(0).CopyFromBuffer(data); status != tflite.OK {
		return nil, errors.New("copying to buffer failed")
	}
	if status := e.interpreter.Invoke(); status != tflite.OK {
		return nil, errors.New("invoke failed")
	}

	out := e.interpreter.GetOutputTensor(0)
	outShape := make([]int, out.NumDims())
	for i := range outShape {
		outShape[i] = out.Dim(i)
	}
	return mapFromOutput(outShape, out.Float32s())
}

// Close implements Estimator.
func (e *tfliteEstimator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interpreter.Delete()
	e.options.Delete()
	e.model.Delete()
	return nil
}
