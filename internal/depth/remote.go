package depth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gorgonia.org/tensor"

	"github.com/smazurov/depthvideo/internal/logging"
)

const (
	remoteInputName = "input"
	remoteTimeout   = 60 * time.Second
)

type inferTensor struct {
	Name     string    `json:"name"`
	Shape    []int     `json:"shape"`
	Datatype string    `json:"datatype"`
	Data     []float32 `json:"data"`
}

type inferRequest struct {
	Inputs []inferTensor `json:"inputs"`
}

type inferResponse struct {
	ModelName string        `json:"model_name"`
	Outputs   []inferTensor `json:"outputs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// remoteEstimator talks to a KServe v2 inference server.
type remoteEstimator struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

func openRemote(ctx context.Context, opts Options) (Estimator, error) {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: remoteTimeout}
	}

	r := &remoteEstimator{
		baseURL:    strings.TrimRight(opts.ModelURL, "/"),
		model:      opts.Encoder.Checkpoint(),
		httpClient: client,
		logger:     logging.GetLogger("depth"),
	}
	if r.baseURL == "" {
		return nil, fmt.Errorf("%w: no model URL configured", ErrModelNotReady)
	}

	if err := r.checkReady(ctx); err != nil {
		return nil, err
	}

	r.logger.Info("Remote model ready", "url", r.baseURL, "model", r.model)
	return r, nil
}

// checkReady queries the model readiness endpoint.
func (r *remoteEstimator) checkReady(ctx context.Context) error {
	url := fmt.Sprintf("%s/v2/models/%s/ready", r.baseURL, r.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrModelNotReady, r.model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: status %d", ErrModelNotReady, r.model, resp.StatusCode)
	}
	return nil
}

// Estimate implements Estimator.
func (r *remoteEstimator) Estimate(ctx context.Context, input *tensor.Dense) (*Map, error) {
	shape, data, err := inputData(input)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(inferRequest{Inputs: []inferTensor{{
		Name:     remoteInputName,
		Shape:    shape,
		Datatype: "FP32",
		Data:     data,
	}}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal infer request: %w", err)
	}

	url := fmt.Sprintf("%s/v2/models/%s/infer", r.baseURL, r.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("infer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(msg, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("infer failed, status %d: %s", resp.StatusCode, e.Error)
		}
		return nil, fmt.Errorf("infer failed, status %d", resp.StatusCode)
	}

	var out inferResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode infer response: %w", err)
	}
	if len(out.Outputs) == 0 {
		return nil, fmt.Errorf("infer response has no outputs")
	}

	r.logger.Debug("Inference complete", "model", r.model, "shape", shape, "duration", time.Since(start))
	return mapFromOutput(out.Outputs[0].Shape, out.Outputs[0].Data)
}

// Close implements Estimator.
func (r *remoteEstimator) Close() error {
	r.httpClient.CloseIdleConnections()
	return nil
}
