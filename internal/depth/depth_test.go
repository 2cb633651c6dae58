package depth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

func TestParseEncoder(t *testing.T) {
	tests := []struct {
		input   string
		want    Encoder
		wantErr bool
	}{
		{"vits", EncoderSmall, false},
		{"vitb", EncoderBase, false},
		{"vitl", EncoderLarge, false},
		{"VITL", EncoderLarge, false},
		{"", DefaultEncoder, false},
		{"vitg", "", true},
		{"resnet", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseEncoder(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownEncoder) {
					t.Errorf("err = %v, want ErrUnknownEncoder", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseEncoder(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEncoderCheckpointAndParams(t *testing.T) {
	tests := []struct {
		enc        Encoder
		checkpoint string
		params     float64
	}{
		{EncoderSmall, "depth_anything_vits14", 24.8},
		{EncoderBase, "depth_anything_vitb14", 97.5},
		{EncoderLarge, "depth_anything_vitl14", 335.3},
	}
	for _, tt := range tests {
		if got := tt.enc.Checkpoint(); got != tt.checkpoint {
			t.Errorf("%s.Checkpoint() = %q, want %q", tt.enc, got, tt.checkpoint)
		}
		if got := tt.enc.Params(); got != tt.params {
			t.Errorf("%s.Params() = %v, want %v", tt.enc, got, tt.params)
		}
	}
}

func TestOpenRejectsBadOptions(t *testing.T) {
	ctx := context.Background()

	if _, err := Open(ctx, Options{Backend: "onnx"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("unknown backend: err = %v, want ErrUnknownBackend", err)
	}
	if _, err := Open(ctx, Options{Backend: BackendRemote, Encoder: "vitx"}); !errors.Is(err, ErrUnknownEncoder) {
		t.Errorf("unknown encoder: err = %v, want ErrUnknownEncoder", err)
	}
	if _, err := Open(ctx, Options{Backend: BackendRemote}); !errors.Is(err, ErrModelNotReady) {
		t.Errorf("missing url: err = %v, want ErrModelNotReady", err)
	}
}

func TestMapFromOutput(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6}
	want := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})

	for _, shape := range [][]int{{2, 3}, {1, 2, 3}, {1, 1, 2, 3}} {
		m, err := mapFromOutput(shape, data)
		if err != nil {
			t.Fatalf("shape %v: %v", shape, err)
		}
		if !mat.Equal(m.Dense, want) {
			t.Errorf("shape %v: got %v, want %v", shape, mat.Formatted(m.Dense), mat.Formatted(want))
		}
	}
}

func TestMapFromOutputRejectsMismatch(t *testing.T) {
	tests := []struct {
		name  string
		shape []int
		n     int
	}{
		{"wrong count", []int{2, 3}, 5},
		{"three spatial axes", []int{2, 2, 2}, 8},
		{"one axis", []int{6}, 6},
		{"zero size", []int{0, 3}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := mapFromOutput(tt.shape, make([]float32, tt.n)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestInputData(t *testing.T) {
	good := tensor.New(tensor.WithShape(1, 3, 2, 2), tensor.WithBacking(make([]float32, 12)))
	shape, data, err := inputData(good)
	if err != nil {
		t.Fatalf("inputData: %v", err)
	}
	if diff := cmp.Diff([]int{1, 3, 2, 2}, shape); diff != "" {
		t.Errorf("shape mismatch (-want +got):\n%s", diff)
	}
	if len(data) != 12 {
		t.Errorf("len(data) = %d, want 12", len(data))
	}

	bad := tensor.New(tensor.WithShape(3, 2, 2), tensor.WithBacking(make([]float32, 12)))
	if _, _, err := inputData(bad); err == nil {
		t.Error("expected error for 3-d tensor")
	}
}
