package preprocess

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

func TestTargetSize(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{640, 480, 686, 518},
		{480, 640, 518, 686},
		{518, 518, 518, 518},
		{1920, 1080, 924, 518},
		{100, 100, 518, 518},
		{4000, 10, 207200, 518},
		{1, 1, 518, 518},
	}

	for _, tt := range tests {
		gotW, gotH := TargetSize(tt.w, tt.h)
		if gotW != tt.wantW || gotH != tt.wantH {
			t.Errorf("TargetSize(%d, %d) = %dx%d, want %dx%d", tt.w, tt.h, gotW, gotH, tt.wantW, tt.wantH)
		}
	}
}

func TestTargetSizeAlignment(t *testing.T) {
	for w := 16; w <= 2048; w += 37 {
		for h := 16; h <= 2048; h += 41 {
			tw, th := TargetSize(w, h)
			if tw%Stride != 0 || th%Stride != 0 {
				t.Fatalf("TargetSize(%d, %d) = %dx%d not a multiple of %d", w, h, tw, th, Stride)
			}
			if tw < NetSize || th < NetSize {
				t.Fatalf("TargetSize(%d, %d) = %dx%d below %d", w, h, tw, th, NetSize)
			}

			// Snapping moves each side by at most one stride, so the aspect
			// ratio stays within that tolerance of the original.
			scale := math.Max(float64(NetSize)/float64(h), float64(NetSize)/float64(w))
			if math.Abs(float64(tw)-scale*float64(w)) > Stride || math.Abs(float64(th)-scale*float64(h)) > Stride {
				t.Fatalf("TargetSize(%d, %d) = %dx%d drifts more than one stride", w, h, tw, th)
			}
		}
	}
}

func TestPreprocessShapeAndNormalization(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 48))
	fill := color.NRGBA{R: 255, G: 0, B: 128, A: 255}
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.SetNRGBA(x, y, fill)
		}
	}

	out, err := Preprocess(img)
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}

	shape := out.Shape()
	wantW, wantH := TargetSize(64, 48)
	if len(shape) != 4 || shape[0] != 1 || shape[1] != 3 || shape[2] != wantH || shape[3] != wantW {
		t.Fatalf("shape = %v, want [1 3 %d %d]", shape, wantH, wantW)
	}

	data, ok := out.Data().([]float32)
	if !ok {
		t.Fatalf("data type = %T, want []float32", out.Data())
	}

	plane := wantW * wantH
	want := [3]float32{
		(1 - mean[0]) / std[0],
		(0 - mean[1]) / std[1],
		(128.0/255 - mean[2]) / std[2],
	}
	// A uniform image stays uniform through the resize filter.
	for c := 0; c < 3; c++ {
		for _, i := range []int{0, plane / 2, plane - 1} {
			got := data[c*plane+i]
			if math.Abs(float64(got-want[c])) > 1e-5 {
				t.Errorf("channel %d index %d = %v, want %v", c, i, got, want[c])
			}
		}
	}
}

func TestPreprocessEmptyFrame(t *testing.T) {
	_, err := Preprocess(image.NewNRGBA(image.Rect(0, 0, 0, 10)))
	if !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("err = %v, want ErrEmptyFrame", err)
	}
}
