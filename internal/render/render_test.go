package render

import (
	"image"
	"image/color"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/smazurov/depthvideo/internal/colormap"
	"github.com/smazurov/depthvideo/internal/depth"
)

func TestResizeBilinearIdentity(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	got := ResizeBilinear(m, 2, 3)
	if !mat.Equal(got, m) {
		t.Errorf("got %v, want %v", mat.Formatted(got), mat.Formatted(m))
	}
}

func TestResizeBilinearUpsample(t *testing.T) {
	// 1x2 -> 1x4 with half-pixel centers:
	// src x = (d+0.5)/2 - 0.5 = -0.25, 0.25, 0.75, 1.25 -> 0, 0.25, 0.75, 1 (clamped)
	m := mat.NewDense(1, 2, []float64{0, 4})
	got := ResizeBilinear(m, 1, 4)
	want := mat.NewDense(1, 4, []float64{0, 1, 3, 4})
	if !mat.EqualApprox(got, want, 1e-12) {
		t.Errorf("got %v, want %v", mat.Formatted(got), mat.Formatted(want))
	}
}

func TestResizeBilinearDownsample(t *testing.T) {
	// 1x4 -> 1x2: src x = 0.5, 2.5
	m := mat.NewDense(1, 4, []float64{0, 2, 4, 6})
	got := ResizeBilinear(m, 1, 2)
	want := mat.NewDense(1, 2, []float64{1, 5})
	if !mat.EqualApprox(got, want, 1e-12) {
		t.Errorf("got %v, want %v", mat.Formatted(got), mat.Formatted(want))
	}
}

func TestNormalizeEndpoints(t *testing.T) {
	m := mat.NewDense(1, 4, []float64{10, 200, 105, 57.5})
	got := Normalize(m)
	want := []uint8{0, 255, 127, 63}
	for i, w := range want {
		if got.Pix[i] != w {
			t.Errorf("pix[%d] = %d, want %d", i, got.Pix[i], w)
		}
	}
}

func TestNormalizeDegenerate(t *testing.T) {
	tests := []struct {
		name string
		m    *mat.Dense
	}{
		{"constant", mat.NewDense(3, 3, []float64{5, 5, 5, 5, 5, 5, 5, 5, 5})},
		{"single pixel", mat.NewDense(1, 1, []float64{42})},
		{"all nan", mat.NewDense(1, 2, []float64{math.NaN(), math.NaN()})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.m)
			for i, v := range got.Pix {
				if v != 0 {
					t.Errorf("pix[%d] = %d, want 0", i, v)
				}
			}
		})
	}
}

func TestNormalizeSkipsNonFinite(t *testing.T) {
	m := mat.NewDense(1, 4, []float64{0, math.Inf(1), 10, math.NaN()})
	got := Normalize(m)
	want := []uint8{0, 0, 255, 0}
	for i, w := range want {
		if got.Pix[i] != w {
			t.Errorf("pix[%d] = %d, want %d", i, got.Pix[i], w)
		}
	}
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestRenderSideBySide(t *testing.T) {
	frame := solid(640, 480, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	m := depth.NewMap(2, 2, []float64{0, 1, 2, 3})
	p := colormap.Resolve("inferno")

	out, err := Render(m, 480, 640, frame, p, false)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 1330 || b.Dy() != 480 {
		t.Fatalf("size = %dx%d, want 1330x480", b.Dx(), b.Dy())
	}
	if got := out.NRGBAAt(5, 5); got != frame.NRGBAAt(5, 5) {
		t.Errorf("left pixel = %v, want frame pixel", got)
	}
	for _, x := range []int{640, 664, 689} {
		if got := out.NRGBAAt(x, 100); got != (color.NRGBA{255, 255, 255, 255}) {
			t.Errorf("margin pixel x=%d = %v, want white", x, got)
		}
	}
	// Top-left of the depth map is the minimum, bottom-right the maximum.
	if got := out.NRGBAAt(690, 0); got != p.At(0) {
		t.Errorf("depth min pixel = %v, want %v", got, p.At(0))
	}
	if got := out.NRGBAAt(1329, 479); got != p.At(255) {
		t.Errorf("depth max pixel = %v, want %v", got, p.At(255))
	}
}

func TestRenderOnlyDepth(t *testing.T) {
	m := depth.NewMap(1, 1, []float64{5})
	p := colormap.Resolve("jet")

	out, err := Render(m, 4, 6, nil, p, true)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 6 || b.Dy() != 4 {
		t.Fatalf("size = %dx%d, want 6x4", b.Dx(), b.Dy())
	}
	if got := out.NRGBAAt(3, 2); got != p.At(0) {
		t.Errorf("degenerate pixel = %v, want %v", got, p.At(0))
	}
}

func TestRenderErrors(t *testing.T) {
	p := colormap.Inferno
	m := depth.NewMap(1, 1, []float64{1})

	if _, err := Render(nil, 4, 4, nil, p, true); err == nil {
		t.Error("nil map: expected error")
	}
	if _, err := Render(m, 0, 4, nil, p, true); err == nil {
		t.Error("zero height: expected error")
	}
	if _, err := Render(m, 4, 4, nil, p, false); err == nil {
		t.Error("missing frame: expected error")
	}
	if _, err := Render(m, 4, 4, solid(3, 4, color.NRGBA{A: 255}), p, false); err == nil {
		t.Error("frame size mismatch: expected error")
	}
}

func TestOutputWidth(t *testing.T) {
	if got := OutputWidth(640, false); got != 1330 {
		t.Errorf("OutputWidth(640, false) = %d, want 1330", got)
	}
	if got := OutputWidth(640, true); got != 640 {
		t.Errorf("OutputWidth(640, true) = %d, want 640", got)
	}
}
