// Package render turns depth maps into colorized video frames.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/smazurov/depthvideo/internal/colormap"
	"github.com/smazurov/depthvideo/internal/depth"
)

// MarginWidth is the width of the white separator in side-by-side output.
const MarginWidth = 50

// OutputWidth returns the composited frame width for a frame of the given width.
func OutputWidth(frameWidth int, onlyDepth bool) int {
	if onlyDepth {
		return frameWidth
	}
	return frameWidth*2 + MarginWidth
}

// ResizeBilinear resamples m to rows x cols using half-pixel centers
// (align_corners=False). Samples outside the source clamp to the edge.
func ResizeBilinear(m mat.Matrix, rows, cols int) *mat.Dense {
	inRows, inCols := m.Dims()
	out := mat.NewDense(rows, cols, nil)

	ys := axisWeights(inRows, rows)
	xs := axisWeights(inCols, cols)

	for y, wy := range ys {
		for x, wx := range xs {
			top := m.At(wy.i0, wx.i0)*(1-wx.t) + m.At(wy.i0, wx.i1)*wx.t
			bottom := m.At(wy.i1, wx.i0)*(1-wx.t) + m.At(wy.i1, wx.i1)*wx.t
			out.Set(y, x, top*(1-wy.t)+bottom*wy.t)
		}
	}
	return out
}

type sample struct {
	i0, i1 int
	t      float64
}

func axisWeights(in, out int) []sample {
	samples := make([]sample, out)
	scale := float64(in) / float64(out)
	for d := range samples {
		src := (float64(d)+0.5)*scale - 0.5
		if src < 0 {
			src = 0
		}
		i0 := int(src)
		if i0 > in-1 {
			i0 = in - 1
		}
		i1 := i0 + 1
		if i1 > in-1 {
			i1 = in - 1
		}
		samples[d] = sample{i0: i0, i1: i1, t: src - float64(i0)}
	}
	return samples
}

// Normalize min-max scales m into 8 bits: (v-min)/(max-min)*255, truncated.
// A constant map, or one with no finite values, becomes all zeros.
// Non-finite values map to 0 and do not take part in min/max.
func Normalize(m mat.Matrix) *image.Gray {
	rows, cols := m.Dims()
	out := image.NewGray(image.Rect(0, 0, cols, rows))

	finite := make([]float64, 0, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if v := m.At(y, x); !math.IsNaN(v) && !math.IsInf(v, 0) {
				finite = append(finite, v)
			}
		}
	}
	if len(finite) == 0 {
		return out
	}

	lo, hi := floats.Min(finite), floats.Max(finite)
	span := hi - lo
	if span == 0 {
		return out
	}

	for y := 0; y < rows; y++ {
		row := out.Pix[y*out.Stride : y*out.Stride+cols]
		for x := range row {
			v := m.At(y, x)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			row[x] = uint8((v - lo) / span * 255)
		}
	}
	return out
}

// Render resizes the depth map to the frame resolution, normalizes it,
// colorizes it with p and, unless onlyDepth is set, places it to the right
// of frame behind a white margin.
func Render(m *depth.Map, height, width int, frame image.Image, p colormap.Palette, onlyDepth bool) (*image.NRGBA, error) {
	if m == nil || m.Dense == nil {
		return nil, fmt.Errorf("render: nil depth map")
	}
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("render: invalid size %dx%d", width, height)
	}

	colored := p.Apply(Normalize(ResizeBilinear(m.Dense, height, width)))
	if onlyDepth {
		return colored, nil
	}

	if frame == nil {
		return nil, fmt.Errorf("render: side-by-side output needs the source frame")
	}
	if b := frame.Bounds(); b.Dx() != width || b.Dy() != height {
		return nil, fmt.Errorf("render: frame is %dx%d, want %dx%d", b.Dx(), b.Dy(), width, height)
	}
	return Composite(frame, colored), nil
}

// Composite returns [left | 50px white | right]. Both images must share a height.
func Composite(left, right image.Image) *image.NRGBA {
	lb, rb := left.Bounds(), right.Bounds()
	out := imaging.New(lb.Dx()+MarginWidth+rb.Dx(), lb.Dy(), color.White)
	out = imaging.Paste(out, left, image.Pt(0, 0))
	out = imaging.Paste(out, right, image.Pt(lb.Dx()+MarginWidth, 0))
	return out
}
