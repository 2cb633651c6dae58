// Package preprocess turns decoded frames into the normalized tensor the
// depth model consumes.
package preprocess

import (
	"errors"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"gorgonia.org/tensor"
)

const (
	// NetSize is the nominal square input size of the network.
	NetSize = 518
	// Stride is the patch size every input dimension must be a multiple of.
	Stride = 14
)

// ErrEmptyFrame is returned for frames with no pixels.
var ErrEmptyFrame = errors.New("empty frame")

var (
	mean = [3]float32{0.485, 0.456, 0.406}
	std  = [3]float32{0.229, 0.224, 0.225}
)

// TargetSize returns the network input size for a w x h frame. The frame is
// scaled so that both sides reach at least NetSize while keeping its aspect
// ratio, then each side is snapped to a multiple of Stride.
func TargetSize(w, h int) (int, int) {
	scale := math.Max(float64(NetSize)/float64(h), float64(NetSize)/float64(w))
	return snap(scale*float64(w)), snap(scale*float64(h))
}

// snap rounds x to the nearest multiple of Stride (ties to even), or up to
// the next multiple if that would fall below NetSize.
func snap(x float64) int {
	y := int(math.RoundToEven(x/Stride)) * Stride
	if y < NetSize {
		y = int(math.Ceil(x/Stride)) * Stride
	}
	return y
}

// Preprocess resizes the frame with a bicubic filter, normalizes it with the
// ImageNet mean and std, and lays it out as a (1, 3, H, W) float32 tensor.
func Preprocess(frame image.Image) (*tensor.Dense, error) {
	b := frame.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, ErrEmptyFrame
	}

	w, h := TargetSize(b.Dx(), b.Dy())
	resized := imaging.Resize(frame, w, h, imaging.CatmullRom)

	plane := w * h
	data := make([]float32, 3*plane)
	for y := 0; y < h; y++ {
		row := resized.Pix[y*resized.Stride : y*resized.Stride+w*4]
		for x := 0; x < w; x++ {
			i := y*w + x
			for c := 0; c < 3; c++ {
				v := float32(row[x*4+c]) / 255
				data[c*plane+i] = (v - mean[c]) / std[c]
			}
		}
	}

	return tensor.New(tensor.WithShape(1, 3, h, w), tensor.WithBacking(data)), nil
}
