package colormap

import (
	"image"
	"image/color"
)

// Palette is a 256-entry RGB lookup table.
type Palette struct {
	name string
	lut  *[256][3]uint8
}

// Name returns the lowercase palette name, e.g. "inferno".
func (p Palette) Name() string {
	return p.name
}

// At returns the color for intensity v.
func (p Palette) At(v uint8) color.NRGBA {
	c := p.lut[v]
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: 0xff}
}

// Apply colorizes a grayscale image. The result has the same bounds as gray.
func (p Palette) Apply(gray *image.Gray) *image.NRGBA {
	b := gray.Bounds()
	out := image.NewNRGBA(b)
	w := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		src := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		dst := out.Pix[y*out.Stride : y*out.Stride+w*4]
		for x, v := range src {
			c := p.lut[v]
			d := dst[x*4 : x*4+4 : x*4+4]
			d[0], d[1], d[2], d[3] = c[0], c[1], c[2], 0xff
		}
	}
	return out
}
