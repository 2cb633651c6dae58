package colormap

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

type stop struct {
	pos float64
	c   colorful.Color
}

// hexStops spaces the colors evenly over [0, 1].
func hexStops(hexes ...string) []stop {
	stops := make([]stop, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("colormap: bad stop %q: %v", h, err))
		}
		stops[i] = stop{pos: float64(i) / float64(len(hexes)-1), c: c}
	}
	return stops
}

func rgb(pos, r, g, b float64) stop {
	return stop{pos: pos, c: colorful.Color{R: r, G: g, B: b}}
}

// interpolate builds a LUT by blending linearly in sRGB between stops.
// Stops must be sorted by position, starting at 0 and ending at 1.
func interpolate(stops []stop) *[256][3]uint8 {
	var lut [256][3]uint8
	seg := 0
	for i := range lut {
		t := float64(i) / 255
		for seg < len(stops)-2 && t > stops[seg+1].pos {
			seg++
		}
		a, b := stops[seg], stops[seg+1]
		var c colorful.Color
		switch {
		case t <= a.pos:
			c = a.c
		case t >= b.pos:
			c = b.c
		default:
			c = a.c.BlendRgb(b.c, (t-a.pos)/(b.pos-a.pos))
		}
		r, g, bl := c.Clamped().RGB255()
		lut[i] = [3]uint8{r, g, bl}
	}
	return &lut
}

// hueSweep walks the HSV hue circle from `from` to `to` degrees at full
// saturation and value.
func hueSweep(from, to float64) *[256][3]uint8 {
	var lut [256][3]uint8
	for i := range lut {
		h := from + (to-from)*float64(i)/255
		r, g, b := colorful.Hsv(math.Mod(h, 360), 1, 1).Clamped().RGB255()
		lut[i] = [3]uint8{r, g, b}
	}
	return &lut
}

// rotate shifts a LUT by n entries.
func rotate(src *[256][3]uint8, n int) *[256][3]uint8 {
	var lut [256][3]uint8
	for i := range lut {
		lut[i] = src[(i+n)%256]
	}
	return &lut
}

func buildTables() map[string]*[256][3]uint8 {
	twilight := interpolate(hexStops(
		"#e2d9e2", "#a5bccf", "#6f86c4", "#5e4aa6", "#2f1436",
		"#782a56", "#b5505a", "#d29b85", "#e2d9e2"))

	return map[string]*[256][3]uint8{
		"autumn": interpolate([]stop{rgb(0, 1, 0, 0), rgb(1, 1, 1, 0)}),
		"bone": interpolate([]stop{
			rgb(0, 0, 0, 0), rgb(0.375, 0.32, 0.32, 0.44),
			rgb(0.75, 0.65, 0.78, 0.78), rgb(1, 1, 1, 1),
		}),
		"jet": interpolate([]stop{
			rgb(0, 0, 0, 0.5), rgb(0.125, 0, 0, 1), rgb(0.375, 0, 1, 1),
			rgb(0.625, 1, 1, 0), rgb(0.875, 1, 0, 0), rgb(1, 0.5, 0, 0),
		}),
		"winter":  interpolate([]stop{rgb(0, 0, 0, 1), rgb(1, 0, 1, 0.5)}),
		"rainbow": hueSweep(0, 280),
		"ocean": interpolate([]stop{
			rgb(0, 0, 0.5, 0), rgb(1.0/3, 0, 0, 1.0/3),
			rgb(2.0/3, 0, 0.5, 2.0/3), rgb(1, 1, 1, 1),
		}),
		"summer": interpolate([]stop{rgb(0, 0, 0.5, 0.4), rgb(1, 1, 1, 0.4)}),
		"spring": interpolate([]stop{rgb(0, 1, 0, 1), rgb(1, 1, 1, 0)}),
		"cool":   interpolate([]stop{rgb(0, 0, 1, 1), rgb(1, 1, 0, 1)}),
		"hsv":    hueSweep(0, 360),
		"pink": interpolate([]stop{
			rgb(0, 0.12, 0, 0), rgb(0.375, 0.75, 0.5, 0.5),
			rgb(0.75, 0.9, 0.9, 0.7), rgb(1, 1, 1, 1),
		}),
		"hot": interpolate([]stop{
			rgb(0, 0.04, 0, 0), rgb(0.375, 1, 0, 0),
			rgb(0.75, 1, 1, 0), rgb(1, 1, 1, 1),
		}),
		"parula": interpolate(hexStops(
			"#352a87", "#0363e1", "#1485d4", "#06a7c6", "#38b99e",
			"#92bf73", "#d9ba56", "#fcce2e", "#f9fb0e")),
		"magma": interpolate(hexStops(
			"#000004", "#180f3e", "#451077", "#721f81", "#9f2f7f",
			"#cd4071", "#f1605d", "#fd9567", "#fec98d", "#fcfdbf")),
		"inferno": interpolate(hexStops(
			"#000004", "#1b0c41", "#4a0c6b", "#781c6d", "#a52c60",
			"#cf4446", "#ed6925", "#fb9b06", "#f7d13d", "#fcffa4")),
		"plasma": interpolate(hexStops(
			"#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786",
			"#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921")),
		"viridis": interpolate(hexStops(
			"#440154", "#482878", "#3e4989", "#31688e", "#26828e",
			"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725")),
		"cividis": interpolate(hexStops(
			"#00224e", "#123570", "#3b496c", "#575d6d", "#707173",
			"#8a8678", "#a59c74", "#c3b369", "#e1cc55", "#fee838")),
		"twilight":         twilight,
		"twilight_shifted": rotate(twilight, 128),
		"turbo": interpolate(hexStops(
			"#30123b", "#4662d7", "#36aaf9", "#1ae4b6", "#72fe5e",
			"#c7ef34", "#faba39", "#f66b19", "#ca2a04", "#7a0403")),
		"deepgreen": interpolate(hexStops(
			"#000000", "#002a0d", "#00591c", "#0f8a2b", "#4fb94a",
			"#9be37f", "#ffffff")),
	}
}
