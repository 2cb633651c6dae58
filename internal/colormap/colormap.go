package colormap

import (
	"slices"
	"strings"
)

// DefaultName is the palette used when a name is not recognized.
const DefaultName = "inferno"

var (
	palettes = func() map[string]Palette {
		m := make(map[string]Palette)
		for name, lut := range buildTables() {
			m[name] = Palette{name: name, lut: lut}
		}
		return m
	}()

	// Inferno is the default palette.
	Inferno = palettes[DefaultName]
)

// Lookup returns the palette for name, ignoring case.
func Lookup(name string) (Palette, bool) {
	p, ok := palettes[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Resolve returns the palette for name, ignoring case, or Inferno when the
// name is not supported.
func Resolve(name string) Palette {
	if p, ok := Lookup(name); ok {
		return p
	}
	return Inferno
}

// Names returns the supported palette names in sorted order.
func Names() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
