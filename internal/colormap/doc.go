// Package colormap maps 8-bit intensities to RGB using the OpenCV colormap set.
//
// Each palette is a 256-entry lookup table built once at package
// initialization by interpolating a short list of color stops. Resolve
// never fails: unknown names fall back to Inferno.
package colormap
