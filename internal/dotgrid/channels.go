// Package dotgrid implements the smallest printable units of a
// ColorSafe page: the per-dot color codec, the byte-carrying DotByte,
// and the row-level DotRow that a Sector tiles vertically.
package dotgrid

// ColorChannels is a single printable color as three channels in
// [0, 1]. Grayscale dots set all three channels equal.
type ColorChannels struct {
	R, G, B float64
}

// White is the background / "zero bits contribute nothing" color.
var White = ColorChannels{R: 1, G: 1, B: 1}

// AverageShade is the mean of the three channels, used throughout
// segmentation and shade-mode decoding as a brightness proxy.
func (c ColorChannels) AverageShade() float64 {
	return (c.R + c.G + c.B) / 3
}

// scaleBy multiplies each channel by s, as encodePrimary does to
// apply a shared shade to a base color.
func (c ColorChannels) scaleBy(s float64) ColorChannels {
	return ColorChannels{R: c.R * s, G: c.G * s, B: c.B * s}
}
