package gtext

import "image/color"

// Color represents a draw color with red, green, blue, and alpha
// components. Each component is in the range [0, 1].
type Color struct {
	R, G, B, A float64
}

// Transparent is fully transparent black, the usual background color
// for text drawn over existing content.
var Transparent = Color{}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b, A: 1.0}
}

// RGBA creates a color from RGBA components.
func RGBA(r, g, b, a float64) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// FromColor converts a standard color.Color to a Color.
func FromColor(c color.Color) Color {
	r, g, b, a := c.RGBA()
	return Color{
		R: float64(r) / 65535,
		G: float64(g) / 65535,
		B: float64(b) / 65535,
		A: float64(a) / 65535,
	}
}

// vec4 returns the color as a float32 vector for uniform upload.
func (c Color) vec4() [4]float32 {
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)}
}
