// Package colorutil provides shared color utilities for overlay rendering.
package colorutil

import (
	"image/color"
)

// Common overlay colors used throughout the application.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Red     = color.RGBA{R: 255, G: 60, B: 60, A: 255}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Gray    = color.RGBA{R: 180, G: 180, B: 180, A: 255}
)

// Lighten moves a color toward white by t in [0, 1].
func Lighten(c color.RGBA, t float64) color.RGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	lerp := func(v uint8) uint8 {
		return uint8(float64(v) + (255-float64(v))*t)
	}
	return color.RGBA{R: lerp(c.R), G: lerp(c.G), B: lerp(c.B), A: c.A}
}

// Darken moves a color toward black by t in [0, 1].
func Darken(c color.RGBA, t float64) color.RGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	scale := 1 - t
	return color.RGBA{
		R: uint8(float64(c.R) * scale),
		G: uint8(float64(c.G) * scale),
		B: uint8(float64(c.B) * scale),
		A: c.A,
	}
}
