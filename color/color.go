// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package color defines the Color value used throughout the light node
// protocol and its HSV conversions.
package color

import (
	"fmt"
	"math"
)

// Color is a 24-bit RGB pixel value with derived HSV accessors.
//
// Color is comparable and safe to use as a map key or to pass by value.
type Color struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

// Black is the zero Color.
var Black = Color{}

// White is full-intensity white.
var White = Color{Red: 0xFF, Green: 0xFF, Blue: 0xFF}

// RGB constructs a Color from 8-bit red, green, and blue components.
func RGB(r, g, b uint8) Color { return Color{Red: r, Green: g, Blue: b} }

// HSV constructs a Color from a hue in degrees [0, 360), a saturation in
// [0, 1], and a value in [0, 1].
//
// Values outside of these ranges are clamped (value, saturation) or
// normalized modulo 360 (hue). Construction from HSV is lossless within
// 8-bit per-channel rounding: c.HSV() on the result will not necessarily
// equal (hue, saturation, value) exactly, but HSV(c.HSV()) == c.
func HSV(hue, saturation, value float64) Color {
	hue = math.Mod(hue, 360)
	if hue < 0 {
		hue += 360
	}
	saturation = clamp01(saturation)
	value = clamp01(value)

	c := value * saturation
	x := c * (1 - math.Abs(math.Mod(hue/60, 2)-1))
	m := value - c

	var r, g, b float64
	switch {
	case hue < 60:
		r, g, b = c, x, 0
	case hue < 120:
		r, g, b = x, c, 0
	case hue < 180:
		r, g, b = 0, c, x
	case hue < 240:
		r, g, b = 0, x, c
	case hue < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return Color{
		Red:   to8(r + m),
		Green: to8(g + m),
		Blue:  to8(b + m),
	}
}

// HSV returns the hue (degrees, [0, 360)), saturation ([0, 1]), and value
// ([0, 1]) that describe c.
func (c Color) HSV() (hue, saturation, value float64) {
	r, g, b := float64(c.Red)/255, float64(c.Green)/255, float64(c.Blue)/255

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min

	value = max
	if max > 0 {
		saturation = delta / max
	}

	if delta == 0 {
		hue = 0
		return
	}

	switch max {
	case r:
		hue = 60 * math.Mod((g-b)/delta, 6)
	case g:
		hue = 60 * ((b-r)/delta + 2)
	case b:
		hue = 60 * ((r-g)/delta + 4)
	}
	if hue < 0 {
		hue += 360
	}
	return
}

// Hue returns the hue component of c, in degrees [0, 360).
func (c Color) Hue() float64 { h, _, _ := c.HSV(); return h }

// Saturation returns the HSV saturation component of c, in [0, 1].
func (c Color) Saturation() float64 { _, s, _ := c.HSV(); return s }

// Value returns the HSV value (brightness) component of c, in [0, 1].
func (c Color) Value() float64 { _, _, v := c.HSV(); return v }

// WithValue returns a copy of c with its HSV value replaced by value.
//
// This is the primitive that brightness-only directives use: it preserves
// hue and saturation exactly (within rounding) while rescaling intensity.
func (c Color) WithValue(value float64) Color {
	h, s, _ := c.HSV()
	return HSV(h, s, value)
}

func (c Color) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.Red, c.Green, c.Blue)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func to8(v float64) uint8 {
	v = clamp01(v)
	return uint8(math.Round(v * 255))
}
