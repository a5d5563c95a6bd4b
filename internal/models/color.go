package models

import (
	"fmt"
	"math"
)

// Color is an sRGB approximation of a light's hue/saturation, used for
// color swatches
type Color struct {
	R, G, B uint8
}

// ColorFromHSB converts bridge hue (0-65535), saturation and brightness
// (0-254) to RGB. Out of range inputs are clamped.
func ColorFromHSB(hue, sat, bri int) Color {
	h := float64(clampInt(hue, 0, MaxHue)) / (MaxHue + 1) * 6
	s := float64(clampInt(sat, 0, MaxSaturation)) / MaxSaturation
	v := float64(clampInt(bri, 0, MaxBrightness)) / MaxBrightness

	chroma := v * s
	x := chroma * (1 - math.Abs(math.Mod(h, 2)-1))

	var r, g, b float64
	switch int(h) {
	case 0:
		r, g = chroma, x
	case 1:
		r, g = x, chroma
	case 2:
		g, b = chroma, x
	case 3:
		g, b = x, chroma
	case 4:
		r, b = x, chroma
	default:
		r, b = chroma, x
	}

	m := v - chroma
	return Color{R: channel(r + m), G: channel(g + m), B: channel(b + m)}
}

func channel(f float64) uint8 {
	return uint8(math.Round(math.Min(math.Max(f, 0), 1) * 255))
}

// Hex returns the color as "#RRGGBB"
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
