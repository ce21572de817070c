// Package effects implements the lighting profiles.
package effects

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/robotalks/keylight/pkg/led"
)

// HueRange is the size of the hue wheel used by effects.
const HueRange = 192

// Palette is the set of basic colors shared by several profiles.
var Palette = []led.Color{
	led.Hex(0x9c0000),
	led.Hex(0x9c9900),
	led.Hex(0x1f9c00),
	led.Hex(0x00979c),
	led.Hex(0x003e9c),
	led.Hex(0x39009c),
	led.Hex(0x9c008f),
}

// ModKeys lists the key indices of modifier keys (Esc, Tab, Ctrl, Enter, ...)
// on the default 5x14 layout.
var ModKeys = []int{
	0, 13, 14, 28, 40, 41, 42, 54,
	55, 56, 57, 58, 59, 60, 61, 62,
	63, 64, 65, 66, 67, 68, 69,
}

// HSV converts a color on the effect hue wheel. hue is in [0, HueRange),
// sat and val are in [0, 255].
func HSV(hue, sat, val uint8) led.Color {
	h := float64(hue%HueRange) * 360 / HueRange
	r, g, b := colorful.Hsv(h, float64(sat)/255, float64(val)/255).RGB255()
	return led.RGB(r, g, b)
}

// Scale multiplies each channel by level/255.
func Scale(c led.Color, level uint8) led.Color {
	mul := func(v uint8) uint8 {
		return uint8(uint16(v) * uint16(level) / 255)
	}
	return led.RGB(mul(c.R), mul(c.G), mul(c.B))
}

// bounce moves v by *dir and reverses direction at the bounds.
func bounce(v uint8, dir *int, lo, hi uint8) uint8 {
	if v >= hi {
		*dir = -3
	} else if v <= lo {
		*dir = 3
	}
	return uint8(int(v) + *dir)
}
