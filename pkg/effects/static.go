package effects

import (
	"github.com/robotalks/keylight/pkg/led"
	"github.com/robotalks/keylight/pkg/profile"
)

// Solid lights every key with c.
func Solid(c led.Color) profile.Renderer {
	return profile.RenderFunc(func(buf *led.Buffer) bool {
		buf.Fill(c)
		return true
	})
}

// MiamiNights is teal with magenta modifier keys.
func MiamiNights() profile.Renderer {
	return profile.RenderFunc(func(buf *led.Buffer) bool {
		buf.Fill(Palette[3])
		for _, i := range ModKeys {
			if i < buf.Len() {
				buf.Set(i, Palette[6])
			}
		}
		return true
	})
}

// RainbowHorizontal gives each row a palette color.
func RainbowHorizontal() profile.Renderer {
	return profile.RenderFunc(func(buf *led.Buffer) bool {
		for row := 0; row < buf.Rows(); row++ {
			buf.FillRow(row, Palette[row%len(Palette)])
		}
		return true
	})
}

// RainbowVertical gives each column a palette color.
func RainbowVertical() profile.Renderer {
	return profile.RenderFunc(func(buf *led.Buffer) bool {
		for col := 0; col < buf.Cols(); col++ {
			buf.FillColumn(col, Palette[col%len(Palette)])
		}
		return true
	})
}
