package effects

import (
	"github.com/robotalks/keylight/pkg/led"
)

// RainbowScroll moves the vertical rainbow by one column per frame.
type RainbowScroll struct {
	offset int
}

// Render implements profile.Renderer.
func (e *RainbowScroll) Render(buf *led.Buffer) bool {
	for col := 0; col < buf.Cols(); col++ {
		buf.FillColumn(col, Palette[(col+e.offset)%len(Palette)])
	}
	e.offset = (e.offset + 1) % len(Palette)
	return true
}

// hueSkip is the part of the hue wheel that flow and waterfall jump over.
const (
	hueSkipFrom = 179
	hueSkipTo   = 240
)

func advanceHue(v uint8) uint8 {
	if v >= hueSkipFrom && v < hueSkipTo {
		v = hueSkipTo
	}
	return v + 3
}

// Flow moves a rainbow across the columns.
type Flow struct {
	hues []uint8
}

// Activate implements profile.Activator.
func (e *Flow) Activate(buf *led.Buffer) {
	e.hues = make([]uint8, buf.Cols())
	for n := range e.hues {
		e.hues[n] = uint8(n * 11)
	}
}

// Render implements profile.Renderer.
func (e *Flow) Render(buf *led.Buffer) bool {
	if len(e.hues) != buf.Cols() {
		e.Activate(buf)
	}
	for col, hue := range e.hues {
		buf.FillColumn(col, HSV(hue, 255, 125))
		e.hues[col] = advanceHue(hue)
	}
	return true
}

// Waterfall moves a rainbow across the rows.
type Waterfall struct {
	hues []uint8
}

// Activate implements profile.Activator.
func (e *Waterfall) Activate(buf *led.Buffer) {
	e.hues = make([]uint8, buf.Rows())
	for n := range e.hues {
		e.hues[n] = uint8(n * 10)
	}
}

// Render implements profile.Renderer.
func (e *Waterfall) Render(buf *led.Buffer) bool {
	if len(e.hues) != buf.Rows() {
		e.Activate(buf)
	}
	for row, hue := range e.hues {
		buf.FillRow(row, HSV(hue, 255, 125))
		e.hues[row] = advanceHue(hue)
	}
	return true
}

// Breathing fades the whole board green in and out.
type Breathing struct {
	value uint8
	dir   int
}

// Activate implements profile.Activator.
func (e *Breathing) Activate(buf *led.Buffer) {
	e.value, e.dir = 180, -3
}

// Render implements profile.Renderer.
func (e *Breathing) Render(buf *led.Buffer) bool {
	buf.Fill(HSV(85, 255, e.value))
	e.value = bounce(e.value, &e.dir, 2, 180)
	return true
}

// Spectrum cycles the whole board through the hue wheel and back.
type Spectrum struct {
	hue uint8
	dir int
}

// Activate implements profile.Activator.
func (e *Spectrum) Activate(buf *led.Buffer) {
	e.hue, e.dir = 2, 3
}

// Render implements profile.Renderer.
func (e *Spectrum) Render(buf *led.Buffer) bool {
	buf.Fill(HSV(e.hue, 255, 125))
	e.hue = bounce(e.hue, &e.dir, 2, 177)
	return true
}

var waveStart = []uint8{0, 0, 0, 10, 15, 20, 25, 40, 55, 75, 100, 115, 135, 140}

// Wave sends a brightness wave across the columns.
type Wave struct {
	values []uint8
	dirs   []int
}

// Activate implements profile.Activator.
func (e *Wave) Activate(buf *led.Buffer) {
	cols := buf.Cols()
	e.values, e.dirs = make([]uint8, cols), make([]int, cols)
	for n := range e.values {
		e.values[n] = waveStart[n%len(waveStart)]
		e.dirs[n] = 3
	}
}

// Render implements profile.Renderer.
func (e *Wave) Render(buf *led.Buffer) bool {
	if len(e.values) != buf.Cols() {
		e.Activate(buf)
	}
	for col := range e.values {
		if e.values[col] >= 140 {
			e.dirs[col] = -3
		} else if e.values[col] <= 10 {
			e.dirs[col] = 3
		}
		buf.FillColumn(col, HSV(190, 255, e.values[col]))
		e.values[col] = uint8(int(e.values[col]) + e.dirs[col])
	}
	return true
}
