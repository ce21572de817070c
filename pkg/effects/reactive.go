package effects

import (
	"github.com/robotalks/keylight/pkg/led"
)

const reactiveDecay = 8

// Fade lights a pressed key and lets it fade out.
type Fade struct {
	levels []uint8
	colors []led.Color
	next   int
}

// Activate implements profile.Activator.
func (e *Fade) Activate(buf *led.Buffer) {
	e.levels = make([]uint8, buf.Len())
	e.colors = make([]led.Color, buf.Len())
	buf.Clear()
}

// KeyDown implements profile.KeyHandler.
func (e *Fade) KeyDown(buf *led.Buffer, row, col int) {
	i, ok := buf.Index(row, col)
	if !ok {
		return
	}
	if len(e.levels) != buf.Len() {
		e.Activate(buf)
	}
	e.levels[i], e.colors[i] = 0xff, Palette[e.next]
	e.next = (e.next + 1) % len(Palette)
	buf.Set(i, e.colors[i])
}

// Render implements profile.Renderer. It returns false once all keys are
// dark.
func (e *Fade) Render(buf *led.Buffer) bool {
	if len(e.levels) != buf.Len() {
		e.Activate(buf)
		return false
	}
	lit := false
	for i, level := range e.levels {
		if level == 0 {
			continue
		}
		if level > reactiveDecay {
			level -= reactiveDecay
			lit = true
		} else {
			level = 0
		}
		e.levels[i] = level
		buf.Set(i, Scale(e.colors[i], level))
	}
	return lit
}

// Pulse sends a ring out of a pressed key.
type Pulse struct {
	pulses []pulse
}

type pulse struct {
	row, col int
	radius   int
	color    led.Color
}

const pulseMaxRadius = led.DefaultCols

// Activate implements profile.Activator.
func (e *Pulse) Activate(buf *led.Buffer) {
	e.pulses = e.pulses[:0]
	buf.Clear()
}

// KeyDown implements profile.KeyHandler.
func (e *Pulse) KeyDown(buf *led.Buffer, row, col int) {
	if _, ok := buf.Index(row, col); !ok {
		return
	}
	c := Palette[len(e.pulses)%len(Palette)]
	e.pulses = append(e.pulses, pulse{row: row, col: col, color: c})
}

// Render implements profile.Renderer. It returns false once all rings have
// left the board.
func (e *Pulse) Render(buf *led.Buffer) bool {
	buf.Clear()
	active := e.pulses[:0]
	for _, p := range e.pulses {
		level := uint8(0xff - p.radius*0xff/pulseMaxRadius)
		c := Scale(p.color, level)
		for row := 0; row < buf.Rows(); row++ {
			for col := 0; col < buf.Cols(); col++ {
				if chebyshev(row-p.row, col-p.col) == p.radius {
					buf.SetAt(row, col, c)
				}
			}
		}
		if p.radius++; p.radius < pulseMaxRadius {
			active = append(active, p)
		}
	}
	e.pulses = active
	return len(e.pulses) > 0
}

func chebyshev(dr, dc int) int {
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	if dr > dc {
		return dr
	}
	return dc
}
