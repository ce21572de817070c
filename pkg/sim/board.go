// Package sim simulates the backlight hardware on a workstation.
package sim

import (
	"sync"

	"github.com/robotalks/keylight/pkg/hal"
	"github.com/robotalks/keylight/pkg/led"
)

// DefaultWindow is the number of column sweeps averaged into a frame.
const DefaultWindow = 8

// Board is a virtual LED matrix. It implements hal.GPIO and hal.Timer,
// wrapping another Timer, and integrates the light of every key channel
// over the refresh ticks into perceived colors.
type Board struct {
	*hal.VirtualGPIO

	layout *hal.Layout
	timer  hal.Timer
	cols   int
	window uint64

	lock   sync.Mutex
	energy []uint64
	ticks  uint64
	frame  []led.Color
	frames uint64
}

// NewBoard creates a Board for the column slot length (limit) of the
// refresh engine. window is in column sweeps; zero selects DefaultWindow.
func NewBoard(layout *hal.Layout, timer hal.Timer, limit uint16, window int) *Board {
	if window <= 0 {
		window = DefaultWindow
	}
	cols := len(layout.Columns)
	keys := cols * len(layout.Rows)
	return &Board{
		VirtualGPIO: hal.NewVirtualGPIOFor(layout),
		layout:      layout,
		timer:       timer,
		cols:        cols,
		window:      uint64(limit) * uint64(cols) * uint64(window),
		energy:      make([]uint64, keys*3),
		frame:       make([]led.Color, keys),
	}
}

// Layout returns the board layout.
func (b *Board) Layout() *hal.Layout {
	return b.layout
}

// Start implements hal.Timer.
func (b *Board) Start(hz int, tick func()) error {
	b.reset()
	return b.timer.Start(hz, func() {
		tick()
		b.sample()
	})
}

// Stop implements hal.Timer. The board goes dark.
func (b *Board) Stop() {
	b.timer.Stop()
	b.reset()
}

// Frame returns the colors perceived over the last completed window, in
// key index order.
func (b *Board) Frame() []led.Color {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]led.Color(nil), b.frame...)
}

// Frames returns the number of completed windows.
func (b *Board) Frames() uint64 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.frames
}

func (b *Board) reset() {
	b.lock.Lock()
	defer b.lock.Unlock()
	for n := range b.energy {
		b.energy[n] = 0
	}
	for n := range b.frame {
		b.frame[n] = led.Off
	}
	b.ticks = 0
}

func (b *Board) sample() {
	b.lock.Lock()
	defer b.lock.Unlock()
	for col, line := range b.layout.Columns {
		if !b.Level(line) {
			continue
		}
		for row, rl := range b.layout.Rows {
			base := (row*b.cols + col) * 3
			for ch := 0; ch < 3; ch++ {
				if b.Level(rl.Channel(ch)) {
					b.energy[base+ch]++
				}
			}
		}
	}
	b.ticks++
	if b.ticks >= b.window {
		b.complete()
	}
}

func (b *Board) complete() {
	// a key is driven 1/cols of the time, full scale lights the whole slot.
	for n := range b.frame {
		var ch [3]uint8
		for i := range ch {
			v := b.energy[n*3+i] * uint64(b.cols) * 255 / b.ticks
			if v > 255 {
				v = 255
			}
			ch[i] = uint8(v)
			b.energy[n*3+i] = 0
		}
		b.frame[n] = led.RGB(ch[0], ch[1], ch[2])
	}
	b.ticks = 0
	b.frames++
}
