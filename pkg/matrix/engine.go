// Package matrix drives the LED matrix with software PWM.
package matrix

import (
	"errors"
	"sync/atomic"

	"github.com/robotalks/keylight/pkg/hal"
	"github.com/robotalks/keylight/pkg/led"
	"github.com/robotalks/keylight/pkg/profile"
)

// Defaults of the refresh timing. With an 80kHz timer a column slot lasts
// 80 ticks and the 14 columns are scanned at about 71Hz.
const (
	DefaultFrequency       = 80000
	DefaultLimit           = 80
	DefaultResolutionShift = 2
)

// Source is the part of the profile scheduler used while refreshing.
// FlushRender and Animate are called with the guard held.
type Source interface {
	Intensity() uint8
	Cadence() profile.Cadence
	FlushRender()
	Animate()
}

// Options configures an Engine.
type Options struct {
	Layout *hal.Layout
	Layers *led.Layers
	Source Source
	Guard  profile.Guard
	GPIO   hal.GPIO

	// Limit is the number of ticks per column slot.
	Limit uint16
	// ResolutionShift reduces 8-bit colors to the PWM resolution.
	// It must not exceed MaxResolutionShift.
	ResolutionShift uint8
}

// MaxResolutionShift keeps at least one bit of color resolution.
const MaxResolutionShift = 7

// Engine scans the matrix one column at a time. Tick is the only entry
// point on the refresh path and never blocks.
type Engine struct {
	layout *hal.Layout
	layers *led.Layers
	source Source
	guard  profile.Guard
	gpio   hal.GPIO
	limit  uint16
	shift  uint8
	full   uint32
	cols   int

	pwmCounter uint16
	column     int
	rowTimes   []uint16
	rowLit     []bool
	rowsLit    int
	animTicks  uint16
	epoch      uint32
	scanning   bool

	missed atomic.Uint64
	sweeps atomic.Uint64
}

// New creates an Engine in the reset state.
func New(opts Options) (*Engine, error) {
	if opts.Layout == nil || opts.Layers == nil || opts.Source == nil || opts.Guard == nil || opts.GPIO == nil {
		return nil, errors.New("matrix: incomplete options")
	}
	if len(opts.Layout.Columns) != opts.Layers.Base.Cols() || len(opts.Layout.Rows) != opts.Layers.Base.Rows() {
		return nil, errors.New("matrix: layout does not match buffer geometry")
	}
	if opts.ResolutionShift > MaxResolutionShift {
		return nil, errors.New("matrix: resolution shift out of range")
	}
	e := &Engine{
		layout: opts.Layout,
		layers: opts.Layers,
		source: opts.Source,
		guard:  opts.Guard,
		gpio:   opts.GPIO,
		limit:  opts.Limit,
		shift:  opts.ResolutionShift,
		full:   0xff >> opts.ResolutionShift,
		cols:   len(opts.Layout.Columns),
	}
	if e.limit == 0 {
		e.limit = DefaultLimit
	}
	e.rowTimes = make([]uint16, len(opts.Layout.Rows)*3)
	e.rowLit = make([]bool, len(e.rowTimes))
	e.Reset()
	return e, nil
}

// Limit returns the number of ticks per column slot.
func (e *Engine) Limit() uint16 {
	return e.limit
}

// ResolutionShift returns the number of color bits dropped for PWM.
func (e *Engine) ResolutionShift() uint8 {
	return e.shift
}

// OnTime is the number of ticks a channel of value v is lit in its column
// slot. The value is reduced to the PWM resolution and scaled to the slot,
// then halved per intensity level rounding up, so a lit channel stays lit
// at every level. It never exceeds the limit.
func (e *Engine) OnTime(v, intensity uint8) uint16 {
	q := uint32(v >> e.shift)
	if q == 0 {
		return 0
	}
	den := e.full << intensity
	t := (q*uint32(e.limit) + den - 1) / den
	if t > uint32(e.limit) {
		t = uint32(e.limit)
	}
	return uint16(t)
}

// Missed returns the number of ticks skipped while the guard was held
// elsewhere.
func (e *Engine) Missed() uint64 {
	return e.missed.Load()
}

// Sweeps returns the number of started column sweeps.
func (e *Engine) Sweeps() uint64 {
	return e.sweeps.Load()
}

// Reset drives all matrix lines low and rewinds the stepper so the next
// tick starts a new sweep. The timer must be stopped.
func (e *Engine) Reset() {
	for _, line := range e.layout.Columns {
		e.gpio.Set(line, false)
	}
	for _, r := range e.layout.Rows {
		for ch := 0; ch < 3; ch++ {
			e.gpio.Set(r.Channel(ch), false)
		}
	}
	for n := range e.rowTimes {
		e.rowTimes[n], e.rowLit[n] = 0, false
	}
	e.rowsLit, e.animTicks = 0, 0
	e.scanning = false
	e.column = e.cols - 1
	e.pwmCounter = e.limit - 1
}

// Tick advances the PWM by one step. A tick arriving while the guard is
// held elsewhere is dropped.
func (e *Engine) Tick() {
	if !e.guard.TryLock() {
		e.missed.Add(1)
		return
	}
	defer e.guard.Unlock()

	e.pwmCounter++
	if e.pwmCounter < e.limit {
		e.dimRows()
		return
	}

	e.source.FlushRender()
	cad := e.source.Cadence()
	if cad.Epoch != e.epoch {
		e.epoch, e.animTicks = cad.Epoch, 0
	}
	if cad.Skip > 0 && e.scanning && e.column == e.cols-1 {
		e.animTicks++
		if e.animTicks >= cad.Skip {
			e.animTicks = 0
			e.source.Animate()
		}
	}

	e.pwmCounter = 0
	e.scanning = true
	e.nextColumn()
}

func (e *Engine) dimRows() {
	if e.rowsLit == 0 {
		return
	}
	for n, t := range e.rowTimes {
		if !e.rowLit[n] || t != e.pwmCounter {
			continue
		}
		e.gpio.Set(e.rowLine(n), false)
		e.rowLit[n] = false
		e.rowsLit--
		if e.rowsLit == 0 {
			e.gpio.Set(e.layout.Columns[e.column], false)
		}
	}
}

func (e *Engine) nextColumn() {
	e.gpio.Set(e.layout.Columns[e.column], false)
	for n, lit := range e.rowLit {
		if lit {
			e.gpio.Set(e.rowLine(n), false)
			e.rowLit[n] = false
		}
	}

	e.column = (e.column + 1) % e.cols
	if e.column == 0 {
		e.sweeps.Add(1)
	}
	intensity := e.source.Intensity()
	e.rowsLit = 0
	for row := range e.layout.Rows {
		c := e.layers.Composite(row*e.cols + e.column)
		for ch := 0; ch < 3; ch++ {
			n := row*3 + ch
			t := e.OnTime(c.Channel(ch), intensity)
			e.rowTimes[n] = t
			if t > 0 {
				e.gpio.Set(e.rowLine(n), true)
				e.rowLit[n] = true
				e.rowsLit++
			}
		}
	}
	if e.rowsLit > 0 {
		e.gpio.Set(e.layout.Columns[e.column], true)
	}
}

func (e *Engine) rowLine(n int) hal.Line {
	return e.layout.Rows[n/3].Channel(n % 3)
}
