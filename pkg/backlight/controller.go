// Package backlight wires the scheduler and the refresh engine to the
// hardware and gates the matrix power.
package backlight

import (
	"errors"
	"fmt"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/keylight/pkg/hal"
	"github.com/robotalks/keylight/pkg/led"
	"github.com/robotalks/keylight/pkg/matrix"
	"github.com/robotalks/keylight/pkg/profile"
)

// Options configures a Controller.
type Options struct {
	Layout   *hal.Layout
	GPIO     hal.GPIO
	Timer    hal.Timer
	Registry profile.Registry

	// Frequency is the refresh timer frequency in Hz.
	Frequency int
	// Limit is the number of timer ticks per column slot.
	Limit uint16
	// ResolutionShift reduces 8-bit colors to the PWM resolution.
	// nil selects matrix.DefaultResolutionShift, zero keeps 8 bits.
	ResolutionShift *uint8
}

// Controller owns the shared lighting state and the refresh timer.
// It implements command.Power.
type Controller struct {
	layout *hal.Layout
	gpio   hal.GPIO
	timer  hal.Timer
	freq   int

	guard  sync.Mutex
	layers *led.Layers
	sched  *profile.Scheduler
	engine *matrix.Engine

	lock    sync.Mutex
	powered bool
}

// New creates a Controller with the matrix switched off.
func New(opts Options) (*Controller, error) {
	if opts.Layout == nil || opts.GPIO == nil || opts.Timer == nil {
		return nil, errors.New("backlight: layout, GPIO and timer are required")
	}
	if len(opts.Registry) == 0 {
		return nil, errors.New("backlight: no profiles")
	}
	if err := opts.Layout.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		layout: opts.Layout,
		gpio:   opts.GPIO,
		timer:  opts.Timer,
		freq:   opts.Frequency,
	}
	if c.freq <= 0 {
		c.freq = matrix.DefaultFrequency
	}
	shift := uint8(matrix.DefaultResolutionShift)
	if opts.ResolutionShift != nil {
		shift = *opts.ResolutionShift
	}
	c.layers = led.NewLayers(len(opts.Layout.Rows), len(opts.Layout.Columns))
	c.sched = profile.NewScheduler(opts.Registry, c.layers, &c.guard)
	engine, err := matrix.New(matrix.Options{
		Layout:          opts.Layout,
		Layers:          c.layers,
		Source:          c.sched,
		Guard:           &c.guard,
		GPIO:            opts.GPIO,
		Limit:           opts.Limit,
		ResolutionShift: shift,
	})
	if err != nil {
		return nil, err
	}
	c.engine = engine
	c.setPowerLine(false)
	return c, nil
}

// Scheduler returns the profile scheduler.
func (c *Controller) Scheduler() *profile.Scheduler {
	return c.sched
}

// Layers returns the shared color layers.
func (c *Controller) Layers() *led.Layers {
	return c.layers
}

// Engine returns the refresh engine.
func (c *Controller) Engine() *matrix.Engine {
	return c.engine
}

// Layout returns the board layout.
func (c *Controller) Layout() *hal.Layout {
	return c.layout
}

// Enable implements command.Power. The active profile is activated again
// even when the matrix is already on.
func (c *Controller) Enable() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.sched.Activate()
	c.layers.SetStickyOnly(false)
	return c.powerOn()
}

// EnableStickyOnly implements command.Power. It has no effect when the
// matrix is already on.
func (c *Controller) EnableStickyOnly() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.powered {
		return nil
	}
	c.layers.SetStickyOnly(true)
	return c.powerOn()
}

// Disable implements command.Power.
func (c *Controller) Disable() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.powered {
		return nil
	}
	c.timer.Stop()
	c.engine.Reset()
	c.setPowerLine(false)
	c.layers.SetStickyOnly(false)
	c.powered = false
	glog.Info("backlight off")
	return nil
}

// Powered implements command.Power.
func (c *Controller) Powered() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.powered
}

// StickyOnly implements command.Power.
func (c *Controller) StickyOnly() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.powered && c.layers.StickyOnly()
}

// Close switches the matrix off.
func (c *Controller) Close() error {
	return c.Disable()
}

func (c *Controller) powerOn() error {
	if c.powered {
		return nil
	}
	c.setPowerLine(true)
	if err := c.timer.Start(c.freq, c.engine.Tick); err != nil {
		c.setPowerLine(false)
		return fmt.Errorf("start refresh timer: %v", err)
	}
	c.powered = true
	glog.Infof("backlight on (sticky only: %v)", c.layers.StickyOnly())
	return nil
}

func (c *Controller) setPowerLine(on bool) {
	if c.layout.Power != nil {
		c.gpio.Set(*c.layout.Power, on)
	}
}
