//go:build linux

package hal

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/warthog618/go-gpiocdev"
)

// ChipGPIO drives lines of a GPIO character device.
type ChipGPIO struct {
	lock   sync.Mutex
	lines  map[Line]*gpiocdev.Line
	errors atomic.Uint32
}

// OpenChip requests all lines of the layout as outputs, driven low.
func OpenChip(layout *Layout) (*ChipGPIO, error) {
	g := &ChipGPIO{lines: make(map[Line]*gpiocdev.Line)}
	for _, offset := range layout.Lines() {
		line, err := gpiocdev.RequestLine(layout.Chip, int(offset), gpiocdev.AsOutput(0))
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("request line %s:%d: %v", layout.Chip, offset, err)
		}
		g.lines[offset] = line
	}
	glog.Infof("GPIO %s: %d lines requested", layout.Chip, len(g.lines))
	return g, nil
}

// Set implements GPIO.
func (g *ChipGPIO) Set(line Line, high bool) {
	l := g.lines[line]
	if l == nil {
		return
	}
	v := 0
	if high {
		v = 1
	}
	if err := l.SetValue(v); err != nil {
		g.errors.Add(1)
	}
}

// Errors returns the number of failed line updates.
func (g *ChipGPIO) Errors() uint32 {
	return g.errors.Load()
}

// Close implements Closer.
func (g *ChipGPIO) Close() error {
	g.lock.Lock()
	defer g.lock.Unlock()
	for offset, line := range g.lines {
		line.SetValue(0)
		line.Close()
		delete(g.lines, offset)
	}
	return nil
}
