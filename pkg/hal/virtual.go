package hal

import (
	"sync"
	"sync/atomic"
)

// VirtualGPIO keeps line levels in memory.
type VirtualGPIO struct {
	levels []atomic.Bool
}

// NewVirtualGPIO creates lines 0..lines-1, all low.
func NewVirtualGPIO(lines int) *VirtualGPIO {
	return &VirtualGPIO{levels: make([]atomic.Bool, lines)}
}

// NewVirtualGPIOFor creates enough lines for the layout.
func NewVirtualGPIOFor(layout *Layout) *VirtualGPIO {
	return NewVirtualGPIO(int(layout.MaxLine()) + 1)
}

// Set implements GPIO. Unknown lines are ignored.
func (g *VirtualGPIO) Set(line Line, high bool) {
	if line >= 0 && int(line) < len(g.levels) {
		g.levels[line].Store(high)
	}
}

// Level returns the current level of a line.
func (g *VirtualGPIO) Level(line Line) bool {
	if line >= 0 && int(line) < len(g.levels) {
		return g.levels[line].Load()
	}
	return false
}

// AnyHigh reports whether any line is driven high.
func (g *VirtualGPIO) AnyHigh() bool {
	for n := range g.levels {
		if g.levels[n].Load() {
			return true
		}
	}
	return false
}

// StepTimer is a Timer which only ticks when stepped explicitly.
type StepTimer struct {
	lock sync.Mutex
	hz   int
	tick func()
}

// Start implements Timer.
func (t *StepTimer) Start(hz int, tick func()) error {
	if hz <= 0 {
		return ErrInvalidFrequency
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.tick != nil {
		return ErrTimerRunning
	}
	t.hz, t.tick = hz, tick
	return nil
}

// Stop implements Timer.
func (t *StepTimer) Stop() {
	t.lock.Lock()
	t.hz, t.tick = 0, nil
	t.lock.Unlock()
}

// Running reports whether the timer is started.
func (t *StepTimer) Running() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.tick != nil
}

// Frequency returns the frequency passed to Start, or 0 when stopped.
func (t *StepTimer) Frequency() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.hz
}

// Step runs n ticks and returns the number actually run, which is 0 when
// the timer is stopped. Stop waits for a running Step.
func (t *StepTimer) Step(n int) int {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.tick == nil {
		return 0
	}
	for i := 0; i < n; i++ {
		t.tick()
	}
	return n
}
