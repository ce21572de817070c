package profile

import (
	"sync/atomic"

	"github.com/robotalks/keylight/pkg/led"
)

// IntensityLevels is the modulus of the intensity setting.
const IntensityLevels = 8

// Cadence describes when the active profile is animated. Epoch changes
// whenever the skip count is recomputed, so the refresh engine restarts its
// tick counter.
type Cadence struct {
	Skip  uint16
	Epoch uint32
}

// Scheduler owns the active profile, intensity and speed tier.
//
// Methods without a "Locked" note acquire the guard themselves and are meant
// for the command goroutine. FlushRender and Animate are called by the
// refresh engine while it holds the guard.
type Scheduler struct {
	registry Registry
	layers   *led.Layers
	guard    Guard

	index     int
	tier      int
	intensity atomic.Uint32
	cadence   atomic.Uint64
	manual    atomic.Bool

	renderPending bool
	suspended     bool
}

// NewScheduler creates a Scheduler on profile 0.
func NewScheduler(registry Registry, layers *led.Layers, guard Guard) *Scheduler {
	s := &Scheduler{registry: registry, layers: layers, guard: guard}
	s.updateCadence()
	return s
}

// Layers returns the color layers.
func (s *Scheduler) Layers() *led.Layers {
	return s.layers
}

// Registry returns the profiles.
func (s *Scheduler) Registry() Registry {
	return s.registry
}

// Do runs fn with the guard held so the refresh engine sees all its changes
// at once.
func (s *Scheduler) Do(fn func(*led.Layers)) {
	s.guard.Lock()
	defer s.guard.Unlock()
	fn(s.layers)
}

// Count returns the number of profiles.
func (s *Scheduler) Count() int {
	return s.registry.Len()
}

// Index returns the active profile index.
func (s *Scheduler) Index() int {
	s.guard.Lock()
	defer s.guard.Unlock()
	return s.index
}

// Tier returns the animation speed tier.
func (s *Scheduler) Tier() int {
	s.guard.Lock()
	defer s.guard.Unlock()
	return s.tier
}

// IsReactive indicates the active profile handles key events.
func (s *Scheduler) IsReactive() bool {
	s.guard.Lock()
	defer s.guard.Unlock()
	return s.registry[s.index].IsReactive()
}

// Intensity returns the dim shift, 0 being the brightest.
func (s *Scheduler) Intensity() uint8 {
	return uint8(s.intensity.Load())
}

// Cadence returns the current animation cadence.
func (s *Scheduler) Cadence() Cadence {
	v := s.cadence.Load()
	return Cadence{Skip: uint16(v), Epoch: uint32(v >> 32)}
}

// Select switches to profile i. Out of range indices are rejected.
func (s *Scheduler) Select(i int) bool {
	if i < 0 || i >= s.registry.Len() {
		return false
	}
	s.guard.Lock()
	defer s.guard.Unlock()
	s.switchTo(i)
	return true
}

// Next switches to the next profile, wrapping around.
func (s *Scheduler) Next() int {
	s.guard.Lock()
	defer s.guard.Unlock()
	s.switchTo((s.index + 1) % s.registry.Len())
	return s.index
}

// Prev switches to the previous profile, wrapping around.
func (s *Scheduler) Prev() int {
	s.guard.Lock()
	defer s.guard.Unlock()
	n := s.registry.Len()
	s.switchTo((s.index + n - 1) % n)
	return s.index
}

// Activate re-runs the switch sequence on the active profile, used when
// lighting is powered on.
func (s *Scheduler) Activate() {
	s.guard.Lock()
	defer s.guard.Unlock()
	s.switchTo(s.index)
}

// switchTo is the only profile switch path:
// assign index, clear foreground, run activation hook, recompute cadence.
func (s *Scheduler) switchTo(i int) {
	s.index = i
	s.layers.ClearForeground()
	if a, ok := s.registry[i].Effect.(Activator); ok {
		a.Activate(s.layers.Base)
	}
	s.updateCadence()
	s.renderPending = true
	s.suspended = false
}

func (s *Scheduler) updateCadence() {
	epoch := uint32(s.cadence.Load()>>32) + 1
	skip := s.registry[s.index].Speeds[s.tier]
	s.cadence.Store(uint64(epoch)<<32 | uint64(skip))
}

// NextIntensity steps the dim shift, wrapping at IntensityLevels.
func (s *Scheduler) NextIntensity() uint8 {
	s.guard.Lock()
	defer s.guard.Unlock()
	v := (s.intensity.Load() + 1) % IntensityLevels
	s.intensity.Store(v)
	return uint8(v)
}

// ResetIntensity restores full brightness.
func (s *Scheduler) ResetIntensity() {
	s.guard.Lock()
	defer s.guard.Unlock()
	s.intensity.Store(0)
}

// NextSpeed steps the speed tier, wrapping at SpeedTiers.
func (s *Scheduler) NextSpeed() int {
	s.guard.Lock()
	defer s.guard.Unlock()
	s.tier = (s.tier + 1) % SpeedTiers
	s.updateCadence()
	return s.tier
}

// ResetSpeed restores the slowest speed tier.
func (s *Scheduler) ResetSpeed() {
	s.guard.Lock()
	defer s.guard.Unlock()
	s.tier = 0
	s.updateCadence()
}

// SetManual enables or disables manual control. Under manual control no
// render is invoked, so direct color writes stay visible.
func (s *Scheduler) SetManual(en bool) {
	s.manual.Store(en)
}

// Manual indicates manual control.
func (s *Scheduler) Manual() bool {
	return s.manual.Load()
}

// SetForeground overrides the whole board and freezes animation.
func (s *Scheduler) SetForeground(c led.Color) {
	s.layers.SetForeground(c)
}

// ClearForeground removes the override. Static profiles are redrawn on the
// next refresh; reactive profiles start from a dark board.
func (s *Scheduler) ClearForeground() {
	s.guard.Lock()
	defer s.guard.Unlock()
	s.layers.ClearForeground()
	if s.Cadence().Skip == 0 {
		s.layers.Base.Clear()
		s.renderPending = true
	} else if s.registry[s.index].IsReactive() {
		s.layers.Base.Clear()
	}
}

// KeyDown forwards a key event to a reactive profile. It reports whether
// the event was delivered.
func (s *Scheduler) KeyDown(row, col int) bool {
	if _, ok := s.layers.Base.Index(row, col); !ok {
		return false
	}
	s.guard.Lock()
	defer s.guard.Unlock()
	h, ok := s.registry[s.index].Effect.(KeyHandler)
	if !ok {
		return false
	}
	h.KeyDown(s.layers.Base, row, col)
	s.suspended = false
	return true
}

// FlushRender runs a render requested by a profile switch. Locked.
func (s *Scheduler) FlushRender() {
	if !s.renderPending {
		return
	}
	s.renderPending = false
	s.render()
}

// Animate runs a scheduled animation render. It is skipped while the
// foreground is active, under manual control, or while a reactive profile
// has nothing to update. Locked.
func (s *Scheduler) Animate() {
	if _, fg := s.layers.Foreground(); fg || s.suspended {
		return
	}
	s.render()
}

func (s *Scheduler) render() {
	if s.manual.Load() {
		return
	}
	if !s.registry[s.index].Effect.Render(s.layers.Base) {
		s.suspended = true
	}
}
