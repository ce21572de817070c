package led

import "sync/atomic"

// Layers is the full color state of the board. Composite priority is
// foreground > sticky > mask > base.
type Layers struct {
	Base   *Buffer
	Mask   *Buffer
	Sticky *Buffer

	foreground    atomic.Uint32
	foregroundSet atomic.Bool
	stickyOnly    atomic.Bool
}

// NewLayers allocates all layers with the same geometry.
func NewLayers(rows, cols int) *Layers {
	return &Layers{
		Base:   NewBuffer(rows, cols),
		Mask:   NewBuffer(rows, cols),
		Sticky: NewBuffer(rows, cols),
	}
}

// SetForeground overrides the whole board with c.
func (l *Layers) SetForeground(c Color) {
	l.foreground.Store(c.Word())
	l.foregroundSet.Store(true)
}

// ClearForeground removes the whole-board override.
func (l *Layers) ClearForeground() {
	l.foregroundSet.Store(false)
}

// Foreground returns the whole-board override and whether it is active.
func (l *Layers) Foreground() (Color, bool) {
	if !l.foregroundSet.Load() {
		return Transparent, false
	}
	return FromWord(l.foreground.Load()), true
}

// SetStickyOnly limits the composite to sticky entries.
func (l *Layers) SetStickyOnly(en bool) {
	l.stickyOnly.Store(en)
}

// StickyOnly indicates only sticky entries are shown.
func (l *Layers) StickyOnly() bool {
	return l.stickyOnly.Load()
}

// HasSticky reports whether any sticky entry is set.
func (l *Layers) HasSticky() bool {
	return l.Sticky.Any(Color.IsSet)
}

// Composite returns the visible color of key i.
func (l *Layers) Composite(i int) Color {
	if l.stickyOnly.Load() {
		if c := l.Sticky.Get(i); c.IsSet() {
			return c
		}
		return Transparent
	}
	if c, ok := l.Foreground(); ok {
		return c
	}
	if c := l.Sticky.Get(i); c.IsSet() {
		return c
	}
	if c := l.Mask.Get(i); c.IsSet() {
		return c
	}
	return l.Base.Get(i)
}
