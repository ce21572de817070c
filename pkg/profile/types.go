// Package profile provides lighting profiles and the scheduler switching
// between them.
package profile

import (
	"github.com/robotalks/keylight/pkg/led"
)

// Renderer draws a profile into the base buffer. It returns false when no
// further update is needed until the next key event.
type Renderer interface {
	Render(buf *led.Buffer) bool
}

// KeyHandler is implemented by reactive profiles.
type KeyHandler interface {
	KeyDown(buf *led.Buffer, row, col int)
}

// Activator is implemented by profiles needing setup when selected.
type Activator interface {
	Activate(buf *led.Buffer)
}

// RenderFunc is the func form of Renderer.
type RenderFunc func(buf *led.Buffer) bool

// Render implements Renderer.
func (f RenderFunc) Render(buf *led.Buffer) bool {
	return f(buf)
}

// SpeedTiers is the number of animation speed tiers.
const SpeedTiers = 4

// Speeds lists the animation skip count per speed tier. A skip count is the
// number of column sweeps between two renders; 0 means static.
type Speeds [SpeedTiers]uint16

// Static is the Speeds of a non-animated profile.
var Static = Speeds{}

// Profile is an entry in the registry.
type Profile struct {
	Name   string
	Effect Renderer
	Speeds Speeds
}

// IsReactive indicates the profile handles key events.
func (p *Profile) IsReactive() bool {
	_, ok := p.Effect.(KeyHandler)
	return ok
}

// Registry is the fixed ordered list of profiles.
type Registry []Profile

// NewRegistry creates a Registry. At least one profile is required.
func NewRegistry(profiles ...Profile) Registry {
	if len(profiles) == 0 {
		panic("profile: empty registry")
	}
	for n := range profiles {
		if profiles[n].Effect == nil {
			panic("profile: " + profiles[n].Name + " has no effect")
		}
	}
	return Registry(profiles)
}

// Len returns the number of profiles.
func (r Registry) Len() int {
	return len(r)
}

// Names lists the profile names in order.
func (r Registry) Names() []string {
	names := make([]string, len(r))
	for n := range r {
		names[n] = r[n].Name
	}
	return names
}

// Guard is the lock shared between the command goroutine and the refresh
// callback. The callback must only use TryLock.
type Guard interface {
	Lock()
	Unlock()
	TryLock() bool
}
