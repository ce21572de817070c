package hal

import (
	"errors"
	"fmt"
)

var (
	// ErrTimerRunning indicates the timer is already started.
	ErrTimerRunning = errors.New("timer already running")
	// ErrInvalidFrequency indicates a timer frequency is not positive.
	ErrInvalidFrequency = errors.New("invalid frequency")
)

// LayoutError reports an invalid board layout.
type LayoutError struct {
	Reason string
}

// Error implements error.
func (e *LayoutError) Error() string {
	return fmt.Sprintf("invalid layout: %s", e.Reason)
}
