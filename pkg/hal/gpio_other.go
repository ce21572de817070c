//go:build !linux

package hal

import (
	"errors"
)

// ChipGPIO is only available on Linux.
type ChipGPIO struct{}

// OpenChip fails on platforms without the GPIO character device.
func OpenChip(layout *Layout) (*ChipGPIO, error) {
	return nil, errors.New("GPIO character device requires linux")
}

// Set implements GPIO.
func (g *ChipGPIO) Set(line Line, high bool) {}

// Errors returns the number of failed line updates.
func (g *ChipGPIO) Errors() uint32 { return 0 }

// Close implements Closer.
func (g *ChipGPIO) Close() error { return nil }
