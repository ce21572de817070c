// Package hal defines the hardware capabilities the controller needs and
// their implementations.
package hal

// Line identifies an output line, e.g. a GPIO offset on a chip.
type Line int

// GPIO drives output lines.
type GPIO interface {
	Set(line Line, high bool)
}

// Timer calls a function periodically.
// The function must not block.
type Timer interface {
	Start(hz int, tick func()) error
	Stop()
}

// Closer is implemented by hardware which must be released.
type Closer interface {
	Close() error
}
