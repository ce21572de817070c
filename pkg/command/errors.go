package command

import (
	"errors"
	"fmt"
)

var (
	// ErrShortPayload indicates the payload is too short for the command.
	ErrShortPayload = errors.New("payload too short")
	// ErrOutOfRange indicates a row, column or profile index is out of range.
	ErrOutOfRange = errors.New("out of range")
	// ErrNoResetter indicates no bootloader reset is available.
	ErrNoResetter = errors.New("bootloader reset not supported")
)

// UnknownCodeError reports a message with an unknown command code.
type UnknownCodeError struct {
	Code Code
}

// Error implements error.
func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("unknown command %02x", byte(e.Code))
}
