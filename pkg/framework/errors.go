package framework

import (
	"fmt"
	"strings"
)

// NamedError is the failure of a named part, e.g. a Runnable.
type NamedError struct {
	Name string
	Err  error
}

// Error implements error.
func (e *NamedError) Error() string {
	return e.Name + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *NamedError) Unwrap() error {
	return e.Err
}

// AggregatedError collects the failures of parts shutting down together.
type AggregatedError struct {
	Errors []error
}

// Error implements error. A single failure reads as itself.
func (e *AggregatedError) Error() string {
	switch len(e.Errors) {
	case 0:
		return ""
	case 1:
		return e.Errors[0].Error()
	}
	msg := make([]string, len(e.Errors))
	for n, err := range e.Errors {
		msg[n] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(e.Errors), strings.Join(msg, "; "))
}

// Unwrap returns the collected errors for errors.Is and errors.As.
func (e *AggregatedError) Unwrap() []error {
	return e.Errors
}

// Add adds errors to be aggregated. nil is skipped.
func (e *AggregatedError) Add(errs ...error) *AggregatedError {
	for _, err := range errs {
		if err != nil {
			e.Errors = append(e.Errors, err)
		}
	}
	return e
}

// AddNamed adds err tagged with the name of the part which failed.
func (e *AggregatedError) AddNamed(name string, err error) *AggregatedError {
	if err != nil {
		e.Errors = append(e.Errors, &NamedError{Name: name, Err: err})
	}
	return e
}

// Aggregate returns the aggregated error if anything failed.
func (e *AggregatedError) Aggregate() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}
