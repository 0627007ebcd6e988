package emit

import (
	"fmt"
	"strings"
)

// EmitterError is one emitter's failure, tagged with which emitter produced
// it so a partial Run can still be attributed precisely.
type EmitterError struct {
	Emitter string
	Err     error
}

func (e *EmitterError) Error() string {
	return fmt.Sprintf("emitter %q: %s", e.Emitter, e.Err)
}

func (e *EmitterError) Unwrap() error {
	return e.Err
}

// Errors aggregates every emitter failure from one Run. A failing emitter
// never prevents the others from running or from having their output kept
// (spec.md §7: "a failure in the Dashboard Emitter does not prevent the
// Schema Emitter's output from being written").
type Errors struct {
	Errors []error
}

func (e *Errors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	lines := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		lines[i] = fmt.Sprintf("  [%d] %s", i+1, err.Error())
	}
	return fmt.Sprintf("%d emitter error(s):\n%s", len(e.Errors), strings.Join(lines, "\n"))
}

func (e *Errors) Unwrap() []error {
	return e.Errors
}
