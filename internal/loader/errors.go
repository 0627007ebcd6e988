// Package loader reads entity specification YAML files from a directory,
// detects which of the two schema dialects (v1 or legacy) each document
// uses, and normalizes both into core.EntityDef values. Neither dialect is
// ever rewritten on disk — normalization happens purely in memory.
package loader

import (
	"errors"
	"fmt"
)

// Sentinel error kinds, per spec.md §4.1 / §7.
var (
	ErrIo            = errors.New("load io error")
	ErrSyntax        = errors.New("load syntax error")
	ErrUnknownDialect = errors.New("unknown schema dialect")
)

// LoadError reports a single file-level failure encountered while loading
// entity specifications. File and Line are included whenever available, per
// spec.md §7's propagation policy for load errors.
type LoadError struct {
	File    string
	Line    int
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	loc := e.File
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	if loc == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", loc, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

func newIoError(file string, cause error) *LoadError {
	return &LoadError{File: file, Message: "reading file: " + cause.Error(), Cause: ErrIo}
}

func newSyntaxError(file string, line int, cause error) *LoadError {
	return &LoadError{File: file, Line: line, Message: "invalid YAML: " + cause.Error(), Cause: ErrSyntax}
}

func newUnknownDialectError(file string, line int) *LoadError {
	return &LoadError{
		File: file, Line: line,
		Message: "document matches neither the v1 dialect (apiVersion/metadata/spec) nor the legacy dialect (flat snake_case)",
		Cause:   ErrUnknownDialect,
	}
}
