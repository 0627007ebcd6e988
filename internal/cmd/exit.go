// Package cmd provides the nomnomgen CLI command implementations.
package cmd

import (
	"errors"
	"os"

	oerrors "github.com/nomnomgen/compiler/internal/errors"
)

// Exit codes.
const (
	ExitSuccess         = oerrors.ExitSuccess
	ExitGeneralError    = oerrors.ExitGeneralError
	ExitValidationError = oerrors.ExitValidationError
	ExitIOError         = oerrors.ExitIOError
	ExitNotFound        = oerrors.ExitNotFound
)

// ExitCodeFromError maps an error to the appropriate exit code.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, oerrors.ErrValidation):
		return ExitValidationError
	case errors.Is(err, oerrors.ErrIO):
		return ExitIOError
	case errors.Is(err, oerrors.ErrNotFound):
		return ExitNotFound
	}

	return ExitGeneralError
}

// Exit terminates the program with the appropriate exit code for the error.
func Exit(err error) {
	os.Exit(ExitCodeFromError(err))
}
