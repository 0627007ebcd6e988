// Package cmdtypes provides shared types for the cmd package and its
// sub-packages, kept separate from internal/cmd to avoid import cycles.
package cmdtypes

import (
	oerrors "github.com/nomnomgen/compiler/internal/errors"
)

// GlobalConfig holds CLI-wide settings resolved during PersistentPreRunE,
// passed explicitly into every sub-command constructor.
type GlobalConfig struct {
	ConfigPath string // resolved --config path
	Verbose    bool
}

// Exit codes — aliases of internal/errors constants.
const (
	ExitSuccess         = oerrors.ExitSuccess
	ExitGeneralError    = oerrors.ExitGeneralError
	ExitValidationError = oerrors.ExitValidationError
	ExitIOError         = oerrors.ExitIOError
	ExitNotFound        = oerrors.ExitNotFound
)
