// pkg/core/errors.go
package core

import (
	"errors"
	"fmt"
)

var (
	// ErrManagerUnavailable indicates the manager is not present on the host
	ErrManagerUnavailable = errors.New("manager unavailable")

	// ErrInvocationFailure indicates the manager command returned an error status
	ErrInvocationFailure = errors.New("invocation failed")

	// ErrInvocationTimeout indicates the manager command exceeded its time budget
	ErrInvocationTimeout = errors.New("invocation timed out")

	// ErrResolutionFailure indicates no available manager could be attempted
	ErrResolutionFailure = errors.New("no available manager")

	// ErrConfigurationRejected indicates a declaration failed structural validation
	ErrConfigurationRejected = errors.New("configuration rejected")

	// ErrUnsupportedMode indicates a manager has no command for the requested mode
	ErrUnsupportedMode = errors.New("mode not supported by manager")
)

// Error wraps an error with the declaration and manager it concerns
type Error struct {
	Op      string // Operation that failed
	Package string // Declaration name if applicable
	Manager string // Manager name if applicable
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	switch {
	case e.Package != "" && e.Manager != "":
		return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Package, e.Manager, e.Err)
	case e.Package != "":
		return fmt.Sprintf("%s %s: %v", e.Op, e.Package, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is, or wraps, an invocation timeout
func IsTimeout(err error) bool {
	return errors.Is(err, ErrInvocationTimeout)
}
