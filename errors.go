// errors.go
package bulkinstall

import "github.com/arc-language/bulkinstall/pkg/core"

var (
	// ErrManagerUnavailable indicates the manager is not present on the host
	ErrManagerUnavailable = core.ErrManagerUnavailable

	// ErrInvocationFailure indicates the manager command returned an error status
	ErrInvocationFailure = core.ErrInvocationFailure

	// ErrInvocationTimeout indicates the manager command exceeded its time budget
	ErrInvocationTimeout = core.ErrInvocationTimeout

	// ErrResolutionFailure indicates no available manager could be attempted
	ErrResolutionFailure = core.ErrResolutionFailure

	// ErrConfigurationRejected indicates a declaration failed structural validation
	ErrConfigurationRejected = core.ErrConfigurationRejected

	// ErrUnsupportedMode indicates a manager has no command for the requested mode
	ErrUnsupportedMode = core.ErrUnsupportedMode
)

// Error wraps an error with the declaration and manager it concerns
type Error = core.Error
