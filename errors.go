package blocksim

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// DriverError is the error type returned by every allocation engine. All
// errors an engine can produce derive from one of the exported Err* values
// below, so callers can classify a failure with [errors.Is].
type DriverError interface {
	error
	WithMessage(message string) DriverError
	Wrap(err error) DriverError
}

type baseSimError string

const rootError = baseSimError("")

var ErrExists = rootError.WithMessage("File exists")
var ErrNotFound = rootError.WithMessage("No such file or directory")
var ErrNoSpaceOnDevice = rootError.WithMessage("No space left on device")
var ErrInvalidArgument = rootError.WithMessage("Invalid argument")
var ErrArgumentOutOfRange = rootError.WithMessage("Numerical argument out of domain")
var ErrFileSystemCorrupted = rootError.WithMessage("Structure needs cleaning")

func (e baseSimError) Error() string {
	return string(e)
}

func (e baseSimError) WithMessage(message string) DriverError {
	return customSimError{
		message:       message,
		originalError: e,
	}
}

func (e baseSimError) Wrap(err error) DriverError {
	return customSimError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

// -----------------------------------------------------------------------------

type customSimError struct {
	message       string
	originalError error
}

// Error implements the `error` interface. When called, it returns a string
// describing the error.
func (e customSimError) Error() string {
	return e.message
}

func (e customSimError) WithMessage(message string) DriverError {
	return customSimError{
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

func (e customSimError) Wrap(err error) DriverError {
	return customSimError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

func (e customSimError) Unwrap() error {
	return e.originalError
}
