// Package common - Error values shared by the pre- and post-processing packages.
package common

import "github.com/pkg/errors"

// ErrInvalidArgument is returned when a caller violates a documented precondition such as
// non-positive dimensions, an empty buffer, a malformed tensor shape or an out-of-range
// threshold.
//
// Match it with errors.Is, the returned errors carry additional context.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgument wraps ErrInvalidArgument with a formatted message.
//
// Arguments:
//   - format: The message format.
//   - args: The format arguments.
//
// Returns:
//   - An error that matches ErrInvalidArgument with errors.Is.
//
// @example
// return common.InvalidArgument("invalid frame dimensions: %dx%d", w, h)
func InvalidArgument(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}
