// Package errors provides error handling for gmsctl.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints attached to errors
//   - Marking errors with a category so callers can test with errors.Is
//
// Usage:
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Categorize and add hints for users
//	err = errors.Mark(err, errors.ErrConfiguration)
//	return errors.WithHint(err, "run 'gmsctl init' to create a config file")
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Assertions
var (
	AssertionFailedf    = crdb.AssertionFailedf
	HasAssertionFailure = crdb.HasAssertionFailure
)

// Error categories. Use Mark to attach one of these to an error and
// errors.Is to test for it; the original message is preserved.
var (
	// ErrConfiguration covers a missing host or a malformed config file.
	// Commands treat it as fatal.
	ErrConfiguration = New("configuration error")

	// ErrConnectivity indicates the metadata service could not be reached
	// or its health endpoint returned a non-2xx status.
	ErrConnectivity = New("connectivity error")

	// ErrNotConfigured is returned when an operation is attempted without a session.
	ErrNotConfigured = New("metadata service not configured")

	// ErrInvalidUrn indicates a string that is neither a raw nor a percent-encoded urn.
	ErrInvalidUrn = New("invalid urn")

	// ErrResponseShape indicates the service answered with a body that does not
	// match the expected envelope.
	ErrResponseShape = New("unexpected response shape")
)

// IsConfigurationError checks if an error is or wraps ErrConfiguration
func IsConfigurationError(err error) bool {
	return err != nil && Is(err, ErrConfiguration)
}

// IsConnectivityError checks if an error is or wraps ErrConnectivity
func IsConnectivityError(err error) bool {
	return err != nil && Is(err, ErrConnectivity)
}

// IsFatal reports whether err should terminate the process rather than just the
// current operation.
func IsFatal(err error) bool {
	return IsConfigurationError(err) || IsConnectivityError(err) || HasAssertionFailure(err)
}
