// Package errors provides error handling for jsdocts.
//
// This package re-exports github.com/cockroachdb/errors and defines the
// sentinels for the run's error taxonomy:
//
//   - ErrConfig: bad or missing configuration, fatal at startup
//   - ErrMissingClosingBrace: unterminated type expression, aborts the file
//   - ErrUnresolvableLoop: a rewrite made no progress, aborts the file
//   - ErrNotFound: a reference could not be resolved, recovered locally
//
// Usage:
//
//	if err := tagtext.Transform(text); err != nil {
//	    return errors.Wrapf(err, "rewriting %s", path)
//	}
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
)

// User-facing messages and details
var (
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	WithDetail   = crdb.WithDetail
	WithDetailf  = crdb.WithDetailf
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Error inspection
var (
	Is            = crdb.Is
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	GetAllDetails = crdb.GetAllDetails
)

var (
	// ErrConfig indicates a missing or invalid configuration option.
	ErrConfig = New("configuration error")

	// ErrMissingClosingBrace is raised by the tag hook when a type expression
	// has no balanced closing brace. The message is the fixed string the
	// documentation generator expects.
	ErrMissingClosingBrace = New("Missing closing '}'")

	// ErrUnresolvableLoop indicates that the same import expression kept
	// resolving without its number of occurrences in the comment dropping.
	ErrUnresolvableLoop = New("unresolvable expression repeated")

	// ErrNotFound indicates a module or export could not be resolved.
	ErrNotFound = New("not found")
)

// IsConfigError reports whether err is or wraps ErrConfig.
func IsConfigError(err error) bool {
	return err != nil && Is(err, ErrConfig)
}

// IsSyntaxError reports whether err is or wraps ErrMissingClosingBrace.
func IsSyntaxError(err error) bool {
	return err != nil && Is(err, ErrMissingClosingBrace)
}

// NewConfigError creates a configuration error with a formatted message.
func NewConfigError(format string, args ...interface{}) error {
	return Wrap(ErrConfig, Newf(format, args...).Error())
}
