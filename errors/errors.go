// Package errors provides the string based sentinel errors used across the generator
// together with thin wrappers over the standard library errors package.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSeparator separates a sentinel message from its cause in a wrapped error message.
const ErrSeparator = " -- "

const (
	// ErrNoComponents is returned when a document has no components section to generate from.
	ErrNoComponents = Error("no components to generate")
	// ErrInvalidDocument is returned when a document can't be decoded into an AsyncAPI model.
	ErrInvalidDocument = Error("invalid AsyncAPI document")
	// ErrResolverSealed is returned when a table registration is attempted after the resolver was sealed.
	ErrResolverSealed = Error("resolver is sealed")
	// ErrResolverNotSealed is returned when emission is attempted before the pre-pass completed.
	ErrResolverNotSealed = Error("resolver is not sealed")
	// ErrUnknownTarget is returned when no emitter is registered for the requested target.
	ErrUnknownTarget = Error("unknown target")
	// ErrUnknownType is returned when a type name is not declared by the document.
	ErrUnknownType = Error("unknown type")
	// ErrOutputDir is returned when the output directory is missing or not a directory.
	ErrOutputDir = Error("invalid output directory")
)

// Error provides a string based error type allowing the definition of const errors in packages.
type Error string

func (s Error) Error() string {
	return string(s)
}

// Is reports whether target carries the same message, either directly or as the prefix of a wrapped error.
func (s Error) Is(target error) bool {
	if target == nil {
		return false
	}
	return s.Error() == target.Error() || strings.HasPrefix(target.Error(), s.Error()+ErrSeparator)
}

// Wrap adds err as the cause of this Error.
func (s Error) Wrap(err error) error {
	return wrappedError{cause: err, msg: string(s)}
}

// Wrapf adds a formatted message as the cause of this Error.
func (s Error) Wrapf(format string, args ...any) error {
	return wrappedError{cause: fmt.Errorf(format, args...), msg: string(s)}
}

type wrappedError struct {
	cause error
	msg   string
}

func (w wrappedError) Error() string {
	if w.cause != nil {
		return fmt.Sprintf("%s%s%v", w.msg, ErrSeparator, w.cause)
	}
	return w.msg
}

func (w wrappedError) Is(target error) bool {
	return Error(w.msg).Is(target)
}

func (w wrappedError) Unwrap() error {
	return w.cause
}

// The below are just wrappers as we are stealing the namespace of the errors package

// Is checks if err is equivalent to target.
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns a new error with the specified message.
func New(message string) error {
	return errors.New(message)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// UnwrapErrors flattens an error produced by Join back into its parts.
func UnwrapErrors(err error) []error {
	if err == nil {
		return nil
	}

	if je, ok := err.(interface{ Unwrap() []error }); ok {
		return je.Unwrap()
	}
	return []error{err}
}
