package validation

import (
	"errors"
	"slices"
	"strings"
)

// SortValidationErrors sorts the provided errors by line and column number lowest to highest.
// Errors that are not validation errors keep their relative order and are placed last.
func SortValidationErrors(allErrors []error) {
	slices.SortStableFunc(allErrors, func(a, b error) int {
		var aErr, bErr *Error
		aOK := errors.As(a, &aErr)
		bOK := errors.As(b, &bErr)

		switch {
		case aOK && !bOK:
			return -1
		case !aOK && bOK:
			return 1
		case !aOK && !bOK:
			return 0
		}

		return compareValidationErrors(aErr, bErr)
	})
}

func compareValidationErrors(a, b *Error) int {
	if a.GetLineNumber() != b.GetLineNumber() {
		return a.GetLineNumber() - b.GetLineNumber()
	}
	if a.GetColumnNumber() != b.GetColumnNumber() {
		return a.GetColumnNumber() - b.GetColumnNumber()
	}
	if a.Severity != b.Severity {
		return a.Severity.rank() - b.Severity.rank()
	}
	if c := strings.Compare(a.Rule, b.Rule); c != 0 {
		return c
	}
	return strings.Compare(a.Location(), b.Location())
}

// HasErrors reports whether any of errs is an error severity validation error or a plain error.
func HasErrors(errs []error) bool {
	for _, err := range errs {
		var vErr *Error
		if !errors.As(err, &vErr) || vErr.Severity == SeverityError {
			return true
		}
	}
	return false
}

// FilterBySeverity returns the validation errors with the given severity.
func FilterBySeverity(errs []error, severity Severity) []*Error {
	var filtered []*Error
	for _, err := range errs {
		var vErr *Error
		if errors.As(err, &vErr) && vErr.Severity == severity {
			filtered = append(filtered, vErr)
		}
	}
	return filtered
}
