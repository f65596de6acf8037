package validation

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Severity classifies how serious a validation error is.
type Severity string

const (
	// SeverityError marks a problem that stops a document or payload from being usable.
	SeverityError Severity = "error"
	// SeverityWarning marks a problem that was worked around, usually by skipping something.
	SeverityWarning Severity = "warning"
	// SeverityHint marks purely informational findings.
	SeverityHint Severity = "hint"
)

func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Error represents a validation error and the line and column where it occurred.
// Entry and Property, when set, name the schema entry and the property the error
// was raised for.
type Error struct {
	UnderlyingError error
	Node            *yaml.Node
	Severity        Severity
	Rule            string
	Entry           string
	Property        string
}

var _ error = (*Error)(nil)

// NewError creates an error severity validation error positioned at node.
func NewError(node *yaml.Node, rule string, format string, args ...any) *Error {
	return newError(node, SeverityError, rule, format, args...)
}

// NewWarning creates a warning severity validation error positioned at node.
func NewWarning(node *yaml.Node, rule string, format string, args ...any) *Error {
	return newError(node, SeverityWarning, rule, format, args...)
}

// NewHint creates a hint severity validation error positioned at node.
func NewHint(node *yaml.Node, rule string, format string, args ...any) *Error {
	return newError(node, SeverityHint, rule, format, args...)
}

func newError(node *yaml.Node, severity Severity, rule string, format string, args ...any) *Error {
	return &Error{
		UnderlyingError: fmt.Errorf(format, args...),
		Node:            node,
		Severity:        severity,
		Rule:            rule,
	}
}

// At records the schema entry and property the error applies to.
func (e *Error) At(entry, property string) *Error {
	e.Entry = entry
	e.Property = property
	return e
}

// GetLineNumber returns the 1-based line of the node the error is attached to or -1.
func (e *Error) GetLineNumber() int {
	if e == nil || e.Node == nil {
		return -1
	}
	return e.Node.Line
}

// GetColumnNumber returns the 1-based column of the node the error is attached to or -1.
func (e *Error) GetColumnNumber() int {
	if e == nil || e.Node == nil {
		return -1
	}
	return e.Node.Column
}

// Location returns "entry" or "entry.property" for errors attached to a schema entry.
func (e *Error) Location() string {
	switch {
	case e.Entry == "":
		return e.Property
	case e.Property == "":
		return e.Entry
	default:
		return e.Entry + "." + e.Property
	}
}

func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%d:%d] %s %s", e.GetLineNumber(), e.GetColumnNumber(), e.Severity, e.Rule)
	if loc := e.Location(); loc != "" {
		sb.WriteString(" ")
		sb.WriteString(loc)
	}
	if e.UnderlyingError != nil {
		sb.WriteString(": ")
		sb.WriteString(e.UnderlyingError.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.UnderlyingError
}
