// Package errors provides custom error types for the toolkit.
// Failures are values: callers branch on Kind rather than on error strings.
package errors

import (
	"errors"
	"strings"
)

// =============================================================================
// Base Error Type
// =============================================================================

// Error is the base error type for all toolkit errors.
type Error struct {
	// Kind indicates the category of error
	Kind Kind

	// Op is the operation being performed (e.g., "license.Resolve")
	Op string

	// Message is a human-readable description
	Message string

	// Err is the underlying error
	Err error
}

// Kind represents the kind/category of error.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindInvalidRule
	KindMalformedExpression
	KindMissingContext
	KindNotFound
	KindStorage
	KindNetwork
	KindTimeout
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindInvalidRule:
		return "invalid_rule"
	case KindMalformedExpression:
		return "malformed_expression"
	case KindMissingContext:
		return "missing_context"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	parts := make([]string, 0, 3)
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// =============================================================================
// Constructors
// =============================================================================

// E constructs an Error from the given arguments.
// Arguments can be: Kind, string (Op then Message), error.
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Kind:
			e.Kind = a
		case string:
			if e.Op == "" {
				e.Op = a
			} else {
				e.Message = a
			}
		case error:
			e.Err = a
		}
	}
	return e
}

// New creates a new simple error.
func New(message string) error {
	return &Error{Message: message}
}

// Wrap wraps an error with an operation.
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// =============================================================================
// Error Checkers
// =============================================================================

// GetKind returns the Kind of the error, or KindUnknown.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsInvalidRule checks if the error is a rule-definition error.
func IsInvalidRule(err error) bool {
	return GetKind(err) == KindInvalidRule
}

// IsMalformedExpression checks if the error is a license-expression parse error.
func IsMalformedExpression(err error) bool {
	return GetKind(err) == KindMalformedExpression
}

// IsMissingContext checks if the error is a missing-context evaluation error.
func IsMissingContext(err error) bool {
	return GetKind(err) == KindMissingContext
}

// IsNotFound checks if the error is a not-found error.
func IsNotFound(err error) bool {
	return GetKind(err) == KindNotFound
}

// =============================================================================
// Common Errors
// =============================================================================

var (
	// ErrUnknownView is returned when a rule references an unknown license view.
	ErrUnknownView = &Error{Kind: KindInvalidRule, Message: "unknown license view"}

	// ErrUnknownAtom is returned when a rule references an unknown matcher atom.
	ErrUnknownAtom = &Error{Kind: KindInvalidRule, Message: "unknown matcher atom"}

	// ErrNoProject is returned when a matcher needs an enclosing project
	// and the context has none.
	ErrNoProject = &Error{Kind: KindMissingContext, Message: "context has no enclosing project"}

	// ErrNotConnected is returned when a transport is used before Connect.
	ErrNotConnected = &Error{Kind: KindNetwork, Message: "not connected"}
)
