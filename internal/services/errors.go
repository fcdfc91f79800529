package services

import (
	"errors"
	"fmt"
)

// Kind classifies a core failure so the transport can pick a status code.
type Kind uint8

const (
	KindValidation Kind = iota + 1
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	}
	return "unknown"
}

// Error is a caller-visible core failure. Sentinels below are compared by
// identity with errors.Is; extra context is attached with fmt.Errorf("%w").
type Error struct {
	Kind Kind
	Code string
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Msg
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

var (
	ErrDuplicateEmail     = newError(KindConflict, "DuplicateEmail", "email already registered")
	ErrInvalidCredentials = newError(KindAuth, "InvalidCredentials", "invalid credentials")
	ErrMissingToken       = newError(KindAuth, "MissingToken", "authorization token is required")
	ErrInvalidToken       = newError(KindAuth, "InvalidToken", "invalid token")
	ErrUnknownUser        = newError(KindAuth, "UnknownUser", "user not found")
	ErrForbidden          = newError(KindForbidden, "Forbidden", "operation not permitted for this role")

	ErrTaskNotFound = newError(KindNotFound, "NotFound", "task not found")
	ErrUserNotFound = newError(KindNotFound, "NotFound", "user not found")

	ErrEmptyTitle      = newError(KindValidation, "InvalidTitle", "title is required")
	ErrInvalidDueDate  = newError(KindValidation, "InvalidDueDate", "invalid due_date format, use ISO format: YYYY-MM-DDTHH:MM:SS")
	ErrInvalidStatus   = newError(KindValidation, "InvalidStatus", "status must be one of todo, in_progress, blocked, done")
	ErrInvalidPriority = newError(KindValidation, "InvalidPriority", "priority must be an integer between 1 and 5")
	ErrInvalidParent   = newError(KindValidation, "InvalidParent", "parent task not found")
	ErrInvalidField    = newError(KindValidation, "InvalidField", "invalid update field")
	ErrInvalidWindow   = newError(KindValidation, "InvalidWindow", "days must not be negative")
	ErrSelfDependency  = newError(KindValidation, "SelfDependency", "task cannot depend on itself")
	ErrDependencyCycle = newError(KindValidation, "DependencyCycle", "dependency would create a cycle")
)

// AsError extracts the core error from err, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func invalidFieldf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidField, fmt.Sprintf(format, args...))
}
