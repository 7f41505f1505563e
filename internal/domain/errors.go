package domain

import "errors"

// ErrorKind classifies domain failures. Handlers map kinds onto HTTP status codes.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindEligibility  ErrorKind = "eligibility"
	KindPermission   ErrorKind = "permission"
	KindInvalidState ErrorKind = "invalid_state"
	KindNotFound     ErrorKind = "not_found"
)

// Error is a classified, machine-readable failure.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func NewError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches coded errors by code and uncoded (kind-level) sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code == "" {
		return t.Kind == e.Kind
	}
	return t.Code == e.Code
}

var (
	ErrValidation   = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrEligibility  = &Error{Kind: KindEligibility, Message: "not eligible"}
	ErrPermission   = &Error{Kind: KindPermission, Message: "permission denied"}
	ErrInvalidState = &Error{Kind: KindInvalidState, Message: "invalid state"}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found"}
)

// AsError extracts the classified error from an error chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
