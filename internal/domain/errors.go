package domain

import "fmt"

// ErrorKind is the category an operation failure falls into. Validation
// failures are resolved locally and never reach the network; every other
// kind originates from the backend or the transport.
type ErrorKind string

const (
	KindValidationFailed   ErrorKind = "VALIDATION_FAILED"
	KindUnauthenticated    ErrorKind = "UNAUTHENTICATED"
	KindForbidden          ErrorKind = "FORBIDDEN"
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindConflict           ErrorKind = "CONFLICT"
	KindServerError        ErrorKind = "SERVER_ERROR"
	KindNetworkUnavailable ErrorKind = "NETWORK_UNAVAILABLE"
)

// Error carries the kind plus a human-readable message, sourced from the
// backend payload when present. Fields holds field-level validation messages
// when the backend provided them.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func ValidationError(message string) *Error {
	return &Error{Kind: KindValidationFailed, Message: message}
}

func ConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// KindOf extracts the error kind, defaulting to KindServerError for errors
// that did not come through the taxonomy.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindServerError
}

// IsKind reports whether err is a taxonomy error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
