package resolver

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes generative failures. Every kind belongs to the
// transport failure class: recoverable, never cached, safe to retry.
type ErrorKind string

const (
	// KindTransport indicates the capability could not be reached or
	// returned an error.
	KindTransport ErrorKind = "TRANSPORT_FAILURE"

	// KindMalformed indicates the payload failed schema validation.
	KindMalformed ErrorKind = "MALFORMED_RESPONSE"

	// KindTimeout indicates the capability did not answer in time.
	KindTimeout ErrorKind = "TIMEOUT"
)

// Error is a generative failure carried in Result.Err.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsTransportFailure reports whether err is a generative failure of any
// kind. Uses errors.As to handle wrapped errors.
func IsTransportFailure(err error) bool {
	var re *Error
	return errors.As(err, &re)
}

// IsKind reports whether err is a generative failure of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind == kind
	}
	return false
}

func malformed(format string, args ...any) *Error {
	return &Error{Kind: KindMalformed, Message: fmt.Sprintf(format, args...)}
}
