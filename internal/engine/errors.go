package engine

import (
	"errors"
	"fmt"
)

// Error is returned by engine operations that cannot proceed. Combination
// attempts never return one; their failures are reported in Outcome.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Name is the element name involved, if any.
	Name string

	// Suggestions lists discovered names close to Name.
	Suggestions []string

	// Err is the underlying cause.
	Err error
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeUndiscovered indicates a name that is not in the library.
	ErrCodeUndiscovered ErrorCode = "UNDISCOVERED_ELEMENT"

	// ErrCodeUnknownInstance indicates a board instance id that does not exist.
	ErrCodeUnknownInstance ErrorCode = "UNKNOWN_INSTANCE"

	// ErrCodePersistence indicates loading or saving state failed.
	ErrCodePersistence ErrorCode = "PERSISTENCE_FAILURE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Name != "" {
		msg = fmt.Sprintf("%s (name=%s)", msg, e.Name)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsUndiscovered reports whether err names an element not in the library.
// Uses errors.As to handle wrapped errors.
func IsUndiscovered(err error) bool {
	return hasCode(err, ErrCodeUndiscovered)
}

// IsUnknownInstance reports whether err names a missing board instance.
func IsUnknownInstance(err error) bool {
	return hasCode(err, ErrCodeUnknownInstance)
}

// IsPersistenceError reports whether err came from the persistence adapter.
func IsPersistenceError(err error) bool {
	return hasCode(err, ErrCodePersistence)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

func persistenceError(op string, err error) *Error {
	return &Error{Code: ErrCodePersistence, Message: op, Err: err}
}
