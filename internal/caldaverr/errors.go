// Package caldaverr defines the error taxonomy shared by the CalDAV client
// components.
package caldaverr

import (
	"errors"
	"fmt"
)

// ErrorType classifies a failure
type ErrorType string

const (
	ErrInvalidArgument   ErrorType = "invalid_argument"
	ErrTransport         ErrorType = "transport_failure"
	ErrRemoteRejected    ErrorType = "remote_rejected"
	ErrMalformedResponse ErrorType = "malformed_response"
	ErrMalformedCalendar ErrorType = "malformed_calendar_block"
	ErrRecurrenceRule    ErrorType = "recurrence_rule_invalid"
	ErrNotFound          ErrorType = "not_found"
)

// Error is the error returned by every client operation.
// StatusCode and Body are only set for ErrRemoteRejected.
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Type == ErrRemoteRejected {
		msg = fmt.Sprintf("%s: %s (status %d)", e.Type, e.Message, e.StatusCode)
		if e.Body != "" {
			msg += ": " + e.Body
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Type, so that
// errors.Is(err, &Error{Type: ErrNotFound}) works through wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// New creates an Error of the given type
func New(t ErrorType, message string, err error) *Error {
	return &Error{Type: t, Message: message, Err: err}
}

// Rejected creates an ErrRemoteRejected error carrying the server's answer verbatim
func Rejected(message string, status int, body string) *Error {
	return &Error{Type: ErrRemoteRejected, Message: message, StatusCode: status, Body: body}
}

// TypeOf returns the ErrorType of the first *Error in err's chain, or "" if there is none.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ""
}

// IsType reports whether err's chain contains an *Error of type t
func IsType(err error, t ErrorType) bool {
	return TypeOf(err) == t
}
