package query

import (
	"errors"
	"fmt"
)

// Failure kinds of Client.Send. Match them with errors.Is.
var (
	ErrCredential        = errors.New("credential unavailable")
	ErrTransport         = errors.New("transport failed")
	ErrMalformedResponse = errors.New("malformed response")
	ErrEmptyAnswer       = errors.New("empty answer")
)

// Error is returned by Client.Send. StatusCode is set for non-2xx
// responses and is zero when no response was received.
type Error struct {
	Kind       error
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
