package api

import (
	"errors"
	"fmt"
)

// Kind classifies a request failure.
type Kind int

const (
	// KindTransport means no response was received (network, DNS, timeout).
	KindTransport Kind = iota + 1
	// KindAuthExpired means the backend answered 401; the token store has
	// been cleared and the session must be re-established.
	KindAuthExpired
	// KindRequestRejected means the backend answered with a non-2xx status
	// other than 401.
	KindRequestRejected
	// KindDecode means a 2xx response body could not be decoded.
	KindDecode
)

// Error is the failure type returned by every Client method.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, 0 for transport failures
	Message string // human-readable, never empty
	Err     error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "request failed"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsAuthExpired reports whether err is a 401 session-invalidated failure.
func IsAuthExpired(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == KindAuthExpired
}

// IsTransport reports whether err is a network-level failure with no response.
func IsTransport(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == KindTransport
}

// IsRequestRejected reports whether err is a non-2xx, non-401 rejection.
func IsRequestRejected(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == KindRequestRejected
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
}

func authExpiredError(message string) *Error {
	if message == "" {
		message = "session invalidated"
	}
	return &Error{Kind: KindAuthExpired, Status: 401, Message: message}
}

func rejectedError(status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("HTTP error %d", status)
	}
	return &Error{Kind: KindRequestRejected, Status: status, Message: message}
}

func decodeError(status int, err error) *Error {
	return &Error{Kind: KindDecode, Status: status, Message: "decode response: " + err.Error(), Err: err}
}
