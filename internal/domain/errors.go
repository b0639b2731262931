package domain

import "fmt"

// ErrorKind classifies service failures so the HTTP boundary can map them
// to status codes without string matching.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindAuth
	KindNotFound
	KindConflict
	KindRateLimit
	KindInternal
)

type Error struct {
	Kind    ErrorKind
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.err }

func ValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func AuthError(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

func NotFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func ConflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// InternalError wraps an unexpected failure. The wrapped cause is for
// logs only; the message is what callers may see.
func InternalError(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, err: err}
}

// AsError narrows any error to a *Error, defaulting unexpected ones to
// an opaque internal failure.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if de, ok := err.(*Error); ok {
		return de
	}
	return &Error{Kind: KindInternal, Message: "internal error", err: err}
}
