package response

import (
	"errors"
)

type Error struct {
	Code    int
	Err     error
	Details string
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on status code and message only, so a copy carrying details still
// matches the sentinel it was derived from.
func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

// WithDetails returns a copy of e carrying the message of cause.
func (e *Error) WithDetails(cause error) error {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &Error{Code: e.Code, Err: e.Err, Details: details}
}

func NewError(code int, err string) error {
	return &Error{Code: code, Err: errors.New(err)}
}

// Wrap attaches cause as details to a sentinel created by NewError. Non-*Error
// sentinels are returned unchanged.
func Wrap(sentinel error, cause error) error {
	var e *Error
	if !errors.As(sentinel, &e) {
		return sentinel
	}
	return e.WithDetails(cause)
}
