package errors

import (
	"fmt"
)

type Error interface {
	error

	Code() int
	Kind() Kind
	Message() string
	Cause() error
}

// Kind classifies an error independently of its message, so callers can
// branch on it without string matching.
type Kind string

// Default code defines the code that will be used by default when
// none is given. It is set to 500, Internal Server Error
var DefaultCode = 500

type myError struct {
	code  int
	kind  Kind
	msg   string
	cause error
}

func (err *myError) Error() string {
	if err.cause == nil {
		return err.msg
	}

	return fmt.Sprintf("%s: %v", err.msg, err.cause)
}

func (err *myError) Code() int {
	return err.code
}

func (err *myError) Kind() Kind {
	return err.kind
}

func (err *myError) Message() string {
	return err.msg
}

func (err *myError) Cause() error {
	return err.cause
}

// Unwrap makes the standard library errors.Is and errors.As walk
// through the cause chain.
func (err *myError) Unwrap() error {
	return err.cause
}

type ErrorEnricher func(error) error

func WithCode(code int) ErrorEnricher {
	return func(err error) error {
		switch err := err.(type) {
		case nil:
			return nil
		case *myError:
			err.code = code
			return err
		}

		// default
		return &myError{
			msg:   err.Error(),
			code:  code,
			cause: nil,
		}
	}
}

func WithKind(kind Kind) ErrorEnricher {
	return func(err error) error {
		switch err := err.(type) {
		case nil:
			return nil
		case *myError:
			err.kind = kind
			return err
		}

		return &myError{
			msg:  err.Error(),
			code: DefaultCode,
			kind: kind,
		}
	}
}

// WithCause attaches cause to the error. When the error is not one of
// ours, the code and kind of the cause are forwarded.
func WithCause(cause error) ErrorEnricher {
	return func(err error) error {
		if err == nil {
			return nil
		}

		if myErr, ok := err.(*myError); ok {
			myErr.cause = cause
			return myErr
		}

		wrapped := &myError{
			msg:   err.Error(),
			code:  DefaultCode,
			cause: cause,
		}
		if c, ok := cause.(Error); ok {
			wrapped.code = c.Code()
			wrapped.kind = c.Kind()
		}
		return wrapped
	}
}

func New(msg string, fs ...ErrorEnricher) error {
	var err error
	err = &myError{
		msg:   msg,
		code:  DefaultCode,
		cause: nil,
	}

	for _, f := range fs {
		err = f(err)
	}

	return err
}

// KindOf returns the first non empty kind found in the cause chain of err.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(Error); ok {
			if e.Kind() != "" {
				return e.Kind()
			}
			err = e.Cause()
			continue
		}

		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// Code returns the code carried by err, DefaultCode if err is not an Error.
func Code(err error) int {
	if e, ok := err.(Error); ok {
		return e.Code()
	}
	return DefaultCode
}
