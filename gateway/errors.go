package gateway

import (
	"errors"
)

// Class is the classification of a failed request
type Class string

const (
	ClassValidation Class = "validation"
	ClassNetwork    Class = "network"
	ClassServer     Class = "server"
)

// Error is a classified failure. Error() returns Detail verbatim so the
// message can be shown to the user as is.
type Error struct {
	Class  Class
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports bad input caught before any network call
func Validation(detail string) *Error {
	return &Error{Class: ClassValidation, Detail: detail}
}

// Network reports a transport failure
func Network(err error) *Error {
	detail := "network error"
	if err != nil {
		detail = err.Error()
	}
	return &Error{Class: ClassNetwork, Detail: detail, Err: err}
}

// Server reports a non-2xx response carrying the server's detail message
func Server(detail string) *Error {
	return &Error{Class: ClassServer, Detail: detail}
}

// Classify returns err as a classified error. Errors that carry no
// classification are treated as network failures.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var ge *Error
	if errors.As(err, &ge) {
		return ge
	}
	return Network(err)
}

// IsClass reports whether err is classified as c
func IsClass(err error, c Class) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Class == c
}
