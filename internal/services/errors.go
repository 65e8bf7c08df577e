package services

import (
	"errors"
)

// ErrorKind classifies a failed operation for the transport layer.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindStorage    ErrorKind = "storage"
	KindDeclined   ErrorKind = "declined"
	KindGateway    ErrorKind = "gateway"
)

// Error is a failed operation with a message meant for the patron or
// librarian. Err holds the underlying cause, if any, for logging.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func notFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func conflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func storageError(msg string, err error) *Error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// asServiceError passes *Error values through and turns anything else, such
// as a failed commit, into a storage error with the given message.
func asServiceError(err error, msg string) error {
	if err == nil {
		return nil
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return storageError(msg, err)
}

// KindOf returns the kind of a service error, or KindStorage for anything else.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindStorage
}

// MessageOf returns the user facing message of err.
func MessageOf(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return MsgUnexpectedError
}
