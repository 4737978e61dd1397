package services

import (
	"errors"

	"gorm.io/gorm"
)

// Error kinds. Every error returned by a service wraps one of these, so
// callers can branch with errors.Is while showing Error.Message to users.
var (
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrUnauthorized       = errors.New("unauthorized")
)

type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// notFound maps gorm.ErrRecordNotFound to ErrNotFound and passes other
// errors through.
func notFound(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(ErrNotFound, message)
	}
	return err
}
