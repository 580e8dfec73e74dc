// Package errors holds the sentinel errors shared by the ingest and
// configuration boundaries. Index and search operations never fail; these
// only surface where external input enters the process.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidProduct   = errors.New("invalid product")
	ErrUnknownLanguage  = errors.New("unknown language")
	ErrUnknownEventType = errors.New("unknown event type")
	ErrUnknownSource    = errors.New("unknown catalog source")
)

// AppError attaches a human-readable message to a sentinel.
type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: message,
	}
}

func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
