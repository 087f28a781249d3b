package errors

import (
	"errors"
	"fmt"
)

var (
	ErrSourceNotFound = errors.New("source collection not found")
	ErrIndexNotBuilt  = errors.New("index not built")
	ErrPersistence    = errors.New("index persistence failed")
	ErrInvalidInput   = errors.New("invalid input")
)

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

// ExitCode maps an error to the process exit code used by the CLI.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrSourceNotFound):
		return 2
	case errors.Is(err, ErrIndexNotBuilt):
		return 3
	case errors.Is(err, ErrInvalidInput):
		return 4
	case errors.Is(err, ErrPersistence):
		return 5
	default:
		return 1
	}
}
