// Package apperr defines the solver's closed error taxonomy.
package apperr

import (
	"errors"
	"fmt"
)

type Code string

const (
	// CodeValidation marks a malformed puzzle: unknown role, impossible
	// counts, a night-1 death, info referencing an unregistered role.
	// Surfaced before any solve begins.
	CodeValidation Code = "validation"
	// CodeNotImplemented marks a role dispatched into a situation its
	// catalog entry hasn't handled. Fatal: aborts the whole solve, since
	// silently skipping could mask solutions.
	CodeNotImplemented Code = "not_implemented"
	// CodeCancelled marks a solve aborted via context cancellation.
	CodeCancelled Code = "cancelled"
	// CodeWorker marks an error captured inside a parallel worker and
	// re-raised to the caller of Solve.
	CodeWorker Code = "worker"
	// CodeInternal is the catch-all for invariants the solver itself
	// should never violate.
	CodeInternal Code = "internal"
)

// AppError is the solver's single error type. Logical pruning of a world
// is NOT represented as an AppError — a pruned branch simply yields no
// further worlds from its iterator.
type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

func Newf(code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, msg string, err error) *AppError {
	return &AppError{Code: code, Message: msg, Err: err}
}

func Is(err error, code Code) bool {
	var app *AppError
	if errors.As(err, &app) {
		return app.Code == code
	}
	return false
}
