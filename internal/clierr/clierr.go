// Package clierr defines the coded errors the CLI reports and the exit code
// each one maps to.
package clierr

import (
	"errors"
	"fmt"

	"github.com/sandeepkv93/fluidtasks/internal/commands"
	"github.com/sandeepkv93/fluidtasks/internal/model"
)

const (
	TaskNotFound      = "TASK_NOT_FOUND"
	InvalidInput      = "INVALID_INPUT"
	InvalidDate       = "INVALID_DATE"
	AmbiguousID       = "AMBIGUOUS_ID"
	Conflict          = "CONFLICT"
	Busy              = "BUSY"
	ServerUnreachable = "SERVER_UNREACHABLE"
	InternalError     = "INTERNAL_ERROR"
)

type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ExitCode is 2 for internal and transport failures, 1 for everything the
// user can fix.
func (e *Error) ExitCode() int {
	switch e.Code {
	case InternalError, ServerUnreachable:
		return 2
	default:
		return 1
	}
}

// From classifies err by the shared error taxonomy.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	var cmdErr *commands.CommandError
	if errors.As(err, &cmdErr) {
		return &Error{Code: InvalidInput, Message: cmdErr.Message, Err: err}
	}
	code := InternalError
	switch {
	case errors.Is(err, model.ErrNotFound):
		code = TaskNotFound
	case errors.Is(err, model.ErrValidation):
		code = InvalidInput
	case errors.Is(err, model.ErrConflict):
		code = Conflict
	case errors.Is(err, model.ErrBusy):
		code = Busy
	case errors.Is(err, model.ErrTransport):
		code = ServerUnreachable
	}
	return &Error{Code: code, Message: err.Error(), Err: err}
}
