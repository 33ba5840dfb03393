package model

import "errors"

// Error taxonomy shared by the store, the API client and the CLI. Callers
// classify with errors.Is; concrete errors wrap one of these.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrTransport  = errors.New("transport failure")
	ErrBusy       = errors.New("operation already in flight")
)
