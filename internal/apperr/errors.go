package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient inventory")
	ErrBusy              = errors.New("system busy, please try again later")
	ErrConflict          = errors.New("conflict")
	ErrUpstream          = errors.New("upstream service error")
)
