package apperr

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidPath         = errors.New("invalid path")
	ErrDuplicatePath       = errors.New("duplicate canonical path")
	ErrDestinationConflict = errors.New("destination conflict")
)
