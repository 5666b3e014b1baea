package record

import (
	"errors"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrUnknownField   = errors.New("unknown record field")
	ErrImmutableField = errors.New("record field is not editable")
	ErrInvalidValue   = errors.New("invalid field value")
)
