package safetensors

import "errors"

// Common errors.
var (
	ErrHeaderTooLarge  = errors.New("header exceeds maximum size")
	ErrInvalidShape    = errors.New("invalid tensor shape")
	ErrNegativeOffset  = errors.New("negative offset or size")
	ErrOutOfBounds     = errors.New("tensor extends beyond data section")
	ErrSizeMismatch    = errors.New("tensor byte size does not match dtype and shape")
	ErrTensorNotFound  = errors.New("tensor not found")
	ErrUnsupportedType = errors.New("unsupported dtype")
)
