package errors

import "errors"

var (
	ErrNotFound = errors.New("doctor not found")

	ErrInvalidID = errors.New("invalid doctor ID format")

	ErrAlreadyRegistered = errors.New("doctor profile already exists for user or license")
)
