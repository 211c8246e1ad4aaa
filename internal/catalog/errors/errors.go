package errors

import "errors"

var (
	ErrServiceNotFound    = errors.New("service not found")
	ErrSpecialistNotFound = errors.New("specialist not found")
)
