package domain

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("prompt not found")
	ErrAlreadyExists   = errors.New("session already exists")
	ErrStoreFailure    = errors.New("store failure")
)
