package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Session ticket errors.
	ErrInvalidToken = errors.New("invalid token")
)
