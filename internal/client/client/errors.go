package client

import "errors"

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrClosed      = errors.New("connection closed")
)
