package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrUnknownModel  = errors.New("unknown model")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInputTooLarge = errors.New("input too large")
	ErrNoMediaURL    = errors.New("completed but no media URL")
)
