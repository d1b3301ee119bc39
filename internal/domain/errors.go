package domain

import "errors"

// Document adapter errors
var (
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrCorruptDocument   = errors.New("corrupt or unsupported document")
	ErrEmptyDocument     = errors.New("document has no pages")
	ErrPageOutOfRange    = errors.New("page index out of range")
)
