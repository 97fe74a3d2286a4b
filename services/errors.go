package services

import "errors"

// Common errors
var (
	ErrNoteNotFound = errors.New("note not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotOpen      = errors.New("note is not open in the editor")
)
