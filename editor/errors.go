package editor

import "errors"

// Operation errors. None of them is fatal: an operation that returns one
// has left the document unchanged.
var (
	ErrNoDocument        = errors.New("no document loaded")
	ErrBlockNotFound     = errors.New("block not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrDanglingReference = errors.New("dangling block reference")
	ErrUnknownBlockType  = errors.New("unknown block type")
	ErrPersistence       = errors.New("persistence failure")
)
