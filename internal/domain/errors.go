package domain

import "errors"

// Domain errors
var (
	ErrFileNotFound  = errors.New("file not found")
	ErrBlobNotFound  = errors.New("blob not found in storage")
	ErrDuplicateName = errors.New("name already exists in folder")
	ErrQueueFull     = errors.New("extraction queue is full")
	ErrQueueClosed   = errors.New("extraction queue is closed")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
