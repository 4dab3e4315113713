package services

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateIdentity is returned when the email or phone is already registered.
	ErrDuplicateIdentity = errors.New("user with this email or phone already exists")

	// ErrStorageDisabled is returned by image operations when no object
	// storage backend is configured.
	ErrStorageDisabled = errors.New("object storage is not configured")
)

// ValidationError reports the first input rule that failed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
