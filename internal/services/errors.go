package services

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound signals the requested record does not exist. Kept
	// distinct from ErrAccessDenied so handlers can answer 404 vs 403.
	ErrNotFound = errors.New("record not found")

	// ErrAccessDenied signals the caller's role/ownership check failed.
	ErrAccessDenied = errors.New("access denied")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects per-field messages for a rejected request.
// No mutation happens when one is returned.
type ValidationError struct {
	Fields []FieldError `json:"errors"`
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
