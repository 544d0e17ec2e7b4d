package claim

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrClaimNotFound     = errors.New("claim not found")
	ErrDuplicateClaimID  = errors.New("claim with this claim ID already exists")
	ErrInvalidFileField  = errors.New("invalid file field")
	ErrFileNotAttached   = errors.New("no file attached to this field")
	ErrInvalidDispatch   = errors.New("invalid physical file dispatch status")
	ErrInvalidOrderField = errors.New("invalid ordering field")
)

// ValidationError carries field-keyed messages back to the caller.
// It is client input feedback, never logged as a failure.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) add(field, msg string) {
	if _, dup := e.Fields[field]; !dup {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
