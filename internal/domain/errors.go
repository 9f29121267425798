package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when a record does not exist or is outside the
// caller's scope. Both cases look identical to the API so that a caller
// cannot probe for other users' resources.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a storage-level uniqueness constraint
// rejects a write (duplicate email, duplicate attendance for a day).
var ErrDuplicate = errors.New("duplicate record")

// ValidationError carries field-level messages for a rejected request.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
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

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
