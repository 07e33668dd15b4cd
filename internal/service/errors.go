package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain Errors
var (
	ErrForbidden          = errors.New("forbidden")
	ErrTeacherOnly        = fmt.Errorf("%w: teacher access required", ErrForbidden)
	ErrNotOwner           = fmt.Errorf("%w: not the owner of this assignment", ErrForbidden)
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries every violated field, keyed by JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

// addField records msg for name unless the field already has an error.
func addField(fields map[string]string, name, msg string) map[string]string {
	if fields == nil {
		fields = make(map[string]string)
	}
	if _, exists := fields[name]; !exists {
		fields[name] = msg
	}
	return fields
}
