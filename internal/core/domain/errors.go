package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
	ErrNetwork            = errors.New("backend unreachable")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNoSession          = errors.New("not logged in")
	ErrIncompleteSession  = errors.New("incomplete session")
	ErrTaskNotFound       = errors.New("task not found")
	ErrStaleResponse      = errors.New("response discarded: client state changed")
)

// ValidationError carries per-field messages, either from local form checks
// or from a backend 400 response.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

// NewValidationError builds a ValidationError for a single message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NetworkError means the backend could not be reached at all (DNS, refused
// connection, timeout). It is distinct from an HTTP error status.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// HTTPError is a 4xx/5xx answer from the backend with its message.
type HTTPError struct {
	Status  int
	Message string
	Fields  map[string][]string // DRF field errors, when present
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}
