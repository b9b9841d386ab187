package datasource

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrTransport    = errors.New("backend unreachable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrServer       = errors.New("backend error")
)

// APIError carries the backend's status and message. errors.Is matches it
// against the sentinel for its status class.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return ClassOf(e.Status) == target
}

func NewAPIError(status int, message string) *APIError {
	return &APIError{Status: status, Message: message}
}

// ClassOf maps an HTTP status to its sentinel; nil for success codes.
func ClassOf(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusBadRequest, status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return ErrValidation
	case status >= 500:
		return ErrServer
	case status >= 400:
		return ErrValidation
	default:
		return nil
	}
}

// Message extracts a user-facing message from err.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	switch {
	case errors.Is(err, ErrTransport):
		return "The booking service is unreachable. Please try again later."
	case errors.Is(err, ErrNotFound):
		return "Not found."
	default:
		return "Something went wrong. Please try again."
	}
}
