package lifecycle

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrResourceConflict  ErrorCode = "RESOURCE_CONFLICT"
	ErrNotFound          ErrorCode = "NOT_FOUND"
	ErrValidation        ErrorCode = "VALIDATION_ERROR"
)

type Error struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Details    map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code ErrorCode, message string, status int, details map[string]any) *Error {
	return &Error{Code: code, Message: message, StatusCode: status, Details: details}
}

func InvalidTransition(entity, from, to string) *Error {
	return newError(
		ErrInvalidTransition,
		fmt.Sprintf("Cannot transition %s from %s to %s", entity, from, to),
		http.StatusConflict,
		map[string]any{"from": from, "to": to},
	)
}

func ResourceConflict(message string, details map[string]any) *Error {
	return newError(ErrResourceConflict, message, http.StatusConflict, details)
}

func NotFound(entity string) *Error {
	return newError(ErrNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound, nil)
}

func ValidationError(message string) *Error {
	return newError(ErrValidation, message, http.StatusBadRequest, nil)
}
