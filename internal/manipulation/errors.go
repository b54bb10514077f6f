// SPDX-License-Identifier: MIT
package manipulation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrTokenExpired is returned before a call is made with an expired token
var ErrTokenExpired = errors.New("access token expired")

// ErrNotSupported is returned by services that cannot perform an operation
var ErrNotSupported = errors.New("operation not supported")

// FieldValidationError describes one rejected request field
type FieldValidationError struct {
	Field       string `json:"field"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

// ServiceError is a failed call to the manipulation service
type ServiceError struct {
	Message   string                 `json:"message"`
	Status    int                    `json:"status"`
	ErrorCode string                 `json:"errorCode,omitempty"`
	Errors    []FieldValidationError `json:"errors,omitempty"`
}

func (e *ServiceError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("manipulation service: %s (%d, %s)", e.Message, e.Status, e.ErrorCode)
	}
	return fmt.Sprintf("manipulation service: %s (%d)", e.Message, e.Status)
}

// HasFieldErrors reports whether the service rejected specific fields
func (e *ServiceError) HasFieldErrors() bool {
	return len(e.Errors) > 0
}

// parseError turns an error response body into a ServiceError. A missing
// or unreadable body is reported as an internal server error.
func parseError(status int, body []byte) *ServiceError {
	internal := &ServiceError{
		Message:   "Internal server error.",
		Status:    http.StatusInternalServerError,
		ErrorCode: "app_errors.internal_server_error",
	}
	if len(body) == 0 {
		return internal
	}

	var payload struct {
		Message   string                 `json:"message"`
		ErrorCode string                 `json:"errorCode"`
		Errors    []FieldValidationError `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return internal
	}

	return &ServiceError{
		Message:   payload.Message,
		Status:    status,
		ErrorCode: payload.ErrorCode,
		Errors:    payload.Errors,
	}
}
