package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Headers    map[string]string
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithHeader returns the error with an extra response header attached.
func (e *DomainError) WithHeader(key, value string) *DomainError {
	if e.Headers == nil {
		e.Headers = map[string]string{}
	}
	e.Headers[key] = value
	return e
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusUnprocessableEntity, details)
}

func NewNotFound(resource string, details map[string]any) *DomainError {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewAuthenticationFailed is returned for unknown usernames and wrong passwords alike.
func NewAuthenticationFailed() error {
	return NewDomainError("AUTHENTICATION_FAILED", "Incorrect username or password", http.StatusUnauthorized, nil).
		WithHeader("WWW-Authenticate", "Bearer")
}

// NewInvalidToken rejects a missing, malformed, expired or unknown-subject token.
func NewInvalidToken(challenge string) error {
	return NewDomainError("INVALID_TOKEN", "Could not validate credentials", http.StatusUnauthorized, nil).
		WithHeader("WWW-Authenticate", challenge)
}

// NewInsufficientScope rejects a valid token lacking a required scope.
func NewInsufficientScope(challenge string, missing []string) error {
	return NewDomainError("INSUFFICIENT_SCOPE", "Not enough permissions", http.StatusUnauthorized,
		map[string]any{"missing_scopes": missing}).
		WithHeader("WWW-Authenticate", challenge)
}

func NewInactiveAccount() error {
	return NewDomainError("INACTIVE_ACCOUNT", "Inactive user", http.StatusBadRequest, nil)
}

// NewConflict reports a duplicate unique key. The tutorial API answers these with 400.
func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusBadRequest, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return &DomainError{
			Code:       statusCode(fiberErr.Code),
			Message:    fiberErr.Message,
			HTTPStatus: fiberErr.Code,
		}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return NewNotFound("resource", nil)
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// statusCode turns 405 into METHOD_NOT_ALLOWED.
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "HTTP_ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
