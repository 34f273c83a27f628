package errors

import (
	"fmt"
	"net/http"
)

// ErrorType classifies application errors for HTTP status mapping and
// client-side messaging.
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeAuthentication ErrorType = "authentication"
	ErrorTypeAuthorization  ErrorType = "authorization"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeConflict       ErrorType = "conflict"
	ErrorTypePolicy         ErrorType = "policy"
	ErrorTypeInternal       ErrorType = "internal"
	ErrorTypeExternal       ErrorType = "external"
)

// Judge token error kinds. These are surfaced verbatim so the scoring UI can
// tell a mistyped link apart from a lapsed one.
const (
	TokenErrInvalidFormat = "invalid_format"
	TokenErrNotFound      = "not_found"
	TokenErrExpired       = "expired"
)

// AppError is a structured application error carrying the HTTP status and an
// optional wrapped cause that is logged but never sent to clients.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code"`
	Internal   error                  `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *AppError) Unwrap() error {
	return e.Internal
}

// NewValidationError creates a 400 validation error.
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// NewAuthenticationError creates a 401 authentication error.
func NewAuthenticationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewAuthorizationError creates a 403 authorization error.
func NewAuthorizationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthorization,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewNotFoundError creates a 404 not found error.
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewConflictError creates a 409 conflict error. Used when an idempotency
// lock is already held by a concurrent request.
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewPolicyError creates a 422 business-rule rejection. Distinct from
// validation and authorization so clients can show the rule itself, e.g.
// moderation attempted after the gallery went public.
func NewPolicyError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypePolicy,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewInternalError creates a 500 internal error wrapping its cause.
func NewInternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

// NewExternalError creates a 502 error for upstream service failures.
func NewExternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Internal:   internal,
	}
}

// TokenError is the judge-token authentication failure. Kind is one of the
// TokenErr* constants and is serialized verbatim in the response body.
type TokenError struct {
	Kind    string
	Message string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("token %s: %s", e.Kind, e.Message)
}

// StatusCode maps the token error kind to an HTTP status.
func (e *TokenError) StatusCode() int {
	switch e.Kind {
	case TokenErrInvalidFormat:
		return http.StatusBadRequest
	case TokenErrNotFound:
		return http.StatusNotFound
	case TokenErrExpired:
		return http.StatusUnauthorized
	default:
		return http.StatusUnauthorized
	}
}

// NewTokenError creates a judge token error of the given kind.
func NewTokenError(kind, message string) *TokenError {
	return &TokenError{Kind: kind, Message: message}
}
