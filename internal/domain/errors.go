package domain

import (
	"errors"
	"fmt"
)

// ============================================================================
// Domain Error Types
// ============================================================================

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches sentinel DomainErrors by code, so copies created with WithCause
// still satisfy errors.Is checks against the sentinel.
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if errors.As(target, &de) {
		return e.Code == de.Code
	}
	return false
}

// WithCause returns a copy of the error carrying an underlying cause
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Cause: cause}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ============================================================================
// Credential Errors
// ============================================================================

var (
	ErrUserNotFound = &DomainError{
		Code:    "USER_NOT_FOUND",
		Message: "user not found",
	}
	ErrUserConflict = &DomainError{
		Code:    "USER_CONFLICT",
		Message: "username or email already registered",
	}
	ErrInvalidCredentials = &DomainError{
		Code:    "INVALID_CREDENTIALS",
		Message: "invalid email or password",
	}
	ErrAccountLocked = &DomainError{
		Code:    "ACCOUNT_LOCKED",
		Message: "account temporarily locked after repeated failed logins",
	}
	ErrAccountDisabled = &DomainError{
		Code:    "ACCOUNT_DISABLED",
		Message: "account is disabled",
	}
)

// ============================================================================
// Token Errors
// ============================================================================

var (
	ErrTokenExpired = &DomainError{
		Code:    "TOKEN_EXPIRED",
		Message: "token has expired",
	}
	ErrTokenRevoked = &DomainError{
		Code:    "TOKEN_REVOKED",
		Message: "token has been revoked",
	}
	ErrTokenMalformed = &DomainError{
		Code:    "TOKEN_MALFORMED",
		Message: "token is malformed or its signature is invalid",
	}
	ErrTokenWrongType = &DomainError{
		Code:    "TOKEN_WRONG_TYPE",
		Message: "token type does not match the expected type",
	}
	ErrNoToken = &DomainError{
		Code:    "NO_TOKEN",
		Message: "authorization header is missing",
	}
	ErrInvalidAuthHeader = &DomainError{
		Code:    "INVALID_AUTH_HEADER",
		Message: "authorization header must be of the form 'Bearer <token>'",
	}
	ErrEmptyToken = &DomainError{
		Code:    "EMPTY_TOKEN",
		Message: "bearer token is empty",
	}
	ErrForbidden = &DomainError{
		Code:    "FORBIDDEN",
		Message: "insufficient role for this operation",
	}
)

// ============================================================================
// OAuth Errors
// ============================================================================

var (
	ErrOAuthStateMismatch = &DomainError{
		Code:    "OAUTH_STATE_MISMATCH",
		Message: "oauth state does not match the value stored for this session",
	}
	ErrOAuthSessionMissing = &DomainError{
		Code:    "OAUTH_SESSION_MISSING",
		Message: "no oauth session found for this browser",
	}
	ErrOAuthTimeout = &DomainError{
		Code:    "OAUTH_TIMEOUT",
		Message: "oauth callback arrived too long after authorization started",
	}
	ErrNoPrimaryEmail = &DomainError{
		Code:    "NO_PRIMARY_EMAIL",
		Message: "provider account has no primary verified email",
	}
	ErrEmailInUse = &DomainError{
		Code:    "EMAIL_IN_USE",
		Message: "a local account with this email already exists and is not linked to this provider",
	}
	ErrUpstreamProvider = &DomainError{
		Code:    "UPSTREAM_PROVIDER",
		Message: "oauth provider request failed",
	}
)

// ============================================================================
// Validation Errors
// ============================================================================

// WrapValidationError wraps a field validation failure into a domain error
func WrapValidationError(field string, err error) *DomainError {
	return &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("invalid %s", field),
		Cause:   err,
	}
}

// IsValidationError reports whether err is a validation domain error
func IsValidationError(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == "VALIDATION_ERROR"
	}
	return false
}
