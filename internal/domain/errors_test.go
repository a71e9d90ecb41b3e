package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainErrorIsMatchesByCode(t *testing.T) {
	if !errors.Is(ErrTokenExpired, ErrTokenExpired) {
		t.Error("sentinel does not match itself")
	}
	if errors.Is(ErrTokenExpired, ErrTokenRevoked) {
		t.Error("distinct sentinels match each other")
	}

	// A WithCause copy still matches its sentinel
	wrapped := ErrTokenExpired.WithCause(errors.New("exp claim in the past"))
	if !errors.Is(wrapped, ErrTokenExpired) {
		t.Error("WithCause copy does not match the sentinel")
	}
	if errors.Is(wrapped, ErrTokenMalformed) {
		t.Error("WithCause copy matches a different sentinel")
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	wrapped := ErrUserConflict.WithCause(cause)

	if !errors.Is(wrapped, cause) {
		t.Error("cause not reachable through Unwrap")
	}
	// The original sentinel is untouched
	if ErrUserConflict.Cause != nil {
		t.Error("WithCause mutated the sentinel")
	}
}

func TestDomainErrorMessage(t *testing.T) {
	plain := &DomainError{Code: "X", Message: "boom"}
	if plain.Error() != "X: boom" {
		t.Errorf("Error() = %q", plain.Error())
	}

	withCause := plain.WithCause(errors.New("root"))
	if withCause.Error() != "X: boom: root" {
		t.Errorf("Error() = %q", withCause.Error())
	}
}

func TestDomainErrorThroughFmtWrap(t *testing.T) {
	wrapped := fmt.Errorf("login handler: %w", ErrAccountLocked)
	if !errors.Is(wrapped, ErrAccountLocked) {
		t.Error("sentinel not found through fmt.Errorf wrapping")
	}
}

func TestValidationErrors(t *testing.T) {
	err := WrapValidationError("username", errors.New("too short"))
	if !IsValidationError(err) {
		t.Error("IsValidationError() = false for a wrapped validation error")
	}
	if IsValidationError(ErrUserConflict) {
		t.Error("IsValidationError() = true for a non-validation error")
	}
	if IsValidationError(nil) {
		t.Error("IsValidationError(nil) = true")
	}
	if err.Message != "invalid username" {
		t.Errorf("Message = %q", err.Message)
	}
}
