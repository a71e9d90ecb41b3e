package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	// usernameRegex allows only alphanumeric characters, hyphens, and underscores
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// emailRegex is a pragmatic format check; real ownership is only ever
	// proven by the OAuth provider or a future verification mail
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Reserved names that should not be used as usernames
var reservedUsernames = map[string]bool{
	"admin":   true,
	"root":    true,
	"system":  true,
	"support": true,
	"me":      true,
}

// ValidateUsername validates a username for registration and profile updates.
// Reserved names are rejected here; operator-controlled paths (bootstrap
// seeding) use ValidateUsernameFormat instead.
func ValidateUsername(name string) error {
	if reservedUsernames[strings.ToLower(name)] {
		return errors.New("username is reserved")
	}
	return ValidateUsernameFormat(name)
}

// ValidateUsernameFormat checks length and character set only
func ValidateUsernameFormat(name string) error {
	if len(name) < 3 {
		return errors.New("username must be at least 3 characters")
	}
	if len(name) > 32 {
		return errors.New("username must be 32 characters or less")
	}

	if !usernameRegex.MatchString(name) {
		return errors.New("username must contain only letters, numbers, hyphens, and underscores")
	}

	if strings.HasPrefix(name, "-") || strings.HasPrefix(name, "_") {
		return errors.New("username cannot start with a hyphen or underscore")
	}
	if strings.HasSuffix(name, "-") || strings.HasSuffix(name, "_") {
		return errors.New("username cannot end with a hyphen or underscore")
	}

	return nil
}

// ValidateEmail validates an email address format
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email cannot be empty")
	}
	if len(email) > 254 {
		return errors.New("email must be 254 characters or less")
	}
	if !emailRegex.MatchString(email) {
		return errors.New("email format is invalid")
	}
	return nil
}

// NormalizeEmail lowercases and trims an email so uniqueness checks are
// case-insensitive everywhere
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword enforces the password policy for new credentials
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	// bcrypt only hashes the first 72 bytes
	if len(password) > 72 {
		return errors.New("password must be 72 characters or less")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return errors.New("password must contain at least one letter and one digit")
	}

	return nil
}
