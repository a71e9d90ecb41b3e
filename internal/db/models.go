package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/codetutor/internal/domain"
)

// User represents a stored credential record.
//
// SECURITY NOTICE:
// PasswordHash and the GitHub token fields are never serialized; handlers must
// only ever emit the Public() view across the trust boundary. The json:"-"
// tags are a second line of defense, not the primary one.
type User struct {
	ID                  string      `json:"id" db:"id"`
	Username            string      `json:"username" db:"username"`
	Email               string      `json:"email" db:"email"`
	PasswordHash        string      `json:"-" db:"password_hash"`
	Role                domain.Role `json:"role" db:"role"`
	GitHubID            *string     `json:"-" db:"github_id"`
	GitHubLogin         *string     `json:"-" db:"github_login"`
	GitHubAccessToken   *string     `json:"-" db:"github_access_token"`
	GitHubRefreshToken  *string     `json:"-" db:"github_refresh_token"`
	AvatarURL           *string     `json:"avatar_url,omitempty" db:"avatar_url"`
	FailedLoginAttempts int         `json:"-" db:"failed_login_attempts"`
	LastFailedLoginAt   time.Time   `json:"-" db:"last_failed_login_at"` // zero when no recent failure
	LockoutUntil        time.Time   `json:"-" db:"lockout_until"`        // zero when not locked
	LastLoginAt         *time.Time  `json:"last_login_at,omitempty" db:"last_login_at"`
	Active              bool        `json:"active" db:"active"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at" db:"updated_at"`
}

// NewUser creates a new User with a generated UUID and the default role
func NewUser(username, email, passwordHash string) *User {
	return &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         domain.RoleStudent,
		Active:       true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// LockedAt reports whether the account is locked out at the given instant
func (u *User) LockedAt(now time.Time) bool {
	return !u.LockoutUntil.IsZero() && now.Before(u.LockoutUntil)
}

// GitHubLinked reports whether the account has a GitHub identity attached
func (u *User) GitHubLinked() bool {
	return u.GitHubID != nil && *u.GitHubID != ""
}

// HasCredential reports whether the account has at least one auth method.
// Every persisted user must satisfy this invariant.
func (u *User) HasCredential() bool {
	return u.PasswordHash != "" || u.GitHubLinked()
}

// PublicUser is the only user representation that crosses the trust boundary
type PublicUser struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	Role         domain.Role `json:"role"`
	GitHubLinked bool        `json:"github_linked"`
	AvatarURL    string      `json:"avatar_url,omitempty"`
	Active       bool        `json:"active"`
	CreatedAt    time.Time   `json:"created_at"`
	LastLoginAt  *time.Time  `json:"last_login_at,omitempty"`
}

// Public strips credentials and provider tokens unconditionally
func (u *User) Public() *PublicUser {
	pub := &PublicUser{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Role:         u.Role,
		GitHubLinked: u.GitHubLinked(),
		Active:       u.Active,
		CreatedAt:    u.CreatedAt,
		LastLoginAt:  u.LastLoginAt,
	}
	if u.AvatarURL != nil {
		pub.AvatarURL = *u.AvatarURL
	}
	return pub
}

// GitHubLink carries the provider identity merged into a user record
type GitHubLink struct {
	ID           string
	Login        string
	AvatarURL    string
	AccessToken  string
	RefreshToken string
}
