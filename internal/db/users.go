package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/codetutor/internal/domain"
)

const userColumns = `id, username, email, password_hash, role, github_id, github_login,
	github_access_token, github_refresh_token, avatar_url, failed_login_attempts,
	last_failed_login_at, lockout_until, last_login_at, active, created_at, updated_at`

// CreateUser inserts a new user. Returns domain.ErrUserConflict when the
// username or email (case-insensitive) is already taken.
func (db *DB) CreateUser(user *User) error {
	_, err := db.Exec(
		`INSERT INTO users (id, username, email, password_hash, role, github_id, github_login,
			github_access_token, github_refresh_token, avatar_url, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role,
		user.GitHubID, user.GitHubLogin, user.GitHubAccessToken, user.GitHubRefreshToken,
		user.AvatarURL, user.Active, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrUserConflict.WithCause(err)
		}
		return err
	}
	return nil
}

// GetUserByID retrieves a user by ID
func (db *DB) GetUserByID(id string) (*User, error) {
	row := db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email, case-insensitively
func (db *DB) GetUserByEmail(email string) (*User, error) {
	row := db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email)
	return scanUser(row)
}

// GetUserByUsername retrieves a user by username
func (db *DB) GetUserByUsername(username string) (*User, error) {
	row := db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// GetUserByGitHubID retrieves a user by their linked GitHub identity
func (db *DB) GetUserByGitHubID(githubID string) (*User, error) {
	row := db.QueryRow(`SELECT `+userColumns+` FROM users WHERE github_id = ?`, githubID)
	return scanUser(row)
}

// ListUsers retrieves all users ordered by creation time
func (db *DB) ListUsers() ([]*User, error) {
	rows, err := db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// LinkGitHub merges a GitHub identity into an existing user record. Provider
// tokens are refreshed on every successful OAuth login.
func (db *DB) LinkGitHub(userID string, link GitHubLink) error {
	res, err := db.Exec(
		`UPDATE users SET github_id = ?, github_login = ?, github_access_token = ?,
			github_refresh_token = ?, avatar_url = ?, updated_at = ?
		WHERE id = ?`,
		link.ID, link.Login, nullable(link.AccessToken), nullable(link.RefreshToken),
		nullable(link.AvatarURL), time.Now(), userID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrUserConflict.WithCause(err)
		}
		return err
	}
	return requireRowAffected(res)
}

// RecordFailedLogin atomically increments the consecutive-failure counter and
// applies the lockout policy in a single UPDATE, so concurrent login attempts
// never lose updates. Failures older than the rolling window restart the count
// at one. Returns the new attempt count and the lockout expiry, if any.
func (db *DB) RecordFailedLogin(userID string, maxAttempts int, window, lockoutFor time.Duration, now time.Time) (int, time.Time, error) {
	windowStart := now.Add(-window).Unix()
	lockUntil := now.Add(lockoutFor).Unix()

	var attempts int
	var lockedUnix int64
	err := db.QueryRow(
		`UPDATE users SET
			failed_login_attempts = CASE WHEN last_failed_login_at >= ? THEN failed_login_attempts + 1 ELSE 1 END,
			lockout_until = CASE
				WHEN (CASE WHEN last_failed_login_at >= ? THEN failed_login_attempts + 1 ELSE 1 END) >= ? THEN ?
				ELSE lockout_until END,
			last_failed_login_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING failed_login_attempts, lockout_until`,
		windowStart, windowStart, maxAttempts, lockUntil, now.Unix(), userID,
	).Scan(&attempts, &lockedUnix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, time.Time{}, domain.ErrUserNotFound
		}
		return 0, time.Time{}, err
	}

	var lockedUntil time.Time
	if lockedUnix > 0 {
		lockedUntil = time.Unix(lockedUnix, 0)
	}
	return attempts, lockedUntil, nil
}

// ResetFailedLogins clears the failure counter and any lockout
func (db *DB) ResetFailedLogins(userID string) error {
	res, err := db.Exec(
		`UPDATE users SET failed_login_attempts = 0, last_failed_login_at = 0,
			lockout_until = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// UpdateLastLogin stamps a successful login
func (db *DB) UpdateLastLogin(userID string, at time.Time) error {
	res, err := db.Exec(`UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`, at, at, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// UpdateRole changes a user's role (admin-only operation at the HTTP layer).
// Already-issued access tokens keep their old role until they expire.
func (db *DB) UpdateRole(userID string, role domain.Role) error {
	res, err := db.Exec(`UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, role, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// SetActive soft-enables or soft-disables an account. Users are never hard-deleted.
func (db *DB) SetActive(userID string, active bool) error {
	res, err := db.Exec(`UPDATE users SET active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, active, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// UpdateProfile changes username and email. Returns domain.ErrUserConflict if
// either is already taken by another account.
func (db *DB) UpdateProfile(userID, username, email string) error {
	res, err := db.Exec(
		`UPDATE users SET username = ?, email = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		username, email, userID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrUserConflict.WithCause(err)
		}
		return err
	}
	return requireRowAffected(res)
}

// scanner abstracts *sql.Row and *sql.Rows for scanUser
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*User, error) {
	user := &User{}
	var passwordHash sql.NullString
	var lastFailedUnix, lockoutUnix int64

	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &passwordHash, &user.Role,
		&user.GitHubID, &user.GitHubLogin, &user.GitHubAccessToken, &user.GitHubRefreshToken,
		&user.AvatarURL, &user.FailedLoginAttempts, &lastFailedUnix, &lockoutUnix,
		&user.LastLoginAt, &user.Active, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	user.PasswordHash = passwordHash.String
	if lastFailedUnix > 0 {
		user.LastFailedLoginAt = time.Unix(lastFailedUnix, 0)
	}
	if lockoutUnix > 0 {
		user.LockoutUntil = time.Unix(lockoutUnix, 0)
	}
	return user, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
