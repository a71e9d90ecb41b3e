package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codetutor/internal/db"
	"github.com/codetutor/internal/domain"
	"github.com/codetutor/internal/token"
	"github.com/codetutor/internal/validation"
)

// refreshCookieName is the HTTP-only cookie carrying the refresh token
const refreshCookieName = "refreshToken"

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents a password login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token when the client cannot use cookies
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// tokenGrant is the data payload returned by register and login
type tokenGrant struct {
	User        *db.PublicUser `json:"user"`
	AccessToken string         `json:"accessToken"`
	ExpiresIn   int64          `json:"expiresIn"`
}

// register creates a password-backed account and logs it in
func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format")
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		s.respondDomainError(c, domain.WrapValidationError("username", err))
		return
	}
	email := validation.NormalizeEmail(req.Email)
	if err := validation.ValidateEmail(email); err != nil {
		s.respondDomainError(c, domain.WrapValidationError("email", err))
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		s.respondDomainError(c, domain.WrapValidationError("password", err))
		return
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		// hashing failure is fatal for registration
		s.respondDomainError(c, err)
		return
	}

	user := db.NewUser(req.Username, email, hash)
	if err := s.database.CreateUser(user); err != nil {
		s.respondDomainError(c, err)
		return
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		s.respondDomainError(c, err)
		return
	}
	s.setRefreshCookie(c, pair.RefreshToken)

	slog.InfoContext(c.Request.Context(), "user registered", "userID", user.ID, "username", user.Username)
	respondOK(c, http.StatusCreated, tokenGrant{
		User:        user.Public(),
		AccessToken: pair.AccessToken,
		ExpiresIn:   pair.ExpiresIn,
	})
}

// login authenticates email+password. Lockout is checked before the password
// so a locked account fails identically for right and wrong passwords.
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format")
		return
	}

	now := time.Now()
	user, err := s.database.GetUserByEmail(validation.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// same response as a wrong password; no account enumeration
			s.respondDomainError(c, domain.ErrInvalidCredentials)
			return
		}
		s.respondDomainError(c, err)
		return
	}

	if user.LockedAt(now) {
		s.respondDomainError(c, domain.ErrAccountLocked)
		return
	}
	if !user.Active {
		s.respondDomainError(c, domain.ErrAccountDisabled)
		return
	}

	if user.PasswordHash == "" || !s.hasher.Verify(req.Password, user.PasswordHash) {
		attempts, lockedUntil, recErr := s.database.RecordFailedLogin(
			user.ID, s.config.Lockout.MaxAttempts, s.config.Lockout.Window, s.config.Lockout.Duration, now)
		if recErr != nil {
			slog.ErrorContext(c.Request.Context(), "failed to record login failure", "userID", user.ID, "error", recErr)
		} else if !lockedUntil.IsZero() && lockedUntil.After(now) {
			slog.WarnContext(c.Request.Context(), "account locked after repeated failures",
				"userID", user.ID, "attempts", attempts, "until", lockedUntil)
		}
		s.respondDomainError(c, domain.ErrInvalidCredentials)
		return
	}

	if err := s.database.ResetFailedLogins(user.ID); err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to reset login failures", "userID", user.ID, "error", err)
	}
	if err := s.database.UpdateLastLogin(user.ID, now); err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to stamp last login", "userID", user.ID, "error", err)
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		s.respondDomainError(c, err)
		return
	}
	s.setRefreshCookie(c, pair.RefreshToken)

	respondOK(c, http.StatusOK, tokenGrant{
		User:        user.Public(),
		AccessToken: pair.AccessToken,
		ExpiresIn:   pair.ExpiresIn,
	})
}

// refresh exchanges a valid refresh token for a new access token. The refresh
// token comes from the cookie or, failing that, the request body.
func (s *Server) refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || refreshToken == "" {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		s.respondDomainError(c, domain.ErrNoToken)
		return
	}

	accessToken, expiresIn, err := s.tokens.Refresh(refreshToken, s.database.GetUserByID)
	if err != nil {
		s.respondDomainError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"accessToken": accessToken,
		"expiresIn":   expiresIn,
	})
}

// logout revokes whatever tokens the request presents and clears the cookies.
// Always succeeds, even when the tokens are already gone or invalid.
func (s *Server) logout(c *gin.Context) {
	if bearer, err := extractBearerToken(c.Request); err == nil {
		if err := s.tokens.Revoke(bearer, token.UseAccess); err != nil {
			slog.DebugContext(c.Request.Context(), "access token not revocable on logout", "error", err)
		}
	}
	if refreshToken, err := c.Cookie(refreshCookieName); err == nil && refreshToken != "" {
		if err := s.tokens.Revoke(refreshToken, token.UseRefresh); err != nil {
			slog.DebugContext(c.Request.Context(), "refresh token not revocable on logout", "error", err)
		}
	}

	s.clearRefreshCookie(c)
	respondOK(c, http.StatusOK, gin.H{"message": "logged out"})
}

// statusResponse is the shape of GET /auth/status
type statusResponse struct {
	Success         bool           `json:"success"`
	IsAuthenticated bool           `json:"isAuthenticated"`
	User            *db.PublicUser `json:"user,omitempty"`
	Error           string         `json:"error,omitempty"`
}

// status reports whether the presented access token is valid. An expired or
// invalid token is a plain 401, never a server error.
func (s *Server) status(c *gin.Context) {
	claims, err := s.verifyRequestToken(c.Request)
	if err != nil {
		var de *domain.DomainError
		message := "not authenticated"
		if errors.As(err, &de) {
			message = de.Message
		}
		c.JSON(http.StatusUnauthorized, statusResponse{
			Success:         false,
			IsAuthenticated: false,
			Error:           message,
		})
		return
	}

	user, err := s.database.GetUserByID(claims.Subject)
	if err != nil {
		c.JSON(http.StatusUnauthorized, statusResponse{
			Success:         false,
			IsAuthenticated: false,
			Error:           "account no longer available",
		})
		return
	}

	c.JSON(http.StatusOK, statusResponse{
		Success:         true,
		IsAuthenticated: true,
		User:            user.Public(),
	})
}

// setRefreshCookie stores the refresh token as an HTTP-only, SameSite=Lax
// cookie scoped to the auth endpoints
func (s *Server) setRefreshCookie(c *gin.Context, refreshToken string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, refreshToken, int(s.config.JWT.RefreshTTL.Seconds()),
		"/auth", s.config.Cookie.Domain, s.config.Cookie.Secure, true)
}

func (s *Server) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, "", -1, "/auth", s.config.Cookie.Domain, s.config.Cookie.Secure, true)
}
