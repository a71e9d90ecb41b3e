package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codetutor/internal/domain"
)

// Response is the envelope every JSON endpoint uses:
// {"success": true, "data": ...} or {"success": false, "error": "..."}
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Error: message})
}

// statusForError maps the domain error taxonomy onto HTTP status codes
func statusForError(err error) int {
	switch {
	case domain.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUserConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrAccountDisabled):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrAccountLocked),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenRevoked),
		errors.Is(err, domain.ErrTokenMalformed),
		errors.Is(err, domain.ErrTokenWrongType),
		errors.Is(err, domain.ErrNoToken),
		errors.Is(err, domain.ErrInvalidAuthHeader),
		errors.Is(err, domain.ErrEmptyToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondDomainError writes a domain error with the right status. Internal
// error detail is suppressed outside development mode.
func (s *Server) respondDomainError(c *gin.Context, err error) {
	status := statusForError(err)

	message := "internal server error"
	var de *domain.DomainError
	if status != http.StatusInternalServerError && errors.As(err, &de) {
		message = de.Message
		// Validation failures carry actionable field detail for the client
		if domain.IsValidationError(err) && de.Cause != nil {
			message = de.Message + ": " + de.Cause.Error()
		}
	} else if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
		if s.config.Environment == "development" {
			message = err.Error()
		}
	}

	respondError(c, status, message)
}
