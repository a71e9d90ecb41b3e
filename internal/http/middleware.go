package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codetutor/internal/domain"
	"github.com/codetutor/internal/token"
)

const (
	// contextUserKey is where requireAuth stores the authenticated identity
	contextUserKey = "authUser"

	// refreshAdvisoryHeader tells clients their access token is about to
	// expire; purely advisory, the current request still proceeds
	refreshAdvisoryHeader = "X-Token-Expiring-Soon"
	nearExpiryThreshold   = 5 * time.Minute

	bearerPrefix = "Bearer "
)

// AuthUser is the identity attached to the request context after verification
type AuthUser struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// extractBearerToken pulls the token out of the Authorization header.
// Failure modes are distinct: missing header, wrong scheme, blank token.
func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", domain.ErrNoToken
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", domain.ErrInvalidAuthHeader
	}
	tok := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if tok == "" {
		return "", domain.ErrEmptyToken
	}
	return tok, nil
}

// verifyRequestToken extracts and verifies the access token on a request
func (s *Server) verifyRequestToken(r *http.Request) (*token.Claims, error) {
	bearer, err := extractBearerToken(r)
	if err != nil {
		return nil, err
	}
	return s.tokens.Verify(bearer, token.UseAccess)
}

// requireAuth verifies the access token and attaches the identity to the
// context. Token verification always runs before any role evaluation.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := s.verifyRequestToken(c.Request)
		if err != nil {
			s.respondDomainError(c, err)
			c.Abort()
			return
		}

		if claims.ExpiresAt != nil && time.Until(claims.ExpiresAt.Time) < nearExpiryThreshold {
			c.Header(refreshAdvisoryHeader, "true")
		}

		c.Set(contextUserKey, AuthUser{
			ID:       claims.Subject,
			Username: claims.Username,
			Role:     domain.Role(claims.Role),
		})
		c.Next()
	}
}

// requireRole gates a route group on the role hierarchy. Must be mounted
// after requireAuth; a request without a verified identity never gets here
// with a role to evaluate.
func (s *Server) requireRole(required ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := getAuthUser(c)
		if !ok {
			s.respondDomainError(c, domain.ErrNoToken)
			c.Abort()
			return
		}
		if !user.Role.Satisfies(required...) {
			s.respondDomainError(c, domain.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// getAuthUser extracts the authenticated user from context
func getAuthUser(c *gin.Context) (AuthUser, bool) {
	if value, exists := c.Get(contextUserKey); exists {
		if user, ok := value.(AuthUser); ok {
			return user, true
		}
	}
	return AuthUser{}, false
}
