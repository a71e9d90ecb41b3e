package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codetutor/internal/domain"
	"github.com/codetutor/internal/github"
)

// oauthSessionCookie identifies the browser session across the OAuth redirect
const oauthSessionCookie = "oauthSession"

// githubLogin starts the GitHub OAuth flow: stores state and the post-login
// target in a fresh browser session, then redirects to the provider.
func (s *Server) githubLogin(c *gin.Context) {
	if !s.config.GitHub.Enabled() {
		respondError(c, http.StatusNotFound, "github login is not configured")
		return
	}

	returnTo := s.sanitizeReturnTo(c.Query("returnTo"))

	sessionID, authURL, err := s.githubFlow.Begin(returnTo)
	if err != nil {
		s.respondDomainError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthSessionCookie, sessionID, int(github.CallbackTimeout.Seconds()),
		"/auth", s.config.Cookie.Domain, s.config.Cookie.Secure, true)

	c.Redirect(http.StatusFound, authURL)
}

// githubCallback finishes the flow. Success redirects to the client app with
// the access token in the URL and the refresh token in a cookie; every
// failure redirects to the login page with a short machine-readable code.
func (s *Server) githubCallback(c *gin.Context) {
	sessionID, err := c.Cookie(oauthSessionCookie)
	if err != nil || sessionID == "" {
		s.redirectLoginFailure(c, "invalid_state")
		return
	}

	// Session is single-use regardless of outcome
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthSessionCookie, "", -1, "/auth", s.config.Cookie.Domain, s.config.Cookie.Secure, true)

	if providerErr := c.Query("error"); providerErr != "" {
		// e.g. the user denied the authorization screen; detail stays server-side
		slog.WarnContext(c.Request.Context(), "github authorization denied", "providerError", providerErr)
		s.redirectLoginFailure(c, "github_auth_failed")
		return
	}

	user, returnTo, err := s.githubFlow.Complete(c.Request.Context(), sessionID, c.Query("state"), c.Query("code"))
	if err != nil {
		slog.WarnContext(c.Request.Context(), "github oauth callback failed", "error", err)
		s.redirectLoginFailure(c, oauthFailureCode(err))
		return
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		s.redirectLoginFailure(c, "internal")
		return
	}

	// Only the access token travels in the redirect URL; the refresh token is
	// cookie-only
	s.setRefreshCookie(c, pair.RefreshToken)

	target, err := url.Parse(s.resolveReturnTo(returnTo))
	if err != nil {
		s.redirectLoginFailure(c, "internal")
		return
	}
	query := target.Query()
	query.Set("access_token", pair.AccessToken)
	target.RawQuery = query.Encode()

	c.Redirect(http.StatusFound, target.String())
}

// oauthFailureCode maps flow errors to the short codes the login page shows
func oauthFailureCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrOAuthStateMismatch),
		errors.Is(err, domain.ErrOAuthSessionMissing):
		return "invalid_state"
	case errors.Is(err, domain.ErrOAuthTimeout):
		return "expired"
	case errors.Is(err, domain.ErrNoPrimaryEmail):
		return "no_primary_email"
	case errors.Is(err, domain.ErrEmailInUse):
		return "email_in_use"
	case errors.Is(err, domain.ErrAccountDisabled):
		return "account_disabled"
	default:
		return "github_auth_failed"
	}
}

// redirectLoginFailure sends the user-agent back to the login page with a
// machine-readable error code; never a stack trace or provider payload
func (s *Server) redirectLoginFailure(c *gin.Context, code string) {
	c.Redirect(http.StatusFound, s.config.FrontendURL+"/login?error="+url.QueryEscape(code))
}

// sanitizeReturnTo only accepts relative paths; anything else falls back to
// the frontend root, closing the open-redirect hole
func (s *Server) sanitizeReturnTo(returnTo string) string {
	if strings.HasPrefix(returnTo, "/") && !strings.HasPrefix(returnTo, "//") {
		return returnTo
	}
	return "/"
}

// resolveReturnTo joins a sanitized relative path onto the frontend origin
func (s *Server) resolveReturnTo(returnTo string) string {
	return strings.TrimSuffix(s.config.FrontendURL, "/") + s.sanitizeReturnTo(returnTo)
}
