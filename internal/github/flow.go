package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
	githubendpoint "golang.org/x/oauth2/github"

	"github.com/codetutor/internal/config"
	"github.com/codetutor/internal/db"
	"github.com/codetutor/internal/domain"
	"github.com/codetutor/internal/session"
	"github.com/codetutor/internal/validation"
)

// CallbackTimeout bounds the wall-clock time between authorization start and
// callback completion; stale callbacks are rejected
const CallbackTimeout = 5 * time.Minute

// UserStore is the slice of the credential store the OAuth flow needs
type UserStore interface {
	GetUserByGitHubID(githubID string) (*db.User, error)
	GetUserByEmail(email string) (*db.User, error)
	GetUserByUsername(username string) (*db.User, error)
	CreateUser(user *db.User) error
	LinkGitHub(userID string, link db.GitHubLink) error
}

// Flow drives the GitHub authorization-code exchange:
// a state nonce is stored per browser session before redirecting to the
// provider, and the callback must present the same nonce before any token
// exchange happens.
type Flow struct {
	oauth    *oauth2.Config
	api      *Client
	sessions session.Store
	users    UserStore
	timeout  time.Duration
	logger   *slog.Logger
}

// NewFlow creates a GitHub OAuth flow
func NewFlow(cfg config.GitHubOAuthConfig, sessions session.Store, users UserStore, logger *slog.Logger) *Flow {
	return &Flow{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     githubendpoint.Endpoint,
		},
		api:      NewClient(""),
		sessions: sessions,
		users:    users,
		timeout:  CallbackTimeout,
		logger:   logger,
	}
}

// SetEndpoints overrides the provider endpoints. Used by tests to point the
// flow at a local fake provider.
func (f *Flow) SetEndpoints(authURL, tokenURL, apiBaseURL string) {
	f.oauth.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
	f.api = NewClient(apiBaseURL)
}

// Begin starts the flow: it generates a random state nonce, stores it with the
// post-login redirect target under a new browser session id, and returns the
// provider authorization URL to redirect the user-agent to.
func (f *Flow) Begin(returnTo string) (sessionID, authURL string, err error) {
	state, err := session.NewID()
	if err != nil {
		return "", "", err
	}
	sessionID, err = session.NewID()
	if err != nil {
		return "", "", err
	}

	f.sessions.Put(sessionID, session.OAuthSession{
		State:     state,
		ReturnTo:  returnTo,
		CreatedAt: time.Now(),
	}, f.timeout)

	// Never log the nonce itself
	f.logger.Debug("oauth flow started", "provider", "github", "statePresent", state != "")

	return sessionID, f.oauth.AuthCodeURL(state), nil
}

// Complete consumes the browser session and runs the callback pipeline:
// state validation, staleness check, code exchange, identity fetch, and local
// user resolution. State validation short-circuits before any provider call.
func (f *Flow) Complete(ctx context.Context, sessionID, state, code string) (*db.User, string, error) {
	sess, ok := f.sessions.Get(sessionID)
	if !ok {
		return nil, "", domain.ErrOAuthSessionMissing
	}

	if state == "" || state != sess.State {
		return nil, "", domain.ErrOAuthStateMismatch
	}
	if time.Since(sess.CreatedAt) > f.timeout {
		return nil, "", domain.ErrOAuthTimeout
	}

	providerToken, err := f.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, "", domain.ErrUpstreamProvider.WithCause(err)
	}
	f.logger.Debug("oauth code exchanged", "provider", "github", "tokenPresent", providerToken.AccessToken != "")

	// Profile and primary email are independent reads; issue them together
	var (
		wg         sync.WaitGroup
		profile    *Profile
		profileErr error
		email      string
		emailErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		profile, profileErr = f.api.FetchProfile(ctx, providerToken.AccessToken)
	}()
	go func() {
		defer wg.Done()
		email, emailErr = f.api.FetchPrimaryEmail(ctx, providerToken.AccessToken)
	}()
	wg.Wait()

	if profileErr != nil {
		return nil, "", profileErr
	}
	if emailErr != nil {
		return nil, "", emailErr
	}

	user, err := f.resolveUser(profile, validation.NormalizeEmail(email), providerToken)
	if err != nil {
		return nil, "", err
	}
	return user, sess.ReturnTo, nil
}

// resolveUser finds or creates the local account keyed by the provider's
// stable numeric id. An unlinked local account that merely shares the email is
// rejected rather than silently merged; linking an existing password account
// to GitHub requires an authenticated, deliberate action elsewhere.
func (f *Flow) resolveUser(profile *Profile, email string, providerToken *oauth2.Token) (*db.User, error) {
	githubID := strconv.FormatInt(profile.ID, 10)
	link := db.GitHubLink{
		ID:           githubID,
		Login:        profile.Login,
		AvatarURL:    profile.AvatarURL,
		AccessToken:  providerToken.AccessToken,
		RefreshToken: providerToken.RefreshToken,
	}

	user, err := f.users.GetUserByGitHubID(githubID)
	switch {
	case err == nil:
		if !user.Active {
			return nil, domain.ErrAccountDisabled
		}
		// Refresh stored provider tokens on every login
		if err := f.users.LinkGitHub(user.ID, link); err != nil {
			return nil, err
		}
		return user, nil

	case errors.Is(err, domain.ErrUserNotFound):
		// fall through to create

	default:
		return nil, err
	}

	if _, err := f.users.GetUserByEmail(email); err == nil {
		return nil, domain.ErrEmailInUse
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	user = db.NewUser(f.pickUsername(profile.Login), email, "")
	user.GitHubID = &link.ID
	user.GitHubLogin = &link.Login
	if link.AccessToken != "" {
		user.GitHubAccessToken = &link.AccessToken
	}
	if link.RefreshToken != "" {
		user.GitHubRefreshToken = &link.RefreshToken
	}
	if link.AvatarURL != "" {
		user.AvatarURL = &link.AvatarURL
	}
	if err := f.users.CreateUser(user); err != nil {
		return nil, err
	}

	f.logger.Info("local user created from github identity", "userID", user.ID, "username", user.Username)
	return user, nil
}

// pickUsername prefers the GitHub login but falls back to a suffixed variant
// when the login is already taken locally
func (f *Flow) pickUsername(login string) string {
	if validation.ValidateUsername(login) == nil {
		if _, err := f.users.GetUserByUsername(login); errors.Is(err, domain.ErrUserNotFound) {
			return login
		}
	}
	for i := 1; i < 100; i++ {
		candidate := fmt.Sprintf("%s-gh%d", login, i)
		if _, err := f.users.GetUserByUsername(candidate); errors.Is(err, domain.ErrUserNotFound) {
			return candidate
		}
	}
	// practically unreachable; uuid-sized suffix guarantees uniqueness
	id, _ := session.NewID()
	return fmt.Sprintf("%s-%s", login, id[:8])
}
