package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/codetutor/internal/domain"
)

const defaultAPIBaseURL = "https://api.github.com"

// Profile is the subset of the GitHub user object the auth flow needs
type Profile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type emailEntry struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Client calls the GitHub REST API with a user's OAuth access token
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a GitHub API client. baseURL is overridable for tests;
// empty means the public API.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchProfile retrieves the authenticated user's profile
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	var profile Profile
	if err := c.get(ctx, "/user", accessToken, &profile); err != nil {
		return nil, err
	}
	if profile.ID == 0 {
		return nil, domain.ErrUpstreamProvider.WithCause(fmt.Errorf("provider returned a profile without an id"))
	}
	return &profile, nil
}

// FetchPrimaryEmail retrieves the user's primary verified email. Accounts
// without one cannot be linked reliably and fail with ErrNoPrimaryEmail.
func (c *Client) FetchPrimaryEmail(ctx context.Context, accessToken string) (string, error) {
	var emails []emailEntry
	if err := c.get(ctx, "/user/emails", accessToken, &emails); err != nil {
		return "", err
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", domain.ErrNoPrimaryEmail
}

func (c *Client) get(ctx context.Context, path, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ErrUpstreamProvider.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ErrUpstreamProvider.WithCause(fmt.Errorf("provider returned status %d for %s", resp.StatusCode, path))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.ErrUpstreamProvider.WithCause(err)
	}
	return nil
}
