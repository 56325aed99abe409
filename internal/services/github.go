// GitHub identity resolution for the OAuth login flow
//
// GitHub API response types based on https://docs.github.com/en/rest/users
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	"github.com/desertthunder/muse/internal/models"
	"github.com/desertthunder/muse/internal/shared"
)

const (
	githubBaseURL    = "https://api.github.com"
	githubAPIVersion = "2022-11-28"
)

// GitHubUser represents the authenticated GitHub account's profile.
//
// Name is nullable; the profile's own email field is ignored in favor of
// the email list endpoint.
type GitHubUser struct {
	Login     string  `json:"login"`
	ID        int64   `json:"id"`
	Name      *string `json:"name"`
	AvatarURL string  `json:"avatar_url"`
}

// GitHubEmail represents one entry of the account's email list.
type GitHubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// GitHubService implements [IdentityResolver] against the GitHub API.
type GitHubService struct {
	config     *oauth2.Config
	httpClient *http.Client
	baseURL    string
}

// NewGitHubService creates a resolver with the given OAuth application
// credentials.
func NewGitHubService(cfg shared.GitHubConfig) *GitHubService {
	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     githuboauth.Endpoint,
	}

	return &GitHubService{
		config:     config,
		httpClient: http.DefaultClient,
		baseURL:    githubBaseURL,
	}
}

// Resolve exchanges the temporary code for an access token, then fetches
// the profile and email list.
//
// The primary email is the FIRST entry of the list; the provider's
// primary flag is not consulted. Accounts with an empty list resolve to
// a nil email and are rejected later by token issuance.
func (s *GitHubService) Resolve(ctx context.Context, code string) (*models.Identity, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidAuthorizationCode, err)
	}

	var profile GitHubUser
	if err := s.doRequest(ctx, token.AccessToken, "/user", &profile); err != nil {
		return nil, err
	}

	var emails []GitHubEmail
	if err := s.doRequest(ctx, token.AccessToken, "/user/emails", &emails); err != nil {
		return nil, err
	}

	identity := &models.Identity{
		Name:      profile.Name,
		AvatarURL: profile.AvatarURL,
	}
	if len(emails) > 0 {
		identity.Email = &emails[0].Email
	}

	return identity, nil
}

// doRequest performs an authenticated GET against the GitHub API.
func (s *GitHubService) doRequest(ctx context.Context, accessToken, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("X-GitHub-Api-Version", githubAPIVersion)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: github API status %d", shared.ErrNotAuthenticated, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}

	return nil
}
