package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"

	"github.com/desertthunder/muse/internal/shared"
)

// githubStub serves the token exchange and API endpoints Resolve touches.
type githubStub struct {
	exchangeStatus int
	userBody       string
	emailsBody     string
	emailsStatus   int
}

func newGitHubService(t *testing.T, stub githubStub) *GitHubService {
	t.Helper()

	if stub.exchangeStatus == 0 {
		stub.exchangeStatus = http.StatusOK
	}
	if stub.emailsStatus == 0 {
		stub.emailsStatus = http.StatusOK
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login/oauth/access_token":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(stub.exchangeStatus)
			fmt.Fprint(w, `{"access_token": "gho_testtoken", "token_type": "bearer"}`)
		case "/user":
			if r.Header.Get("Authorization") != "Bearer gho_testtoken" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			fmt.Fprint(w, stub.userBody)
		case "/user/emails":
			w.WriteHeader(stub.emailsStatus)
			fmt.Fprint(w, stub.emailsBody)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	service := NewGitHubService(shared.GitHubConfig{ClientID: "id", ClientSecret: "secret"})
	service.baseURL = server.URL
	service.config.Endpoint = oauth2.Endpoint{
		AuthURL:   server.URL + "/login/oauth/authorize",
		TokenURL:  server.URL + "/login/oauth/access_token",
		AuthStyle: oauth2.AuthStyleInParams,
	}

	return service
}

func TestGitHubServiceResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves profile and first email", func(t *testing.T) {
		service := newGitHubService(t, githubStub{
			userBody: `{"login": "octocat", "id": 1, "name": "The Octocat", "avatar_url": "https://avatars.example.com/octocat"}`,
			emailsBody: `[
				{"email": "secondary@example.com", "primary": false, "verified": true},
				{"email": "primary@example.com", "primary": true, "verified": true}
			]`,
		})

		identity, err := service.Resolve(ctx, "12345678901234567890")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}

		if identity.Name == nil || *identity.Name != "The Octocat" {
			t.Errorf("unexpected name %v", identity.Name)
		}

		// the first listed email wins regardless of the primary flag
		if identity.Email == nil || *identity.Email != "secondary@example.com" {
			t.Errorf("unexpected email %v", identity.Email)
		}

		if identity.AvatarURL != "https://avatars.example.com/octocat" {
			t.Errorf("unexpected avatar URL %q", identity.AvatarURL)
		}
	})

	t.Run("null profile name stays nil", func(t *testing.T) {
		service := newGitHubService(t, githubStub{
			userBody:   `{"login": "octocat", "id": 1, "name": null, "avatar_url": ""}`,
			emailsBody: `[{"email": "octocat@example.com", "primary": true, "verified": true}]`,
		})

		identity, err := service.Resolve(ctx, "12345678901234567890")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}

		if identity.Name != nil {
			t.Errorf("expected nil name, got %q", *identity.Name)
		}
	})

	t.Run("empty email list resolves to nil email", func(t *testing.T) {
		service := newGitHubService(t, githubStub{
			userBody:   `{"login": "octocat", "id": 1, "name": "The Octocat", "avatar_url": ""}`,
			emailsBody: `[]`,
		})

		identity, err := service.Resolve(ctx, "12345678901234567890")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}

		if identity.Email != nil {
			t.Errorf("expected nil email, got %q", *identity.Email)
		}
	})

	t.Run("failed exchange", func(t *testing.T) {
		service := newGitHubService(t, githubStub{exchangeStatus: http.StatusBadRequest})

		if _, err := service.Resolve(ctx, "badbadbadbadbadbadba"); !errors.Is(err, shared.ErrInvalidAuthorizationCode) {
			t.Errorf("expected ErrInvalidAuthorizationCode, got %v", err)
		}
	})

	t.Run("API error after exchange", func(t *testing.T) {
		service := newGitHubService(t, githubStub{
			userBody:     `{"login": "octocat", "id": 1, "name": null, "avatar_url": ""}`,
			emailsStatus: http.StatusForbidden,
		})

		if _, err := service.Resolve(ctx, "12345678901234567890"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}
