package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/muse/internal/auth"
	"github.com/desertthunder/muse/internal/models"
	"github.com/desertthunder/muse/internal/shared"
	fakes "github.com/desertthunder/muse/internal/testing"
)

const validCode = "12345678901234567890"

func testIdentity() *models.Identity {
	name := "Octocat"
	email := "octocat@example.com"
	return &models.Identity{
		Name:      &name,
		Email:     &email,
		AvatarURL: "https://avatars.example.com/octocat",
	}
}

type authFixture struct {
	router   *BasicRouter
	resolver *fakes.FakeResolver
	users    *fakes.FakeUserStore
	tokens   *fakes.FakeTokenStore
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := fakes.NewFakeUserStore()
	tokens := fakes.NewFakeTokenStore(users)
	issuer := auth.NewIssuer(users, tokens, shared.AuthConfig{
		SecretKey:         "test-secret",
		AccessTTLSeconds:  10,
		RefreshTTLDays:    30,
		RefreshTokenLimit: 4,
	})

	resolver := &fakes.FakeResolver{Identity: testIdentity()}
	logger := shared.NewLogger(io.Discard)

	router := NewBasicRouter()
	router.Handler(NewAuthHandler(resolver, issuer, logger))

	return &authFixture{router: router, resolver: resolver, users: users, tokens: tokens}
}

func (f *authFixture) login(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/oauth/token", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not a detail body: %v", err)
	}

	return body.Detail
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == auth.RefreshCookieName {
			return cookie
		}
	}

	t.Fatal("no refresh cookie in response")
	return nil
}

func TestAuthHandlerToken(t *testing.T) {
	t.Run("login issues tokens and sets the cookie", func(t *testing.T) {
		fixture := newAuthFixture(t)

		rec := fixture.login(t, `{"code": "`+validCode+`"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var body struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("bad response body: %v", err)
		}
		if body.AccessToken == "" {
			t.Error("expected a non-empty access token")
		}

		cookie := refreshCookie(t, rec)
		if cookie.Path != auth.RefreshCookiePath {
			t.Errorf("unexpected cookie path %q", cookie.Path)
		}
		if !cookie.HttpOnly {
			t.Error("refresh cookie must be HttpOnly")
		}

		if fixture.users.Count() != 1 {
			t.Errorf("expected 1 user after login, got %d", fixture.users.Count())
		}
	})

	t.Run("repeat logins share one account", func(t *testing.T) {
		fixture := newAuthFixture(t)

		for range 3 {
			if rec := fixture.login(t, `{"code": "`+validCode+`"}`); rec.Code != http.StatusOK {
				t.Fatalf("login failed with %d", rec.Code)
			}
		}

		if fixture.users.Count() != 1 {
			t.Errorf("expected a single account, got %d", fixture.users.Count())
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		fixture := newAuthFixture(t)

		rec := fixture.login(t, `{"code": `)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if detail := decodeDetail(t, rec); detail != "Invalid request body" {
			t.Errorf("unexpected detail %q", detail)
		}
	})

	t.Run("code length is enforced", func(t *testing.T) {
		fixture := newAuthFixture(t)

		rec := fixture.login(t, `{"code": "short"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if detail := decodeDetail(t, rec); detail != "Code must be exactly 20 characters" {
			t.Errorf("unexpected detail %q", detail)
		}
	})

	t.Run("rejected code", func(t *testing.T) {
		fixture := newAuthFixture(t)
		fixture.resolver.Err = shared.ErrInvalidAuthorizationCode

		rec := fixture.login(t, `{"code": "`+validCode+`"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if detail := decodeDetail(t, rec); detail != "Invalid github temporary code" {
			t.Errorf("unexpected detail %q", detail)
		}
	})

	t.Run("provider outage", func(t *testing.T) {
		fixture := newAuthFixture(t)
		fixture.resolver.Err = shared.ErrNotAuthenticated

		rec := fixture.login(t, `{"code": "`+validCode+`"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if detail := decodeDetail(t, rec); detail != "Not authenticated to GitHub" {
			t.Errorf("unexpected detail %q", detail)
		}
	})

	t.Run("profile without email", func(t *testing.T) {
		fixture := newAuthFixture(t)
		fixture.resolver.Identity = &models.Identity{AvatarURL: "https://avatars.example.com/x"}

		rec := fixture.login(t, `{"code": "`+validCode+`"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if detail := decodeDetail(t, rec); detail != "Email in github profile is required" {
			t.Errorf("unexpected detail %q", detail)
		}
		if fixture.users.Count() != 0 {
			t.Errorf("expected no account to be created, got %d", fixture.users.Count())
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		fixture := newAuthFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/api/oauth/token", nil)
		rec := httptest.NewRecorder()
		fixture.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestAuthHandlerRefresh(t *testing.T) {
	refresh := func(t *testing.T, fixture *authFixture, cookie *http.Cookie) *httptest.ResponseRecorder {
		t.Helper()

		req := httptest.NewRequest(http.MethodPost, "/api/oauth/token/refresh", nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rec := httptest.NewRecorder()
		fixture.router.ServeHTTP(rec, req)

		return rec
	}

	t.Run("rotates the cookie", func(t *testing.T) {
		fixture := newAuthFixture(t)
		cookie := refreshCookie(t, fixture.login(t, `{"code": "`+validCode+`"}`))

		rec := refresh(t, fixture, cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		rotated := refreshCookie(t, rec)
		if rotated.Value == cookie.Value {
			t.Error("expected a fresh refresh token value")
		}
	})

	t.Run("consumed cookie is rejected", func(t *testing.T) {
		fixture := newAuthFixture(t)
		cookie := refreshCookie(t, fixture.login(t, `{"code": "`+validCode+`"}`))

		if rec := refresh(t, fixture, cookie); rec.Code != http.StatusOK {
			t.Fatalf("first refresh failed with %d", rec.Code)
		}

		rec := refresh(t, fixture, cookie)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 on reuse, got %d", rec.Code)
		}
		if detail := decodeDetail(t, rec); detail != "Invalid refresh token" {
			t.Errorf("unexpected detail %q", detail)
		}
	})

	t.Run("missing cookie", func(t *testing.T) {
		fixture := newAuthFixture(t)

		rec := refresh(t, fixture, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if detail := decodeDetail(t, rec); detail != "Invalid refresh token" {
			t.Errorf("unexpected detail %q", detail)
		}
	})

	t.Run("garbage cookie", func(t *testing.T) {
		fixture := newAuthFixture(t)

		rec := refresh(t, fixture, &http.Cookie{Name: auth.RefreshCookieName, Value: "not-a-uuid"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}
