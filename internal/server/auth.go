package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/muse/internal/auth"
	"github.com/desertthunder/muse/internal/services"
	"github.com/desertthunder/muse/internal/shared"
)

// oauthInput is the login request body. The temporary code GitHub hands
// to the frontend is always exactly 20 characters.
type oauthInput struct {
	Code string `json:"code"`
}

// tokenResponse is the success body for login and refresh.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// AuthHandler serves the OAuth login and token refresh endpoints.
// Implements the [Handler] interface for registration with a [Router].
type AuthHandler struct {
	resolver services.IdentityResolver
	issuer   *auth.Issuer
	logger   *log.Logger
}

// NewAuthHandler creates an [AuthHandler] bound to the identity resolver
// and token issuer.
func NewAuthHandler(resolver services.IdentityResolver, issuer *auth.Issuer, logger *log.Logger) *AuthHandler {
	return &AuthHandler{resolver: resolver, issuer: issuer, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []string {
	return []string{
		"POST /api/oauth/token",
		"POST /api/oauth/token/refresh",
	}
}

// ServeHTTP dispatches on the matched route pattern.
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case "POST /api/oauth/token":
		h.token(w, r)
	case "POST /api/oauth/token/refresh":
		h.refresh(w, r)
	default:
		http.NotFound(w, r)
	}
}

// token exchanges a GitHub temporary code for a first-party token pair.
func (h *AuthHandler) token(w http.ResponseWriter, r *http.Request) {
	var input oauthInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(input.Code) != 20 {
		writeDetail(w, http.StatusBadRequest, "Code must be exactly 20 characters")
		return
	}

	identity, err := h.resolver.Resolve(r.Context(), input.Code)
	if err != nil {
		h.logger.Warn("github resolution failed", "error", err)
		switch {
		case errors.Is(err, shared.ErrInvalidAuthorizationCode):
			writeDetail(w, http.StatusUnauthorized, "Invalid github temporary code")
		case errors.Is(err, shared.ErrNotAuthenticated):
			writeDetail(w, http.StatusUnauthorized, "Not authenticated to GitHub")
		default:
			writeDetail(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	pair, err := h.issuer.IssueTokens(r.Context(), identity)
	if err != nil {
		if errors.Is(err, shared.ErrEmailRequired) {
			writeDetail(w, http.StatusBadRequest, "Email in github profile is required")
			return
		}
		h.logger.Error("token issuance failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.SetCookie(w, pair.Cookie)
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken})
}

// refresh rotates the refresh token presented in the cookie.
func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var value string
	if cookie, err := r.Cookie(auth.RefreshCookieName); err == nil {
		value = cookie.Value
	}

	pair, err := h.issuer.Refresh(r.Context(), value)
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) || errors.Is(err, shared.ErrInvalidRefreshToken) {
			writeDetail(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		h.logger.Error("token refresh failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.SetCookie(w, pair.Cookie)
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken})
}
