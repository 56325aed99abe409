package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/desertthunder/muse/internal/models"
	"github.com/desertthunder/muse/internal/shared"
)

const (
	// RefreshCookieName is the cookie carrying the refresh token identifier.
	RefreshCookieName = "refresh_token_cookie"
	// RefreshCookiePath scopes the cookie to the refresh endpoint only.
	RefreshCookiePath = "/api/oauth/token/refresh"
	// DefaultDisplayName substitutes for GitHub profiles without a name.
	DefaultDisplayName = "Muse Listener"
)

// UserStore is the persistence boundary for user records.
type UserStore interface {
	Create(ctx context.Context, name, email, avatarURL string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// RefreshTokenStore is the persistence boundary for refresh token records.
type RefreshTokenStore interface {
	Create(ctx context.Context, userID uuid.UUID) (*models.RefreshToken, error)
	DeleteOldestBeyondLimit(ctx context.Context, userID uuid.UUID, keep int) error
	GetLiveByID(ctx context.Context, id uuid.UUID) (*models.RefreshToken, *models.User, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// TokenPair is the product of a successful login or refresh: the signed
// access token for the JSON body and the refresh cookie directive for the
// response headers.
type TokenPair struct {
	AccessToken string
	Cookie      *http.Cookie
}

// Issuer orchestrates token issuance and rotation against the stores.
//
// Issuance steps are not wrapped in a transaction; the per-user cap and
// single-use consumption rely on per-statement guarantees only.
type Issuer struct {
	users      UserStore
	tokens     RefreshTokenStore
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	keep       int
}

// NewIssuer creates an [Issuer] bound to the given stores and auth settings.
func NewIssuer(users UserStore, tokens RefreshTokenStore, cfg shared.AuthConfig) *Issuer {
	return &Issuer{
		users:      users,
		tokens:     tokens,
		secret:     []byte(cfg.SecretKey),
		accessTTL:  cfg.AccessTTL(),
		refreshTTL: cfg.RefreshTTL(),
		keep:       cfg.RefreshTokenLimit,
	}
}

// IssueTokens maps a resolved identity onto a local user and issues a
// fresh token pair.
//
// The user is created on first login by email; an identity without an
// email fails with [shared.ErrEmailRequired] before any store write.
func (i *Issuer) IssueTokens(ctx context.Context, identity *models.Identity) (*TokenPair, error) {
	if identity.Email == nil {
		return nil, shared.ErrEmailRequired
	}

	user, err := i.users.GetByEmail(ctx, *identity.Email)
	if errors.Is(err, shared.ErrNotFound) {
		name := DefaultDisplayName
		if identity.Name != nil {
			name = *identity.Name
		}
		user, err = i.users.Create(ctx, name, *identity.Email, identity.AvatarURL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	return i.issueFor(ctx, user)
}

// Refresh consumes the presented refresh token and reissues a pair for
// its owner.
//
// The consumed token is deleted the instant it matches, before the
// replacement is minted.
func (i *Issuer) Refresh(ctx context.Context, cookieValue string) (*TokenPair, error) {
	if cookieValue == "" {
		return nil, shared.ErrNotAuthenticated
	}

	id, err := uuid.Parse(cookieValue)
	if err != nil {
		return nil, shared.ErrInvalidRefreshToken
	}

	token, user, err := i.tokens.GetLiveByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	if err := i.tokens.DeleteByID(ctx, token.ID); err != nil {
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}

	return i.issueFor(ctx, user)
}

// issueFor runs the shared tail of login and refresh: cap enforcement
// against prior history, new refresh token, access token, cookie.
func (i *Issuer) issueFor(ctx context.Context, user *models.User) (*TokenPair, error) {
	if err := i.tokens.DeleteOldestBeyondLimit(ctx, user.ID, i.keep); err != nil {
		return nil, fmt.Errorf("failed to enforce refresh token limit: %w", err)
	}

	token, err := i.tokens.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	access, err := MintAccessToken(user, i.secret, i.accessTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, Cookie: i.refreshCookie(token)}, nil
}

func (i *Issuer) refreshCookie(token *models.RefreshToken) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token.ID.String(),
		Path:     RefreshCookiePath,
		MaxAge:   int(i.refreshTTL.Seconds()),
		HttpOnly: true,
	}
}
