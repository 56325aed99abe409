package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/desertthunder/muse/internal/models"
	"github.com/desertthunder/muse/internal/shared"
)

// RefreshTokenRepository implements persistence for [models.RefreshToken].
//
// Token rows cascade-delete with their owning user.
type RefreshTokenRepository struct {
	db  PgxPool
	ttl time.Duration
}

// NewRefreshTokenRepository creates a new [RefreshTokenRepository].
//
// ttl is the lifetime stamped onto every created token.
func NewRefreshTokenRepository(db PgxPool, ttl time.Duration) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db, ttl: ttl}
}

// Create inserts a token row for the user with a generated ID and
// expiry = now + ttl.
func (r *RefreshTokenRepository) Create(ctx context.Context, userID uuid.UUID) (*models.RefreshToken, error) {
	token := &models.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(r.ttl),
	}

	const query = `
INSERT INTO refresh_tokens (id, user_id, expires_at)
VALUES ($1, $2, $3)
RETURNING created_at`

	err := r.db.QueryRow(ctx, query, token.ID, token.UserID, token.ExpiresAt).
		Scan(&token.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert refresh token: %w", err)
	}

	return token, nil
}

// DeleteOldestBeyondLimit purges the user's token history down to the
// keep most recently created rows. Safe to call when the user holds
// keep or fewer tokens.
func (r *RefreshTokenRepository) DeleteOldestBeyondLimit(ctx context.Context, userID uuid.UUID, keep int) error {
	const query = `
DELETE FROM refresh_tokens
WHERE id IN (
    SELECT id FROM refresh_tokens
    WHERE user_id = $1
    ORDER BY created_at DESC
    OFFSET $2
)`

	if _, err := r.db.Exec(ctx, query, userID, keep); err != nil {
		return fmt.Errorf("failed to prune refresh tokens: %w", err)
	}

	return nil
}

// GetLiveByID retrieves an unexpired token and its owning user.
//
// Expired and missing tokens are indistinguishable: both return
// [shared.ErrNotFound].
func (r *RefreshTokenRepository) GetLiveByID(ctx context.Context, id uuid.UUID) (*models.RefreshToken, *models.User, error) {
	const query = `
SELECT t.id, t.user_id, t.expires_at, t.created_at,
       u.id, u.name, u.email, u.avatar_url, u.created_at, u.status
FROM refresh_tokens t
JOIN users u ON u.id = t.user_id
WHERE t.id = $1 AND t.expires_at >= now()`

	var (
		token models.RefreshToken
		user  models.User
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&token.ID, &token.UserID, &token.ExpiresAt, &token.CreatedAt,
		&user.ID, &user.Name, &user.Email, &user.AvatarURL, &user.CreatedAt, &user.Status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query refresh token: %w", err)
	}

	return &token, &user, nil
}

// DeleteByID removes a token row. Deleting a nonexistent ID is not an error.
func (r *RefreshTokenRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM refresh_tokens WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	return nil
}
