package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/desertthunder/muse/internal/models"
	"github.com/desertthunder/muse/internal/shared"
)

// UserRepository implements persistence for [models.User].
type UserRepository struct {
	db PgxPool
}

// NewUserRepository creates a new [UserRepository] with the given pool
func NewUserRepository(db PgxPool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user with a generated ID and the default status.
//
// A duplicate email surfaces as [shared.ErrAlreadyExists].
func (r *UserRepository) Create(ctx context.Context, name, email, avatarURL string) (*models.User, error) {
	user := &models.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		AvatarURL: avatarURL,
		Status:    models.StatusUser,
	}

	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	const query = `
INSERT INTO users (id, name, email, avatar_url, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at`

	err := r.db.QueryRow(ctx, query, user.ID, user.Name, user.Email, user.AvatarURL, user.Status).
		Scan(&user.CreatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("email %s: %w", email, shared.ErrAlreadyExists)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email, returning [shared.ErrNotFound] on a miss.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `
SELECT id, name, email, avatar_url, created_at, status
FROM users WHERE email = $1`

	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

// GetByID retrieves a user by ID, returning [shared.ErrNotFound] on a miss.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const query = `
SELECT id, name, email, avatar_url, created_at, status
FROM users WHERE id = $1`

	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// ExistsByEmail reports whether an account with the email is registered.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to query user existence: %w", err)
	}

	return exists, nil
}

func (r *UserRepository) scanOne(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.AvatarURL, &user.CreatedAt, &user.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}
