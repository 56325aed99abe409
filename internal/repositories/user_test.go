package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/muse/internal/models"
	"github.com/desertthunder/muse/internal/shared"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock
}

const userColumns = "id, name, email, avatar_url, created_at, status"

func userRow(user *models.User) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "name", "email", "avatar_url", "created_at", "status"}).
		AddRow(user.ID, user.Name, user.Email, user.AvatarURL, user.CreatedAt, user.Status)
}

func sampleUser() *models.User {
	return &models.User{
		ID:        uuid.New(),
		Name:      "Octocat",
		Email:     "octocat@example.com",
		AvatarURL: "https://avatars.example.com/octocat",
		CreatedAt: time.Now().UTC(),
		Status:    models.StatusUser,
	}
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewUserRepository(mock)
		createdAt := time.Now().UTC()

		mock.ExpectQuery(`INSERT INTO users \(id, name, email, avatar_url, status\)`).
			WithArgs(pgxmock.AnyArg(), "Octocat", "octocat@example.com", "https://avatars.example.com/octocat", models.StatusUser).
			WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

		user, err := repo.Create(ctx, "Octocat", "octocat@example.com", "https://avatars.example.com/octocat")
		require.NoError(t, err)
		require.Equal(t, "octocat@example.com", user.Email)
		require.Equal(t, models.StatusUser, user.Status)
		require.Equal(t, createdAt, user.CreatedAt)
		require.NotEqual(t, uuid.Nil, user.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewUserRepository(mock)

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(pgxmock.AnyArg(), "Octocat", "octocat@example.com", "", models.StatusUser).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		_, err := repo.Create(ctx, "Octocat", "octocat@example.com", "")
		require.ErrorIs(t, err, shared.ErrAlreadyExists)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid input never hits the database", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewUserRepository(mock)

		_, err := repo.Create(ctx, "Octocat", "", "")
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewUserRepository(mock)
		want := sampleUser()

		mock.ExpectQuery(`SELECT `+userColumns+` FROM users WHERE email = \$1`).
			WithArgs(want.Email).
			WillReturnRows(userRow(want))

		user, err := repo.GetByEmail(ctx, want.Email)
		require.NoError(t, err)
		require.Equal(t, want.ID, user.ID)
		require.Equal(t, want.Email, user.Email)
	})

	t.Run("missing", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewUserRepository(mock)

		mock.ExpectQuery(`SELECT `+userColumns+` FROM users WHERE email = \$1`).
			WithArgs("nobody@example.com").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := NewUserRepository(mock)
	want := sampleUser()

	mock.ExpectQuery(`SELECT `+userColumns+` FROM users WHERE id = \$1`).
		WithArgs(want.ID).
		WillReturnRows(userRow(want))

	user, err := repo.GetByID(ctx, want.ID)
	require.NoError(t, err)
	require.Equal(t, want.Email, user.Email)

	mock.ExpectQuery(`SELECT `+userColumns+` FROM users WHERE id = \$1`).
		WithArgs(want.ID).
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetByID(ctx, want.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM users WHERE email = \$1\)`).
		WithArgs("octocat@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmail(ctx, "octocat@example.com")
	require.NoError(t, err)
	require.True(t, exists)
}
