// package testing contains shared testing utilities
package testing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/desertthunder/muse/internal/models"
	"github.com/desertthunder/muse/internal/services"
	"github.com/desertthunder/muse/internal/shared"
)

// FakeUserStore is an in-memory test double for the auth package's
// UserStore interface.
type FakeUserStore struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*models.User
	emails map[string]uuid.UUID

	// CreateErr forces Create to fail when set.
	CreateErr error
}

// NewFakeUserStore creates an empty user store.
func NewFakeUserStore() *FakeUserStore {
	return &FakeUserStore{
		users:  map[uuid.UUID]*models.User{},
		emails: map[string]uuid.UUID{},
	}
}

func (s *FakeUserStore) Create(ctx context.Context, name, email, avatarURL string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	if _, ok := s.emails[email]; ok {
		return nil, shared.ErrAlreadyExists
	}

	user := &models.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		AvatarURL: avatarURL,
		CreatedAt: time.Now().UTC(),
		Status:    models.StatusUser,
	}
	s.users[user.ID] = user
	s.emails[email] = user.ID

	copied := *user
	return &copied, nil
}

func (s *FakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, shared.ErrNotFound
	}

	copied := *s.users[id]
	return &copied, nil
}

// ByID returns a stored user or nil.
func (s *FakeUserStore) ByID(id uuid.UUID) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil
	}

	copied := *user
	return &copied
}

// Count reports the number of stored users.
func (s *FakeUserStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// FakeTokenStore is an in-memory test double for the auth package's
// RefreshTokenStore interface.
//
// Creation timestamps are strictly increasing so ordering is
// unambiguous even within a single test run.
type FakeTokenStore struct {
	mu     sync.Mutex
	seq    int
	tokens map[uuid.UUID]*models.RefreshToken

	// Users resolves token owners for GetLiveByID.
	Users *FakeUserStore
	// TTL is the lifetime stamped onto created tokens.
	TTL time.Duration
	// CreateErr forces Create to fail when set.
	CreateErr error
}

// NewFakeTokenStore creates an empty token store resolving owners
// against users.
func NewFakeTokenStore(users *FakeUserStore) *FakeTokenStore {
	return &FakeTokenStore{
		tokens: map[uuid.UUID]*models.RefreshToken{},
		Users:  users,
		TTL:    24 * time.Hour,
	}
}

func (s *FakeTokenStore) Create(ctx context.Context, userID uuid.UUID) (*models.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return nil, s.CreateErr
	}

	s.seq++
	now := time.Now().UTC().Add(time.Duration(s.seq) * time.Millisecond)
	token := &models.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.TTL),
	}
	s.tokens[token.ID] = token

	copied := *token
	return &copied, nil
}

func (s *FakeTokenStore) DeleteOldestBeyondLimit(ctx context.Context, userID uuid.UUID, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, token := range s.ownedLocked(userID) {
		if i >= keep {
			delete(s.tokens, token.ID)
		}
	}

	return nil
}

func (s *FakeTokenStore) GetLiveByID(ctx context.Context, id uuid.UUID) (*models.RefreshToken, *models.User, error) {
	s.mu.Lock()
	token, ok := s.tokens[id]
	if ok {
		copied := *token
		token = &copied
	}
	s.mu.Unlock()

	if !ok || token.ExpiresAt.Before(time.Now().UTC()) {
		return nil, nil, shared.ErrNotFound
	}

	user := s.Users.ByID(token.UserID)
	if user == nil {
		return nil, nil, shared.ErrNotFound
	}

	return token, user, nil
}

func (s *FakeTokenStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, id)
	return nil
}

// ExpireToken backdates a stored token so lookups treat it as dead.
func (s *FakeTokenStore) ExpireToken(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token, ok := s.tokens[id]; ok {
		token.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	}
}

// TokensFor returns the user's tokens ordered newest first.
func (s *FakeTokenStore) TokensFor(userID uuid.UUID) []*models.RefreshToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ownedLocked(userID)
}

func (s *FakeTokenStore) ownedLocked(userID uuid.UUID) []*models.RefreshToken {
	var owned []*models.RefreshToken
	for _, token := range s.tokens {
		if token.UserID == userID {
			copied := *token
			owned = append(owned, &copied)
		}
	}

	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	return owned
}

// FakeResolver is a test double for services.IdentityResolver.
type FakeResolver struct {
	Identity *models.Identity
	Err      error
}

func (r *FakeResolver) Resolve(ctx context.Context, code string) (*models.Identity, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Identity, nil
}

// FakeCatalog is a test double for services.Catalog.
type FakeCatalog struct {
	ChartTracks []services.Track
	Releases    []services.Album
	TrackByID   *services.Track
	Downloads   []services.DownloadInfo
	AlbumByID   *services.Album
	PlaylistBy  *services.Playlist
	Err         error
}

func (c *FakeCatalog) Chart(ctx context.Context, limit, offset int) ([]services.Track, error) {
	return c.ChartTracks, c.Err
}

func (c *FakeCatalog) NewReleases(ctx context.Context, limit, offset int) ([]services.Album, error) {
	return c.Releases, c.Err
}

func (c *FakeCatalog) Track(ctx context.Context, trackID int) (*services.Track, error) {
	return c.TrackByID, c.Err
}

func (c *FakeCatalog) DownloadInfo(ctx context.Context, trackID int) ([]services.DownloadInfo, error) {
	return c.Downloads, c.Err
}

func (c *FakeCatalog) AlbumWithTracks(ctx context.Context, albumID int) (*services.Album, error) {
	return c.AlbumByID, c.Err
}

func (c *FakeCatalog) Playlist(ctx context.Context, userID, kind int) (*services.Playlist, error) {
	return c.PlaylistBy, c.Err
}
