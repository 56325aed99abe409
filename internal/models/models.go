// package models defines the data model for the muse web service
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UserStatus enumerates the roles a user account can hold.
type UserStatus string

const (
	StatusUser  UserStatus = "user"
	StatusAdmin UserStatus = "admin"
)

// Valid reports whether the status is a known role.
func (s UserStatus) Valid() bool {
	return s == StatusUser || s == StatusAdmin
}

// User represents a registered account created at first GitHub login.
//
// Accounts are append-only: this service never mutates or deletes them.
// The JSON shape doubles as the access token subject payload, so field
// names are part of the wire contract.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	AvatarURL string     `json:"avatar_url"`
	CreatedAt time.Time  `json:"created_at"`
	Status    UserStatus `json:"status"`
}

// Validate checks if the user's data is valid and returns an error if not
func (u *User) Validate() error {
	if u.Email == "" {
		return fmt.Errorf("user email is required")
	}
	if u.Name == "" {
		return fmt.Errorf("user name is required")
	}
	if !u.Status.Valid() {
		return fmt.Errorf("invalid user status: %q", u.Status)
	}
	return nil
}

// Identity is the name/email/avatar triple resolved from the external
// OAuth provider, prior to being mapped to a local [User].
//
// Name and Email are pointers because GitHub profiles may omit both.
type Identity struct {
	Name      *string
	Email     *string
	AvatarURL string
}

// RefreshToken is a storage-backed, single-use credential.
//
// The row's primary key is also the bearer value delivered in the
// refresh cookie; there is no separately signed artifact.
type RefreshToken struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Live reports whether the token is still valid at the given instant.
func (t *RefreshToken) Live(now time.Time) bool {
	return !t.ExpiresAt.Before(now)
}
