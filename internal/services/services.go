// package services contains HTTP clients for the external APIs the
// service fronts
//
// GitHub (identity), the upstream music catalog (proxied)
package services

import (
	"context"

	"github.com/desertthunder/muse/internal/models"
)

// IdentityResolver exchanges an OAuth authorization code for the
// authenticated account's identity.
type IdentityResolver interface {
	// Resolve exchanges code for a provider token and fetches the
	// account's profile and primary email.
	Resolve(ctx context.Context, code string) (*models.Identity, error)
}

// Catalog is the read surface of the upstream music streaming API.
type Catalog interface {
	Chart(ctx context.Context, limit, offset int) ([]Track, error)
	NewReleases(ctx context.Context, limit, offset int) ([]Album, error)
	Track(ctx context.Context, trackID int) (*Track, error)
	DownloadInfo(ctx context.Context, trackID int) ([]DownloadInfo, error)
	AlbumWithTracks(ctx context.Context, albumID int) (*Album, error)
	Playlist(ctx context.Context, userID, kind int) (*Playlist, error)
}
