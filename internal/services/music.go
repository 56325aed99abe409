// Upstream music catalog [Catalog] implementation
//
// Communicates with a Yandex-Music-compatible API that wraps every
// response body in a {"result": ...} envelope.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/muse/internal/shared"
)

const defaultMusicBaseURL = "https://api.music.yandex.net"

// Artist represents an artist in catalog responses.
type Artist struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Cover Cover  `json:"cover"`
}

// Cover holds a sized image URI template.
//
// The URI ends in a %% placeholder the API substitutes with a
// WIDTHxHEIGHT size, e.g. avatars.example.net/get-music-content/abc/%%.
type Cover struct {
	URI string `json:"uri"`
}

// URL renders the template at the requested size. Empty templates render
// as an empty string.
func (c Cover) URL(size string) string {
	if c.URI == "" {
		return ""
	}
	return "https://" + strings.Replace(c.URI, "%%", size, 1)
}

// Track represents a catalog track.
type Track struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	DurationMS int      `json:"durationMs"`
	CoverURI   string   `json:"coverUri"`
	Artists    []Artist `json:"artists"`
}

// CoverURL renders the track cover at the requested size.
func (t Track) CoverURL(size string) string {
	return Cover{URI: t.CoverURI}.URL(size)
}

// Album represents a catalog album. Detail responses split tracks into
// volumes (discs).
type Album struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	TrackCount  int       `json:"trackCount"`
	CoverURI    string    `json:"coverUri"`
	ReleaseDate string    `json:"releaseDate"`
	Artists     []Artist  `json:"artists"`
	Volumes     [][]Track `json:"volumes"`
}

// CoverURL renders the album cover at the requested size.
func (a Album) CoverURL(size string) string {
	return Cover{URI: a.CoverURI}.URL(size)
}

// Tracks flattens the album's volumes into a single track list.
func (a Album) Tracks() []Track {
	var tracks []Track
	for _, volume := range a.Volumes {
		tracks = append(tracks, volume...)
	}
	return tracks
}

// DownloadInfo describes one downloadable encoding of a track.
type DownloadInfo struct {
	Codec           string `json:"codec"`
	BitrateInKbps   int    `json:"bitrateInKbps"`
	DownloadInfoURL string `json:"downloadInfoUrl"`
	DirectLink      string `json:"directLink"`
}

// Playlist represents a user playlist with its resolved tracks.
type Playlist struct {
	Kind        int             `json:"kind"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	TrackCount  int             `json:"trackCount"`
	DurationMS  int             `json:"durationMs"`
	Modified    string          `json:"modified"`
	LikesCount  *int            `json:"likesCount"`
	CoverURI    string          `json:"ogImage"`
	Tracks      []PlaylistTrack `json:"tracks"`
	Similar     []Playlist      `json:"similarPlaylists"`
}

// CoverURL renders the playlist cover at the requested size.
func (p Playlist) CoverURL(size string) string {
	return Cover{URI: p.CoverURI}.URL(size)
}

// PlaylistTrack wraps a track within a playlist context.
type PlaylistTrack struct {
	Track Track `json:"track"`
}

type chartResponse struct {
	Chart struct {
		Tracks []PlaylistTrack `json:"tracks"`
	} `json:"chart"`
}

type newReleasesResponse struct {
	NewReleases []int `json:"newReleases"`
}

// MusicService implements [Catalog] over the upstream streaming API.
type MusicService struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewMusicService creates a catalog client from the music config section.
func NewMusicService(cfg shared.MusicConfig) *MusicService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultMusicBaseURL
	}

	return &MusicService{
		baseURL:    baseURL,
		token:      cfg.Token,
		httpClient: http.DefaultClient,
	}
}

// Chart retrieves a window of the global track chart.
func (m *MusicService) Chart(ctx context.Context, limit, offset int) ([]Track, error) {
	var response chartResponse
	if err := m.doRequest(ctx, "/landing3/chart", &response); err != nil {
		return nil, err
	}

	entries := response.Chart.Tracks
	if offset >= len(entries) {
		return []Track{}, nil
	}
	entries = entries[offset:]
	if limit < len(entries) {
		entries = entries[:limit]
	}

	tracks := make([]Track, 0, len(entries))
	for _, entry := range entries {
		tracks = append(tracks, entry.Track)
	}

	return tracks, nil
}

// NewReleases retrieves a window of newly released albums.
//
// The landing endpoint returns album IDs only; the albums are fetched in
// a second batched request.
func (m *MusicService) NewReleases(ctx context.Context, limit, offset int) ([]Album, error) {
	var response newReleasesResponse
	if err := m.doRequest(ctx, "/landing3/new-releases", &response); err != nil {
		return nil, err
	}

	ids := response.NewReleases
	if offset >= len(ids) {
		return []Album{}, nil
	}
	ids = ids[offset:]
	if limit < len(ids) {
		ids = ids[:limit]
	}

	return m.Albums(ctx, ids)
}

// Albums retrieves several albums by ID in one request.
func (m *MusicService) Albums(ctx context.Context, albumIDs []int) ([]Album, error) {
	if len(albumIDs) == 0 {
		return []Album{}, nil
	}

	parts := make([]string, 0, len(albumIDs))
	for _, id := range albumIDs {
		parts = append(parts, strconv.Itoa(id))
	}

	endpoint := "/albums?album-ids=" + url.QueryEscape(strings.Join(parts, ","))

	var albums []Album
	if err := m.doRequest(ctx, endpoint, &albums); err != nil {
		return nil, err
	}

	return albums, nil
}

// Track retrieves a single track by ID.
func (m *MusicService) Track(ctx context.Context, trackID int) (*Track, error) {
	// the upstream track endpoint answers with a one-element list
	var tracks []Track
	if err := m.doRequest(ctx, fmt.Sprintf("/tracks/%d", trackID), &tracks); err != nil {
		return nil, err
	}

	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: %d", shared.ErrTrackNotFound, trackID)
	}

	return &tracks[0], nil
}

// DownloadInfo retrieves the downloadable encodings for a track.
func (m *MusicService) DownloadInfo(ctx context.Context, trackID int) ([]DownloadInfo, error) {
	var info []DownloadInfo
	endpoint := fmt.Sprintf("/tracks/%d/download-info", trackID)
	if err := m.doRequest(ctx, endpoint, &info); err != nil {
		return nil, err
	}

	return info, nil
}

// AlbumWithTracks retrieves an album including its track volumes.
func (m *MusicService) AlbumWithTracks(ctx context.Context, albumID int) (*Album, error) {
	var album Album
	endpoint := fmt.Sprintf("/albums/%d/with-tracks", albumID)
	if err := m.doRequest(ctx, endpoint, &album); err != nil {
		return nil, err
	}

	return &album, nil
}

// Playlist retrieves a user playlist by owner ID and kind.
func (m *MusicService) Playlist(ctx context.Context, userID, kind int) (*Playlist, error) {
	var playlist Playlist
	endpoint := fmt.Sprintf("/users/%d/playlists/%d", userID, kind)
	if err := m.doRequest(ctx, endpoint, &playlist); err != nil {
		return nil, err
	}

	return &playlist, nil
}

// doRequest performs an authenticated GET and unwraps the result envelope.
func (m *MusicService) doRequest(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if m.token != "" {
		req.Header.Set("Authorization", "OAuth "+m.token)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrUpstream, resp.StatusCode)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrUpstream, err)
	}

	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrUpstream, err)
		}
	}

	return nil
}
