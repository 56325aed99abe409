package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/muse/internal/services"
	"github.com/desertthunder/muse/internal/shared"
)

// CatalogHandler proxies the upstream music catalog with DTO reshaping.
// Implements the [Handler] interface for registration with a [Router].
type CatalogHandler struct {
	catalog services.Catalog
	logger  *log.Logger
}

// NewCatalogHandler creates a [CatalogHandler] over the given catalog client.
func NewCatalogHandler(catalog services.Catalog, logger *log.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *CatalogHandler) Routes() []string {
	return []string{
		"GET /api/charts",
		"GET /api/new-releases",
		"GET /api/tracks/{track_id}",
		"GET /api/tracks/{track_id}/download/info",
		"GET /api/albums/{album_id}",
		"GET /api/users/{user_id}/playlists/{kind}",
	}
}

// ServeHTTP dispatches on the matched route pattern.
func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case "GET /api/charts":
		h.chart(w, r)
	case "GET /api/new-releases":
		h.newReleases(w, r)
	case "GET /api/tracks/{track_id}":
		h.track(w, r)
	case "GET /api/tracks/{track_id}/download/info":
		h.downloadInfo(w, r)
	case "GET /api/albums/{album_id}":
		h.album(w, r)
	case "GET /api/users/{user_id}/playlists/{kind}":
		h.playlist(w, r)
	default:
		http.NotFound(w, r)
	}
}

// chart serves a window of the global track chart.
func (h *CatalogHandler) chart(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r, 10, 100)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	tracks, err := h.catalog.Chart(r.Context(), limit, offset)
	if err != nil {
		h.upstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newTrackDTOs(tracks))
}

// newReleases serves a window of newly released albums.
func (h *CatalogHandler) newReleases(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r, 10, 50)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	albums, err := h.catalog.NewReleases(r.Context(), limit, offset)
	if err != nil {
		h.upstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newAlbumDTOs(albums))
}

// track serves a track with its download information.
func (h *CatalogHandler) track(w http.ResponseWriter, r *http.Request) {
	trackID, err := pathID(r, "track_id")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	track, err := h.catalog.Track(r.Context(), trackID)
	if err != nil {
		h.upstreamError(w, err)
		return
	}

	info, err := h.catalog.DownloadInfo(r.Context(), trackID)
	if err != nil {
		h.upstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TrackDetailDTO{
		TrackDTO:     newTrackDTO(*track, coverSizeLarge),
		DownloadInfo: newDownloadInfoDTOs(info),
	})
}

// downloadInfo serves the downloadable encodings of a track.
func (h *CatalogHandler) downloadInfo(w http.ResponseWriter, r *http.Request) {
	trackID, err := pathID(r, "track_id")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	info, err := h.catalog.DownloadInfo(r.Context(), trackID)
	if err != nil {
		h.upstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newDownloadInfoDTOs(info))
}

// album serves an album with its flattened track list.
func (h *CatalogHandler) album(w http.ResponseWriter, r *http.Request) {
	albumID, err := pathID(r, "album_id")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	album, err := h.catalog.AlbumWithTracks(r.Context(), albumID)
	if err != nil {
		h.upstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AlbumDetailDTO{
		AlbumDTO: newAlbumDTO(*album),
		Tracks:   newTrackDTOs(album.Tracks()),
	})
}

// playlist serves a user playlist by owner and kind.
func (h *CatalogHandler) playlist(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	kind, err := pathID(r, "kind")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	playlist, err := h.catalog.Playlist(r.Context(), userID, kind)
	if err != nil {
		h.upstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newPlaylistDTO(*playlist))
}

// upstreamError maps catalog client failures onto response statuses.
func (h *CatalogHandler) upstreamError(w http.ResponseWriter, err error) {
	h.logger.Warn("catalog request failed", "error", err)

	switch {
	case errors.Is(err, shared.ErrTrackNotFound):
		writeDetail(w, http.StatusNotFound, "Track not found")
	case errors.Is(err, shared.ErrUpstream):
		writeDetail(w, http.StatusBadRequest, err.Error())
	default:
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}

// pageParams parses and bounds the limit/offset query parameters.
//
// limit defaults to 10 within [1, max]; offset defaults to 0 within
// [0, max].
func pageParams(r *http.Request, defaultLimit, max int) (int, int, error) {
	limit := defaultLimit
	offset := 0

	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > max {
			return 0, 0, fmt.Errorf("limit must be an integer between 1 and %d", max)
		}
		limit = parsed
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > max {
			return 0, 0, fmt.Errorf("offset must be an integer between 0 and %d", max)
		}
		offset = parsed
	}

	return limit, offset, nil
}

// pathID parses a numeric path segment.
func pathID(r *http.Request, name string) (int, error) {
	value, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return value, nil
}
