package server

import (
	"github.com/desertthunder/muse/internal/services"
	"github.com/desertthunder/muse/internal/shared"
)

// cover sizes requested from the upstream image CDN
const (
	coverSizeLarge = "400x400"
	coverSizeSmall = "100x100"
)

// ArtistDTO carries short information about an artist.
type ArtistDTO struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	CoverURL string `json:"cover_url"`
}

// TrackDTO carries short information about a track.
type TrackDTO struct {
	ID           int         `json:"id"`
	Title        string      `json:"title"`
	CoverURL     string      `json:"cover_url"`
	DurationMS   int         `json:"duration_ms"`
	DurationText string      `json:"duration_text"`
	Artists      []ArtistDTO `json:"artists"`
}

// DownloadInfoDTO describes one downloadable encoding of a track.
type DownloadInfoDTO struct {
	Codec           string `json:"codec"`
	BitrateInKbps   int    `json:"bitrate_in_kbps"`
	DownloadInfoURL string `json:"download_info_url"`
	DirectLink      string `json:"direct_link"`
}

// TrackDetailDTO extends [TrackDTO] with download information.
type TrackDetailDTO struct {
	TrackDTO
	DownloadInfo []DownloadInfoDTO `json:"download_info"`
}

// AlbumDTO carries short information about an album.
type AlbumDTO struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	CoverURL    string      `json:"cover_url"`
	TrackCount  int         `json:"track_count"`
	Artists     []ArtistDTO `json:"artists"`
	ReleaseDate string      `json:"release_date"`
}

// AlbumDetailDTO extends [AlbumDTO] with the album's tracks, volumes
// flattened into a single list.
type AlbumDetailDTO struct {
	AlbumDTO
	Tracks []TrackDTO `json:"tracks"`
}

// PlaylistSummaryDTO carries short information about a playlist.
type PlaylistSummaryDTO struct {
	Kind     int    `json:"kind"`
	Title    string `json:"title"`
	CoverURL string `json:"cover_url"`
}

// PlaylistDTO carries detail information about a playlist.
type PlaylistDTO struct {
	PlaylistSummaryDTO
	Description      string               `json:"description"`
	TrackCount       int                  `json:"track_count"`
	DurationMS       int                  `json:"duration_ms"`
	DurationText     string               `json:"duration_text"`
	Modified         string               `json:"modified"`
	LikesCount       *int                 `json:"likes_count"`
	Tracks           []TrackDTO           `json:"tracks"`
	SimilarPlaylists []PlaylistSummaryDTO `json:"similar_playlists"`
}

func newArtistDTO(artist services.Artist) ArtistDTO {
	return ArtistDTO{
		ID:       artist.ID,
		Name:     artist.Name,
		CoverURL: artist.Cover.URL(coverSizeSmall),
	}
}

func newArtistDTOs(artists []services.Artist) []ArtistDTO {
	dtos := make([]ArtistDTO, 0, len(artists))
	for _, artist := range artists {
		dtos = append(dtos, newArtistDTO(artist))
	}
	return dtos
}

func newTrackDTO(track services.Track, coverSize string) TrackDTO {
	return TrackDTO{
		ID:           track.ID,
		Title:        track.Title,
		CoverURL:     track.CoverURL(coverSize),
		DurationMS:   track.DurationMS,
		DurationText: shared.FormatDuration(track.DurationMS),
		Artists:      newArtistDTOs(track.Artists),
	}
}

func newTrackDTOs(tracks []services.Track) []TrackDTO {
	dtos := make([]TrackDTO, 0, len(tracks))
	for _, track := range tracks {
		dtos = append(dtos, newTrackDTO(track, coverSizeSmall))
	}
	return dtos
}

func newDownloadInfoDTOs(info []services.DownloadInfo) []DownloadInfoDTO {
	dtos := make([]DownloadInfoDTO, 0, len(info))
	for _, entry := range info {
		dtos = append(dtos, DownloadInfoDTO{
			Codec:           entry.Codec,
			BitrateInKbps:   entry.BitrateInKbps,
			DownloadInfoURL: entry.DownloadInfoURL,
			DirectLink:      entry.DirectLink,
		})
	}
	return dtos
}

func newAlbumDTO(album services.Album) AlbumDTO {
	return AlbumDTO{
		ID:          album.ID,
		Title:       album.Title,
		CoverURL:    album.CoverURL(coverSizeLarge),
		TrackCount:  album.TrackCount,
		Artists:     newArtistDTOs(album.Artists),
		ReleaseDate: album.ReleaseDate,
	}
}

func newAlbumDTOs(albums []services.Album) []AlbumDTO {
	dtos := make([]AlbumDTO, 0, len(albums))
	for _, album := range albums {
		dtos = append(dtos, newAlbumDTO(album))
	}
	return dtos
}

func newPlaylistSummaryDTO(playlist services.Playlist) PlaylistSummaryDTO {
	return PlaylistSummaryDTO{
		Kind:     playlist.Kind,
		Title:    playlist.Title,
		CoverURL: playlist.CoverURL(coverSizeLarge),
	}
}

func newPlaylistDTO(playlist services.Playlist) PlaylistDTO {
	tracks := make([]services.Track, 0, len(playlist.Tracks))
	for _, entry := range playlist.Tracks {
		tracks = append(tracks, entry.Track)
	}

	similar := make([]PlaylistSummaryDTO, 0, len(playlist.Similar))
	for _, entry := range playlist.Similar {
		similar = append(similar, newPlaylistSummaryDTO(entry))
	}

	return PlaylistDTO{
		PlaylistSummaryDTO: newPlaylistSummaryDTO(playlist),
		Description:        playlist.Description,
		TrackCount:         playlist.TrackCount,
		DurationMS:         playlist.DurationMS,
		DurationText:       shared.FormatDuration(playlist.DurationMS),
		Modified:           playlist.Modified,
		LikesCount:         playlist.LikesCount,
		Tracks:             newTrackDTOs(tracks),
		SimilarPlaylists:   similar,
	}
}
