package entities

import (
	"time"

	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
)

// MetadataRecord 元数据缓存，以 (TMDBID, MediaType) 唯一
type MetadataRecord struct {
	ID            int64                  `json:"id"`
	TMDBID        int                    `json:"tmdb_id"`
	MediaType     valueobjects.MediaType `json:"media_type"`
	Title         string                 `json:"title"`
	OriginalTitle string                 `json:"original_title,omitempty"`
	Year          *int                   `json:"year,omitempty"`
	PosterURL     string                 `json:"poster_url,omitempty"`
	BackdropURL   string                 `json:"backdrop_url,omitempty"`
	Plot          string                 `json:"plot,omitempty"`
	Rating        *float64               `json:"rating,omitempty"`
	Runtime       *int                   `json:"runtime,omitempty"`
	Genres        []string               `json:"genres"`
	Status        string                 `json:"status,omitempty"`
	TotalSeasons  *int                   `json:"total_seasons,omitempty"`
	TotalEpisodes *int                   `json:"total_episodes,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// Season 剧集的一季，首次访问时拉取，写入后不再覆盖
type Season struct {
	ID           int64     `json:"id"`
	MediaID      int64     `json:"media_id"`
	TMDBSeasonID int       `json:"tmdb_season_id"`
	SeasonNumber int       `json:"season_number"`
	Name         string    `json:"name"`
	Overview     string    `json:"overview,omitempty"`
	PosterURL    string    `json:"poster_url,omitempty"`
	AirDate      string    `json:"air_date,omitempty"`
	EpisodeCount int       `json:"episode_count"`
	Episodes     []Episode `json:"episodes,omitempty"`
}

// Episode 单集
type Episode struct {
	ID            int64    `json:"id"`
	SeasonID      int64    `json:"season_id"`
	TMDBEpisodeID int      `json:"tmdb_episode_id"`
	EpisodeNumber int      `json:"episode_number"`
	Name          string   `json:"name"`
	Overview      string   `json:"overview,omitempty"`
	StillURL      string   `json:"still_url,omitempty"`
	AirDate       string   `json:"air_date,omitempty"`
	Runtime       *int     `json:"runtime,omitempty"`
	VoteAverage   *float64 `json:"vote_average,omitempty"`
}
