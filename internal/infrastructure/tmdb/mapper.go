package tmdb

import (
	"strconv"

	"github.com/Aijiaobin/video-api/internal/domain/entities"
	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
)

// 图片尺寸
const (
	PosterSize   = "w500"
	BackdropSize = "w1280"
	StillSize    = "w300"
)

// ImageURL 拼接图片地址，路径为空时返回空
func (c *Client) ImageURL(size, path string) string {
	if path == "" {
		return ""
	}
	return c.ImageBaseURL + "/" + size + path
}

// yearOf 取日期字符串的年份部分
func yearOf(date string) *int {
	if len(date) < 4 {
		return nil
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil || y <= 0 {
		return nil
	}
	return &y
}

func genreNames(genres []Genre) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return names
}

// MovieRecord 电影详情转为元数据记录
func (c *Client) MovieRecord(d *MovieDetails) *entities.MetadataRecord {
	rating := d.VoteAverage
	rec := &entities.MetadataRecord{
		TMDBID:        d.ID,
		MediaType:     valueobjects.MediaTypeMovie,
		Title:         d.Title,
		OriginalTitle: d.OriginalTitle,
		Year:          yearOf(d.ReleaseDate),
		PosterURL:     c.ImageURL(PosterSize, d.PosterPath),
		BackdropURL:   c.ImageURL(BackdropSize, d.BackdropPath),
		Plot:          d.Overview,
		Rating:        &rating,
		Genres:        genreNames(d.Genres),
		Status:        d.Status,
	}
	if d.Runtime > 0 {
		runtime := d.Runtime
		rec.Runtime = &runtime
	}
	return rec
}

// TVRecord 剧集详情转为元数据记录，单集时长取 episode_run_time 第一项
func (c *Client) TVRecord(d *TVDetails) *entities.MetadataRecord {
	rating := d.VoteAverage
	seasons := d.NumberOfSeasons
	episodes := d.NumberOfEpisodes
	rec := &entities.MetadataRecord{
		TMDBID:        d.ID,
		MediaType:     valueobjects.MediaTypeTV,
		Title:         d.Name,
		OriginalTitle: d.OriginalName,
		Year:          yearOf(d.FirstAirDate),
		PosterURL:     c.ImageURL(PosterSize, d.PosterPath),
		BackdropURL:   c.ImageURL(BackdropSize, d.BackdropPath),
		Plot:          d.Overview,
		Rating:        &rating,
		Genres:        genreNames(d.Genres),
		Status:        d.Status,
		TotalSeasons:  &seasons,
		TotalEpisodes: &episodes,
	}
	if len(d.EpisodeRunTime) > 0 {
		runtime := d.EpisodeRunTime[0]
		rec.Runtime = &runtime
	}
	return rec
}

// SeasonRecords 剧集详情中的季列表
func (c *Client) SeasonRecords(mediaID int64, d *TVDetails) []entities.Season {
	out := make([]entities.Season, 0, len(d.Seasons))
	for _, s := range d.Seasons {
		out = append(out, entities.Season{
			MediaID:      mediaID,
			TMDBSeasonID: s.ID,
			SeasonNumber: s.SeasonNumber,
			Name:         s.Name,
			Overview:     s.Overview,
			PosterURL:    c.ImageURL(PosterSize, s.PosterPath),
			AirDate:      s.AirDate,
			EpisodeCount: s.EpisodeCount,
		})
	}
	return out
}

// EpisodeRecords 季详情中的分集列表
func (c *Client) EpisodeRecords(seasonID int64, s *Season) []entities.Episode {
	out := make([]entities.Episode, 0, len(s.Episodes))
	for _, e := range s.Episodes {
		vote := e.VoteAverage
		out = append(out, entities.Episode{
			SeasonID:      seasonID,
			TMDBEpisodeID: e.ID,
			EpisodeNumber: e.EpisodeNumber,
			Name:          e.Name,
			Overview:      e.Overview,
			StillURL:      c.ImageURL(StillSize, e.StillPath),
			AirDate:       e.AirDate,
			Runtime:       e.Runtime,
			VoteAverage:   &vote,
		})
	}
	return out
}
