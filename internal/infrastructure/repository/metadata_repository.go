package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Aijiaobin/video-api/internal/domain/entities"
	"github.com/Aijiaobin/video-api/internal/domain/repositories"
	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
	svcerrors "github.com/Aijiaobin/video-api/internal/shared/errors"
)

const metadataColumns = `id, tmdb_id, media_type, title, original_title, year, poster_url, backdrop_url,
	plot, rating, runtime, genres, status, total_seasons, total_episodes, created_at`

const seasonColumns = `id, media_id, tmdb_season_id, season_number, name, overview, poster_url, air_date, episode_count`

const episodeColumns = `id, season_id, tmdb_episode_id, episode_number, name, overview, still_url, air_date,
	runtime, vote_average`

// MetadataRepository 元数据缓存的 SQL 实现
// 唯一约束保证并发写入同一作品时只留下一行
type MetadataRepository struct {
	db *DB
}

// NewMetadataRepository 创建元数据存储库
func NewMetadataRepository(db *DB) *MetadataRepository {
	return &MetadataRepository{db: db}
}

var _ repositories.MetadataRepository = (*MetadataRepository)(nil)

func scanMetadata(row rowScanner) (*entities.MetadataRecord, error) {
	var (
		m                                    entities.MetadataRecord
		mediaType, genres                    string
		year, runtime, seasons, episodeTotal sql.NullInt64
		rating                               sql.NullFloat64
	)
	err := row.Scan(
		&m.ID, &m.TMDBID, &mediaType, &m.Title, &m.OriginalTitle, &year, &m.PosterURL, &m.BackdropURL,
		&m.Plot, &rating, &runtime, &genres, &m.Status, &seasons, &episodeTotal, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.MediaType = valueobjects.NewMediaType(mediaType)
	m.Year = intPtrOf(year)
	m.Rating = floatPtrOf(rating)
	m.Runtime = intPtrOf(runtime)
	m.TotalSeasons = intPtrOf(seasons)
	m.TotalEpisodes = intPtrOf(episodeTotal)
	m.Genres = []string{}
	if genres != "" {
		if err := json.Unmarshal([]byte(genres), &m.Genres); err != nil {
			return nil, fmt.Errorf("decode genres of tmdb %d: %w", m.TMDBID, err)
		}
	}
	return &m, nil
}

// GetByID 按主键读取
func (r *MetadataRepository) GetByID(ctx context.Context, id int64) (*entities.MetadataRecord, error) {
	rec, err := scanMetadata(r.db.queryRow(ctx, r.db, "SELECT "+metadataColumns+" FROM media_metadata WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, svcerrors.New(svcerrors.ErrorCodeNotFound, "metadata not found").WithDetail("media_id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get metadata %d: %w", id, err)
	}
	return rec, nil
}

// FindByTMDBID 按 (tmdb_id, media_type) 查找
func (r *MetadataRepository) FindByTMDBID(ctx context.Context, tmdbID int, mediaType valueobjects.MediaType) (*entities.MetadataRecord, error) {
	rec, err := scanMetadata(r.db.queryRow(ctx, r.db,
		"SELECT "+metadataColumns+" FROM media_metadata WHERE tmdb_id = ? AND media_type = ?",
		tmdbID, string(mediaType)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find metadata tmdb %d: %w", tmdbID, err)
	}
	return rec, nil
}

// SearchByTitle 本地缓存按标题包含匹配，取最早写入的一条
func (r *MetadataRepository) SearchByTitle(ctx context.Context, title string, year *int, mediaType valueobjects.MediaType) (*entities.MetadataRecord, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}
	query := "SELECT " + metadataColumns + " FROM media_metadata WHERE media_type = ? AND title " +
		r.db.likeOperator() + ` ? ESCAPE '\'`
	args := []any{string(mediaType), "%" + escapeLike(title) + "%"}
	if year != nil {
		query += " AND year = ?"
		args = append(args, *year)
	}
	query += " ORDER BY id LIMIT 1"

	rec, err := scanMetadata(r.db.queryRow(ctx, r.db, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("search metadata %q: %w", title, err)
	}
	return rec, nil
}

// Insert 冲突时不覆盖，返回已有记录
func (r *MetadataRepository) Insert(ctx context.Context, rec *entities.MetadataRecord) (*entities.MetadataRecord, error) {
	if rec == nil || rec.TMDBID <= 0 {
		return nil, svcerrors.New(svcerrors.ErrorCodeInvalidRequest, "metadata record requires a tmdb id")
	}
	mediaType := rec.MediaType
	if !mediaType.IsValid() {
		mediaType = valueobjects.MediaTypeMovie
	}
	genres := rec.Genres
	if genres == nil {
		genres = []string{}
	}
	genresJSON, err := json.Marshal(genres)
	if err != nil {
		return nil, fmt.Errorf("encode genres: %w", err)
	}

	var id int64
	err = retryOnBusy(ctx, func() error {
		return r.db.queryRow(ctx, r.db, `
			INSERT INTO media_metadata (tmdb_id, media_type, title, original_title, year, poster_url, backdrop_url,
				plot, rating, runtime, genres, status, total_seasons, total_episodes, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (tmdb_id, media_type) DO NOTHING
			RETURNING id`,
			rec.TMDBID, string(mediaType), rec.Title, rec.OriginalTitle, nullInt(rec.Year), rec.PosterURL, rec.BackdropURL,
			rec.Plot, nullFloat(rec.Rating), nullInt(rec.Runtime), string(genresJSON), rec.Status,
			nullInt(rec.TotalSeasons), nullInt(rec.TotalEpisodes), time.Now().UTC(),
		).Scan(&id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		existing, findErr := r.FindByTMDBID(ctx, rec.TMDBID, mediaType)
		if findErr != nil {
			return nil, findErr
		}
		if existing == nil {
			return nil, svcerrors.New(svcerrors.ErrorCodeInternalError, "metadata vanished after conflict").
				WithDetail("tmdb_id", rec.TMDBID)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("insert metadata tmdb %d: %w", rec.TMDBID, err)
	}
	return r.GetByID(ctx, id)
}

func scanSeason(row rowScanner) (entities.Season, error) {
	var s entities.Season
	err := row.Scan(&s.ID, &s.MediaID, &s.TMDBSeasonID, &s.SeasonNumber, &s.Name, &s.Overview,
		&s.PosterURL, &s.AirDate, &s.EpisodeCount)
	return s, err
}

// Seasons 作品的全部季，按季号排序
func (r *MetadataRepository) Seasons(ctx context.Context, mediaID int64) ([]entities.Season, error) {
	rows, err := r.db.query(ctx, r.db,
		"SELECT "+seasonColumns+" FROM tv_seasons WHERE media_id = ? ORDER BY season_number", mediaID)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	defer rows.Close()

	var seasons []entities.Season
	for rows.Next() {
		s, err := scanSeason(rows)
		if err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

// FindSeason 按季号查找，找不到返回 nil, nil
func (r *MetadataRepository) FindSeason(ctx context.Context, mediaID int64, seasonNumber int) (*entities.Season, error) {
	s, err := scanSeason(r.db.queryRow(ctx, r.db,
		"SELECT "+seasonColumns+" FROM tv_seasons WHERE media_id = ? AND season_number = ?", mediaID, seasonNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find season %d: %w", seasonNumber, err)
	}
	return &s, nil
}

// InsertSeasons 已存在的季保持不变
func (r *MetadataRepository) InsertSeasons(ctx context.Context, mediaID int64, seasons []entities.Season) ([]entities.Season, error) {
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		for _, s := range seasons {
			_, err := r.db.exec(ctx, tx, `
				INSERT INTO tv_seasons (media_id, tmdb_season_id, season_number, name, overview, poster_url,
					air_date, episode_count)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (media_id, season_number) DO NOTHING`,
				mediaID, s.TMDBSeasonID, s.SeasonNumber, s.Name, s.Overview, s.PosterURL, s.AirDate, s.EpisodeCount)
			if err != nil {
				return fmt.Errorf("insert season %d: %w", s.SeasonNumber, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Seasons(ctx, mediaID)
}

// Episodes 一季的全部分集，按集号排序
func (r *MetadataRepository) Episodes(ctx context.Context, seasonID int64) ([]entities.Episode, error) {
	rows, err := r.db.query(ctx, r.db,
		"SELECT "+episodeColumns+" FROM tv_episodes WHERE season_id = ? ORDER BY episode_number", seasonID)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var episodes []entities.Episode
	for rows.Next() {
		var (
			e       entities.Episode
			runtime sql.NullInt64
			vote    sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &e.SeasonID, &e.TMDBEpisodeID, &e.EpisodeNumber, &e.Name, &e.Overview,
			&e.StillURL, &e.AirDate, &runtime, &vote); err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		e.Runtime = intPtrOf(runtime)
		e.VoteAverage = floatPtrOf(vote)
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}

// InsertEpisodes 已存在的分集保持不变
func (r *MetadataRepository) InsertEpisodes(ctx context.Context, seasonID int64, episodes []entities.Episode) ([]entities.Episode, error) {
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		for _, e := range episodes {
			_, err := r.db.exec(ctx, tx, `
				INSERT INTO tv_episodes (season_id, tmdb_episode_id, episode_number, name, overview, still_url,
					air_date, runtime, vote_average)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (season_id, episode_number) DO NOTHING`,
				seasonID, e.TMDBEpisodeID, e.EpisodeNumber, e.Name, e.Overview, e.StillURL, e.AirDate,
				nullInt(e.Runtime), nullFloat(e.VoteAverage))
			if err != nil {
				return fmt.Errorf("insert episode %d: %w", e.EpisodeNumber, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Episodes(ctx, seasonID)
}
