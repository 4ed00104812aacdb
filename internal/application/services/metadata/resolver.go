// Package metadata 先查本地缓存、再查 TMDB 的元数据解析
package metadata

import (
	"context"
	"strings"

	"github.com/Aijiaobin/video-api/internal/domain/entities"
	"github.com/Aijiaobin/video-api/internal/domain/repositories"
	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
	"github.com/Aijiaobin/video-api/internal/infrastructure/tmdb"
	"github.com/Aijiaobin/video-api/pkg/logger"
)

// Catalog 远端元数据目录，由 tmdb.Client 实现
type Catalog interface {
	SearchMovie(ctx context.Context, query string, year int) (*tmdb.SearchMovieResponse, error)
	SearchTV(ctx context.Context, query string, year int) (*tmdb.SearchTVResponse, error)
	GetMovieDetails(ctx context.Context, movieID int) (*tmdb.MovieDetails, error)
	GetTVDetails(ctx context.Context, tvID int) (*tmdb.TVDetails, error)
	GetSeasonDetails(ctx context.Context, tvID, seasonNumber int) (*tmdb.Season, error)

	MovieRecord(d *tmdb.MovieDetails) *entities.MetadataRecord
	TVRecord(d *tmdb.TVDetails) *entities.MetadataRecord
	SeasonRecords(mediaID int64, d *tmdb.TVDetails) []entities.Season
	EpisodeRecords(seasonID int64, s *tmdb.Season) []entities.Episode
}

var _ Catalog = (*tmdb.Client)(nil)

// Source 一次解析走的路径
type Source string

const (
	SourceNone          Source = ""
	SourceOverrideID    Source = "override_id"
	SourceExtractedID   Source = "extracted_id"
	SourceOverrideTitle Source = "override_title"
	SourceCleanTitle    Source = "clean_title"
)

// ResolveRequest 一个分享的解析输入
type ResolveRequest struct {
	ShareID       int64
	Kind          valueobjects.ShareKind
	OverrideID    *int
	ExtractedID   *int
	OverrideTitle string
	CleanTitle    string
	Year          *int
}

// Resolver 元数据解析器
// 所有方法在出错时记录日志并返回 nil，只有 context 被取消时才返回错误
type Resolver struct {
	catalog Catalog
	repo    repositories.MetadataRepository
}

// NewResolver 创建解析器
func NewResolver(catalog Catalog, repo repositories.MetadataRepository) *Resolver {
	return &Resolver{catalog: catalog, repo: repo}
}

// ResolveByQuery 本地模糊匹配，未命中时远端搜索取第一个候选再拉详情
func (r *Resolver) ResolveByQuery(ctx context.Context, title string, year *int, mediaType valueobjects.MediaType) (*entities.MetadataRecord, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}

	cached, err := r.repo.SearchByTitle(ctx, title, year, mediaType)
	if err != nil {
		return r.fail(ctx, "本地元数据搜索失败", err, "title", title)
	}
	if cached != nil {
		logger.Debug("元数据缓存命中", "title", title, "tmdb_id", cached.TMDBID)
		return cached, nil
	}

	y := 0
	if year != nil {
		y = *year
	}

	var candidate int
	if mediaType == valueobjects.MediaTypeTV {
		resp, err := r.catalog.SearchTV(ctx, title, y)
		if err != nil {
			return r.fail(ctx, "TMDB剧集搜索失败", err, "title", title)
		}
		if len(resp.Results) > 0 {
			candidate = resp.Results[0].ID
		}
	} else {
		resp, err := r.catalog.SearchMovie(ctx, title, y)
		if err != nil {
			return r.fail(ctx, "TMDB电影搜索失败", err, "title", title)
		}
		if len(resp.Results) > 0 {
			candidate = resp.Results[0].ID
		}
	}

	if candidate == 0 {
		logger.Info("TMDB没有匹配结果", "title", title, "year", y, "media_type", mediaType)
		return nil, nil
	}
	return r.ResolveByID(ctx, candidate, mediaType)
}

// ResolveByID 精确查缓存，未命中时只拉详情
func (r *Resolver) ResolveByID(ctx context.Context, tmdbID int, mediaType valueobjects.MediaType) (*entities.MetadataRecord, error) {
	if tmdbID <= 0 {
		return nil, nil
	}

	cached, err := r.repo.FindByTMDBID(ctx, tmdbID, mediaType)
	if err != nil {
		return r.fail(ctx, "读取元数据缓存失败", err, "tmdb_id", tmdbID)
	}
	if cached != nil {
		return cached, nil
	}

	var rec *entities.MetadataRecord
	if mediaType == valueobjects.MediaTypeTV {
		d, err := r.catalog.GetTVDetails(ctx, tmdbID)
		if err != nil {
			return r.fail(ctx, "获取TMDB剧集详情失败", err, "tmdb_id", tmdbID)
		}
		rec = r.catalog.TVRecord(d)
	} else {
		d, err := r.catalog.GetMovieDetails(ctx, tmdbID)
		if err != nil {
			return r.fail(ctx, "获取TMDB电影详情失败", err, "tmdb_id", tmdbID)
		}
		rec = r.catalog.MovieRecord(d)
	}
	if rec.TMDBID == 0 {
		rec.TMDBID = tmdbID
	}

	// 并发拉取同一作品时插入会命中唯一约束，返回先写入的那一行
	saved, err := r.repo.Insert(ctx, rec)
	if err != nil {
		return r.fail(ctx, "写入元数据缓存失败", err, "tmdb_id", tmdbID)
	}
	logger.Info("元数据已缓存", "tmdb_id", saved.TMDBID, "media_type", saved.MediaType, "title", saved.Title)
	return saved, nil
}

// Seasons 剧集的季列表，首次访问时拉取
func (r *Resolver) Seasons(ctx context.Context, rec *entities.MetadataRecord) ([]entities.Season, error) {
	if rec == nil || rec.MediaType != valueobjects.MediaTypeTV {
		return nil, nil
	}

	existing, err := r.repo.Seasons(ctx, rec.ID)
	if err != nil {
		return r.failList(ctx, "读取季缓存失败", err, "media_id", rec.ID)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	d, err := r.catalog.GetTVDetails(ctx, rec.TMDBID)
	if err != nil {
		return r.failList(ctx, "获取TMDB季列表失败", err, "tmdb_id", rec.TMDBID)
	}
	seasons, err := r.repo.InsertSeasons(ctx, rec.ID, r.catalog.SeasonRecords(rec.ID, d))
	if err != nil {
		return r.failList(ctx, "写入季缓存失败", err, "media_id", rec.ID)
	}
	return seasons, nil
}

// Episodes 某一季的分集，首次访问时拉取
func (r *Resolver) Episodes(ctx context.Context, rec *entities.MetadataRecord, seasonNumber int) ([]entities.Episode, error) {
	if rec == nil || rec.MediaType != valueobjects.MediaTypeTV {
		return nil, nil
	}

	season, err := r.repo.FindSeason(ctx, rec.ID, seasonNumber)
	if err != nil {
		return r.failEpisodes(ctx, "读取季缓存失败", err, "media_id", rec.ID)
	}
	if season == nil {
		if _, err := r.Seasons(ctx, rec); err != nil {
			return nil, err
		}
		if season, err = r.repo.FindSeason(ctx, rec.ID, seasonNumber); err != nil {
			return r.failEpisodes(ctx, "读取季缓存失败", err, "media_id", rec.ID)
		}
		if season == nil {
			logger.Info("TMDB没有该季", "tmdb_id", rec.TMDBID, "season", seasonNumber)
			return nil, nil
		}
	}

	existing, err := r.repo.Episodes(ctx, season.ID)
	if err != nil {
		return r.failEpisodes(ctx, "读取分集缓存失败", err, "season_id", season.ID)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	s, err := r.catalog.GetSeasonDetails(ctx, rec.TMDBID, seasonNumber)
	if err != nil {
		return r.failEpisodes(ctx, "获取TMDB分集失败", err, "tmdb_id", rec.TMDBID, "season", seasonNumber)
	}
	episodes, err := r.repo.InsertEpisodes(ctx, season.ID, r.catalog.EpisodeRecords(season.ID, s))
	if err != nil {
		return r.failEpisodes(ctx, "写入分集缓存失败", err, "season_id", season.ID)
	}
	return episodes, nil
}

// ResolveForShare 按优先级选择唯一的一条解析路径：
// 人工ID > 标题中的ID > 人工标题 > 清洗后的标题
func (r *Resolver) ResolveForShare(ctx context.Context, req ResolveRequest) (*entities.MetadataRecord, Source, error) {
	mediaType := req.Kind.MediaType()

	var (
		rec    *entities.MetadataRecord
		source Source
		err    error
	)
	switch {
	case req.OverrideID != nil && *req.OverrideID > 0:
		source = SourceOverrideID
		rec, err = r.ResolveByID(ctx, *req.OverrideID, mediaType)
	case req.ExtractedID != nil && *req.ExtractedID > 0:
		source = SourceExtractedID
		rec, err = r.ResolveByID(ctx, *req.ExtractedID, mediaType)
	case strings.TrimSpace(req.OverrideTitle) != "":
		source = SourceOverrideTitle
		rec, err = r.ResolveByQuery(ctx, req.OverrideTitle, nil, mediaType)
	case strings.TrimSpace(req.CleanTitle) != "":
		source = SourceCleanTitle
		rec, err = r.ResolveByQuery(ctx, req.CleanTitle, req.Year, mediaType)
	default:
		logger.Warn("分享没有可用于解析的标题或ID", "share_id", req.ShareID)
		return nil, SourceNone, nil
	}

	logger.Debug("分享元数据解析", "share_id", req.ShareID, "source", source, "matched", rec != nil)
	return rec, source, err
}

func (r *Resolver) fail(ctx context.Context, msg string, err error, kv ...any) (*entities.MetadataRecord, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	logger.Warn(msg, append(kv, "error", err)...)
	return nil, nil
}

func (r *Resolver) failList(ctx context.Context, msg string, err error, kv ...any) ([]entities.Season, error) {
	_, ctxErr := r.fail(ctx, msg, err, kv...)
	return nil, ctxErr
}

func (r *Resolver) failEpisodes(ctx context.Context, msg string, err error, kv ...any) ([]entities.Episode, error) {
	_, ctxErr := r.fail(ctx, msg, err, kv...)
	return nil, ctxErr
}
