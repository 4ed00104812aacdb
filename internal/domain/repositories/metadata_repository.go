package repositories

import (
	"context"

	"github.com/Aijiaobin/video-api/internal/domain/entities"
	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
)

// MetadataRepository 元数据缓存存储库接口
// Find* 系列找不到时返回 nil, nil
type MetadataRepository interface {
	GetByID(ctx context.Context, id int64) (*entities.MetadataRecord, error)
	FindByTMDBID(ctx context.Context, tmdbID int, mediaType valueobjects.MediaType) (*entities.MetadataRecord, error)
	// SearchByTitle 标题模糊匹配，year 为 nil 时不按年份过滤
	SearchByTitle(ctx context.Context, title string, year *int, mediaType valueobjects.MediaType) (*entities.MetadataRecord, error)
	// Insert 以 (tmdb_id, media_type) 去重插入，冲突时返回已有记录
	Insert(ctx context.Context, rec *entities.MetadataRecord) (*entities.MetadataRecord, error)

	Seasons(ctx context.Context, mediaID int64) ([]entities.Season, error)
	FindSeason(ctx context.Context, mediaID int64, seasonNumber int) (*entities.Season, error)
	// InsertSeasons 以 (media_id, season_number) 去重插入，返回该作品的全部季
	InsertSeasons(ctx context.Context, mediaID int64, seasons []entities.Season) ([]entities.Season, error)

	Episodes(ctx context.Context, seasonID int64) ([]entities.Episode, error)
	// InsertEpisodes 以 (season_id, episode_number) 去重插入，返回该季的全部分集
	InsertEpisodes(ctx context.Context, seasonID int64, episodes []entities.Episode) ([]entities.Episode, error)
}
