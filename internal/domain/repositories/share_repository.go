package repositories

import (
	"context"

	"github.com/Aijiaobin/video-api/internal/domain/entities"
	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
)

// ShareFilter 分享列表过滤条件
type ShareFilter struct {
	Kind    valueobjects.ShareKind
	Keyword string
}

// ShareRepository 分享存储库接口
// GetByID 找不到时返回 NOT_FOUND 错误；FindByURL 找不到时返回 nil, nil
type ShareRepository interface {
	// CreateIfAbsent 按规范化链接去重插入，已存在时返回已有记录且 created 为 false
	CreateIfAbsent(ctx context.Context, share *entities.Share) (existing *entities.Share, created bool, err error)
	GetByID(ctx context.Context, id int64) (*entities.Share, error)
	FindByURL(ctx context.Context, shareURL string) (*entities.Share, error)
	List(ctx context.Context, filter ShareFilter, offset, limit int) ([]*entities.Share, int, error)

	// SaveParseResult 在同一事务中更新分享字段、登记分享人并替换文件列表
	SaveParseResult(ctx context.Context, shareID int64, parsed *entities.ParsedShare) error
	Files(ctx context.Context, shareID int64) ([]entities.ShareFile, error)

	BindMedia(ctx context.Context, shareID, mediaID int64, posterURL string) error
	BindFileMedia(ctx context.Context, fileID, mediaID int64, posterURL string) error
	SetOverride(ctx context.Context, shareID int64, title string, tmdbID *int) error
	MarkStatus(ctx context.Context, shareID int64, status valueobjects.ShareStatus) error

	IncrementViewCount(ctx context.Context, shareID int64) error
	IncrementSaveCount(ctx context.Context, shareID int64) error

	// 批处理候选
	ListUnparsed(ctx context.Context, limit int) ([]*entities.Share, error)
	ListUnresolved(ctx context.Context, limit int) ([]*entities.Share, error)
	ListCollectionsWithUnboundFiles(ctx context.Context, limit int) ([]*entities.Share, error)
}

// SharerRepository 分享人存储库接口
type SharerRepository interface {
	GetByID(ctx context.Context, id int64) (*entities.Sharer, error)
	FindBySharerID(ctx context.Context, sharerID string) (*entities.Sharer, error)
}
