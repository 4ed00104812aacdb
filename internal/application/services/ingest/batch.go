package ingest

import (
	"context"
	"strconv"

	"github.com/Aijiaobin/video-api/internal/domain/entities"
	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
	apperrors "github.com/Aijiaobin/video-api/internal/shared/errors"
	"github.com/Aijiaobin/video-api/pkg/executor"
)

// ErrNoMatch 批量解析中没有找到元数据的分享计为失败
var ErrNoMatch = apperrors.New(apperrors.ErrorCodeNotFound, "no matching metadata")

func shareName(s *entities.Share) string {
	if s.CleanTitle != "" {
		return strconv.FormatInt(s.ID, 10) + ":" + s.CleanTitle
	}
	return strconv.FormatInt(s.ID, 10) + ":" + s.ShareURL
}

// ParseAll 遍历所有未解析的分享，limit <= 0 表示不限
func (s *Service) ParseAll(ctx context.Context, exec *executor.BatchExecutor, limit int) (*executor.BatchResult, error) {
	pending, err := s.shares.ListUnparsed(ctx, limit)
	if err != nil {
		return nil, err
	}
	return executor.Execute(ctx, exec, "parse", pending, shareName, func(ctx context.Context, sh *entities.Share) error {
		return s.Process(ctx, sh.ID)
	}), nil
}

// ScrapeAll 为缺少元数据的分享和合集文件补充解析
// 合集只重试未关联的文件
func (s *Service) ScrapeAll(ctx context.Context, exec *executor.BatchExecutor, limit int) (*executor.BatchResult, error) {
	unresolved, err := s.shares.ListUnresolved(ctx, limit)
	if err != nil {
		return nil, err
	}
	collections, err := s.shares.ListCollectionsWithUnboundFiles(ctx, limit)
	if err != nil {
		return nil, err
	}

	pending := append(unresolved, collections...)
	return executor.Execute(ctx, exec, "scrape", pending, shareName, func(ctx context.Context, sh *entities.Share) error {
		if sh.Kind == valueobjects.ShareKindMovieCollection {
			return s.ResolveCollectionFiles(ctx, sh)
		}
		rec, err := s.ResolveMetadata(ctx, sh)
		if err != nil {
			return err
		}
		if rec == nil {
			return ErrNoMatch
		}
		return nil
	}), nil
}
