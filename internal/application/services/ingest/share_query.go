package ingest

import (
	"context"
	"strings"

	"github.com/Aijiaobin/video-api/internal/domain/entities"
	"github.com/Aijiaobin/video-api/internal/domain/repositories"
	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
	apperrors "github.com/Aijiaobin/video-api/internal/shared/errors"
	"github.com/Aijiaobin/video-api/pkg/logger"
)

// ListShares 有效分享分页列表
func (s *Service) ListShares(ctx context.Context, filter repositories.ShareFilter, page, pageSize int) ([]*entities.Share, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.shares.List(ctx, filter, (page-1)*pageSize, pageSize)
}

// ShareDetail 分享详情，附带分享人、文件列表和元数据；每次读取计一次浏览
func (s *Service) ShareDetail(ctx context.Context, shareID int64) (*entities.Share, error) {
	if err := s.shares.IncrementViewCount(ctx, shareID); err != nil {
		return nil, err
	}
	share, err := s.shares.GetByID(ctx, shareID)
	if err != nil {
		return nil, err
	}

	if share.SharerRef != nil {
		sharer, err := s.sharers.GetByID(ctx, *share.SharerRef)
		if err != nil && !apperrors.HasCode(err, apperrors.ErrorCodeNotFound) {
			return nil, err
		}
		share.Sharer = sharer
	}

	files, err := s.shares.Files(ctx, share.ID)
	if err != nil {
		return nil, err
	}
	share.Files = files

	if share.MediaID != nil {
		rec, err := s.media.GetByID(ctx, *share.MediaID)
		if err != nil && !apperrors.HasCode(err, apperrors.ErrorCodeNotFound) {
			return nil, err
		}
		share.Media = rec
	}
	return share, nil
}

// RecordSave 记录一次转存，返回最新计数
func (s *Service) RecordSave(ctx context.Context, shareID int64) (int, error) {
	if err := s.shares.IncrementSaveCount(ctx, shareID); err != nil {
		return 0, err
	}
	share, err := s.shares.GetByID(ctx, shareID)
	if err != nil {
		return 0, err
	}
	return share.SaveCount, nil
}

// SetOverride 设置人工标题或 TMDB ID 后立即重新解析
func (s *Service) SetOverride(ctx context.Context, shareID int64, title string, tmdbID *int) (*entities.Share, error) {
	if tmdbID != nil && *tmdbID <= 0 {
		return nil, apperrors.New(apperrors.ErrorCodeInvalidRequest, "tmdb id must be positive")
	}
	if err := s.shares.SetOverride(ctx, shareID, strings.TrimSpace(title), tmdbID); err != nil {
		return nil, err
	}
	logger.Info("分享人工修正已保存", "share_id", shareID, "title", title, "tmdb_id", tmdbID)
	return s.Rescrape(ctx, shareID)
}

// Rescrape 重新解析单个分享的元数据
func (s *Service) Rescrape(ctx context.Context, shareID int64) (*entities.Share, error) {
	share, err := s.shares.GetByID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if !share.IsParsed() {
		return nil, apperrors.New(apperrors.ErrorCodeConflict, "share has not been parsed yet").
			WithDetail("share_id", shareID)
	}
	if err := s.Resolve(ctx, share); err != nil {
		return nil, err
	}
	return s.shares.GetByID(ctx, shareID)
}

// DeleteShare 软删除，分享不再出现在列表和批处理中
func (s *Service) DeleteShare(ctx context.Context, shareID int64) error {
	return s.shares.MarkStatus(ctx, shareID, valueobjects.ShareStatusDeleted)
}
