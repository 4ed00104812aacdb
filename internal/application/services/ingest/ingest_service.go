// Package ingest 分享入库流程：规范化、遍历、落库、元数据解析
package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Aijiaobin/video-api/internal/application/services/metadata"
	"github.com/Aijiaobin/video-api/internal/domain/entities"
	"github.com/Aijiaobin/video-api/internal/domain/repositories"
	"github.com/Aijiaobin/video-api/internal/domain/services/classifier"
	"github.com/Aijiaobin/video-api/internal/domain/services/link"
	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
	apperrors "github.com/Aijiaobin/video-api/internal/shared/errors"
	"github.com/Aijiaobin/video-api/pkg/logger"
)

// Walker 分享遍历，由 share.Walker 实现
type Walker interface {
	Walk(ctx context.Context, rawURL, password string, driveType valueobjects.DriveType) (*entities.ParsedShare, error)
}

// Resolver 元数据解析，由 metadata.Resolver 实现
type Resolver interface {
	ResolveForShare(ctx context.Context, req metadata.ResolveRequest) (*entities.MetadataRecord, metadata.Source, error)
	ResolveByQuery(ctx context.Context, title string, year *int, mediaType valueobjects.MediaType) (*entities.MetadataRecord, error)
}

// Service 分享入库服务
type Service struct {
	walker   Walker
	resolver Resolver
	shares   repositories.ShareRepository
	sharers  repositories.SharerRepository
	media    repositories.MetadataRepository

	// 后台处理，Wait 用于优雅退出
	wg sync.WaitGroup
}

// NewService 创建入库服务
func NewService(walker Walker, resolver Resolver, shares repositories.ShareRepository,
	sharers repositories.SharerRepository, media repositories.MetadataRepository) *Service {
	return &Service{
		walker:   walker,
		resolver: resolver,
		shares:   shares,
		sharers:  sharers,
		media:    media,
	}
}

// Submit 规范化链接并登记分享，已存在时返回已有记录且 created 为 false
func (s *Service) Submit(ctx context.Context, req entities.ShareRequest) (*entities.Share, bool, error) {
	drive := valueobjects.NewDriveType(req.DriveType)
	if !link.Supported(drive) {
		return nil, false, apperrors.New(apperrors.ErrorCodeUnsupportedDrive, "unsupported drive type").
			WithDetail("drive_type", string(drive))
	}

	normalized := link.Normalize(drive, req.ShareURL)
	if normalized == "" {
		return nil, false, apperrors.New(apperrors.ErrorCodeInvalidRequest, "share url is required")
	}

	password := strings.TrimSpace(req.Password)
	if password == "" {
		password = link.ExtractPassword(req.ShareURL)
	}

	share, created, err := s.shares.CreateIfAbsent(ctx, &entities.Share{
		DriveType: string(drive),
		ShareURL:  normalized,
		ShareCode: link.ShareCode(drive, normalized),
		Password:  password,
		Status:    valueobjects.ShareStatusActive,
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		logger.Info("分享已登记", "share_id", share.ID, "share_url", share.ShareURL, "drive_type", share.DriveType)
	} else {
		logger.Debug("分享已存在", "share_id", share.ID, "share_url", share.ShareURL)
	}
	return share, created, nil
}

// IngestShare 登记并同步完成遍历和解析；同一规范化链接重复提交时直接返回已有记录
func (s *Service) IngestShare(ctx context.Context, req entities.ShareRequest) (*entities.Share, error) {
	share, created, err := s.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	if !created {
		return share, nil
	}
	if err := s.Process(ctx, share.ID); err != nil {
		return nil, err
	}
	return s.shares.GetByID(ctx, share.ID)
}

// SubmitAsync 登记后在后台遍历和解析，立即返回登记结果
func (s *Service) SubmitAsync(ctx context.Context, req entities.ShareRequest) (*entities.Share, error) {
	share, created, err := s.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	if created {
		// 后台任务不跟随请求的 context
		s.wg.Add(1)
		go func(id int64) {
			defer s.wg.Done()
			if err := s.Process(context.WithoutCancel(ctx), id); err != nil {
				logger.Warn("后台解析分享失败", "share_id", id, "error", err)
			}
		}(share.ID)
	}
	return share, nil
}

// Wait 等待后台任务结束
func (s *Service) Wait() {
	s.wg.Wait()
}

// Process 遍历分享、保存结果并解析元数据
func (s *Service) Process(ctx context.Context, shareID int64) error {
	share, err := s.Parse(ctx, shareID)
	if err != nil {
		return err
	}
	return s.Resolve(ctx, share)
}

// Parse 遍历远端分享并替换已保存的文件列表；失败时分享保持未解析状态
func (s *Service) Parse(ctx context.Context, shareID int64) (*entities.Share, error) {
	share, err := s.shares.GetByID(ctx, shareID)
	if err != nil {
		return nil, err
	}

	parsed, err := s.walker.Walk(ctx, share.ShareURL, share.Password, valueobjects.NewDriveType(share.DriveType))
	if err != nil {
		logger.Warn("分享遍历失败", "share_id", share.ID, "share_url", share.ShareURL,
			"code", apperrors.CodeOf(err), "error", err)
		return nil, fmt.Errorf("walk share %d: %w", share.ID, err)
	}

	if err := s.shares.SaveParseResult(ctx, share.ID, parsed); err != nil {
		return nil, fmt.Errorf("save parse result of share %d: %w", share.ID, err)
	}
	logger.Info("分享解析完成", "share_id", share.ID, "title", parsed.CleanTitle,
		"share_type", parsed.Kind, "files", parsed.FileCount)

	return s.shares.GetByID(ctx, share.ID)
}

// Resolve 按分享类型解析元数据；合集逐个文件解析
func (s *Service) Resolve(ctx context.Context, share *entities.Share) error {
	if share.Kind == valueobjects.ShareKindMovieCollection {
		return s.ResolveCollectionFiles(ctx, share)
	}
	_, err := s.ResolveMetadata(ctx, share)
	return err
}

// ResolveMetadata 为整个分享解析元数据并绑定；没有匹配时返回 nil, nil
// 合集不做整体绑定
func (s *Service) ResolveMetadata(ctx context.Context, share *entities.Share) (*entities.MetadataRecord, error) {
	if share.Kind == valueobjects.ShareKindMovieCollection {
		return nil, nil
	}

	rec, source, err := s.resolver.ResolveForShare(ctx, metadata.ResolveRequest{
		ShareID:       share.ID,
		Kind:          share.Kind,
		OverrideID:    share.ManualTMDBID,
		ExtractedID:   share.ExtractedTMDBID,
		OverrideTitle: share.ManualTitle,
		CleanTitle:    share.CleanTitle,
		Year:          share.Year,
	})
	if err != nil {
		return nil, err
	}
	if rec == nil {
		logger.Info("分享没有匹配的元数据", "share_id", share.ID, "title", share.CleanTitle, "source", source)
		return nil, nil
	}

	if err := s.shares.BindMedia(ctx, share.ID, rec.ID, rec.PosterURL); err != nil {
		return nil, fmt.Errorf("bind media to share %d: %w", share.ID, err)
	}
	logger.Info("分享已关联元数据", "share_id", share.ID, "tmdb_id", rec.TMDBID, "title", rec.Title, "source", source)
	return rec, nil
}

// ResolveCollectionFiles 合集中每个未关联的视频文件按电影单独解析
// 单个文件失败只记录日志，未关联的文件留给下一次 scrape
func (s *Service) ResolveCollectionFiles(ctx context.Context, share *entities.Share) error {
	files, err := s.shares.Files(ctx, share.ID)
	if err != nil {
		return err
	}

	var bound, skipped int
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !f.IsVideo() || f.MediaID != nil {
			continue
		}

		title := f.CleanName
		if title == "" {
			title = f.FileName
		}
		title = classifier.StripExtension(title)

		rec, err := s.resolver.ResolveByQuery(ctx, title, nil, valueobjects.MediaTypeMovie)
		if err != nil {
			return err
		}
		if rec == nil {
			skipped++
			continue
		}
		if err := s.shares.BindFileMedia(ctx, f.ID, rec.ID, rec.PosterURL); err != nil {
			logger.Warn("文件关联元数据失败", "share_id", share.ID, "file_id", f.ID, "error", err)
			skipped++
			continue
		}
		bound++
	}

	logger.Info("合集文件解析完成", "share_id", share.ID, "bound", bound, "unmatched", skipped)
	return nil
}
