// Package share 遍历网盘分享并产出分类后的结果
package share

import (
	"context"
	"fmt"
	"sync"

	"github.com/Aijiaobin/video-api/internal/domain/entities"
	"github.com/Aijiaobin/video-api/internal/domain/services/classifier"
	"github.com/Aijiaobin/video-api/internal/domain/services/link"
	"github.com/Aijiaobin/video-api/internal/domain/services/media"
	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
	apperrors "github.com/Aijiaobin/video-api/internal/shared/errors"
	"github.com/Aijiaobin/video-api/pkg/logger"
)

const (
	DefaultProbeFolderLimit = 10
	DefaultProbeVideoTarget = 4

	// rootFolderID 天翼云盘分享根目录的默认 fileId
	rootFolderID = "-11"
	untitled     = "未知分享"
)

// Drive 网盘分享接口
type Drive interface {
	GetShareInfo(ctx context.Context, shareCode string) (*entities.RemoteShare, error)
	// CheckAccessCode 校验访问码，返回加密分享的 shareId
	CheckAccessCode(ctx context.Context, shareCode, accessCode string) (string, error)
	ListDir(ctx context.Context, share *entities.RemoteShare, folderID string) ([]entities.RemoteEntry, error)
}

// Config 浅层探测的上限
type Config struct {
	ProbeFolderLimit int
	ProbeVideoTarget int
}

// Walker 分享遍历器
type Walker struct {
	mu     sync.RWMutex
	drives map[valueobjects.DriveType]Drive
	cfg    Config
}

// NewWalker 创建遍历器
func NewWalker(cfg Config) *Walker {
	if cfg.ProbeFolderLimit <= 0 {
		cfg.ProbeFolderLimit = DefaultProbeFolderLimit
	}
	if cfg.ProbeVideoTarget <= 0 {
		cfg.ProbeVideoTarget = DefaultProbeVideoTarget
	}
	return &Walker{
		drives: make(map[valueobjects.DriveType]Drive),
		cfg:    cfg,
	}
}

// Register 注册网盘实现
func (w *Walker) Register(driveType valueobjects.DriveType, drive Drive) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.drives[driveType] = drive
}

func (w *Walker) drive(driveType valueobjects.DriveType) (Drive, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	d, ok := w.drives[driveType]
	if !ok || !link.Supported(driveType) {
		return nil, apperrors.New(apperrors.ErrorCodeUnsupportedDrive, "unsupported drive type").
			WithDetail("drive_type", string(driveType))
	}
	return d, nil
}

// Walk 解析分享链接；任何网络、解码或鉴权失败都会中止整个遍历，不返回部分结果
func (w *Walker) Walk(ctx context.Context, rawURL, password string, driveType valueobjects.DriveType) (*entities.ParsedShare, error) {
	drive, err := w.drive(driveType)
	if err != nil {
		return nil, err
	}

	shareURL := link.Normalize(driveType, rawURL)
	shareCode := link.ShareCode(driveType, shareURL)
	if shareCode == "" {
		return nil, apperrors.New(apperrors.ErrorCodeInvalidRequest, "unrecognized share link").
			WithDetail("share_url", shareURL)
	}
	if password == "" {
		password = link.ExtractPassword(rawURL)
	}

	info, err := drive.GetShareInfo(ctx, shareCode)
	if err != nil {
		logger.Warn("获取分享信息失败", "share_code", shareCode, "error", err)
		return nil, err
	}

	if info.RequiresAccessCode() {
		if password == "" {
			return nil, apperrors.New(apperrors.ErrorCodeAuthFailed, "share requires an access code").
				WithDetail("share_code", shareCode)
		}
		shareID, err := drive.CheckAccessCode(ctx, shareCode, password)
		if err != nil {
			logger.Warn("访问码校验失败", "share_code", shareCode, "error", err)
			return nil, err
		}
		info.ShareID = shareID
		info.AccessCode = password
	}

	files, probe, err := w.collect(ctx, drive, info)
	if err != nil {
		logger.Warn("列出分享文件失败", "share_code", shareCode, "error", err)
		return nil, err
	}

	rawTitle := info.FileName
	if rawTitle == "" {
		rawTitle = untitled
	}
	title := classifier.CleanTitle(rawTitle)
	evidence := files
	if len(probe) > 0 {
		evidence = append(append([]entities.FileEntry{}, files...), probe...)
	}
	kind := media.InferShareKind(title.Kind, evidence)

	parsed := &entities.ParsedShare{
		RawTitle:        rawTitle,
		CleanTitle:      title.CleanTitle,
		Kind:            kind,
		Year:            positive(title.Year),
		SeasonNumber:    positive(title.SeasonNumber),
		Resolution:      title.Resolution,
		ExtractedTMDBID: positive(title.TMDBID),
		ShareCode:       shareCode,
		ShareID:         info.ShareID,
		Sharer:          info.Creator,
		FileCount:       len(files),
		Files:           files,
		ProbeFiles:      probe,
	}

	logger.Info("分享解析完成",
		"share_code", shareCode,
		"title", parsed.CleanTitle,
		"kind", parsed.Kind,
		"files", parsed.FileCount,
		"probed", len(probe))
	return parsed, nil
}

// collect 根目录条目和浅层探测样本
func (w *Walker) collect(ctx context.Context, drive Drive, info *entities.RemoteShare) (files, probe []entities.FileEntry, err error) {
	if !info.IsFolder {
		entry := classifyEntry(entities.RemoteEntry{
			ID:   info.FileID,
			Name: info.FileName,
			Size: info.FileSize,
		}, "")
		return []entities.FileEntry{entry}, nil, nil
	}

	rootID := info.FileID
	if rootID == "" {
		rootID = rootFolderID
	}
	entries, err := drive.ListDir(ctx, info, rootID)
	if err != nil {
		return nil, nil, err
	}
	files = classifyEntries(entries, rootID)

	stats := media.Calculate(files)
	if stats.VideoFiles > 0 || stats.Directories == 0 {
		return files, nil, nil
	}

	// 根目录只有子目录时做浅层探测，避免按季分目录的剧集被误判为电影
	probed := 0
	for _, f := range files {
		if !f.IsDirectory || f.FileID == "" {
			continue
		}
		if probed >= w.cfg.ProbeFolderLimit {
			break
		}
		probed++

		children, err := drive.ListDir(ctx, info, f.FileID)
		if err != nil {
			return nil, nil, fmt.Errorf("probe folder %s: %w", f.FileID, err)
		}
		probe = append(probe, classifyEntries(children, f.FileID)...)
		if media.Calculate(probe).VideoFiles >= w.cfg.ProbeVideoTarget {
			break
		}
	}
	return files, probe, nil
}

func classifyEntries(entries []entities.RemoteEntry, parentID string) []entities.FileEntry {
	out := make([]entities.FileEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, classifyEntry(e, parentID))
	}
	return out
}

func classifyEntry(e entities.RemoteEntry, parentID string) entities.FileEntry {
	var info classifier.FileInfo
	if e.IsFolder {
		info = classifier.ParseDirName(e.Name)
	} else {
		info = classifier.ParseFileName(e.Name)
	}
	return entities.FileEntry{
		FileID:        e.ID,
		FileName:      e.Name,
		CleanName:     info.CleanName,
		FileSize:      e.Size,
		IsDirectory:   e.IsFolder,
		ContentType:   info.ContentType,
		ParentID:      parentID,
		SeasonNumber:  info.SeasonNumber,
		EpisodeNumber: info.EpisodeNumber,
		Resolution:    info.Resolution,
		VideoCodec:    info.VideoCodec,
		AudioCodec:    info.AudioCodec,
	}
}

func positive(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}
