package entities

import (
	"time"

	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
)

// ShareRequest 用户提交的分享
type ShareRequest struct {
	DriveType string `json:"drive_type"`
	ShareURL  string `json:"share_url"` // 原始输入，可能夹带推广文案
	Password  string `json:"password,omitempty"`
}

// SharerInfo 网盘返回的分享人身份
type SharerInfo struct {
	SharerID  string `json:"sharer_id"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
}

// FileEntry 分享中的一个文件或目录
// 目录不携带季/集/分辨率/编码信息
type FileEntry struct {
	FileID        string                   `json:"file_id"`
	FileName      string                   `json:"file_name"`
	CleanName     string                   `json:"clean_name"`
	FileSize      int64                    `json:"file_size"`
	IsDirectory   bool                     `json:"is_directory"`
	ContentType   valueobjects.ContentType `json:"file_type"`
	ParentID      string                   `json:"parent_id,omitempty"`
	SeasonNumber  *int                     `json:"season_number,omitempty"`
	EpisodeNumber *int                     `json:"episode_number,omitempty"`
	Resolution    string                   `json:"resolution,omitempty"`
	VideoCodec    string                   `json:"video_codec,omitempty"`
	AudioCodec    string                   `json:"audio_codec,omitempty"`
}

// IsVideo 是否为视频文件
func (f *FileEntry) IsVideo() bool {
	return !f.IsDirectory && f.ContentType.IsVideo()
}

// ParsedShare 一次遍历的结果
type ParsedShare struct {
	RawTitle        string                 `json:"raw_title"`
	CleanTitle      string                 `json:"clean_title"`
	Kind            valueobjects.ShareKind `json:"share_type"`
	Year            *int                   `json:"year,omitempty"`
	SeasonNumber    *int                   `json:"season_number,omitempty"`
	Resolution      string                 `json:"resolution,omitempty"`
	ExtractedTMDBID *int                   `json:"extracted_tmdb_id,omitempty"`
	ShareCode       string                 `json:"share_code"`
	ShareID         string                 `json:"share_id"`
	Sharer          SharerInfo             `json:"sharer"`
	FileCount       int                    `json:"file_count"`
	Files           []FileEntry            `json:"files"`
	// ProbeFiles 浅层探测子目录得到的样本，仅作为类型判断依据，不落库
	ProbeFiles []FileEntry `json:"-"`
}

// Sharer 分享人
type Sharer struct {
	ID         int64     `json:"id"`
	SharerID   string    `json:"sharer_id"`
	Nickname   string    `json:"nickname"`
	AvatarURL  string    `json:"avatar_url"`
	DriveType  string    `json:"drive_type"`
	ShareCount int       `json:"share_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Share 已入库的分享
type Share struct {
	ID              int64                    `json:"id"`
	DriveType       string                   `json:"drive_type"`
	ShareURL        string                   `json:"share_url"`
	ShareCode       string                   `json:"share_code"`
	RemoteShareID   string                   `json:"remote_share_id"`
	Password        string                   `json:"password,omitempty"`
	RawTitle        string                   `json:"raw_title"`
	CleanTitle      string                   `json:"clean_title"`
	ManualTitle     string                   `json:"manual_title,omitempty"`
	ManualTMDBID    *int                     `json:"manual_tmdb_id,omitempty"`
	ExtractedTMDBID *int                     `json:"extracted_tmdb_id,omitempty"`
	Year            *int                     `json:"year,omitempty"`
	SeasonNumber    *int                     `json:"season_number,omitempty"`
	Resolution      string                   `json:"resolution,omitempty"`
	Kind            valueobjects.ShareKind   `json:"share_type"`
	MediaID         *int64                   `json:"media_id,omitempty"`
	PosterURL       string                   `json:"poster_url,omitempty"`
	SharerRef       *int64                   `json:"-"`
	Sharer          *Sharer                  `json:"sharer,omitempty"`
	FileCount       int                      `json:"file_count"`
	ViewCount       int                      `json:"view_count"`
	SaveCount       int                      `json:"save_count"`
	Status          valueobjects.ShareStatus `json:"status"`
	ParsedAt        *time.Time               `json:"parsed_at,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
	Files           []ShareFile              `json:"files,omitempty"`
	Media           *MetadataRecord          `json:"media_info,omitempty"`
}

// IsParsed 是否已经完成过一次成功的遍历
func (s *Share) IsParsed() bool {
	return s.ParsedAt != nil
}

// ShareFile 已入库的分享文件；电影合集中每个文件可独立关联元数据
type ShareFile struct {
	ID      int64 `json:"id"`
	ShareID int64 `json:"share_id"`
	FileEntry
	MediaID   *int64 `json:"media_id,omitempty"`
	PosterURL string `json:"poster_url,omitempty"`
}

// RemoteShare 网盘返回的分享元信息
type RemoteShare struct {
	ShareCode string
	ShareID   string
	FileID    string
	FileName  string
	FileSize  int64
	IsFolder  bool
	// ShareMode 0 公开，1 需要访问码
	ShareMode  int
	AccessCode string
	Creator    SharerInfo
}

// RequiresAccessCode 是否为加密分享
func (r *RemoteShare) RequiresAccessCode() bool {
	return r.ShareMode == 1
}

// RemoteEntry 目录列表中的原始条目
type RemoteEntry struct {
	ID       string
	Name     string
	Size     int64
	IsFolder bool
}
