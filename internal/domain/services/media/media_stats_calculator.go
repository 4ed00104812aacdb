package media

import (
	"github.com/Aijiaobin/video-api/internal/domain/entities"
	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
)

// ShareStats 分享文件列表的统计结果，作为类型推断的依据
type ShareStats struct {
	TotalFiles    int   `json:"total_files"`
	TotalSize     int64 `json:"total_size"`
	VideoFiles    int   `json:"video_files"`
	EpisodeVideos int   `json:"episode_videos"` // 能识别出集号的视频
	SubtitleFiles int   `json:"subtitle_files"`
	Directories   int   `json:"directories"`
	OtherFiles    int   `json:"other_files"`
}

// Calculate 统计文件列表
func Calculate(entries []entities.FileEntry) ShareStats {
	var stats ShareStats
	for i := range entries {
		e := &entries[i]
		if e.IsDirectory {
			stats.Directories++
			continue
		}

		stats.TotalFiles++
		stats.TotalSize += e.FileSize

		switch {
		case e.IsVideo():
			stats.VideoFiles++
			if e.EpisodeNumber != nil {
				stats.EpisodeVideos++
			}
		case e.ContentType == valueobjects.ContentTypeSubtitle:
			stats.SubtitleFiles++
		default:
			stats.OtherFiles++
		}
	}
	return stats
}
