// Package media 根据文件列表推断分享的最终类型
package media

import (
	"github.com/Aijiaobin/video-api/internal/domain/entities"
	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
)

// InferShareKind 结合标题类型和文件列表推断最终类型，规则按顺序匹配
func InferShareKind(titleKind valueobjects.ShareKind, entries []entities.FileEntry) valueobjects.ShareKind {
	// 标题明确是合集时不再推断
	if titleKind == valueobjects.ShareKindMovieCollection {
		return titleKind
	}

	stats := Calculate(entries)
	return inferFromStats(titleKind, stats)
}

func inferFromStats(titleKind valueobjects.ShareKind, stats ShareStats) valueobjects.ShareKind {
	switch {
	case stats.VideoFiles > 1 && stats.EpisodeVideos > 0:
		return valueobjects.ShareKindTV
	case stats.VideoFiles == 1:
		return valueobjects.ShareKindMovie
	case stats.VideoFiles > 1 && stats.Directories > 0:
		// 没有集号但分了子目录，多半是按季拆分
		return valueobjects.ShareKindTV
	case stats.VideoFiles > 3:
		// 平铺的大量视频更像是电影合集
		return valueobjects.ShareKindMovieCollection
	case stats.VideoFiles == 0 && stats.Directories >= 2:
		return valueobjects.ShareKindTV
	}
	return titleKind
}
