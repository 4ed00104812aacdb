package media

import (
	"fmt"
	"testing"

	"github.com/Aijiaobin/video-api/internal/domain/entities"
	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
)

func videos(n int, withEpisode bool) []entities.FileEntry {
	out := make([]entities.FileEntry, 0, n)
	for i := 0; i < n; i++ {
		e := entities.FileEntry{
			FileID:      fmt.Sprintf("v%d", i),
			FileName:    fmt.Sprintf("影片%d.mkv", i),
			ContentType: valueobjects.ContentTypeVideo,
			FileSize:    1024,
		}
		if withEpisode {
			ep := i + 1
			e.EpisodeNumber = &ep
		}
		out = append(out, e)
	}
	return out
}

func dirs(n int) []entities.FileEntry {
	out := make([]entities.FileEntry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, entities.FileEntry{
			FileID:      fmt.Sprintf("d%d", i),
			FileName:    fmt.Sprintf("目录%d", i),
			IsDirectory: true,
			ContentType: valueobjects.ContentTypeOther,
		})
	}
	return out
}

func subtitles(n int) []entities.FileEntry {
	out := make([]entities.FileEntry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, entities.FileEntry{
			FileID:      fmt.Sprintf("s%d", i),
			FileName:    fmt.Sprintf("字幕%d.srt", i),
			ContentType: valueobjects.ContentTypeSubtitle,
		})
	}
	return out
}

func join(groups ...[]entities.FileEntry) []entities.FileEntry {
	var out []entities.FileEntry
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func TestInferShareKind(t *testing.T) {
	tests := []struct {
		name      string
		titleKind valueobjects.ShareKind
		entries   []entities.FileEntry
		want      valueobjects.ShareKind
	}{
		{
			name:      "标题为合集时直接返回",
			titleKind: valueobjects.ShareKindMovieCollection,
			entries:   videos(1, false),
			want:      valueobjects.ShareKindMovieCollection,
		},
		{
			name:      "多个视频带集号",
			titleKind: valueobjects.ShareKindMovie,
			entries:   videos(3, true),
			want:      valueobjects.ShareKindTV,
		},
		{
			name:      "单个视频和字幕",
			titleKind: valueobjects.ShareKindTV,
			entries:   join(videos(1, false), subtitles(2)),
			want:      valueobjects.ShareKindMovie,
		},
		{
			name:      "多个视频分布在子目录",
			titleKind: valueobjects.ShareKindMovie,
			entries:   join(dirs(3), videos(5, false)),
			want:      valueobjects.ShareKindTV,
		},
		{
			name:      "平铺的大量视频",
			titleKind: valueobjects.ShareKindMovie,
			entries:   videos(4, false),
			want:      valueobjects.ShareKindMovieCollection,
		},
		{
			name:      "没有视频但有多个子目录",
			titleKind: valueobjects.ShareKindMovie,
			entries:   dirs(2),
			want:      valueobjects.ShareKindTV,
		},
		{
			name:      "两三个视频没有集号回退到标题类型",
			titleKind: valueobjects.ShareKindMovie,
			entries:   videos(3, false),
			want:      valueobjects.ShareKindMovie,
		},
		{
			name:      "只有一个子目录回退到标题类型",
			titleKind: valueobjects.ShareKindTV,
			entries:   dirs(1),
			want:      valueobjects.ShareKindTV,
		},
		{
			name:      "空列表回退到标题类型",
			titleKind: valueobjects.ShareKindMovie,
			entries:   nil,
			want:      valueobjects.ShareKindMovie,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferShareKind(tt.titleKind, tt.entries); got != tt.want {
				t.Errorf("InferShareKind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCalculate(t *testing.T) {
	stats := Calculate(join(dirs(2), videos(3, true), subtitles(1)))
	if stats.Directories != 2 {
		t.Errorf("Directories = %d, want 2", stats.Directories)
	}
	if stats.VideoFiles != 3 || stats.EpisodeVideos != 3 {
		t.Errorf("VideoFiles/EpisodeVideos = %d/%d, want 3/3", stats.VideoFiles, stats.EpisodeVideos)
	}
	if stats.SubtitleFiles != 1 {
		t.Errorf("SubtitleFiles = %d, want 1", stats.SubtitleFiles)
	}
	if stats.TotalFiles != 4 {
		t.Errorf("TotalFiles = %d, want 4", stats.TotalFiles)
	}
	if stats.TotalSize != 3*1024 {
		t.Errorf("TotalSize = %d, want %d", stats.TotalSize, 3*1024)
	}
}
