package classifier

import (
	"testing"

	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantTitle  string
		wantKind   valueobjects.ShareKind
		wantSeason int
		wantYear   int
		wantRes    string
		wantTMDBID int
	}{
		{
			name:      "序号前缀和字幕组标签",
			raw:       "44.散华礼弥 [SumiSora&MAI] [Ma10p_2160p]",
			wantTitle: "散华礼弥",
			wantKind:  valueobjects.ShareKindMovie,
			wantRes:   "4K",
		},
		{
			name:       "中文季号和附带说明",
			raw:        "剑来第二季4K高码附带第一季",
			wantTitle:  "剑来",
			wantKind:   valueobjects.ShareKindTV,
			wantSeason: 2,
			wantRes:    "4K",
		},
		{
			name:       "花括号TMDB标签",
			raw:        "滚滚红尘 {tmdb 156201}",
			wantTitle:  "滚滚红尘",
			wantKind:   valueobjects.ShareKindMovie,
			wantTMDBID: 156201,
		},
		{
			name:       "方括号tmdbid标签",
			raw:        "[tmdbid=18674] 霸王别姬",
			wantTitle:  "霸王别姬",
			wantKind:   valueobjects.ShareKindMovie,
			wantTMDBID: 18674,
		},
		{
			name:      "书名号分类前缀",
			raw:       "《国漫》仙逆",
			wantTitle: "仙逆",
			wantKind:  valueobjects.ShareKindMovie,
		},
		{
			name:      "全角括号年份",
			raw:       "轧戏（2026）4K",
			wantTitle: "轧戏",
			wantKind:  valueobjects.ShareKindMovie,
			wantYear:  2026,
			wantRes:   "4K",
		},
		{
			name:       "剧集带年份",
			raw:        "庆余年 第二季 (2024) 4K",
			wantTitle:  "庆余年",
			wantKind:   valueobjects.ShareKindTV,
			wantSeason: 2,
			wantYear:   2024,
			wantRes:    "4K",
		},
		{
			name:      "英文点分隔发布名",
			raw:       "The.Matrix.1999.1080p.BluRay.x264-GROUP",
			wantTitle: "The Matrix",
			wantKind:  valueobjects.ShareKindMovie,
			wantYear:  1999,
			wantRes:   "1080P",
		},
		{
			name:      "单字母前缀",
			raw:       "D斗罗大陆[4K]",
			wantTitle: "斗罗大陆",
			wantKind:  valueobjects.ShareKindMovie,
			wantRes:   "4K",
		},
		{
			name:      "合集只做轻度清洗",
			raw:       "张国荣电影合集（1980-2003）",
			wantTitle: "张国荣电影合集（1980-2003）",
			wantKind:  valueobjects.ShareKindMovieCollection,
		},
		{
			name:      "合集去掉站点标签",
			raw:       "〖海绵小站〗  漫威系列 ",
			wantTitle: "漫威系列",
			wantKind:  valueobjects.ShareKindMovieCollection,
		},
		{
			name:      "纯数字片名回退到原标题",
			raw:       "1921 (2021) 4K",
			wantTitle: "1921 (2021) 4K",
			wantKind:  valueobjects.ShareKindMovie,
			wantYear:  2021,
			wantRes:   "4K",
		},
		{
			name:      "清洗过度时回退到中文词组",
			raw:       "【高清】4K",
			wantTitle: "高清",
			wantKind:  valueobjects.ShareKindMovie,
			wantRes:   "4K",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanTitle(tt.raw)
			if got.CleanTitle != tt.wantTitle {
				t.Errorf("CleanTitle(%q).CleanTitle = %q, want %q", tt.raw, got.CleanTitle, tt.wantTitle)
			}
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", got.Kind, tt.wantKind)
			}
			if got.SeasonNumber != tt.wantSeason {
				t.Errorf("SeasonNumber = %d, want %d", got.SeasonNumber, tt.wantSeason)
			}
			if got.Year != tt.wantYear {
				t.Errorf("Year = %d, want %d", got.Year, tt.wantYear)
			}
			if got.Resolution != tt.wantRes {
				t.Errorf("Resolution = %q, want %q", got.Resolution, tt.wantRes)
			}
			if got.TMDBID != tt.wantTMDBID {
				t.Errorf("TMDBID = %d, want %d", got.TMDBID, tt.wantTMDBID)
			}
			if got.RawTitle != tt.raw {
				t.Errorf("RawTitle = %q, want %q", got.RawTitle, tt.raw)
			}
		})
	}
}

func TestCleanTitleIsDeterministic(t *testing.T) {
	raw := "44.散华礼弥 [SumiSora&MAI] [Ma10p_2160p]"
	first := CleanTitle(raw)
	for i := 0; i < 3; i++ {
		if got := CleanTitle(raw); got != first {
			t.Fatalf("第%d次结果不同: %+v vs %+v", i+2, got, first)
		}
	}
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		title string
		want  valueobjects.ShareKind
	}{
		{"复仇者联盟系列", valueobjects.ShareKindMovieCollection},
		{"周星驰12部电影", valueobjects.ShareKindMovieCollection},
		{"甄嬛传 全集", valueobjects.ShareKindMovieCollection},
		{"Friends S01 1080p", valueobjects.ShareKindTV},
		{"老友记 Season 3", valueobjects.ShareKindTV},
		{"请回答1988 电视剧", valueobjects.ShareKindTV},
		{"白夜行第七季", valueobjects.ShareKindTV},
		{"Show.S05E03.mkv", valueobjects.ShareKindTV},
		{"阿凡达", valueobjects.ShareKindMovie},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := DetectKind(tt.title); got != tt.want {
				t.Errorf("DetectKind(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  int
	}{
		{name: "半角括号", title: "教父 (1972)", want: 1972},
		{name: "点分隔", title: "Heat.1995.1080p", want: 1995},
		{name: "超出范围时尝试下一种写法", title: "片名(1800).2020.mkv", want: 2020},
		{name: "没有年份", title: "仙逆", want: 0},
		{name: "超出范围", title: "未来(2300)", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractYear(tt.title); got != tt.want {
				t.Errorf("ExtractYear(%q) = %d, want %d", tt.title, got, tt.want)
			}
		})
	}
}

func TestDetectResolution(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"片名 2160p", "4K"},
		{"片名 UHD", "4K"},
		{"片名 1080p", "1080P"},
		{"片名 FHD", "1080P"},
		{"片名 720P", "720P"},
		{"HD国语中字", "720P"},
		{"Birthday", ""},
		{"仙逆", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := DetectResolution(tt.title); got != tt.want {
				t.Errorf("DetectResolution(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestExtractTMDBID(t *testing.T) {
	tests := []struct {
		title string
		want  int
	}{
		{"滚滚红尘 {tmdb 156201}", 156201},
		{"滚滚红尘 {tmdb-156201}", 156201},
		{"Movie [tmdb:603]", 603},
		{"Movie {tmdbid=603}", 603},
		{"Movie TMDBID=603", 603},
		{"Movie 603", 0},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := ExtractTMDBID(tt.title); got != tt.want {
				t.Errorf("ExtractTMDBID(%q) = %d, want %d", tt.title, got, tt.want)
			}
		})
	}
}
