package classifier

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
	strutil "github.com/Aijiaobin/video-api/pkg/utils/string"
)

// FileInfo 文件名解析结果
type FileInfo struct {
	CleanName     string
	Extension     string // 小写，不含点
	ContentType   valueobjects.ContentType
	SeasonNumber  *int
	EpisodeNumber *int
	Resolution    string
	VideoCodec    string
	AudioCodec    string
}

var (
	videoExtensions = map[string]struct{}{
		"mp4": {}, "mkv": {}, "avi": {}, "mov": {}, "wmv": {}, "flv": {}, "webm": {},
		"m4v": {}, "mpg": {}, "mpeg": {}, "3gp": {}, "rmvb": {}, "ts": {}, "m2ts": {},
	}
	subtitleExtensions = map[string]struct{}{
		"srt": {}, "ass": {}, "ssa": {}, "sub": {}, "idx": {}, "vtt": {},
	}
	audioExtensions = map[string]struct{}{
		"mp3": {}, "flac": {}, "wav": {}, "aac": {}, "m4a": {}, "ogg": {}, "wma": {},
	}
	imageExtensions = map[string]struct{}{
		"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "bmp": {}, "webp": {},
	}
)

const chineseNumerals = `零〇一二两三四五六七八九十百`

// episodePattern 季号组为0表示该写法只有集号
type episodePattern struct {
	pattern      *regexp.Regexp
	seasonGroup  int
	episodeGroup int
}

// episodePatterns 顺序即优先级
var episodePatterns = []episodePattern{
	{regexp.MustCompile(`(?i)s(\d{1,2})e(\d{1,4})`), 1, 2},                                            // S01E05
	{regexp.MustCompile(`(?i)s(\d{1,2})(?:\.ep?|\.|ep?)(\d{1,3})(?:\D|$)`), 1, 2},                     // S01.05 S01.E05 S01EP05
	{regexp.MustCompile(`第([\d` + chineseNumerals + `]+)季.*?第([\d` + chineseNumerals + `]+)集`), 1, 2}, // 第1季第5集
	{regexp.MustCompile(`(?i)(?:^|[^a-z])ep?\.?(\d{1,4})(?:\D|$)`), 0, 1},                             // EP05 E05
	{regexp.MustCompile(`第([\d` + chineseNumerals + `]+)集`), 0, 1},                                    // 第5集
	{regexp.MustCompile(`[\[(（【](\d{1,3})[\])）】]`), 0, 1},                                             // [05] (05)
	{regexp.MustCompile(`[\s\-_](\d{2,3})[\s\-_.]`), 0, 1},                                            // " 05 " "-05."
}

var (
	fileBracketTag     = regexp.MustCompile(`\[[\p{L}\p{N}_\s&@\-.]+\]`)
	fileCJKBracketTag  = regexp.MustCompile(`【[^】]*】`)
	fileSeparatorRun   = regexp.MustCompile(`([\s._\-])[\s._\-]+`)
	fileEdgeSeparators = regexp.MustCompile(`^[\s._\-]+|[\s._\-]+$`)

	file4K    = regexp.MustCompile(`(?i)4k|2160p`)
	file1080P = regexp.MustCompile(`(?i)1080p`)
	file720P  = regexp.MustCompile(`(?i)720p`)

	codecHEVC = regexp.MustCompile(`(?i)hevc|h\.?265|x265`)
	codecAVC  = regexp.MustCompile(`(?i)avc|h\.?264|x264`)
	codecAV1  = regexp.MustCompile(`(?i)av1`)

	audioDTS    = regexp.MustCompile(`(?i)dts`)
	audioAAC    = regexp.MustCompile(`(?i)aac`)
	audioFLAC   = regexp.MustCompile(`(?i)flac`)
	audioTrueHD = regexp.MustCompile(`(?i)truehd|atmos`)
)

// ParseFileName 解析单个文件名；纯函数
func ParseFileName(name string) FileInfo {
	ext := FileExtension(name)
	info := FileInfo{
		Extension:   ext,
		ContentType: ContentTypeOf(ext),
		Resolution:  fileResolution(name),
		VideoCodec:  fileVideoCodec(name),
		AudioCodec:  fileAudioCodec(name),
	}
	info.SeasonNumber, info.EpisodeNumber = ExtractEpisode(name)
	info.CleanName = cleanFileName(name, ext)
	return info
}

// ParseDirName 目录只保留名称，不携带季集和技术信息
func ParseDirName(name string) FileInfo {
	return FileInfo{
		CleanName:   strings.TrimSpace(name),
		ContentType: valueobjects.ContentTypeOther,
	}
}

// FileExtension 返回小写扩展名，不含点
func FileExtension(name string) string {
	ext := path.Ext(name)
	if ext == "" || ext == name {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// StripExtension 去掉已知媒体扩展名，未知扩展名原样保留
func StripExtension(name string) string {
	ext := FileExtension(name)
	if ext == "" || ContentTypeOf(ext) == valueobjects.ContentTypeOther {
		return name
	}
	return name[:len(name)-len(ext)-1]
}

// ContentTypeOf 根据扩展名判断文件类型
func ContentTypeOf(ext string) valueobjects.ContentType {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if _, ok := videoExtensions[ext]; ok {
		return valueobjects.ContentTypeVideo
	}
	if _, ok := subtitleExtensions[ext]; ok {
		return valueobjects.ContentTypeSubtitle
	}
	if _, ok := audioExtensions[ext]; ok {
		return valueobjects.ContentTypeAudio
	}
	if _, ok := imageExtensions[ext]; ok {
		return valueobjects.ContentTypeImage
	}
	return valueobjects.ContentTypeOther
}

// ExtractEpisode 依次尝试各集号写法，第一个命中的写法生效
func ExtractEpisode(name string) (season, episode *int) {
	for _, ep := range episodePatterns {
		m := ep.pattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		e := parseNumber(m[ep.episodeGroup])
		if e < 0 {
			continue
		}
		episode = &e
		if ep.seasonGroup > 0 {
			if s := parseNumber(m[ep.seasonGroup]); s >= 0 {
				season = &s
			}
		}
		return season, episode
	}
	return nil, nil
}

// parseNumber 阿拉伯数字或中文数字，无法解析返回-1
func parseNumber(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if n := strutil.ChineseToNumber(s); n > 0 {
		return n
	}
	return -1
}

func fileResolution(name string) string {
	switch {
	case file4K.MatchString(name):
		return "4K"
	case file1080P.MatchString(name):
		return "1080P"
	case file720P.MatchString(name):
		return "720P"
	}
	return ""
}

func fileVideoCodec(name string) string {
	switch {
	case codecHEVC.MatchString(name):
		return "HEVC"
	case codecAVC.MatchString(name):
		return "AVC"
	case codecAV1.MatchString(name):
		return "AV1"
	}
	return ""
}

func fileAudioCodec(name string) string {
	switch {
	case audioDTS.MatchString(name):
		return "DTS"
	case audioAAC.MatchString(name):
		return "AAC"
	case audioFLAC.MatchString(name):
		return "FLAC"
	case audioTrueHD.MatchString(name):
		return "TrueHD"
	}
	return ""
}

// cleanFileName 去掉扩展名、括号标签和技术信息，结果为空时回退到原文件名
func cleanFileName(name, ext string) string {
	base := name
	if ext != "" {
		base = name[:len(name)-len(ext)-1]
	}
	result := fileBracketTag.ReplaceAllString(base, "")
	result = fileCJKBracketTag.ReplaceAllString(result, "")
	result = applyRules(result, technicalRules)
	result = fileSeparatorRun.ReplaceAllString(result, "$1")
	result = fileEdgeSeparators.ReplaceAllString(result, "")
	if result == "" {
		return strings.TrimSpace(base)
	}
	return result
}
