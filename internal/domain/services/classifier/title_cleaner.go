// Package classifier 从分享标题和文件名中提取干净的片名及结构化信息
package classifier

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
	strutil "github.com/Aijiaobin/video-api/pkg/utils/string"
)

// TitleInfo 标题解析结果
type TitleInfo struct {
	RawTitle     string
	CleanTitle   string
	Kind         valueobjects.ShareKind
	Year         int // 0 表示未识别
	SeasonNumber int // 0 表示未识别
	Resolution   string
	TMDBID       int // 0 表示标题中没有ID标签
}

// CleanTitle 解析分享标题；纯函数，相同输入总是得到相同输出
func CleanTitle(raw string) TitleInfo {
	title := strings.TrimSpace(raw)
	info := TitleInfo{
		RawTitle:     raw,
		Kind:         DetectKind(title),
		Year:         ExtractYear(title),
		SeasonNumber: ExtractSeason(title),
		Resolution:   DetectResolution(title),
		TMDBID:       ExtractTMDBID(title),
	}

	if info.Kind == valueobjects.ShareKindMovieCollection {
		info.CleanTitle = lightClean(title)
	} else {
		info.CleanTitle = deepClean(title)
	}
	return info
}

// DetectKind 按关键字判断标题类型，合集优先于剧集，其余为电影
func DetectKind(title string) valueobjects.ShareKind {
	for _, kw := range collectionKeywords {
		if strings.Contains(title, kw) {
			return valueobjects.ShareKindMovieCollection
		}
	}
	for _, kw := range tvKeywords {
		if strings.Contains(title, kw) {
			return valueobjects.ShareKindTV
		}
	}
	for _, p := range tvPatterns {
		if p.MatchString(title) {
			return valueobjects.ShareKindTV
		}
	}
	return valueobjects.ShareKindMovie
}

// ExtractYear 提取1900-2100之间的年份，括号写法优先
func ExtractYear(title string) int {
	for _, p := range yearPatterns {
		m := p.FindStringSubmatch(title)
		if m == nil {
			continue
		}
		year, err := strconv.Atoi(m[1])
		if err == nil && year >= 1900 && year <= 2100 {
			return year
		}
	}
	return 0
}

// ExtractSeason 提取季号，支持中文数字
func ExtractSeason(title string) int {
	for _, p := range seasonPatterns {
		m := p.FindStringSubmatch(title)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
		if n := strutil.ChineseToNumber(m[1]); n > 0 {
			return n
		}
	}
	return 0
}

// DetectResolution 识别标题中的分辨率
func DetectResolution(title string) string {
	switch {
	case resolution4K.MatchString(title):
		return "4K"
	case resolution1080P.MatchString(title):
		return "1080P"
	case resolution720P.MatchString(title):
		return "720P"
	}
	return ""
}

// ExtractTMDBID 提取标题中的TMDB ID标签
func ExtractTMDBID(title string) int {
	for _, p := range tmdbIDRules {
		m := p.FindStringSubmatch(title)
		if m == nil {
			continue
		}
		if id, err := strconv.Atoi(m[1]); err == nil && id > 0 {
			return id
		}
	}
	return 0
}

func stripTMDBTags(s string) string {
	for _, p := range tmdbIDRules {
		s = p.ReplaceAllString(s, "")
	}
	return s
}

// deepClean 电影和剧集标题的完整清洗流程
func deepClean(title string) string {
	result := stripTMDBTags(title)

	// 中文片名后紧跟 [ 【 . 时只保留中文部分
	if lead := cjkLeadPattern.FindString(result); lead != "" && len(lead) < len(result) {
		next, _ := utf8.DecodeRuneInString(result[len(lead):])
		if next == '[' || next == '【' || next == '.' {
			result = lead
		}
	}

	result = applyRules(result, prefixRules)
	result = applyRules(result, titleRemoveRules)

	for _, p := range seasonPatterns {
		result = p.ReplaceAllString(result, "")
	}

	result = parenYearPattern.ReplaceAllString(result, "")
	result = delimitedYearPattern.ReplaceAllString(result, " ")
	result = latinTailPattern.ReplaceAllString(result, "")

	result = normalizeSeparators(result)

	if strutil.RuneLen(result) < 2 {
		if run := strutil.FirstChineseRun(title); run != "" {
			result = run
		}
	}
	// 纯数字片名会被整体清掉，此时保留原标题
	if result == "" {
		result = strutil.CollapseWhitespace(stripTMDBTags(title))
	}
	return result
}

// lightClean 合集标题只去掉标签并规整空白，其余保持原样
func lightClean(title string) string {
	result := stripTMDBTags(title)
	result = applyRules(result, tagRules)
	result = strutil.CollapseWhitespace(result)
	result = edgeJunkPattern.ReplaceAllString(result, "")
	if result == "" {
		return strings.TrimSpace(title)
	}
	return result
}

func normalizeSeparators(s string) string {
	s = separatorPattern.ReplaceAllString(s, " ")
	s = edgeJunkPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
