// Package link 从用户粘贴的文本中提取规范的分享链接和访问码
package link

import (
	"regexp"
	"strings"

	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
)

// drivePatterns 各网盘的分享链接形态，捕获组1为分享码
var drivePatterns = map[valueobjects.DriveType][]*regexp.Regexp{
	valueobjects.DriveTypeTianyi: {
		regexp.MustCompile(`https?://cloud\.189\.cn/t/([a-zA-Z0-9]+)`),
		regexp.MustCompile(`https?://cloud\.189\.cn/web/share\?code=([a-zA-Z0-9]+)`),
		regexp.MustCompile(`https?://h5\.cloud\.189\.cn/share\.html#/t/([a-zA-Z0-9]+)`),
	},
}

// passwordPatterns 带标签的访问码写法，带括号的优先
var passwordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[（(]访问码[：:]\s*([a-zA-Z0-9]{4})[)）]`),
	regexp.MustCompile(`[（(]提取码[：:]\s*([a-zA-Z0-9]{4})[)）]`),
	regexp.MustCompile(`访问码[：:]\s*([a-zA-Z0-9]{4})`),
	regexp.MustCompile(`提取码[：:]\s*([a-zA-Z0-9]{4})`),
}

// Normalize 截取文本中的分享链接；无法识别时返回去掉首尾空白的原文
// 对结果再次调用返回相同值
func Normalize(drive valueobjects.DriveType, raw string) string {
	if raw == "" {
		return ""
	}
	for _, p := range drivePatterns[drive] {
		if m := p.FindString(raw); m != "" {
			return m
		}
	}
	return strings.TrimSpace(raw)
}

// ShareCode 提取分享码，无法识别时返回空
func ShareCode(drive valueobjects.DriveType, raw string) string {
	for _, p := range drivePatterns[drive] {
		if m := p.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
	}
	return ""
}

// ExtractPassword 从文本中提取访问码或提取码
func ExtractPassword(text string) string {
	if text == "" {
		return ""
	}
	for _, p := range passwordPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// Supported 是否支持该网盘的链接解析
func Supported(drive valueobjects.DriveType) bool {
	_, ok := drivePatterns[drive]
	return ok
}
