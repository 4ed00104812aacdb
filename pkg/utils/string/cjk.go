package strutil

import (
	"regexp"
	"strings"
)

var (
	// WhitespacePattern 空白符
	WhitespacePattern = regexp.MustCompile(`\s+`)

	chineseRunPattern = regexp.MustCompile(`[\x{4e00}-\x{9fa5}]{2,}`)
)

// FirstChineseRun 返回第一个长度不少于2的中文词组
func FirstChineseRun(s string) string {
	return chineseRunPattern.FindString(s)
}

// CollapseWhitespace 合并连续空白并去除首尾空白
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(WhitespacePattern.ReplaceAllString(s, " "))
}

// RuneLen 按字符计算长度
func RuneLen(s string) int {
	return len([]rune(s))
}
