package strutil

import "strconv"

var chineseDigits = map[rune]int{
	'零': 0, '〇': 0, '一': 1, '二': 2, '两': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

// ChineseToNumber 将中文数字或阿拉伯数字字符串转换为整数
// 支持：一…九、十、十一…十九、二十…九十九、阿拉伯数字；无法识别时返回 0
func ChineseToNumber(str string) int {
	if str == "" {
		return 0
	}

	if num, err := strconv.Atoi(str); err == nil {
		return num
	}

	runes := []rune(str)
	switch len(runes) {
	case 1:
		if runes[0] == '十' {
			return 10
		}
		return chineseDigits[runes[0]]
	case 2:
		// 十X
		if runes[0] == '十' {
			if ones, ok := chineseDigits[runes[1]]; ok {
				return 10 + ones
			}
			return 0
		}
		// X十
		if runes[1] == '十' {
			return chineseDigits[runes[0]] * 10
		}
	case 3:
		// X十Y
		if runes[1] == '十' {
			tens, ok1 := chineseDigits[runes[0]]
			ones, ok2 := chineseDigits[runes[2]]
			if ok1 && ok2 && tens > 0 {
				return tens*10 + ones
			}
		}
	}

	return 0
}
