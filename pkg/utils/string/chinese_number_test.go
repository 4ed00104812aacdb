package strutil

import "testing"

func TestChineseToNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "空字符串", input: "", expected: 0},
		{name: "阿拉伯数字", input: "3", expected: 3},
		{name: "两位阿拉伯数字", input: "12", expected: 12},
		{name: "一", input: "一", expected: 1},
		{name: "九", input: "九", expected: 9},
		{name: "单独的十", input: "十", expected: 10},
		{name: "十一", input: "十一", expected: 11},
		{name: "十九", input: "十九", expected: 19},
		{name: "二十", input: "二十", expected: 20},
		{name: "二十三", input: "二十三", expected: 23},
		{name: "九十九", input: "九十九", expected: 99},
		{name: "无法识别", input: "十十", expected: 0},
		{name: "非数字", input: "季", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChineseToNumber(tt.input); got != tt.expected {
				t.Errorf("ChineseToNumber(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFirstChineseRun(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "[Group] 散华礼弥 01", expected: "散华礼弥"},
		{input: "A 我 B 你好", expected: "你好"},
		{input: "no cjk here", expected: ""},
	}

	for _, tt := range tests {
		if got := FirstChineseRun(tt.input); got != tt.expected {
			t.Errorf("FirstChineseRun(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
