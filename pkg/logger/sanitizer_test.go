package logger

import (
	"testing"
)

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "空字符串", input: "", want: ""},
		{name: "短token(<8字符)", input: "abc", want: "***"},
		{name: "正好8字符", input: "12345678", want: "12345678"},
		{name: "长token(16字符)", input: "1234567890abcdef", want: "1234********cdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskToken(tt.input); got != tt.want {
				t.Errorf("MaskToken(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeValue(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		want  any
	}{
		{name: "普通字段不脱敏", key: "share_url", value: "https://cloud.189.cn/t/abc", want: "https://cloud.189.cn/t/abc"},
		{name: "访问码脱敏", key: "password", value: "ab12", want: "***"},
		{name: "TMDB密钥脱敏", key: "api_key", value: "0123456789abcdef", want: "0123********cdef"},
		{name: "大小写不敏感", key: "AccessCode", value: "abcd", want: "***"},
		{name: "非字符串值", key: "secret", value: 42, want: "***MASKED***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeValue(tt.key, tt.value); got != tt.want {
				t.Errorf("SanitizeValue(%q, %v) = %v, want %v", tt.key, tt.value, got, tt.want)
			}
		})
	}
}

func TestSanitizeArgs(t *testing.T) {
	args := []any{"share_code", "abc123", "password", "wxyz", "dangling"}
	got := SanitizeArgs(args...)

	if len(got) != len(args) {
		t.Fatalf("SanitizeArgs changed length: got %d, want %d", len(got), len(args))
	}
	if got[1] != "abc123" {
		t.Errorf("share_code value changed: %v", got[1])
	}
	if got[3] != "***" {
		t.Errorf("password value not masked: %v", got[3])
	}
	if got[4] != "dangling" {
		t.Errorf("dangling key changed: %v", got[4])
	}
	if args[3] != "wxyz" {
		t.Errorf("input slice was modified")
	}
}
