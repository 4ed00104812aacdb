package logger

import (
	"strings"
)

var sensitiveKeys = []string{
	"token",
	"password",
	"passwd",
	"pwd",
	"secret",
	"api_key",
	"apikey",
	"api-key",
	"access_code",
	"accesscode",
	"authorization",
}

// MaskToken 脱敏token字符串
// 规则:
//   - 空字符串返回空
//   - 长度<8: 返回 "***"
//   - 长度>=8: 保留前4后4,中间用星号替换
func MaskToken(token string) string {
	if token == "" {
		return ""
	}

	length := len(token)
	if length < 8 {
		return "***"
	}

	return token[:4] + strings.Repeat("*", length-8) + token[length-4:]
}

// IsSensitiveKey 判断键名是否为敏感字段
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, sk := range sensitiveKeys {
		if strings.Contains(keyLower, sk) {
			return true
		}
	}
	return false
}

// SanitizeValue 根据键名判断是否需要脱敏
func SanitizeValue(key string, value any) any {
	if !IsSensitiveKey(key) {
		return value
	}
	if strVal, ok := value.(string); ok {
		return MaskToken(strVal)
	}
	return "***MASKED***"
}

// SanitizeArgs 批量脱敏slog日志参数
// slog使用键值对格式: key1, value1, key2, value2, ...
func SanitizeArgs(args ...any) []any {
	if len(args) == 0 {
		return args
	}

	result := make([]any, len(args))
	for i := 0; i < len(args); i += 2 {
		result[i] = args[i]
		if i+1 >= len(args) {
			break
		}
		if key, ok := args[i].(string); ok {
			result[i+1] = SanitizeValue(key, args[i+1])
		} else {
			result[i+1] = args[i+1]
		}
	}

	return result
}
