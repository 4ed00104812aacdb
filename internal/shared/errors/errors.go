package errors

import (
	stderrors "errors"
)

// ErrorCode 业务错误码
type ErrorCode string

const (
	ErrorCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrorCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrorCodeConflict         ErrorCode = "CONFLICT"
	ErrorCodeInternalError    ErrorCode = "INTERNAL_ERROR"
	ErrorCodeAuthFailed       ErrorCode = "AUTH_FAILED"       // 加密分享缺少或访问码错误
	ErrorCodeTransport        ErrorCode = "TRANSPORT_ERROR"   // 网络错误或非2xx响应
	ErrorCodeDecode           ErrorCode = "DECODE_ERROR"      // 响应无法解析
	ErrorCodeUnsupportedDrive ErrorCode = "UNSUPPORTED_DRIVE" // 未支持的网盘类型
	ErrorCodeRemoteRejected   ErrorCode = "REMOTE_REJECTED"   // 远端返回业务错误码
)

// ServiceError 业务错误
type ServiceError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Cause.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *ServiceError) Unwrap() error { return e.Cause }

// Is 同错误码的 ServiceError 视为相等，便于 errors.Is(err, New(code, ""))
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetail 附加上下文字段
func (e *ServiceError) WithDetail(key string, value any) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New 创建业务错误
func New(code ErrorCode, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

// Wrap 创建带原因的业务错误
func Wrap(code ErrorCode, message string, cause error) *ServiceError {
	return &ServiceError{Code: code, Message: message, Cause: cause}
}

// CodeOf 提取错误链中的业务错误码，非业务错误返回 INTERNAL_ERROR
func CodeOf(err error) ErrorCode {
	var se *ServiceError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ErrorCodeInternalError
}

// HasCode 判断错误链中是否包含指定错误码
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
