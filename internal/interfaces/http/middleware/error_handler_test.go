package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Aijiaobin/video-api/internal/shared/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestErrorHandlerMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   apperrors.ErrorCode
	}{
		{"参数错误", apperrors.New(apperrors.ErrorCodeInvalidRequest, "bad"), http.StatusBadRequest, apperrors.ErrorCodeInvalidRequest},
		{"不支持的网盘", apperrors.New(apperrors.ErrorCodeUnsupportedDrive, "drive"), http.StatusBadRequest, apperrors.ErrorCodeUnsupportedDrive},
		{"访问码错误", apperrors.New(apperrors.ErrorCodeAuthFailed, "code"), http.StatusUnauthorized, apperrors.ErrorCodeAuthFailed},
		{"不存在", apperrors.New(apperrors.ErrorCodeNotFound, "missing"), http.StatusNotFound, apperrors.ErrorCodeNotFound},
		{"远端拒绝", apperrors.New(apperrors.ErrorCodeRemoteRejected, "gone"), http.StatusUnprocessableEntity, apperrors.ErrorCodeRemoteRejected},
		{"网络错误", apperrors.New(apperrors.ErrorCodeTransport, "timeout"), http.StatusBadGateway, apperrors.ErrorCodeTransport},
		{"包装后的业务错误", fmt.Errorf("walk share 1: %w", apperrors.New(apperrors.ErrorCodeDecode, "json")), http.StatusBadGateway, apperrors.ErrorCodeDecode},
		{"未知错误", errors.New("boom"), http.StatusInternalServerError, apperrors.ErrorCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(ErrorHandlerMiddleware())
			router.GET("/x", func(c *gin.Context) { _ = c.Error(tt.err) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body struct {
				Code apperrors.ErrorCode `json:"code"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", body.Code, tt.wantCode)
			}
		})
	}
}

func TestRecoverMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RecoverMiddleware())
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
