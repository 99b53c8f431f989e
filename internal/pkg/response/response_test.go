package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type result struct {
	*httptest.ResponseRecorder
	aborted bool
}

func serve(t *testing.T, h gin.HandlerFunc) (*result, Response) {
	t.Helper()

	res := &result{ResponseRecorder: httptest.NewRecorder()}
	router := gin.New()
	router.GET("/test", func(c *gin.Context) {
		h(c)
		res.aborted = c.IsAborted()
	})
	router.ServeHTTP(res.ResponseRecorder, httptest.NewRequest(http.MethodGet, "/test", nil))

	var resp Response
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &resp))
	return res, resp
}

func TestSuccess(t *testing.T) {
	w, resp := serve(t, func(c *gin.Context) {
		Success(c, gin.H{"newTotal": 12.5})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, w.aborted)
	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Equal(t, "success", resp.Message)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 12.5, data["newTotal"])
}

func TestSuccess_NilData(t *testing.T) {
	_, resp := serve(t, func(c *gin.Context) { Success(c, nil) })
	assert.Nil(t, resp.Data)
}

func TestSuccessWithMessage(t *testing.T) {
	_, resp := serve(t, func(c *gin.Context) {
		SuccessWithMessage(c, "提现申请已通过", gin.H{"id": 1})
	})
	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Equal(t, "提现申请已通过", resp.Message)
}

func TestSuccessPage(t *testing.T) {
	w, resp := serve(t, func(c *gin.Context) {
		SuccessPage(c, 42, 2, 20, []string{"WD-1", "WD-2"})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(42), data["total"])
	assert.Equal(t, float64(2), data["page"])
	assert.Equal(t, float64(20), data["pageSize"])
	assert.Len(t, data["items"], 2)
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name       string
		fn         func(*gin.Context, string)
		code       int
		status     int
		defaultMsg string
	}{
		{"param", ParamError, CodeParamError, http.StatusBadRequest, "参数错误"},
		{"auth", AuthError, CodeAuthFailed, http.StatusUnauthorized, "认证失败"},
		{"permission", PermissionError, CodePermissionDenied, http.StatusForbidden, "权限不足"},
		{"not found", NotFoundError, CodeResourceNotFound, http.StatusNotFound, "资源不存在"},
		{"limit", LimitError, CodeLimitExceeded, http.StatusTooManyRequests, "已达上限"},
		{"duplicate", DuplicateError, CodeDuplicateAction, http.StatusBadRequest, "重复操作"},
		{"server", ServerError, CodeServerError, http.StatusInternalServerError, "服务器内部错误"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := serve(t, func(c *gin.Context) { tt.fn(c, "自定义消息") })
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, "自定义消息", resp.Message)
			assert.Nil(t, resp.Data)
			// 错误响应中断后续 handler
			assert.True(t, w.aborted)

			_, resp = serve(t, func(c *gin.Context) { tt.fn(c, "") })
			assert.Equal(t, tt.defaultMsg, resp.Message)
		})
	}
}

func TestError_UnknownCode(t *testing.T) {
	w, resp := serve(t, func(c *gin.Context) { Error(c, 9999, "") })

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 9999, resp.Code)
	assert.Empty(t, resp.Message)
}

func TestErrorWithData(t *testing.T) {
	w, resp := serve(t, func(c *gin.Context) {
		ErrorWithData(c, CodeParamError, "", gin.H{"results": []string{"daily_ads_limit"}})
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "参数错误", resp.Message)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, data["results"], 1)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(CodeSuccess))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(CodeLimitExceeded))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(42))
}
