package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/qs3c/ad_reward_server/internal/pkg/response"
	"github.com/qs3c/ad_reward_server/internal/service"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var errorCodes = []struct {
	err  error
	code int
}{
	{service.ErrUserNotFound, response.CodeResourceNotFound},
	{service.ErrTaskNotFound, response.CodeResourceNotFound},
	{service.ErrWithdrawalNotFound, response.CodeResourceNotFound},
	{service.ErrSettingNotFound, response.CodeResourceNotFound},

	{service.ErrInvalidCredentials, response.CodeAuthFailed},

	{service.ErrUserSuspended, response.CodePermissionDenied},
	{service.ErrTaskLocked, response.CodePermissionDenied},
	{service.ErrAttemptsExceeded, response.CodePermissionDenied},
	{service.ErrWithdrawalDisabled, response.CodePermissionDenied},

	{service.ErrDailyLimitReached, response.CodeLimitExceeded},

	{service.ErrAlreadyProcessed, response.CodeDuplicateAction},

	{service.ErrEmailExists, response.CodeParamError},
	{service.ErrUsernameExists, response.CodeParamError},
	{service.ErrTaskNotStarted, response.CodeParamError},
	{service.ErrTaskAdvancedByAds, response.CodeParamError},
	{service.ErrInvalidTaskKind, response.CodeParamError},
	{service.ErrInvalidDecision, response.CodeParamError},
	{service.ErrInvalidStatusFilter, response.CodeParamError},
	{service.ErrInsufficientPoints, response.CodeParamError},
	{service.ErrBelowMinimum, response.CodeParamError},
	{service.ErrInvalidAmount, response.CodeParamError},
	{service.ErrInvalidWithdrawalMethod, response.CodeParamError},
	{service.ErrInvalidAccountDetails, response.CodeParamError},
	{service.ErrInvalidDailyLimit, response.CodeParamError},
	{service.ErrInvalidUserStatus, response.CodeParamError},
	{service.ErrInvalidSettingValue, response.CodeParamError},
}

// respondError 把业务错误映射为统一响应，未知错误记录日志后返回 500
func respondError(c *gin.Context, err error) {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			response.Error(c, e.code, err.Error())
			return
		}
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).Error("request failed")
	response.ServerError(c, "")
}

// pagination 解析 page / pageSize 查询参数
func pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(defaultPageSize)))
	if err != nil || pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return page, pageSize
}

// pathID 解析路径中的 :id
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "无效的 ID")
		return 0, false
	}
	return id, true
}
