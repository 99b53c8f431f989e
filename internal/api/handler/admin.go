package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/ad_reward_server/internal/api/middleware"
	"github.com/qs3c/ad_reward_server/internal/model"
	"github.com/qs3c/ad_reward_server/internal/model/dto"
	"github.com/qs3c/ad_reward_server/internal/pkg/response"
	"github.com/qs3c/ad_reward_server/internal/service"
)

// AdminHandler 管理端接口，路由上需挂 AdminOnly
type AdminHandler struct {
	settingService    *service.SettingService
	taskService       *service.TaskService
	userService       *service.UserService
	withdrawalService *service.WithdrawalService
}

func NewAdminHandler(
	settingService *service.SettingService,
	taskService *service.TaskService,
	userService *service.UserService,
	withdrawalService *service.WithdrawalService,
) *AdminHandler {
	return &AdminHandler{
		settingService:    settingService,
		taskService:       taskService,
		userService:       userService,
		withdrawalService: withdrawalService,
	}
}

// ListWithdrawals 按状态查看提现申请
// GET /api/admin/withdrawals?status=
func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	page, pageSize := pagination(c)
	items, total, err := h.withdrawalService.AdminList(c.Query("status"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// ProcessWithdrawal 审核提现申请
// PUT /api/admin/withdrawals
func (h *AdminHandler) ProcessWithdrawal(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.ProcessWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.withdrawalService.Process(c.Request.Context(), adminID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "提现申请已"+statusLabel(info.Status), info)
}

// ListSettings 查看系统设置
// GET /api/admin/settings?category=
func (h *AdminHandler) ListSettings(c *gin.Context) {
	settings, err := h.settingService.List(c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, settings)
}

// UpdateSettings 批量更新设置，逐项返回结果
// PUT /api/admin/settings
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var items []dto.SettingUpdateItem
	if err := c.ShouldBindJSON(&items); err != nil {
		response.ParamError(c, "请求体必须是 {key, value} 数组")
		return
	}
	if len(items) == 0 {
		response.ParamError(c, "没有需要更新的设置")
		return
	}
	for _, item := range items {
		if item.Key == "" {
			response.ParamError(c, "设置 key 不能为空")
			return
		}
	}

	results, ok := h.settingService.BatchUpdate(items)
	resp := dto.SettingUpdateResponse{Results: results}
	if !ok {
		response.ErrorWithData(c, response.CodeParamError, "部分设置更新失败", resp)
		return
	}

	response.SuccessWithMessage(c, "设置已更新", resp)
}

// ListTasks 任务目录
// GET /api/admin/tasks
func (h *AdminHandler) ListTasks(c *gin.Context) {
	page, pageSize := pagination(c)
	items, total, err := h.taskService.AdminList(page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// CreateTask 新建任务
// POST /api/admin/tasks
func (h *AdminHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.taskService.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "创建成功", item)
}

// UpdateTask 修改或停用任务
// PUT /api/admin/tasks/:id
func (h *AdminHandler) UpdateTask(c *gin.Context) {
	taskID, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.taskService.Update(taskID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", item)
}

// SetDailyLimit 覆盖单个用户的每日广告上限
// PUT /api/admin/users/:id/daily-limit
func (h *AdminHandler) SetDailyLimit(c *gin.Context) {
	userID, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateDailyLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.userService.SetDailyLimit(userID, *req.DailyLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", info)
}

// SetUserStatus 停用或恢复账号
// PUT /api/admin/users/:id/status
func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	userID, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.userService.SetStatus(userID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", info)
}

func statusLabel(status string) string {
	switch status {
	case model.WithdrawalApproved:
		return "通过"
	case model.WithdrawalRejected:
		return "拒绝"
	default:
		return "处理"
	}
}
