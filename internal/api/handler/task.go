package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/ad_reward_server/internal/api/middleware"
	"github.com/qs3c/ad_reward_server/internal/model/dto"
	"github.com/qs3c/ad_reward_server/internal/pkg/response"
	"github.com/qs3c/ad_reward_server/internal/service"
)

type TaskHandler struct {
	taskService *service.TaskService
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// List 任务列表及当前用户进度
// GET /api/tasks
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	resp, err := h.taskService.List(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, resp)
}

// Start 开始任务
// POST /api/tasks/start
func (h *TaskHandler) Start(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.StartTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.taskService.Start(userID, req.TaskID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, resp)
}

// Complete 提交一次任务完成
// POST /api/tasks/complete
func (h *TaskHandler) Complete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CompleteTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.taskService.Complete(c.Request.Context(), userID, req.TaskID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, resp)
}
