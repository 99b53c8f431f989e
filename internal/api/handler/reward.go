package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/ad_reward_server/internal/api/middleware"
	"github.com/qs3c/ad_reward_server/internal/pkg/response"
	"github.com/qs3c/ad_reward_server/internal/service"
)

type RewardHandler struct {
	rewardService *service.RewardService
}

func NewRewardHandler(rewardService *service.RewardService) *RewardHandler {
	return &RewardHandler{
		rewardService: rewardService,
	}
}

// WatchAd 结算一次广告观看
// POST /api/mobile/watch-ad
func (h *RewardHandler) WatchAd(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	result, err := h.rewardService.RecordAdWatch(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, result)
}

// GetProgress 今日观看进度
// GET /api/mobile/progress
func (h *RewardHandler) GetProgress(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	progress, err := h.rewardService.GetProgress(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, progress)
}
