package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/ad_reward_server/internal/model"
	"github.com/qs3c/ad_reward_server/internal/pkg/response"
	"github.com/qs3c/ad_reward_server/internal/repository"
	"github.com/qs3c/ad_reward_server/internal/testutil"
)

func rewardRouter(h *RewardHandler, userID int64) *gin.Engine {
	router := gin.New()
	router.Use(mockAuth(userID))
	router.POST("/watch-ad", h.WatchAd)
	router.GET("/progress", h.GetProgress)
	return router
}

func TestRewardHandler_WatchAd_CompletesDailyTarget(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()

	user := testutil.TestUser(t, svc.DB, testutil.WithWatched(199, 200))
	task := testutil.TestTask(t, svc.DB, testutil.WithKind(model.TaskKindDailyTarget), testutil.WithReward(5))

	router := rewardRouter(NewRewardHandler(svc.Rewards), user.ID)
	w := performRequest(router, "POST", "/watch-ad", nil)
	resp := parseResponse(t, w)

	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, resp)
	assert.Equal(t, 0.5, data["pointsEarned"])
	assert.Equal(t, float64(5), data["bonusPoints"])
	assert.Equal(t, float64(200), data["watchedAds"])
	assert.Equal(t, []interface{}{float64(task.ID)}, data["completedTaskIds"])
}

func TestRewardHandler_WatchAd_LimitReached(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()

	user := testutil.TestUser(t, svc.DB, testutil.WithWatched(200, 200))

	router := rewardRouter(NewRewardHandler(svc.Rewards), user.ID)
	w := performRequest(router, "POST", "/watch-ad", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, response.CodeLimitExceeded, resp.Code)

	stored, err := repository.NewUserRepository(svc.DB).GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 200, stored.WatchedAds)
	assert.Zero(t, stored.Points)
}

func TestRewardHandler_WatchAd_Suspended(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()

	user := testutil.TestUser(t, svc.DB, testutil.WithStatus(model.UserStatusSuspended))

	router := rewardRouter(NewRewardHandler(svc.Rewards), user.ID)
	w := performRequest(router, "POST", "/watch-ad", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRewardHandler_GetProgress(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()

	user := testutil.TestUser(t, svc.DB, testutil.WithWatched(50, 200))

	router := rewardRouter(NewRewardHandler(svc.Rewards), user.ID)
	w := performRequest(router, "GET", "/progress", nil)
	resp := parseResponse(t, w)

	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, resp)
	assert.Equal(t, float64(200), data["dailyLimit"])
	assert.Equal(t, float64(50), data["watchedToday"])
	assert.Equal(t, float64(25), data["progressPercentage"])
}
