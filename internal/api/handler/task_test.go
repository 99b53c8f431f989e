package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/ad_reward_server/internal/model"
	"github.com/qs3c/ad_reward_server/internal/model/dto"
	"github.com/qs3c/ad_reward_server/internal/pkg/response"
	"github.com/qs3c/ad_reward_server/internal/testutil"
)

func taskRouter(h *TaskHandler, userID int64) *gin.Engine {
	router := gin.New()
	router.Use(mockAuth(userID))
	router.GET("/tasks", h.List)
	router.POST("/tasks/start", h.Start)
	router.POST("/tasks/complete", h.Complete)
	return router
}

func TestTaskHandler_Start(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()

	user := testutil.TestUser(t, svc.DB)
	task := testutil.TestTask(t, svc.DB,
		testutil.WithKind(model.TaskKindSocial),
		testutil.WithPlatformURL("https://social.example.com/p"),
	)

	router := taskRouter(NewTaskHandler(svc.Tasks), user.ID)
	w := performRequest(router, "POST", "/tasks/start", dto.StartTaskRequest{TaskID: task.ID})
	resp := parseResponse(t, w)

	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, resp)
	assert.Equal(t, "https://social.example.com/p", data["socialUrl"])
	assert.NotContains(t, data, "adUrl")
}

func TestTaskHandler_Start_Errors(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()

	user := testutil.TestUser(t, svc.DB)
	locked := testutil.TestTask(t, svc.DB)
	now := time.Now().UTC()
	testutil.TestUserTask(t, svc.DB, user.ID, locked.ID,
		testutil.WithProgress(1),
		testutil.WithCompletedAt(now),
		testutil.WithLastResetAt(now),
	)

	router := taskRouter(NewTaskHandler(svc.Tasks), user.ID)

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   int
	}{
		{"missing task id", map[string]int{}, http.StatusBadRequest, response.CodeParamError},
		{"unknown task", dto.StartTaskRequest{TaskID: 99999}, http.StatusNotFound, response.CodeResourceNotFound},
		{"locked", dto.StartTaskRequest{TaskID: locked.ID}, http.StatusForbidden, response.CodePermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, "POST", "/tasks/start", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, parseResponse(t, w).Code)
		})
	}
}

func TestTaskHandler_Complete(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()

	user := testutil.TestUser(t, svc.DB)
	task := testutil.TestTask(t, svc.DB,
		testutil.WithKind(model.TaskKindPromotion),
		testutil.WithReward(2),
		testutil.WithPlatformURL("https://shop.example.com/x"),
	)
	adTask := testutil.TestTask(t, svc.DB, testutil.WithKind(model.TaskKindWatchAds))

	router := taskRouter(NewTaskHandler(svc.Tasks), user.ID)

	w := performRequest(router, "POST", "/tasks/start", dto.StartTaskRequest{TaskID: task.ID})
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, "POST", "/tasks/complete", dto.CompleteTaskRequest{TaskID: task.ID})
	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, parseResponse(t, w))
	assert.Equal(t, true, data["completed"])
	assert.Equal(t, float64(2), data["pointsAwarded"])

	w = performRequest(router, "POST", "/tasks/complete", dto.CompleteTaskRequest{TaskID: task.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(router, "POST", "/tasks/complete", dto.CompleteTaskRequest{TaskID: adTask.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_List(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()

	user := testutil.TestUser(t, svc.DB, testutil.WithPoints(3))
	testutil.TestTask(t, svc.DB)
	testutil.TestTask(t, svc.DB, testutil.WithKind(model.TaskKindWatchAds), testutil.WithTotalRequired(5))

	router := taskRouter(NewTaskHandler(svc.Tasks), user.ID)
	w := performRequest(router, "GET", "/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := dataMap(t, parseResponse(t, w))
	tasks, ok := data["tasks"].([]interface{})
	require.True(t, ok)
	assert.Len(t, tasks, 2)

	stats, ok := data["stats"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), stats["totalPoints"])
	assert.Equal(t, float64(0), stats["completedTasks"])
}
