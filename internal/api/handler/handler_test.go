package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/ad_reward_server/config"
	"github.com/qs3c/ad_reward_server/internal/api/middleware"
	"github.com/qs3c/ad_reward_server/internal/model"
	"github.com/qs3c/ad_reward_server/internal/pkg/keylock"
	"github.com/qs3c/ad_reward_server/internal/pkg/response"
	"github.com/qs3c/ad_reward_server/internal/repository"
	"github.com/qs3c/ad_reward_server/internal/service"
	"github.com/qs3c/ad_reward_server/internal/testutil"
)

const testJWTSecret = "test-secret-key"

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:      testJWTSecret,
			ExpireHours: 24,
		},
		Reward: config.RewardConfig{
			DefaultDailyLimit:  200,
			DefaultPointsPerAd: 0.5,
		},
	}
}

// mockAuth 跳过 JWT，直接写入用户身份
func mockAuth(userID int64) gin.HandlerFunc {
	return mockAuthAs(userID, model.RoleUser)
}

func mockAuthAs(userID int64, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.RoleKey, role)
		c.Next()
	}
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

// dataMap 取出响应 data 对象
func dataMap(t *testing.T, resp response.Response) map[string]interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", resp.Data)
	return data
}

type testServices struct {
	DB         *gorm.DB
	Settings   *service.SettingService
	Users      *service.UserService
	Rewards    *service.RewardService
	Tasks      *service.TaskService
	Withdrawal *service.WithdrawalService
}

// setupServices 组装基于 sqlite 的完整服务层
func setupServices(t *testing.T) (*testServices, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testConfig()

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	userTaskRepo := repository.NewUserTaskRepository(db)
	locks := keylock.New()
	settings := service.NewSettingService(repository.NewSettingRepository(db), cfg)

	svc := &testServices{
		DB:       db,
		Settings: settings,
		Users:    service.NewUserService(userRepo, nil, cfg),
		Rewards:  service.NewRewardService(db, userRepo, taskRepo, userTaskRepo, settings, locks, nil),
		Tasks:    service.NewTaskService(db, taskRepo, userTaskRepo, userRepo, settings, locks, nil),
		Withdrawal: service.NewWithdrawalService(
			db, repository.NewWithdrawalRepository(db), userRepo, settings, locks, nil,
		),
	}

	return svc, func() { testutil.CleanupTestDB(t, db) }
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
