package testutil

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/ad_reward_server/internal/model"
)

var seq atomic.Int64

func nextSeq() int64 {
	return seq.Add(1)
}

// TestUser 创建测试用户，观看窗口默认在 24 小时后重置
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := nextSeq()
	email := fmt.Sprintf("test_%d_%d@example.com", n, time.Now().UnixNano())
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	resetAt := time.Now().UTC().Add(24 * time.Hour)
	user := &model.User{
		Username:     fmt.Sprintf("testuser_%d", n),
		Email:        &email,
		PasswordHash: &passwordHash,
		Role:         model.RoleUser,
		Status:       model.UserStatusActive,
		DailyLimit:   200,
		WatchResetAt: &resetAt,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithPasswordHash 设置密码哈希
func WithPasswordHash(hash string) func(*model.User) {
	return func(u *model.User) {
		u.PasswordHash = &hash
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// WithStatus 设置账号状态
func WithStatus(status string) func(*model.User) {
	return func(u *model.User) {
		u.Status = status
	}
}

// WithWatched 设置已观看次数和每日上限
func WithWatched(watched, limit int) func(*model.User) {
	return func(u *model.User) {
		u.WatchedAds = watched
		u.DailyLimit = limit
	}
}

// WithPoints 设置可用积分（单位: 积分）
func WithPoints(points float64) func(*model.User) {
	return func(u *model.User) {
		u.Points = model.PointsToUnits(points)
	}
}

// WithWatchResetAt 设置观看窗口重置时间
func WithWatchResetAt(at time.Time) func(*model.User) {
	return func(u *model.User) {
		u.WatchResetAt = &at
	}
}

// TestTask 创建测试任务，默认为有效的 ad 任务
func TestTask(t *testing.T, db *gorm.DB, opts ...func(*model.Task)) *model.Task {
	t.Helper()

	task := &model.Task{
		Title:         fmt.Sprintf("Test Task %d", nextSeq()),
		Points:        model.PointsToUnits(1),
		TotalRequired: 1,
		Type:          model.TaskKindAd,
		ResetInterval: model.DefaultResetInterval,
		IsActive:      true,
	}

	for _, opt := range opts {
		opt(task)
	}

	if err := db.Create(task).Error; err != nil {
		t.Fatalf("Failed to create test task: %v", err)
	}

	return task
}

// WithKind 设置任务类型
func WithKind(kind model.TaskKind) func(*model.Task) {
	return func(task *model.Task) {
		task.Type = kind
	}
}

// WithReward 设置任务奖励（单位: 积分）
func WithReward(points float64) func(*model.Task) {
	return func(task *model.Task) {
		task.Points = model.PointsToUnits(points)
	}
}

// WithTotalRequired 设置完成所需进度
func WithTotalRequired(n int) func(*model.Task) {
	return func(task *model.Task) {
		task.TotalRequired = n
	}
}

// WithResetInterval 设置重置周期（秒）
func WithResetInterval(seconds int) func(*model.Task) {
	return func(task *model.Task) {
		task.ResetInterval = seconds
	}
}

// WithMaxAttempts 设置每个周期最大开始次数
func WithMaxAttempts(n int) func(*model.Task) {
	return func(task *model.Task) {
		task.MaxAttempts = n
	}
}

// WithPlatformURL 设置外部链接
func WithPlatformURL(url string) func(*model.Task) {
	return func(task *model.Task) {
		task.PlatformURL = url
	}
}

// WithInactive 设置为下线任务
func WithInactive() func(*model.Task) {
	return func(task *model.Task) {
		task.IsActive = false
	}
}

// TestUserTask 创建测试用户任务进度
func TestUserTask(t *testing.T, db *gorm.DB, userID, taskID int64, opts ...func(*model.UserTask)) *model.UserTask {
	t.Helper()

	ut := &model.UserTask{
		UserID:      userID,
		TaskID:      taskID,
		LastResetAt: time.Now().UTC(),
	}

	for _, opt := range opts {
		opt(ut)
	}

	if err := db.Create(ut).Error; err != nil {
		t.Fatalf("Failed to create test user task: %v", err)
	}

	return ut
}

// WithProgress 设置进度
func WithProgress(progress int) func(*model.UserTask) {
	return func(ut *model.UserTask) {
		ut.Progress = progress
	}
}

// WithCompletedAt 标记为已完成
func WithCompletedAt(at time.Time) func(*model.UserTask) {
	return func(ut *model.UserTask) {
		ut.Completed = true
		ut.CompletedAt = &at
	}
}

// WithLastResetAt 设置上次重置时间
func WithLastResetAt(at time.Time) func(*model.UserTask) {
	return func(ut *model.UserTask) {
		ut.LastResetAt = at
	}
}

// WithAttempts 设置开始次数
func WithAttempts(n int) func(*model.UserTask) {
	return func(ut *model.UserTask) {
		ut.Attempts = n
	}
}

// TestSetting 创建测试设置，value 为 JSON 文本
func TestSetting(t *testing.T, db *gorm.DB, key string, typ model.SettingType, value string, opts ...func(*model.SystemSetting)) *model.SystemSetting {
	t.Helper()

	if !json.Valid([]byte(value)) {
		t.Fatalf("Invalid JSON value for setting %s: %s", key, value)
	}

	setting := &model.SystemSetting{
		Key:      key,
		Category: model.SettingCategoryGeneral,
		Type:     typ,
		Value:    value,
	}

	for _, opt := range opts {
		opt(setting)
	}

	if err := db.Create(setting).Error; err != nil {
		t.Fatalf("Failed to create test setting: %v", err)
	}

	return setting
}

// WithCategory 设置分类
func WithCategory(category string) func(*model.SystemSetting) {
	return func(s *model.SystemSetting) {
		s.Category = category
	}
}

// WithRange 设置数值范围
func WithRange(min, max float64) func(*model.SystemSetting) {
	return func(s *model.SystemSetting) {
		s.Validation.Min = &min
		s.Validation.Max = &max
	}
}

// WithPattern 设置字符串正则
func WithPattern(pattern string) func(*model.SystemSetting) {
	return func(s *model.SystemSetting) {
		s.Validation.Pattern = pattern
	}
}

// WithOptions 设置可选值（JSON 文本）
func WithOptions(options ...string) func(*model.SystemSetting) {
	return func(s *model.SystemSetting) {
		for _, o := range options {
			s.Validation.Options = append(s.Validation.Options, json.RawMessage(o))
		}
	}
}

// TestWithdrawal 创建测试提现记录
func TestWithdrawal(t *testing.T, db *gorm.DB, userID int64, amount float64, opts ...func(*model.Withdrawal)) *model.Withdrawal {
	t.Helper()

	w := &model.Withdrawal{
		OrderNo:        fmt.Sprintf("WD-TEST-%d", nextSeq()),
		UserID:         userID,
		Amount:         model.PointsToUnits(amount),
		Method:         model.WithdrawalMethodPaypal,
		AccountDetails: map[string]string{"email": "payee@example.com"},
		Status:         model.WithdrawalPending,
	}

	for _, opt := range opts {
		opt(w)
	}

	if err := db.Create(w).Error; err != nil {
		t.Fatalf("Failed to create test withdrawal: %v", err)
	}

	return w
}

// WithWithdrawalStatus 设置提现状态
func WithWithdrawalStatus(status string) func(*model.Withdrawal) {
	return func(w *model.Withdrawal) {
		w.Status = status
	}
}
