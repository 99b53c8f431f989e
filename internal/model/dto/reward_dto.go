package dto

// WatchAdResult 观看广告结算结果
type WatchAdResult struct {
	PointsEarned     float64 `json:"pointsEarned"`
	BonusPoints      float64 `json:"bonusPoints"`
	NewTotal         float64 `json:"newTotal"`
	WatchedAds       int     `json:"watchedAds"`
	DailyLimit       int     `json:"dailyLimit"`
	CompletedTaskIDs []int64 `json:"completedTaskIds"`
}

// ProgressInfo 今日观看进度
type ProgressInfo struct {
	DailyLimit         int `json:"dailyLimit"`
	WatchedToday       int `json:"watchedToday"`
	ProgressPercentage int `json:"progressPercentage"`
}

// UpdateDailyLimitRequest 管理员调整单个用户每日上限
type UpdateDailyLimitRequest struct {
	DailyLimit *int `json:"dailyLimit" binding:"required,min=0"`
}

// UpdateUserStatusRequest 管理员停用或恢复账号
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
