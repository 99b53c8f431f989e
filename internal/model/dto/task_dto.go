package dto

// StartTaskRequest 开始任务请求
type StartTaskRequest struct {
	TaskID int64 `json:"taskId" binding:"required"`
}

// StartTaskResponse 开始任务响应，按任务类型只填充一个链接字段
type StartTaskResponse struct {
	TaskID       int64  `json:"taskId"`
	Type         string `json:"type"`
	AdURL        string `json:"adUrl,omitempty"`
	URL          string `json:"url,omitempty"`
	SocialURL    string `json:"socialUrl,omitempty"`
	PromotionURL string `json:"promotionUrl,omitempty"`
	Duration     int    `json:"duration,omitempty"`
}

// CompleteTaskRequest 提交任务完成请求
type CompleteTaskRequest struct {
	TaskID int64 `json:"taskId" binding:"required"`
}

// CompleteTaskResponse 提交任务完成响应
type CompleteTaskResponse struct {
	TaskID        int64   `json:"taskId"`
	Progress      int     `json:"progress"`
	TotalRequired int     `json:"totalRequired"`
	Completed     bool    `json:"completed"`
	PointsAwarded float64 `json:"pointsAwarded"`
	NewTotal      float64 `json:"newTotal"`
}

// TaskItem 任务列表项（合并用户进度）
type TaskItem struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Points        float64 `json:"points"`
	TotalRequired int     `json:"totalRequired"`
	Type          string  `json:"type"`
	PlatformURL   string  `json:"platformUrl,omitempty"`
	Duration      int     `json:"duration,omitempty"`
	ResetInterval int     `json:"resetInterval"`
	MaxAttempts   int     `json:"maxAttempts"`
	Progress      int     `json:"progress"`
	Completed     bool    `json:"completed"`
	CompletedAt   string  `json:"completedAt,omitempty"`
	Attempts      int     `json:"attempts"`
	Locked        bool    `json:"locked"`
	NextResetAt   string  `json:"nextResetAt,omitempty"`
}

// TaskStats 任务统计
type TaskStats struct {
	TotalPoints    float64 `json:"totalPoints"`
	CompletedTasks int     `json:"completedTasks"`
}

// TaskListResponse 任务列表响应
type TaskListResponse struct {
	Tasks []TaskItem `json:"tasks"`
	Stats TaskStats  `json:"stats"`
}

// CreateTaskRequest 创建任务请求
type CreateTaskRequest struct {
	Title         string  `json:"title" binding:"required,max=200"`
	Description   string  `json:"description"`
	Points        float64 `json:"points" binding:"gte=0"`
	TotalRequired int     `json:"totalRequired" binding:"required,min=1"`
	Type          string  `json:"type" binding:"required"`
	PlatformURL   string  `json:"platformUrl" binding:"omitempty,url"`
	Duration      int     `json:"duration" binding:"gte=0"`
	ResetInterval int     `json:"resetInterval" binding:"gte=0"`
	MaxAttempts   int     `json:"maxAttempts" binding:"gte=0"`
}

// UpdateTaskRequest 更新任务请求
type UpdateTaskRequest struct {
	Title         *string  `json:"title,omitempty" binding:"omitempty,max=200"`
	Description   *string  `json:"description,omitempty"`
	Points        *float64 `json:"points,omitempty" binding:"omitempty,gte=0"`
	TotalRequired *int     `json:"totalRequired,omitempty" binding:"omitempty,min=1"`
	PlatformURL   *string  `json:"platformUrl,omitempty"`
	Duration      *int     `json:"duration,omitempty" binding:"omitempty,gte=0"`
	ResetInterval *int     `json:"resetInterval,omitempty" binding:"omitempty,gte=0"`
	MaxAttempts   *int     `json:"maxAttempts,omitempty" binding:"omitempty,gte=0"`
	IsActive      *bool    `json:"isActive,omitempty"`
}
