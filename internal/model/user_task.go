package model

import (
	"time"
)

// UserTask 用户任务进度，(user_id, task_id) 唯一
type UserTask struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	UserID      int64      `gorm:"not null;uniqueIndex:idx_user_task" json:"userId"`
	TaskID      int64      `gorm:"not null;uniqueIndex:idx_user_task;index" json:"taskId"`
	Progress    int        `gorm:"default:0" json:"progress"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	LastResetAt time.Time  `json:"lastResetAt"`
	Attempts    int        `gorm:"default:0" json:"attempts"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (UserTask) TableName() string {
	return "user_tasks"
}

// ResetDue 判断是否已过重置周期
func (ut *UserTask) ResetDue(task *Task, now time.Time) bool {
	return !now.Before(ut.LastResetAt.Add(task.ResetDuration()))
}

// ApplyReset 将进度重置为新周期的初始状态（不涉及积分）
func (ut *UserTask) ApplyReset(now time.Time) {
	ut.Progress = 0
	ut.Completed = false
	ut.CompletedAt = nil
	ut.Attempts = 0
	ut.LastResetAt = now
}

// Locked 已完成且未到重置时间
func (ut *UserTask) Locked(task *Task, now time.Time) bool {
	return ut.Completed && !ut.ResetDue(task, now)
}
