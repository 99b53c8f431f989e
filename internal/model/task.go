package model

import (
	"time"
)

// TaskKind 任务类型，封闭集合
type TaskKind string

const (
	TaskKindAd           TaskKind = "ad"
	TaskKindSubscription TaskKind = "subscription"
	TaskKindSocial       TaskKind = "social"
	TaskKindPromotion    TaskKind = "promotion"
	TaskKindWatchAds     TaskKind = "watchAds"
	TaskKindDailyTarget  TaskKind = "dailyTarget"
	TaskKindWatchTime    TaskKind = "watchTime"
)

// TaskKinds 全部任务类型
var TaskKinds = []TaskKind{
	TaskKindAd,
	TaskKindSubscription,
	TaskKindSocial,
	TaskKindPromotion,
	TaskKindWatchAds,
	TaskKindDailyTarget,
	TaskKindWatchTime,
}

// ParseTaskKind 校验并转换任务类型
func ParseTaskKind(s string) (TaskKind, bool) {
	for _, k := range TaskKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// AdvancedByAdWatch 是否只能通过观看广告推进
func (k TaskKind) AdvancedByAdWatch() bool {
	return k == TaskKindWatchAds || k == TaskKindDailyTarget
}

const DefaultResetInterval = 86400

type Task struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:200;not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	Points        int64     `gorm:"not null;default:0" json:"-"`
	TotalRequired int       `gorm:"not null;default:1" json:"totalRequired"`
	Type          TaskKind  `gorm:"size:20;not null;index" json:"type"`
	PlatformURL   string    `gorm:"size:500" json:"platformUrl,omitempty"`
	Duration      int       `gorm:"default:0" json:"duration,omitempty"`
	ResetInterval int       `gorm:"default:86400" json:"resetInterval"`
	MaxAttempts   int       `gorm:"default:0" json:"maxAttempts"`
	IsActive      bool      `gorm:"not null;index" json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Task) TableName() string {
	return "tasks"
}

// ResetDuration 任务重置周期
func (t *Task) ResetDuration() time.Duration {
	if t.ResetInterval <= 0 {
		return DefaultResetInterval * time.Second
	}
	return time.Duration(t.ResetInterval) * time.Second
}
