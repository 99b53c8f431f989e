package model

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

type User struct {
	ID           int64      `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        *string    `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	ExternalID   *string    `gorm:"column:external_id;size:100;uniqueIndex" json:"-"`
	PasswordHash *string    `gorm:"size:255" json:"-"`
	AvatarURL    string     `gorm:"size:500" json:"avatarUrl"`
	Bio          string     `gorm:"type:text" json:"bio"`
	Role         string     `gorm:"size:20;default:user" json:"role"`
	Status       string     `gorm:"size:20;default:active" json:"status"`
	WatchedAds   int        `gorm:"default:0" json:"watchedAds"`
	DailyLimit   int        `gorm:"default:200" json:"dailyLimit"`
	WatchResetAt *time.Time `json:"watchResetAt,omitempty"`
	EarnedPoints int64      `gorm:"default:0" json:"-"` // 单位: PointScale 分之一积分
	Points       int64      `gorm:"default:0" json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsSuspended() bool {
	return u.Status == UserStatusSuspended
}
