package model

import (
	"encoding/json"
	"time"
)

// SettingType 设置值的声明类型
type SettingType string

const (
	SettingTypeString  SettingType = "string"
	SettingTypeNumber  SettingType = "number"
	SettingTypeBoolean SettingType = "boolean"
	SettingTypeJSON    SettingType = "json"
)

// SettingValidation 设置校验规则
type SettingValidation struct {
	Min     *float64          `json:"min,omitempty"`
	Max     *float64          `json:"max,omitempty"`
	Pattern string            `json:"pattern,omitempty"`
	Options []json.RawMessage `json:"options,omitempty"`
}

// SystemSetting 管理员可配置的键值设置，Value 保存规范化后的 JSON 文本
type SystemSetting struct {
	ID          int64             `gorm:"primaryKey" json:"id"`
	Key         string            `gorm:"size:100;uniqueIndex;not null" json:"key"`
	Category    string            `gorm:"size:50;index;not null" json:"category"`
	Type        SettingType       `gorm:"size:20;not null" json:"type"`
	Value       string            `gorm:"type:text;not null" json:"-"`
	Validation  SettingValidation `gorm:"type:text;serializer:json" json:"validation"`
	Description string            `gorm:"size:255" json:"description"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}

// 内置设置键
const (
	SettingDailyAdsLimit       = "daily_ads_limit"
	SettingPointsPerAd         = "points_per_ad"
	SettingDefaultAdURL        = "default_ad_url"
	SettingMinWithdrawalPoints = "min_withdrawal_points"
	SettingWithdrawalEnabled   = "withdrawal_enabled"
	SettingSiteName            = "site_name"
	SettingSupportURL          = "support_url"
	SettingAdNetworks          = "ad_networks"
	SettingAdProvider          = "ad_provider"
)

// 设置分类
const (
	SettingCategoryAds        = "ads"
	SettingCategoryWithdrawal = "withdrawal"
	SettingCategoryGeneral    = "general"
)
