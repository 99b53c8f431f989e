package dto

import (
	"encoding/json"

	"github.com/qs3c/ad_reward_server/internal/model"
)

// SettingUpdateItem 单条设置更新
type SettingUpdateItem struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// 单条更新结果状态
const (
	SettingResultSuccess = "success"
	SettingResultError   = "error"
)

// SettingUpdateResult 单条设置更新结果
type SettingUpdateResult struct {
	Key     string `json:"key"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// SettingUpdateResponse 批量更新响应
type SettingUpdateResponse struct {
	Results []SettingUpdateResult `json:"results"`
}

// SettingInfo 设置详情
type SettingInfo struct {
	Key         string                  `json:"key"`
	Category    string                  `json:"category"`
	Type        model.SettingType       `json:"type"`
	Value       json.RawMessage         `json:"value"`
	Validation  model.SettingValidation `json:"validation"`
	Description string                  `json:"description"`
	UpdatedAt   string                  `json:"updatedAt"`
}
