package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/qs3c/ad_reward_server/config"
	"github.com/qs3c/ad_reward_server/internal/model"
	"github.com/qs3c/ad_reward_server/internal/model/dto"
	"github.com/qs3c/ad_reward_server/internal/pkg/metrics"
	"github.com/qs3c/ad_reward_server/internal/repository"
)

type SettingService struct {
	settingRepo *repository.SettingRepository
	cfg         *config.Config
}

func NewSettingService(settingRepo *repository.SettingRepository, cfg *config.Config) *SettingService {
	return &SettingService{
		settingRepo: settingRepo,
		cfg:         cfg,
	}
}

// List 列出设置
func (s *SettingService) List(category string) ([]dto.SettingInfo, error) {
	settings, err := s.settingRepo.List(category)
	if err != nil {
		return nil, err
	}

	list := make([]dto.SettingInfo, 0, len(settings))
	for i := range settings {
		list = append(list, buildSettingInfo(&settings[i]))
	}
	return list, nil
}

// BatchUpdate 逐条校验并保存，某一条失败不影响其他条目；ok 表示是否全部成功
func (s *SettingService) BatchUpdate(items []dto.SettingUpdateItem) ([]dto.SettingUpdateResult, bool) {
	results := make([]dto.SettingUpdateResult, 0, len(items))
	ok := true

	for _, item := range items {
		result := dto.SettingUpdateResult{Key: item.Key, Status: dto.SettingResultSuccess}
		if err := s.updateOne(item); err != nil {
			ok = false
			result.Status = dto.SettingResultError
			result.Message = settingErrorMessage(err)
			metrics.RecordSettingUpdate(dto.SettingResultError)
		} else {
			metrics.RecordSettingUpdate(dto.SettingResultSuccess)
		}
		results = append(results, result)
	}

	return results, ok
}

func (s *SettingService) updateOne(item dto.SettingUpdateItem) error {
	key := strings.TrimSpace(item.Key)
	if key == "" {
		return fmt.Errorf("%w: key 不能为空", ErrInvalidSettingValue)
	}

	setting, err := s.settingRepo.GetByKey(key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSettingNotFound
		}
		return err
	}

	value, err := ParseSettingValue(setting.Type, item.Value)
	if err != nil {
		return err
	}
	if err := value.Validate(setting.Validation); err != nil {
		return err
	}

	if err := s.settingRepo.UpdateValue(key, value.Canonical()); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"key":   key,
		"value": value.Canonical(),
	}).Info("setting updated")
	return nil
}

func settingErrorMessage(err error) string {
	if errors.Is(err, ErrSettingNotFound) || errors.Is(err, ErrInvalidSettingValue) {
		return err.Error()
	}
	logrus.WithError(err).Error("setting update failed")
	return "保存失败"
}

func (s *SettingService) lookup(key string) (SettingValue, bool) {
	setting, err := s.settingRepo.GetByKey(key)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).WithField("key", key).Warn("read setting failed")
		}
		return SettingValue{}, false
	}

	value, err := DecodeStoredSetting(setting)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("stored setting is malformed")
		return SettingValue{}, false
	}
	return value, true
}

// GetNumber 读取数值设置，缺失或类型不符时返回 fallback
func (s *SettingService) GetNumber(key string, fallback float64) float64 {
	v, ok := s.lookup(key)
	if !ok || v.Kind != model.SettingTypeNumber {
		return fallback
	}
	return v.Number
}

// GetString 读取字符串设置
func (s *SettingService) GetString(key, fallback string) string {
	v, ok := s.lookup(key)
	if !ok || v.Kind != model.SettingTypeString {
		return fallback
	}
	return v.String
}

// GetBool 读取布尔设置
func (s *SettingService) GetBool(key string, fallback bool) bool {
	v, ok := s.lookup(key)
	if !ok || v.Kind != model.SettingTypeBoolean {
		return fallback
	}
	return v.Bool
}

// DailyLimit 新用户每日广告上限
func (s *SettingService) DailyLimit() int {
	limit := int(s.GetNumber(model.SettingDailyAdsLimit, float64(s.cfg.Reward.DailyLimit())))
	if limit < 0 {
		return 0
	}
	return limit
}

// PointsPerAd 单次广告奖励积分
func (s *SettingService) PointsPerAd() float64 {
	points := s.GetNumber(model.SettingPointsPerAd, s.cfg.Reward.PointsPerAd())
	if points < 0 {
		return 0
	}
	return points
}

// SeedDefaults 写入缺失的默认设置
func (s *SettingService) SeedDefaults() (int64, error) {
	return s.settingRepo.SeedDefaults(DefaultSettings(s.cfg))
}

// DefaultSettings 内置设置目录
func DefaultSettings(cfg *config.Config) []model.SystemSetting {
	return []model.SystemSetting{
		{
			Key:         model.SettingDailyAdsLimit,
			Category:    model.SettingCategoryAds,
			Type:        model.SettingTypeNumber,
			Value:       mustJSON(cfg.Reward.DailyLimit()),
			Validation:  model.SettingValidation{Min: floatPtr(0), Max: floatPtr(10000)},
			Description: "每日可观看广告次数",
		},
		{
			Key:         model.SettingPointsPerAd,
			Category:    model.SettingCategoryAds,
			Type:        model.SettingTypeNumber,
			Value:       mustJSON(cfg.Reward.PointsPerAd()),
			Validation:  model.SettingValidation{Min: floatPtr(0), Max: floatPtr(1000)},
			Description: "每次观看广告奖励积分",
		},
		{
			Key:         model.SettingDefaultAdURL,
			Category:    model.SettingCategoryAds,
			Type:        model.SettingTypeString,
			Value:       mustJSON("https://ads.example.com/watch"),
			Validation:  model.SettingValidation{Pattern: `^https?://`},
			Description: "任务未配置链接时使用的广告地址",
		},
		{
			Key:         model.SettingAdProvider,
			Category:    model.SettingCategoryAds,
			Type:        model.SettingTypeString,
			Value:       mustJSON("admob"),
			Validation:  model.SettingValidation{Options: rawOptions("admob", "unity", "applovin")},
			Description: "广告供应商",
		},
		{
			Key:         model.SettingMinWithdrawalPoints,
			Category:    model.SettingCategoryWithdrawal,
			Type:        model.SettingTypeNumber,
			Value:       mustJSON(10),
			Validation:  model.SettingValidation{Min: floatPtr(0)},
			Description: "单次提现最少积分",
		},
		{
			Key:         model.SettingWithdrawalEnabled,
			Category:    model.SettingCategoryWithdrawal,
			Type:        model.SettingTypeBoolean,
			Value:       mustJSON(true),
			Description: "是否开放提现",
		},
		{
			Key:         model.SettingSiteName,
			Category:    model.SettingCategoryGeneral,
			Type:        model.SettingTypeString,
			Value:       mustJSON("Ad Reward"),
			Validation:  model.SettingValidation{Pattern: `^.{1,100}$`},
			Description: "站点名称",
		},
		{
			Key:         model.SettingSupportURL,
			Category:    model.SettingCategoryGeneral,
			Type:        model.SettingTypeString,
			Value:       mustJSON("https://support.example.com"),
			Validation:  model.SettingValidation{Pattern: `^https?://`},
			Description: "客服链接",
		},
		{
			Key:         model.SettingAdNetworks,
			Category:    model.SettingCategoryGeneral,
			Type:        model.SettingTypeJSON,
			Value:       `{"admob":{"enabled":true},"unity":{"enabled":false}}`,
			Description: "广告网络配置",
		},
	}
}

func buildSettingInfo(s *model.SystemSetting) dto.SettingInfo {
	return dto.SettingInfo{
		Key:         s.Key,
		Category:    s.Category,
		Type:        s.Type,
		Value:       json.RawMessage(s.Value),
		Validation:  s.Validation,
		Description: s.Description,
		UpdatedAt:   s.UpdatedAt.Format(time.RFC3339),
	}
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func rawOptions(values ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(values))
	for _, v := range values {
		out = append(out, json.RawMessage(mustJSON(v)))
	}
	return out
}

func floatPtr(f float64) *float64 {
	return &f
}
