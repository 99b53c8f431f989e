package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/ad_reward_server/internal/model"
)

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) GetByKey(key string) (*model.SystemSetting, error) {
	var s model.SystemSetting
	if err := r.db.Where("`key` = ?", key).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// List 列出设置，category 为空时返回全部
func (r *SettingRepository) List(category string) ([]model.SystemSetting, error) {
	var list []model.SystemSetting
	query := r.db.Model(&model.SystemSetting{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Order("category ASC, `key` ASC").Find(&list).Error
	return list, err
}

// UpdateValue 写入规范化后的 JSON 值
func (r *SettingRepository) UpdateValue(key, value string) error {
	return r.db.Model(&model.SystemSetting{}).Where("`key` = ?", key).Update("value", value).Error
}

// SeedDefaults 插入缺失的默认设置，已存在的 key 保持不变，返回新插入数量
func (r *SettingRepository) SeedDefaults(defaults []model.SystemSetting) (int64, error) {
	if len(defaults) == 0 {
		return 0, nil
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&defaults)
	return result.RowsAffected, result.Error
}
