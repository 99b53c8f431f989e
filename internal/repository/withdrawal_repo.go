package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/ad_reward_server/internal/model"
)

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) WithTx(tx *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: tx}
}

func (r *WithdrawalRepository) Create(w *model.Withdrawal) error {
	return r.db.Create(w).Error
}

func (r *WithdrawalRepository) GetByID(id int64) (*model.Withdrawal, error) {
	var w model.Withdrawal
	if err := r.db.Where("id = ?", id).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// MarkProcessed 只在 pending 状态下写入终态，返回是否成功转换
func (r *WithdrawalRepository) MarkProcessed(id int64, status string, adminID int64, note string, now time.Time) (bool, error) {
	result := r.db.Model(&model.Withdrawal{}).
		Where("id = ? AND status = ?", id, model.WithdrawalPending).
		Updates(map[string]interface{}{
			"status":       status,
			"processed_by": adminID,
			"processed_at": now,
			"admin_note":   note,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListByUser 分页获取用户的提现记录
func (r *WithdrawalRepository) ListByUser(userID int64, page, pageSize int) ([]model.Withdrawal, int64, error) {
	return r.list(r.db.Model(&model.Withdrawal{}).Where("user_id = ?", userID), page, pageSize)
}

// ListByStatus 管理端分页获取，status 为空时返回全部
func (r *WithdrawalRepository) ListByStatus(status string, page, pageSize int) ([]model.Withdrawal, int64, error) {
	query := r.db.Model(&model.Withdrawal{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return r.list(query, page, pageSize)
}

func (r *WithdrawalRepository) list(query *gorm.DB, page, pageSize int) ([]model.Withdrawal, int64, error) {
	var list []model.Withdrawal
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("id DESC").Offset(offset).Limit(pageSize).Find(&list).Error
	return list, total, err
}
