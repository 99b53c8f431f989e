package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/ad_reward_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx 返回绑定到事务的仓库
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

// IncrementWatched 在未达上限时原子地增加观看次数并发放积分，返回是否成功
func (r *UserRepository) IncrementWatched(id int64, units int64) (bool, error) {
	result := r.db.Model(&model.User{}).
		Where("id = ? AND watched_ads < daily_limit", id).
		Updates(map[string]interface{}{
			"watched_ads":   gorm.Expr("watched_ads + 1"),
			"earned_points": gorm.Expr("earned_points + ?", units),
			"points":        gorm.Expr("points + ?", units),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CreditPoints 增加可用积分
func (r *UserRepository) CreditPoints(id int64, units int64) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).
		Update("points", gorm.Expr("points + ?", units)).Error
}

// CreditEarned 任务奖励同时计入累计收益和可用积分
func (r *UserRepository) CreditEarned(id int64, units int64) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"earned_points": gorm.Expr("earned_points + ?", units),
		"points":        gorm.Expr("points + ?", units),
	}).Error
}

// DeductPoints 余额充足时扣减积分，返回是否成功
func (r *UserRepository) DeductPoints(id int64, units int64) (bool, error) {
	result := r.db.Model(&model.User{}).
		Where("id = ? AND points >= ?", id, units).
		Update("points", gorm.Expr("points - ?", units))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ResetWatchWindow 重置单个用户已过期的观看窗口，返回是否发生了重置
func (r *UserRepository) ResetWatchWindow(id int64, now, nextResetAt time.Time) (bool, error) {
	result := r.db.Model(&model.User{}).
		Where("id = ? AND (watch_reset_at IS NULL OR watch_reset_at <= ?)", id, now).
		Updates(map[string]interface{}{
			"watched_ads":    0,
			"watch_reset_at": nextResetAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ResetExpiredWindows 重置所有已过期的观看窗口
func (r *UserRepository) ResetExpiredWindows(now, nextResetAt time.Time) (int64, error) {
	result := r.db.Model(&model.User{}).
		Where("watch_reset_at IS NULL OR watch_reset_at <= ?", now).
		Updates(map[string]interface{}{
			"watched_ads":    0,
			"watch_reset_at": nextResetAt,
		})
	return result.RowsAffected, result.Error
}

// ResetAllWindows 无条件重置所有用户的观看窗口
func (r *UserRepository) ResetAllWindows(nextResetAt time.Time) (int64, error) {
	result := r.db.Model(&model.User{}).
		Where("1 = 1").
		Updates(map[string]interface{}{
			"watched_ads":    0,
			"watch_reset_at": nextResetAt,
		})
	return result.RowsAffected, result.Error
}

func (r *UserRepository) SetDailyLimit(id int64, limit int) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Update("daily_limit", limit).Error
}

func (r *UserRepository) SetRole(id int64, role string) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Update("role", role).Error
}

func (r *UserRepository) SetStatus(id int64, status string) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Update("status", status).Error
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}
