package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/ad_reward_server/internal/model"
)

type UserTaskRepository struct {
	db *gorm.DB
}

func NewUserTaskRepository(db *gorm.DB) *UserTaskRepository {
	return &UserTaskRepository{db: db}
}

func (r *UserTaskRepository) WithTx(tx *gorm.DB) *UserTaskRepository {
	return &UserTaskRepository{db: tx}
}

// GetOrCreate 获取进度记录，不存在时以 progress=0 创建
func (r *UserTaskRepository) GetOrCreate(userID, taskID int64, now time.Time) (*model.UserTask, error) {
	ut := &model.UserTask{
		UserID:      userID,
		TaskID:      taskID,
		LastResetAt: now,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "task_id"}},
		DoNothing: true,
	}).Create(ut).Error
	if err != nil {
		return nil, err
	}
	return r.Get(userID, taskID)
}

func (r *UserTaskRepository) Get(userID, taskID int64) (*model.UserTask, error) {
	var ut model.UserTask
	err := r.db.Where("user_id = ? AND task_id = ?", userID, taskID).First(&ut).Error
	if err != nil {
		return nil, err
	}
	return &ut, nil
}

// ListByUser 获取用户全部进度记录，按 task_id 索引
func (r *UserTaskRepository) ListByUser(userID int64) (map[int64]*model.UserTask, error) {
	var list []model.UserTask
	if err := r.db.Where("user_id = ?", userID).Find(&list).Error; err != nil {
		return nil, err
	}

	result := make(map[int64]*model.UserTask, len(list))
	for i := range list {
		result[list[i].TaskID] = &list[i]
	}
	return result, nil
}

// Reset 将记录重置为新周期（不涉及积分）
func (r *UserTaskRepository) Reset(id int64, now time.Time) error {
	return r.db.Model(&model.UserTask{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"progress":      0,
			"completed":     false,
			"completed_at":  nil,
			"attempts":      0,
			"last_reset_at": now,
		}).Error
}

// AdvanceProgress 未完成时进度 +1（不超过 total）
func (r *UserTaskRepository) AdvanceProgress(id int64, total int) (bool, error) {
	result := r.db.Model(&model.UserTask{}).
		Where("id = ? AND completed = ? AND progress < ?", id, false, total).
		Update("progress", gorm.Expr("progress + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkCompleted 标记完成，只有第一次调用返回 true
func (r *UserTaskRepository) MarkCompleted(id int64, progress int, now time.Time) (bool, error) {
	result := r.db.Model(&model.UserTask{}).
		Where("id = ? AND completed = ?", id, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": now,
			"progress":     progress,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// IncrementAttempts 开始次数 +1，maxAttempts > 0 时不允许超过上限
func (r *UserTaskRepository) IncrementAttempts(id int64, maxAttempts int) (bool, error) {
	query := r.db.Model(&model.UserTask{}).Where("id = ?", id)
	if maxAttempts > 0 {
		query = query.Where("attempts < ?", maxAttempts)
	}
	result := query.Update("attempts", gorm.Expr("attempts + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
