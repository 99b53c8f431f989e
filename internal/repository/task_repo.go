package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/ad_reward_server/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{db: tx}
}

func (r *TaskRepository) Create(task *model.Task) error {
	return r.db.Create(task).Error
}

func (r *TaskRepository) GetByID(id int64) (*model.Task, error) {
	var task model.Task
	err := r.db.Where("id = ?", id).First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Task{}).Where("id = ?", id).Updates(fields).Error
}

// ListActive 获取所有上线任务
func (r *TaskRepository) ListActive() ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.Where("is_active = ?", true).Order("id ASC").Find(&tasks).Error
	return tasks, err
}

// ListActiveByKinds 获取指定类型的上线任务
func (r *TaskRepository) ListActiveByKinds(kinds ...model.TaskKind) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.Where("is_active = ? AND type IN ?", true, kinds).Order("id ASC").Find(&tasks).Error
	return tasks, err
}

// List 管理端分页列出全部任务
func (r *TaskRepository) List(page, pageSize int) ([]model.Task, int64, error) {
	var tasks []model.Task
	var total int64

	query := r.db.Model(&model.Task{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("id ASC").Offset(offset).Limit(pageSize).Find(&tasks).Error
	return tasks, total, err
}
