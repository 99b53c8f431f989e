package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/qs3c/ad_reward_server/internal/model"
	"github.com/qs3c/ad_reward_server/internal/model/dto"
	"github.com/qs3c/ad_reward_server/internal/pkg/keylock"
	"github.com/qs3c/ad_reward_server/internal/pkg/metrics"
	"github.com/qs3c/ad_reward_server/internal/pkg/pubsub"
	"github.com/qs3c/ad_reward_server/internal/repository"
)

var (
	ErrTaskNotFound      = errors.New("任务不存在")
	ErrTaskLocked        = errors.New("任务已完成，请等待重置")
	ErrAttemptsExceeded  = errors.New("本周期开始次数已用完")
	ErrTaskNotStarted    = errors.New("任务尚未开始")
	ErrTaskAdvancedByAds = errors.New("该任务只能通过观看广告推进")
	ErrInvalidTaskKind   = errors.New("无效的任务类型")
)

const defaultFallbackAdLink = "https://ads.example.com/watch"

type TaskService struct {
	db           *gorm.DB
	taskRepo     *repository.TaskRepository
	userTaskRepo *repository.UserTaskRepository
	userRepo     *repository.UserRepository
	settings     *SettingService
	locks        *keylock.KeyLock
	publisher    EventPublisher
	now          func() time.Time
}

func NewTaskService(
	db *gorm.DB,
	taskRepo *repository.TaskRepository,
	userTaskRepo *repository.UserTaskRepository,
	userRepo *repository.UserRepository,
	settings *SettingService,
	locks *keylock.KeyLock,
	publisher EventPublisher,
) *TaskService {
	return &TaskService{
		db:           db,
		taskRepo:     taskRepo,
		userTaskRepo: userTaskRepo,
		userRepo:     userRepo,
		settings:     settings,
		locks:        locks,
		publisher:    publisher,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// List 合并上线任务与用户进度，展示重置后的有效状态但不落库
func (s *TaskService) List(userID int64) (*dto.TaskListResponse, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	tasks, err := s.taskRepo.ListActive()
	if err != nil {
		return nil, err
	}

	progress, err := s.userTaskRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	resp := &dto.TaskListResponse{
		Tasks: make([]dto.TaskItem, 0, len(tasks)),
		Stats: dto.TaskStats{TotalPoints: model.UnitsToPoints(user.Points)},
	}
	for i := range tasks {
		item := buildTaskItem(&tasks[i], progress[tasks[i].ID], now)
		if item.Completed {
			resp.Stats.CompletedTasks++
		}
		resp.Tasks = append(resp.Tasks, item)
	}

	return resp, nil
}

// Start 开始任务：先检查锁定和次数，再按任务类型返回跳转链接
func (s *TaskService) Start(userID, taskID int64) (*dto.StartTaskResponse, error) {
	task, err := s.activeTask(taskID)
	if err != nil {
		return nil, err
	}

	defaultAdURL := s.settings.GetString(model.SettingDefaultAdURL, defaultFallbackAdLink)

	unlock := s.locks.Lock(userID)
	defer unlock()

	now := s.now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		userTasks := s.userTaskRepo.WithTx(tx)

		ut, err := s.currentPeriod(userTasks, userID, task, now)
		if err != nil {
			return err
		}
		if ut.Locked(task, now) {
			return ErrTaskLocked
		}

		ok, err := userTasks.IncrementAttempts(ut.ID, task.MaxAttempts)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAttemptsExceeded
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return buildStartPayload(task, defaultAdURL)
}

// Complete 提交一次外部任务完成，达到要求次数时发放奖励（每个周期仅一次）
func (s *TaskService) Complete(ctx context.Context, userID, taskID int64) (*dto.CompleteTaskResponse, error) {
	task, err := s.activeTask(taskID)
	if err != nil {
		return nil, err
	}
	if task.Type.AdvancedByAdWatch() {
		return nil, ErrTaskAdvancedByAds
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	now := s.now()
	resp := &dto.CompleteTaskResponse{
		TaskID:        task.ID,
		TotalRequired: task.TotalRequired,
	}
	var user *model.User

	err = s.db.Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		userTasks := s.userTaskRepo.WithTx(tx)

		current, err := users.GetByID(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if current.IsSuspended() {
			return ErrUserSuspended
		}

		ut, err := s.currentPeriod(userTasks, userID, task, now)
		if err != nil {
			return err
		}
		if ut.Completed {
			return ErrTaskLocked
		}
		if ut.Attempts == 0 {
			return ErrTaskNotStarted
		}

		advanced, err := userTasks.AdvanceProgress(ut.ID, task.TotalRequired)
		if err != nil {
			return err
		}
		progress := ut.Progress
		if advanced {
			progress++
		}
		resp.Progress = progress

		if progress >= task.TotalRequired {
			ok, err := userTasks.MarkCompleted(ut.ID, progress, now)
			if err != nil {
				return err
			}
			if ok {
				if err := users.CreditEarned(userID, task.Points); err != nil {
					return err
				}
				resp.Completed = true
				resp.PointsAwarded = model.UnitsToPoints(task.Points)
			}
		}

		user, err = users.GetByID(userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp.NewTotal = model.UnitsToPoints(user.Points)

	if resp.Completed {
		metrics.RecordTaskCompleted(string(task.Type))
		metrics.AddPoints(metrics.SourceTask, resp.PointsAwarded)

		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"task_id": task.ID,
			"points":  resp.PointsAwarded,
		}).Info("task completed")

		if s.publisher != nil {
			evt := &pubsub.Event{
				Type:    pubsub.TypeTaskCompleted,
				UserID:  userID,
				Points:  resp.NewTotal,
				TaskIDs: []int64{task.ID},
			}
			if err := s.publisher.Publish(ctx, evt); err != nil {
				logrus.WithError(err).WithField("user_id", userID).Warn("publish task event failed")
			}
		}
	}

	return resp, nil
}

// currentPeriod 获取（必要时创建）进度记录，周期已过则先重置
func (s *TaskService) currentPeriod(userTasks *repository.UserTaskRepository, userID int64, task *model.Task, now time.Time) (*model.UserTask, error) {
	ut, err := userTasks.GetOrCreate(userID, task.ID, now)
	if err != nil {
		return nil, err
	}
	if ut.ResetDue(task, now) {
		if err := userTasks.Reset(ut.ID, now); err != nil {
			return nil, err
		}
		ut.ApplyReset(now)
	}
	return ut, nil
}

func (s *TaskService) activeTask(taskID int64) (*model.Task, error) {
	task, err := s.taskRepo.GetByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if !task.IsActive {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// Create 管理员创建任务
func (s *TaskService) Create(req *dto.CreateTaskRequest) (*dto.TaskItem, error) {
	kind, ok := model.ParseTaskKind(req.Type)
	if !ok {
		return nil, ErrInvalidTaskKind
	}

	task := &model.Task{
		Title:         req.Title,
		Description:   req.Description,
		Points:        model.PointsToUnits(req.Points),
		TotalRequired: req.TotalRequired,
		Type:          kind,
		PlatformURL:   req.PlatformURL,
		Duration:      req.Duration,
		ResetInterval: req.ResetInterval,
		MaxAttempts:   req.MaxAttempts,
		IsActive:      true,
	}
	if task.TotalRequired <= 0 {
		task.TotalRequired = 1
	}
	if task.ResetInterval <= 0 {
		task.ResetInterval = model.DefaultResetInterval
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"task_id": task.ID,
		"type":    task.Type,
	}).Info("task created")

	item := buildTaskItem(task, nil, s.now())
	return &item, nil
}

// Update 管理员修改任务，可用于下线
func (s *TaskService) Update(taskID int64, req *dto.UpdateTaskRequest) (*dto.TaskItem, error) {
	if _, err := s.taskRepo.GetByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Points != nil {
		fields["points"] = model.PointsToUnits(*req.Points)
	}
	if req.TotalRequired != nil {
		fields["total_required"] = *req.TotalRequired
	}
	if req.PlatformURL != nil {
		fields["platform_url"] = *req.PlatformURL
	}
	if req.Duration != nil {
		fields["duration"] = *req.Duration
	}
	if req.ResetInterval != nil {
		interval := *req.ResetInterval
		if interval <= 0 {
			interval = model.DefaultResetInterval
		}
		fields["reset_interval"] = interval
	}
	if req.MaxAttempts != nil {
		fields["max_attempts"] = *req.MaxAttempts
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	if len(fields) > 0 {
		if err := s.taskRepo.UpdateFields(taskID, fields); err != nil {
			return nil, err
		}
	}

	task, err := s.taskRepo.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	item := buildTaskItem(task, nil, s.now())
	return &item, nil
}

// AdminList 管理端任务列表（含下线任务）
func (s *TaskService) AdminList(page, pageSize int) ([]dto.TaskItem, int64, error) {
	tasks, total, err := s.taskRepo.List(page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	items := make([]dto.TaskItem, 0, len(tasks))
	for i := range tasks {
		items = append(items, buildTaskItem(&tasks[i], nil, now))
	}
	return items, total, nil
}

// buildStartPayload 按任务类型生成跳转信息
func buildStartPayload(task *model.Task, defaultAdURL string) (*dto.StartTaskResponse, error) {
	resp := &dto.StartTaskResponse{
		TaskID:   task.ID,
		Type:     string(task.Type),
		Duration: task.Duration,
	}

	switch task.Type {
	case model.TaskKindAd, model.TaskKindWatchAds, model.TaskKindDailyTarget, model.TaskKindWatchTime:
		resp.AdURL = task.PlatformURL
		if resp.AdURL == "" {
			resp.AdURL = defaultAdURL
		}
	case model.TaskKindSubscription:
		resp.URL = task.PlatformURL
	case model.TaskKindSocial:
		resp.SocialURL = task.PlatformURL
	case model.TaskKindPromotion:
		resp.PromotionURL = task.PlatformURL
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidTaskKind, task.Type)
	}

	return resp, nil
}

func buildTaskItem(task *model.Task, ut *model.UserTask, now time.Time) dto.TaskItem {
	item := dto.TaskItem{
		ID:            task.ID,
		Title:         task.Title,
		Description:   task.Description,
		Points:        model.UnitsToPoints(task.Points),
		TotalRequired: task.TotalRequired,
		Type:          string(task.Type),
		PlatformURL:   task.PlatformURL,
		Duration:      task.Duration,
		ResetInterval: task.ResetInterval,
		MaxAttempts:   task.MaxAttempts,
	}
	if ut == nil {
		return item
	}

	view := *ut
	if view.ResetDue(task, now) {
		view.ApplyReset(now)
	}

	item.Progress = view.Progress
	item.Completed = view.Completed
	item.Attempts = view.Attempts
	item.Locked = view.Locked(task, now)
	if view.CompletedAt != nil {
		item.CompletedAt = view.CompletedAt.Format(time.RFC3339)
	}
	if item.Locked {
		item.NextResetAt = view.LastResetAt.Add(task.ResetDuration()).Format(time.RFC3339)
	}
	return item
}
