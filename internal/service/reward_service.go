package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/qs3c/ad_reward_server/internal/model"
	"github.com/qs3c/ad_reward_server/internal/model/dto"
	"github.com/qs3c/ad_reward_server/internal/pkg/cron"
	"github.com/qs3c/ad_reward_server/internal/pkg/keylock"
	"github.com/qs3c/ad_reward_server/internal/pkg/metrics"
	"github.com/qs3c/ad_reward_server/internal/pkg/pubsub"
	"github.com/qs3c/ad_reward_server/internal/repository"
)

var (
	ErrDailyLimitReached = errors.New("今日观看次数已达上限")
)

// EventPublisher 实时事件发布
type EventPublisher interface {
	Publish(ctx context.Context, evt *pubsub.Event) error
}

type RewardService struct {
	db           *gorm.DB
	userRepo     *repository.UserRepository
	taskRepo     *repository.TaskRepository
	userTaskRepo *repository.UserTaskRepository
	settings     *SettingService
	locks        *keylock.KeyLock
	publisher    EventPublisher
	now          func() time.Time
}

func NewRewardService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	taskRepo *repository.TaskRepository,
	userTaskRepo *repository.UserTaskRepository,
	settings *SettingService,
	locks *keylock.KeyLock,
	publisher EventPublisher,
) *RewardService {
	return &RewardService{
		db:           db,
		userRepo:     userRepo,
		taskRepo:     taskRepo,
		userTaskRepo: userTaskRepo,
		settings:     settings,
		locks:        locks,
		publisher:    publisher,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// RecordAdWatch 记录一次广告观看并结算奖励
func (s *RewardService) RecordAdWatch(ctx context.Context, userID int64) (*dto.WatchAdResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	units := model.PointsToUnits(s.settings.PointsPerAd())
	now := s.now()

	var (
		user      *model.User
		bonus     int64
		completed []int64
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)

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

		if watchWindowExpired(current, now) {
			if _, err := users.ResetWatchWindow(userID, now, cron.NextMidnight(now)); err != nil {
				return err
			}
		}

		ok, err := users.IncrementWatched(userID, units)
		if err != nil {
			return err
		}
		if !ok {
			return ErrDailyLimitReached
		}

		user, err = users.GetByID(userID)
		if err != nil {
			return err
		}

		bonus, completed, err = s.advanceAdTasks(tx, user, now)
		if err != nil {
			return err
		}
		if bonus > 0 {
			if err := users.CreditPoints(userID, bonus); err != nil {
				return err
			}
			user.Points += bonus
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDailyLimitReached) {
			metrics.RecordAdWatch("limited")
		} else {
			metrics.RecordAdWatch("error")
		}
		return nil, err
	}

	result := &dto.WatchAdResult{
		PointsEarned:     model.UnitsToPoints(units),
		BonusPoints:      model.UnitsToPoints(bonus),
		NewTotal:         model.UnitsToPoints(user.Points),
		WatchedAds:       user.WatchedAds,
		DailyLimit:       user.DailyLimit,
		CompletedTaskIDs: completed,
	}

	metrics.RecordAdWatch("ok")
	metrics.AddPoints(metrics.SourceAd, result.PointsEarned)
	if bonus > 0 {
		metrics.AddPoints(metrics.SourceTaskBonus, result.BonusPoints)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":     userID,
		"watched_ads": result.WatchedAds,
		"daily_limit": result.DailyLimit,
		"bonus":       result.BonusPoints,
		"tasks":       completed,
	}).Debug("ad watch recorded")

	s.publish(ctx, &pubsub.Event{
		Type:         pubsub.TypeAdReward,
		UserID:       userID,
		Points:       result.NewTotal,
		PointsEarned: result.PointsEarned,
		BonusPoints:  result.BonusPoints,
		WatchedAds:   result.WatchedAds,
		DailyLimit:   result.DailyLimit,
		TaskIDs:      completed,
	})

	return result, nil
}

// advanceAdTasks 推进 watchAds 任务，并在达到每日上限时完成 dailyTarget 任务，返回奖励单位数
func (s *RewardService) advanceAdTasks(tx *gorm.DB, user *model.User, now time.Time) (int64, []int64, error) {
	tasks, err := s.taskRepo.WithTx(tx).ListActiveByKinds(model.TaskKindWatchAds, model.TaskKindDailyTarget)
	if err != nil {
		return 0, nil, err
	}

	userTasks := s.userTaskRepo.WithTx(tx)
	completed := make([]int64, 0)
	var bonus int64

	for i := range tasks {
		task := &tasks[i]
		if task.Type == model.TaskKindDailyTarget && user.WatchedAds < user.DailyLimit {
			continue
		}

		ut, err := userTasks.GetOrCreate(user.ID, task.ID, now)
		if err != nil {
			return 0, nil, err
		}
		if ut.ResetDue(task, now) {
			if err := userTasks.Reset(ut.ID, now); err != nil {
				return 0, nil, err
			}
			ut.ApplyReset(now)
		}
		if ut.Completed {
			continue
		}

		progress := task.TotalRequired
		if task.Type == model.TaskKindWatchAds {
			advanced, err := userTasks.AdvanceProgress(ut.ID, task.TotalRequired)
			if err != nil {
				return 0, nil, err
			}
			progress = ut.Progress
			if advanced {
				progress++
			}
			if progress < task.TotalRequired {
				continue
			}
		}

		ok, err := userTasks.MarkCompleted(ut.ID, progress, now)
		if err != nil {
			return 0, nil, err
		}
		if ok {
			bonus += task.Points
			completed = append(completed, task.ID)
			metrics.RecordTaskCompleted(string(task.Type))
		}
	}

	return bonus, completed, nil
}

// GetProgress 获取今日观看进度
func (s *RewardService) GetProgress(userID int64) (*dto.ProgressInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 检查是否需要重置
	now := s.now()
	if watchWindowExpired(user, now) {
		if _, err := s.userRepo.ResetWatchWindow(userID, now, cron.NextMidnight(now)); err != nil {
			return nil, err
		}
		user.WatchedAds = 0
	}

	return &dto.ProgressInfo{
		DailyLimit:         user.DailyLimit,
		WatchedToday:       user.WatchedAds,
		ProgressPercentage: progressPercentage(user.WatchedAds, user.DailyLimit),
	}, nil
}

// ResetDailyWindows 重置所有已过期的观看窗口
func (s *RewardService) ResetDailyWindows(ctx context.Context, now time.Time) (int64, error) {
	return s.userRepo.ResetExpiredWindows(now, cron.NextMidnight(now))
}

// ResetAllWindows 强制重置所有用户的观看次数
func (s *RewardService) ResetAllWindows(ctx context.Context) (int64, error) {
	return s.userRepo.ResetAllWindows(cron.NextMidnight(s.now()))
}

func (s *RewardService) publish(ctx context.Context, evt *pubsub.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		logrus.WithError(err).WithField("user_id", evt.UserID).Warn("publish reward event failed")
	}
}

func progressPercentage(watched, limit int) int {
	if limit <= 0 {
		return 100
	}
	pct := watched * 100 / limit
	if pct > 100 {
		return 100
	}
	return pct
}
