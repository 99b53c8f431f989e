package cron

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// DailyResetter 重置已过期的每日观看窗口，返回受影响的用户数
type DailyResetter interface {
	ResetDailyWindows(ctx context.Context, now time.Time) (int64, error)
}

type Service struct {
	resetter      DailyResetter
	sweepInterval time.Duration
	stopChan      chan struct{}
}

// NewService 创建定时任务服务，sweepInterval <= 0 时按每小时补偿扫描
func NewService(resetter DailyResetter, sweepInterval time.Duration) *Service {
	if sweepInterval <= 0 {
		sweepInterval = time.Hour
	}
	return &Service{
		resetter:      resetter,
		sweepInterval: sweepInterval,
		stopChan:      make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runDailyReset()
	go s.runSweep()
	logrus.Info("Cron service started (daily watch reset + sweep)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	logrus.Info("Cron service stopped")
}

// runDailyReset UTC 零点重置所有用户的观看次数
func (s *Service) runDailyReset() {
	now := time.Now().UTC()
	timer := time.NewTimer(NextMidnight(now).Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.reset("midnight")
			now := time.Now().UTC()
			timer.Reset(NextMidnight(now).Sub(now))
		}
	}
}

// runSweep 补偿扫描，处理零点任务错过（如服务重启）的用户
func (s *Service) runSweep() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.reset("sweep")
		}
	}
}

func (s *Service) reset(trigger string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	affected, err := s.resetter.ResetDailyWindows(ctx, time.Now().UTC())
	if err != nil {
		logrus.WithField("trigger", trigger).WithError(err).Error("Failed to reset daily watch windows")
		return
	}
	if affected > 0 {
		logrus.WithFields(logrus.Fields{"trigger": trigger, "users": affected}).Info("Daily watch windows reset")
	}
}

// RunNow 立即执行一次重置（用于运维命令或测试）
func (s *Service) RunNow(ctx context.Context) (int64, error) {
	logrus.Info("Manual daily watch reset triggered")
	return s.resetter.ResetDailyWindows(ctx, time.Now().UTC())
}

// NextMidnight 返回 t 之后的下一个 UTC 零点
func NextMidnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, time.UTC)
}
