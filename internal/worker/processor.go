package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qs3c/ad_reward_server/internal/model"
	"github.com/qs3c/ad_reward_server/internal/pkg/email"
	"github.com/qs3c/ad_reward_server/internal/pkg/pubsub"
	"github.com/qs3c/ad_reward_server/internal/pkg/queue"
	"github.com/qs3c/ad_reward_server/internal/repository"
)

const popTimeout = 5 * time.Second

// Mailer 提现通知邮件发送
type Mailer interface {
	Enabled() bool
	SendWithdrawalNotice(to string, n email.WithdrawalNotice) error
}

// Publisher 实时事件发布
type Publisher interface {
	Publish(ctx context.Context, evt *pubsub.Event) error
}

// Source 通知队列
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (*queue.NotifyMessage, error)
}

// Processor 处理提现通知：推送实时事件并发送邮件
type Processor struct {
	userRepo  *repository.UserRepository
	mailer    Mailer
	publisher Publisher
}

// NewProcessor 创建通知处理器，mailer 和 publisher 可为 nil
func NewProcessor(userRepo *repository.UserRepository, mailer Mailer, publisher Publisher) *Processor {
	return &Processor{
		userRepo:  userRepo,
		mailer:    mailer,
		publisher: publisher,
	}
}

// Process 处理一条提现通知
func (p *Processor) Process(ctx context.Context, msg *queue.NotifyMessage) error {
	user, err := p.userRepo.GetByID(msg.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user %d: %w", msg.UserID, err)
	}

	var errs []error

	if p.publisher != nil {
		evt := &pubsub.Event{
			Type:         pubsub.TypeWithdrawalUpdate,
			UserID:       user.ID,
			Points:       model.UnitsToPoints(user.Points),
			WithdrawalID: msg.WithdrawalID,
			OrderNo:      msg.OrderNo,
			Status:       msg.Status,
		}
		if err := p.publisher.Publish(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("publish: %w", err))
		}
	}

	if p.mailer != nil && p.mailer.Enabled() && user.Email != nil && *user.Email != "" {
		notice := email.WithdrawalNotice{
			Username: user.Username,
			OrderNo:  msg.OrderNo,
			Amount:   msg.Amount,
			Method:   msg.Method,
			Status:   msg.Status,
			Note:     msg.Note,
		}
		if err := p.mailer.SendWithdrawalNotice(*user.Email, notice); err != nil {
			errs = append(errs, fmt.Errorf("send email: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Run 启动 workers 个消费协程，ctx 结束后等待全部退出
func Run(ctx context.Context, source Source, processor *Processor, workers int) {
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			consume(ctx, workerID, source, processor)
		}(i)
	}
	wg.Wait()
}

func consume(ctx context.Context, workerID int, source Source, processor *Processor) {
	log := logrus.WithField("worker", workerID)

	for {
		if ctx.Err() != nil {
			log.Debug("worker shutting down")
			return
		}

		msg, err := source.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Warn("failed to pop notification")
			continue
		}
		if msg == nil {
			continue
		}

		entry := log.WithFields(logrus.Fields{
			"event":         msg.Event,
			"withdrawal_id": msg.WithdrawalID,
		})
		if err := processor.Process(ctx, msg); err != nil {
			entry.WithError(err).Error("notification failed")
			continue
		}
		entry.Info("notification delivered")
	}
}
