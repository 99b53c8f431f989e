package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/qs3c/ad_reward_server/internal/model"
	"github.com/qs3c/ad_reward_server/internal/model/dto"
	"github.com/qs3c/ad_reward_server/internal/pkg/keylock"
	"github.com/qs3c/ad_reward_server/internal/pkg/metrics"
	"github.com/qs3c/ad_reward_server/internal/pkg/queue"
	"github.com/qs3c/ad_reward_server/internal/repository"
)

var (
	ErrWithdrawalNotFound      = errors.New("提现记录不存在")
	ErrAlreadyProcessed        = errors.New("提现申请已处理")
	ErrInvalidDecision         = errors.New("审核结果只能是 approved 或 rejected")
	ErrInvalidStatusFilter     = errors.New("无效的提现状态")
	ErrInsufficientPoints      = errors.New("积分不足")
	ErrBelowMinimum            = errors.New("低于最低提现积分")
	ErrInvalidAmount           = errors.New("提现金额无效")
	ErrInvalidWithdrawalMethod = errors.New("不支持的提现方式")
	ErrInvalidAccountDetails   = errors.New("账户信息不完整")
	ErrWithdrawalDisabled      = errors.New("提现功能暂未开放")
)

const defaultMinWithdrawalPoints = 10

// NotifyQueue 提现通知队列
type NotifyQueue interface {
	Push(ctx context.Context, msg *queue.NotifyMessage) error
}

type WithdrawalService struct {
	db             *gorm.DB
	withdrawalRepo *repository.WithdrawalRepository
	userRepo       *repository.UserRepository
	settings       *SettingService
	locks          *keylock.KeyLock
	notifier       NotifyQueue
	now            func() time.Time
}

func NewWithdrawalService(
	db *gorm.DB,
	withdrawalRepo *repository.WithdrawalRepository,
	userRepo *repository.UserRepository,
	settings *SettingService,
	locks *keylock.KeyLock,
	notifier NotifyQueue,
) *WithdrawalService {
	return &WithdrawalService{
		db:             db,
		withdrawalRepo: withdrawalRepo,
		userRepo:       userRepo,
		settings:       settings,
		locks:          locks,
		notifier:       notifier,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Submit 提交提现申请，提交时即扣减积分
func (s *WithdrawalService) Submit(ctx context.Context, userID int64, req *dto.SubmitWithdrawalRequest) (*dto.WithdrawalInfo, error) {
	if !s.settings.GetBool(model.SettingWithdrawalEnabled, true) {
		return nil, ErrWithdrawalDisabled
	}

	method := strings.ToLower(strings.TrimSpace(req.Method))
	details, err := validateAccountDetails(method, req.AccountDetails)
	if err != nil {
		return nil, err
	}

	amount := model.PointsToUnits(req.Amount)
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	minimum := model.PointsToUnits(s.settings.GetNumber(model.SettingMinWithdrawalPoints, defaultMinWithdrawalPoints))
	if amount < minimum {
		return nil, ErrBelowMinimum
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	w := &model.Withdrawal{
		OrderNo:        "WD-" + uuid.NewString(),
		UserID:         userID,
		Amount:         amount,
		Method:         method,
		AccountDetails: details,
		Status:         model.WithdrawalPending,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)

		user, err := users.GetByID(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if user.IsSuspended() {
			return ErrUserSuspended
		}

		ok, err := users.DeductPoints(userID, amount)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientPoints
		}

		return s.withdrawalRepo.WithTx(tx).Create(w)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWithdrawal(model.WithdrawalPending)
	logrus.WithFields(logrus.Fields{
		"user_id":  userID,
		"order_no": w.OrderNo,
		"amount":   req.Amount,
		"method":   method,
	}).Info("withdrawal submitted")

	s.notify(ctx, queue.EventWithdrawalSubmitted, w)
	return buildWithdrawalInfo(w), nil
}

// Process 管理员审核，只允许从 pending 转换一次；拒绝时在同一事务中退回积分
func (s *WithdrawalService) Process(ctx context.Context, adminID int64, req *dto.ProcessWithdrawalRequest) (*dto.WithdrawalInfo, error) {
	if req.Status != model.WithdrawalApproved && req.Status != model.WithdrawalRejected {
		return nil, ErrInvalidDecision
	}

	var w *model.Withdrawal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		withdrawals := s.withdrawalRepo.WithTx(tx)

		current, err := withdrawals.GetByID(req.WithdrawalID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWithdrawalNotFound
			}
			return err
		}
		if !current.IsPending() {
			return ErrAlreadyProcessed
		}

		ok, err := withdrawals.MarkProcessed(current.ID, req.Status, adminID, req.Reason, s.now())
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyProcessed
		}

		if req.Status == model.WithdrawalRejected {
			if err := s.userRepo.WithTx(tx).CreditPoints(current.UserID, current.Amount); err != nil {
				return err
			}
		}

		w, err = withdrawals.GetByID(current.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWithdrawal(w.Status)
	if w.Status == model.WithdrawalRejected {
		metrics.AddPoints(metrics.SourceRefund, model.UnitsToPoints(w.Amount))
	}
	logrus.WithFields(logrus.Fields{
		"withdrawal_id": w.ID,
		"status":        w.Status,
		"admin_id":      adminID,
	}).Info("withdrawal processed")

	event := queue.EventWithdrawalApproved
	if w.Status == model.WithdrawalRejected {
		event = queue.EventWithdrawalRejected
	}
	s.notify(ctx, event, w)

	return buildWithdrawalInfo(w), nil
}

// ListMine 用户的提现记录
func (s *WithdrawalService) ListMine(userID int64, page, pageSize int) ([]dto.WithdrawalInfo, int64, error) {
	list, total, err := s.withdrawalRepo.ListByUser(userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return buildWithdrawalList(list), total, nil
}

// AdminList 管理端按状态筛选
func (s *WithdrawalService) AdminList(status string, page, pageSize int) ([]dto.WithdrawalInfo, int64, error) {
	switch status {
	case "", model.WithdrawalPending, model.WithdrawalApproved, model.WithdrawalRejected:
	default:
		return nil, 0, ErrInvalidStatusFilter
	}

	list, total, err := s.withdrawalRepo.ListByStatus(status, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return buildWithdrawalList(list), total, nil
}

func (s *WithdrawalService) notify(ctx context.Context, event string, w *model.Withdrawal) {
	if s.notifier == nil {
		return
	}

	msg := &queue.NotifyMessage{
		Event:        event,
		UserID:       w.UserID,
		WithdrawalID: w.ID,
		OrderNo:      w.OrderNo,
		Amount:       model.UnitsToPoints(w.Amount),
		Method:       w.Method,
		Status:       w.Status,
		Note:         w.AdminNote,
	}
	if err := s.notifier.Push(ctx, msg); err != nil {
		logrus.WithError(err).WithField("withdrawal_id", w.ID).Warn("enqueue withdrawal notification failed")
	}
}

// validateAccountDetails 按提现方式检查必填字段，返回去除空白后的副本
func validateAccountDetails(method string, details map[string]string) (map[string]string, error) {
	required, ok := model.WithdrawalRequiredDetails[method]
	if !ok {
		return nil, ErrInvalidWithdrawalMethod
	}

	cleaned := make(map[string]string, len(details))
	for k, v := range details {
		cleaned[k] = strings.TrimSpace(v)
	}

	for _, field := range required {
		if cleaned[field] == "" {
			return nil, fmt.Errorf("%w: 缺少 %s", ErrInvalidAccountDetails, field)
		}
	}

	if method == model.WithdrawalMethodPaypal {
		if _, err := mail.ParseAddress(cleaned["email"]); err != nil {
			return nil, fmt.Errorf("%w: email 格式错误", ErrInvalidAccountDetails)
		}
	}

	return cleaned, nil
}

func buildWithdrawalList(list []model.Withdrawal) []dto.WithdrawalInfo {
	items := make([]dto.WithdrawalInfo, 0, len(list))
	for i := range list {
		items = append(items, *buildWithdrawalInfo(&list[i]))
	}
	return items
}

func buildWithdrawalInfo(w *model.Withdrawal) *dto.WithdrawalInfo {
	info := &dto.WithdrawalInfo{
		ID:             w.ID,
		OrderNo:        w.OrderNo,
		UserID:         w.UserID,
		Amount:         model.UnitsToPoints(w.Amount),
		Method:         w.Method,
		AccountDetails: w.AccountDetails,
		Status:         w.Status,
		AdminNote:      w.AdminNote,
		ProcessedBy:    w.ProcessedBy,
		CreatedAt:      w.CreatedAt.Format(time.RFC3339),
	}
	if w.ProcessedAt != nil {
		info.ProcessedAt = w.ProcessedAt.Format(time.RFC3339)
	}
	return info
}
