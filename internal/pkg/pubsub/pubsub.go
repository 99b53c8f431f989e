package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelRewardEvents = "reward_events"
)

// 事件类型
const (
	TypeAdReward         = "ad_reward"
	TypeTaskCompleted    = "task_completed"
	TypeWithdrawalUpdate = "withdrawal_update"
)

// Event 推送给前端的实时事件
type Event struct {
	Type         string  `json:"type"`
	UserID       int64   `json:"userId"`
	Points       float64 `json:"points"`
	PointsEarned float64 `json:"pointsEarned,omitempty"`
	BonusPoints  float64 `json:"bonusPoints,omitempty"`
	WatchedAds   int     `json:"watchedAds,omitempty"`
	DailyLimit   int     `json:"dailyLimit,omitempty"`
	TaskIDs      []int64 `json:"taskIds,omitempty"`
	WithdrawalID int64   `json:"withdrawalId,omitempty"`
	OrderNo      string  `json:"orderNo,omitempty"`
	Status       string  `json:"status,omitempty"`
	Message      string  `json:"message,omitempty"`
}

// 事件对应的默认提示
var TypeMessages = map[string]string{
	TypeAdReward:         "广告奖励已到账",
	TypeTaskCompleted:    "任务已完成",
	TypeWithdrawalUpdate: "提现状态已更新",
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish 发布事件
func (p *Publisher) Publish(ctx context.Context, evt *Event) error {
	if evt.Message == "" {
		evt.Message = TypeMessages[evt.Type]
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.client.Publish(ctx, ChannelRewardEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅事件，直到 ctx 结束
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*Event)) error {
	ps := s.client.Subscribe(ctx, ChannelRewardEvents)
	defer ps.Close()

	// 确认订阅建立后再开始消费
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := ps.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				continue // 忽略解析错误
			}

			handler(&evt)
		}
	}
}
