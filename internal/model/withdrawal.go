package model

import (
	"time"
)

const (
	WithdrawalPending  = "pending"
	WithdrawalApproved = "approved"
	WithdrawalRejected = "rejected"
)

// 支持的提现方式
const (
	WithdrawalMethodPaypal = "paypal"
	WithdrawalMethodBank   = "bank"
	WithdrawalMethodCrypto = "crypto"
	WithdrawalMethodMobile = "mobile"
)

// WithdrawalRequiredDetails 各提现方式必须提供的账户字段
var WithdrawalRequiredDetails = map[string][]string{
	WithdrawalMethodPaypal: {"email"},
	WithdrawalMethodBank:   {"account_name", "account_number", "bank_name"},
	WithdrawalMethodCrypto: {"address", "network"},
	WithdrawalMethodMobile: {"phone"},
}

type Withdrawal struct {
	ID             int64             `gorm:"primaryKey" json:"id"`
	OrderNo        string            `gorm:"size:64;uniqueIndex;not null" json:"orderNo"`
	UserID         int64             `gorm:"not null;index" json:"userId"`
	Amount         int64             `gorm:"not null" json:"-"`
	Method         string            `gorm:"size:20;not null" json:"method"`
	AccountDetails map[string]string `gorm:"type:text;serializer:json" json:"accountDetails"`
	Status         string            `gorm:"size:20;not null;default:pending;index" json:"status"`
	AdminNote      string            `gorm:"size:500" json:"adminNote,omitempty"`
	ProcessedBy    *int64            `json:"processedBy,omitempty"`
	ProcessedAt    *time.Time        `json:"processedAt,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}

func (w *Withdrawal) IsPending() bool {
	return w.Status == WithdrawalPending
}
