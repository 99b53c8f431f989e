package dto

// SubmitWithdrawalRequest 提交提现请求
type SubmitWithdrawalRequest struct {
	Amount         float64           `json:"amount" binding:"required,gt=0"`
	Method         string            `json:"method" binding:"required"`
	AccountDetails map[string]string `json:"accountDetails" binding:"required"`
}

// ProcessWithdrawalRequest 管理员审核提现请求
type ProcessWithdrawalRequest struct {
	WithdrawalID int64  `json:"withdrawalId" binding:"required"`
	Status       string `json:"status" binding:"required"`
	Reason       string `json:"reason" binding:"max=500"`
}

// WithdrawalInfo 提现记录
type WithdrawalInfo struct {
	ID             int64             `json:"id"`
	OrderNo        string            `json:"orderNo"`
	UserID         int64             `json:"userId"`
	Amount         float64           `json:"amount"`
	Method         string            `json:"method"`
	AccountDetails map[string]string `json:"accountDetails"`
	Status         string            `json:"status"`
	AdminNote      string            `json:"adminNote,omitempty"`
	ProcessedBy    *int64            `json:"processedBy,omitempty"`
	ProcessedAt    string            `json:"processedAt,omitempty"`
	CreatedAt      string            `json:"createdAt"`
}
