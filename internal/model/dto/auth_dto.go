package dto

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=32"`
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	UserID int64 `json:"userId"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// UserInfo 用户信息（返回给前端）
type UserInfo struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email,omitempty"`
	AvatarURL    string  `json:"avatarUrl"`
	Bio          string  `json:"bio"`
	Role         string  `json:"role"`
	Status       string  `json:"status"`
	Points       float64 `json:"points"`
	EarnedPoints float64 `json:"earnedPoints"`
	WatchedAds   int     `json:"watchedAds"`
	DailyLimit   int     `json:"dailyLimit"`
	CreatedAt    string  `json:"createdAt,omitempty"`
}

// UpdateProfileRequest 更新用户信息请求
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty" binding:"omitempty,min=3,max=50"`
	Bio      *string `json:"bio,omitempty" binding:"omitempty,max=500"`
}
