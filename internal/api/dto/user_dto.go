package dto

import "time"

// ==================== 注册 ====================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Password  string `json:"password" binding:"required,min=8,max=100"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Company   string `json:"company" binding:"max=40"`
	Position  string `json:"position" binding:"max=40"`
	Type      string `json:"type" binding:"omitempty,oneof=shop buyer"`
}

// ConfirmEmailRequest 邮箱确认请求
type ConfirmEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Token string `json:"token" binding:"required"`
}

// ==================== 登录 ====================

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=100"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *UserInfo `json:"user"`
}

// ==================== Token 刷新 ====================

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshTokenResponse 刷新 Token 响应
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ==================== 用户信息 ====================

// UserInfo 用户信息
type UserInfo struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Company        string     `json:"company"`
	Position       string     `json:"position"`
	Type           string     `json:"type"`
	IsActive       bool       `json:"is_active"`
	AvatarURL      string     `json:"avatar_url"`
	AvatarThumbURL string     `json:"avatar_thumb_url"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// UpdateProfileRequest 修改个人信息, 未传的字段保持不变
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Company   *string `json:"company" binding:"omitempty,max=40"`
	Position  *string `json:"position" binding:"omitempty,max=40"`
	Password  string  `json:"password" binding:"omitempty,min=8,max=100"`
}

// SetAvatarRequest 设置头像
type SetAvatarRequest struct {
	AvatarURL string `json:"avatar_url" binding:"required,url,max=512"`
}
