package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"retail_service/internal/api/dto"
	"retail_service/internal/middleware"
	"retail_service/internal/model"
	"retail_service/internal/repository"
	"retail_service/pkg/utils"
)

// ==================== UserService 用户服务 ====================

// UserService 注册/登录/个人信息
type UserService struct {
	uow       *repository.UserUnitOfWork
	userRepo  repository.UserRepository
	tokenRepo repository.ConfirmTokenRepository
	jobs      JobEnqueuer
}

// NewUserService 创建用户服务
func NewUserService(uow *repository.UserUnitOfWork, jobs JobEnqueuer) *UserService {
	return &UserService{uow: uow, userRepo: uow.Users, tokenRepo: uow.Tokens, jobs: jobs}
}

// ==================== 注册 ====================

// Register 注册新用户, 账户需确认邮箱后才能登录
func (s *UserService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserInfo, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	userType := req.Type
	if userType == "" {
		userType = model.UserTypeBuyer
	}

	user := &model.User{
		Email:     email,
		Password:  string(hashed),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Company:   req.Company,
		Position:  req.Position,
		Type:      userType,
	}

	key, err := utils.GenerateRandomString(64)
	if err != nil {
		return nil, err
	}

	// 用户与确认令牌同时写入, 避免留下无法激活的账户
	err = s.uow.Transaction(ctx, func(uow *repository.UserUnitOfWork) error {
		if err := uow.Users.Create(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailExists
			}
			return err
		}
		return uow.Tokens.Create(ctx, &model.ConfirmEmailToken{UserID: user.ID, Key: key})
	})
	if err != nil {
		return nil, err
	}

	s.jobs.Enqueue(JobSendWelcomeEmail, user.ID)
	zap.L().Info("[UserService] 新用户注册", zap.Int64("user_id", user.ID), zap.String("type", user.Type))

	return toUserInfo(user), nil
}

// ConfirmEmail 校验令牌并激活账户
func (s *UserService) ConfirmEmail(ctx context.Context, req *dto.ConfirmEmailRequest) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidConfirmToken
	}

	token, err := s.tokenRepo.Find(ctx, user.ID, req.Token)
	if err != nil {
		return err
	}
	if token == nil {
		return ErrInvalidConfirmToken
	}

	return s.uow.Transaction(ctx, func(uow *repository.UserUnitOfWork) error {
		if err := uow.Users.UpdateFields(ctx, user.ID, map[string]interface{}{"is_active": true}); err != nil {
			return err
		}
		return uow.Tokens.DeleteByUserID(ctx, user.ID)
	})
}

// ==================== 认证相关 ====================

// Login 用户登录
func (s *UserService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Email, user.Type)
	if err != nil {
		return nil, err
	}

	_ = s.userRepo.UpdateLastLogin(ctx, user.ID)

	cfg := middleware.GetJWTConfig()
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(cfg.AccessTokenTTL),
		User:         toUserInfo(user),
	}, nil
}

// RefreshToken 刷新 Token
func (s *UserService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.RefreshTokenResponse, error) {
	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.Subject != "refresh" {
		return nil, ErrInvalidToken
	}

	// 用户类型以数据库为准
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrUserInactive
	}

	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Email, user.Type)
	if err != nil {
		return nil, err
	}

	cfg := middleware.GetJWTConfig()
	return &dto.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(cfg.AccessTokenTTL),
	}, nil
}

// ==================== 个人信息 ====================

// GetProfile 获取当前用户信息
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return toUserInfo(user), nil
}

// UpdateProfile 修改个人信息与密码
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	fields := map[string]interface{}{}
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}
	if req.Company != nil {
		fields["company"] = *req.Company
	}
	if req.Position != nil {
		fields["position"] = *req.Position
	}
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		fields["password"] = string(hashed)
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
			return nil, err
		}
	}
	return s.GetProfile(ctx, userID)
}

// SetAvatar 设置头像地址, 缩略图由后台任务生成
func (s *UserService) SetAvatar(ctx context.Context, userID int64, avatarURL string) (*dto.UserInfo, error) {
	err := s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{
		"avatar_url":       avatarURL,
		"avatar_thumb_url": "",
	})
	if err != nil {
		return nil, err
	}

	s.jobs.Enqueue(JobGenerateAvatarThumbnail, userID)
	return s.GetProfile(ctx, userID)
}

// ==================== 辅助方法 ====================

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:             user.ID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Company:        user.Company,
		Position:       user.Position,
		Type:           user.Type,
		IsActive:       user.IsActive,
		AvatarURL:      user.AvatarURL,
		AvatarThumbURL: user.AvatarThumbURL,
		LastLoginAt:    user.LastLoginAt,
		CreatedAt:      user.CreatedAt,
	}
}

// ==================== 错误定义 ====================

var (
	ErrInvalidCredentials  = newKindError(ErrUnauthorized, "邮箱或密码错误")
	ErrInvalidToken        = newKindError(ErrUnauthorized, "Token 无效")
	ErrUserInactive        = newKindError(ErrPermission, "账户未激活，请先确认邮箱")
	ErrUserNotFound        = newKindError(ErrNotFound, "用户不存在")
	ErrEmailExists         = newKindError(ErrValidation, "邮箱已被注册")
	ErrInvalidConfirmToken = newKindError(ErrValidation, "邮箱或确认令牌错误")
)
