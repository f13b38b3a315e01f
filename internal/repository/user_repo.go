package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"retail_service/internal/model"
)

// ==================== UserRepository 用户仓库 ====================

// UserRepository 用户仓库接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	UpdateLastLogin(ctx context.Context, id int64) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID 根据 ID 获取用户, 不存在时返回 nil, nil
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

// GetByEmail 根据邮箱获取用户, 不存在时返回 nil, nil
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

// ExistsByEmail 邮箱是否已注册
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// UpdateFields 更新指定字段
func (r *userRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

// UpdateLastLogin 更新最后登录时间
func (r *userRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("last_login_at", time.Now()).Error
}

// ==================== ConfirmTokenRepository 邮箱确认令牌 ====================

// ConfirmTokenRepository 邮箱确认令牌仓库接口
type ConfirmTokenRepository interface {
	Create(ctx context.Context, token *model.ConfirmEmailToken) error
	GetByUserID(ctx context.Context, userID int64) (*model.ConfirmEmailToken, error)
	Find(ctx context.Context, userID int64, key string) (*model.ConfirmEmailToken, error)
	DeleteByUserID(ctx context.Context, userID int64) error
}

type confirmTokenRepository struct {
	db *gorm.DB
}

// NewConfirmTokenRepository 创建令牌仓库
func NewConfirmTokenRepository(db *gorm.DB) ConfirmTokenRepository {
	return &confirmTokenRepository{db: db}
}

func (r *confirmTokenRepository) Create(ctx context.Context, token *model.ConfirmEmailToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// GetByUserID 获取用户最新的令牌, 不存在时返回 nil, nil
func (r *confirmTokenRepository) GetByUserID(ctx context.Context, userID int64) (*model.ConfirmEmailToken, error) {
	var token model.ConfirmEmailToken
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &token, err
}

// Find 按用户和令牌值查找, 不存在时返回 nil, nil
func (r *confirmTokenRepository) Find(ctx context.Context, userID int64, key string) (*model.ConfirmEmailToken, error) {
	var token model.ConfirmEmailToken
	err := r.db.WithContext(ctx).Where(&model.ConfirmEmailToken{UserID: userID, Key: key}).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &token, err
}

func (r *confirmTokenRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.ConfirmEmailToken{}).Error
}

// ==================== UserUnitOfWork 注册工作单元 ====================

// UserUnitOfWork 用户与确认令牌的工作单元（事务）
type UserUnitOfWork struct {
	db     *gorm.DB
	Users  UserRepository
	Tokens ConfirmTokenRepository
}

// NewUserUnitOfWork 创建工作单元
func NewUserUnitOfWork(db *gorm.DB) *UserUnitOfWork {
	return &UserUnitOfWork{
		db:     db,
		Users:  NewUserRepository(db),
		Tokens: NewConfirmTokenRepository(db),
	}
}

// Transaction 执行事务
func (u *UserUnitOfWork) Transaction(ctx context.Context, fn func(uow *UserUnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UserUnitOfWork{
			db:     tx,
			Users:  NewUserRepository(tx),
			Tokens: NewConfirmTokenRepository(tx),
		})
	})
}
