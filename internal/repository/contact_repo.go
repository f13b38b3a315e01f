package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"retail_service/internal/model"
)

// ContactRepository 联系方式仓库接口, 所有查询都限定在所属用户范围内
type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
	GetByID(ctx context.Context, userID, id int64) (*model.Contact, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Contact, error)
	Update(ctx context.Context, contact *model.Contact) error
	DeleteByIDs(ctx context.Context, userID int64, ids []int64) (int64, error)
}

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository 创建联系方式仓库
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, contact *model.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

// GetByID 不存在或不属于该用户时返回 nil, nil
func (r *contactRepository) GetByID(ctx context.Context, userID, id int64) (*model.Contact, error) {
	var contact model.Contact
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &contact, err
}

func (r *contactRepository) ListByUser(ctx context.Context, userID int64) ([]model.Contact, error) {
	var contacts []model.Contact
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&contacts).Error
	return contacts, err
}

func (r *contactRepository) Update(ctx context.Context, contact *model.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

// DeleteByIDs 返回实际删除的条数
func (r *contactRepository) DeleteByIDs(ctx context.Context, userID int64, ids []int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&model.Contact{})
	return result.RowsAffected, result.Error
}
