package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"retail_service/internal/model"
)

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// 购物车
	EnsureBasket(ctx context.Context, userID int64) (*model.Order, error)
	GetBasket(ctx context.Context, userID int64) (*model.Order, error)
	AddItems(ctx context.Context, items []model.OrderItem) error
	DeleteItems(ctx context.Context, orderID int64, productInfoIDs []int64) (int64, error)

	// 订单
	ConfirmBasket(ctx context.Context, userID, orderID, contactID int64) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
}

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepo{db: db}
}

// basketConflict 对应部分唯一索引 idx_orders_user_basket
var basketConflict = clause.OnConflict{
	Columns:     []clause.Column{{Name: "user_id"}},
	TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "status = 'basket'"}}},
	DoNothing:   true,
}

// EnsureBasket 获取用户购物车, 不存在则创建
// 并发请求下由部分唯一索引保证每个用户只有一个购物车
func (r *orderRepo) EnsureBasket(ctx context.Context, userID int64) (*model.Order, error) {
	db := r.db.WithContext(ctx)

	basket := model.Order{UserID: userID, Status: model.OrderStatusBasket}
	if err := db.Omit(clause.Associations).Clauses(basketConflict).Create(&basket).Error; err != nil {
		return nil, err
	}

	var existing model.Order
	err := db.Where("user_id = ? AND status = ?", userID, model.OrderStatusBasket).First(&existing).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// GetBasket 获取购物车及明细, 不存在时返回 nil, nil
func (r *orderRepo) GetBasket(ctx context.Context, userID int64) (*model.Order, error) {
	var basket model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Items.ProductInfo.Product.Category").
		Preload("Items.ProductInfo.Shop").
		Where("user_id = ? AND status = ?", userID, model.OrderStatusBasket).
		First(&basket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &basket, err
}

func (r *orderRepo) AddItems(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error
}

// DeleteItems 删除购物车中指定报价的明细, 返回删除条数
func (r *orderRepo) DeleteItems(ctx context.Context, orderID int64, productInfoIDs []int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("order_id = ? AND product_info_id IN ?", orderID, productInfoIDs).
		Delete(&model.OrderItem{})
	return result.RowsAffected, result.Error
}

// ConfirmBasket 将购物车转为新订单
// 条件更新保证同一购物车只能被确认一次, 返回受影响行数
func (r *orderRepo) ConfirmBasket(ctx context.Context, userID, orderID, contactID int64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND user_id = ? AND status = ?", orderID, userID, model.OrderStatusBasket).
		Updates(map[string]interface{}{
			"status":     model.OrderStatusNew,
			"contact_id": contactID,
		})
	return result.RowsAffected, result.Error
}

// GetByID 获取订单及用户/联系方式/明细, 不存在时返回 nil, nil
func (r *orderRepo) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Contact").
		Preload("Items.ProductInfo.Product").
		First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

// ListByUser 获取用户的历史订单 (不含购物车)
func (r *orderRepo) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("Contact").
		Preload("Items.ProductInfo.Product.Category").
		Preload("Items.ProductInfo.Shop").
		Where("user_id = ? AND status <> ?", userID, model.OrderStatusBasket).
		Order("id ASC").
		Find(&orders).Error
	return orders, err
}

// ==================== 工作单元 ====================

// OrderUnitOfWork 购物车工作单元（事务）
type OrderUnitOfWork struct {
	db           *gorm.DB
	Orders       OrderRepository
	ProductInfos ProductInfoRepository
}

// NewOrderUnitOfWork 创建工作单元
func NewOrderUnitOfWork(db *gorm.DB) *OrderUnitOfWork {
	return &OrderUnitOfWork{
		db:           db,
		Orders:       NewOrderRepository(db),
		ProductInfos: NewProductInfoRepository(db),
	}
}

// Transaction 执行事务
func (u *OrderUnitOfWork) Transaction(ctx context.Context, fn func(uow *OrderUnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&OrderUnitOfWork{
			db:           tx,
			Orders:       NewOrderRepository(tx),
			ProductInfos: NewProductInfoRepository(tx),
		})
	})
}
