package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ==================== 订单状态常量 ====================

const (
	OrderStatusBasket    = "basket"    // 购物车
	OrderStatusNew       = "new"       // 新订单 (已确认下单)
	OrderStatusConfirmed = "confirmed" // 商家已确认
	OrderStatusAssembled = "assembled" // 已配货
	OrderStatusSent      = "sent"      // 已发货
	OrderStatusDelivered = "delivered" // 已送达
	OrderStatusCanceled  = "canceled"  // 已取消
)

// orderTransitions 允许的状态流转, canceled 可由任意未终结状态进入
var orderTransitions = map[string][]string{
	OrderStatusBasket:    {OrderStatusNew},
	OrderStatusNew:       {OrderStatusConfirmed},
	OrderStatusConfirmed: {OrderStatusAssembled},
	OrderStatusAssembled: {OrderStatusSent},
	OrderStatusSent:      {OrderStatusDelivered},
}

// IsTerminalStatus 终结状态
func IsTerminalStatus(status string) bool {
	return status == OrderStatusDelivered || status == OrderStatusCanceled
}

// CanTransition 判断状态流转是否合法
func CanTransition(from, to string) bool {
	if IsTerminalStatus(from) {
		return false
	}
	if to == OrderStatusCanceled {
		return true
	}
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ==================== Order 订单 ====================

// Order 订单, status=basket 时即为购物车
// 每个用户最多一个购物车, 由部分唯一索引保证
type Order struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"index;not null;uniqueIndex:idx_orders_user_basket,where:status = 'basket'" json:"user_id"`
	Status    string    `gorm:"size:15;index;not null;default:basket" json:"status"`
	ContactID *int64    `gorm:"index" json:"contact_id"`
	CreatedAt time.Time `gorm:"comment:下单时间" json:"dt"`
	UpdatedAt time.Time `json:"updated_at"`

	User    *User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Contact *Contact    `gorm:"foreignKey:ContactID;constraint:OnDelete:SET NULL" json:"contact,omitempty"`
	Items   []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"ordered_items"`
}

func (Order) TableName() string {
	return "orders"
}

// TotalSum 按建议零售价汇总, 商品报价已被删除的明细不计入
func (o *Order) TotalSum() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		if item.ProductInfo == nil {
			continue
		}
		total = total.Add(item.ProductInfo.PriceRRC.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// OrderItem 订单明细
type OrderItem struct {
	ID            int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID       int64 `gorm:"index;not null" json:"order_id"`
	ProductInfoID int64 `gorm:"index;not null" json:"product_info_id"`
	Quantity      int   `gorm:"not null;check:quantity >= 1" json:"quantity"`

	ProductInfo *ProductInfo `gorm:"foreignKey:ProductInfoID;constraint:OnDelete:CASCADE" json:"product_info,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
