package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ==================== 购物车 ====================

// CartItem 加入购物车的条目, product_id 为店铺报价 ID
type CartItem struct {
	ProductID *int64 `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AddToCartRequest 加入购物车请求
type AddToCartRequest struct {
	Items []CartItem `json:"items"`
}

// AddToCartResponse 加入结果, skipped 为不存在而被跳过的报价 ID
type AddToCartResponse struct {
	OrderID int64   `json:"order_id"`
	Added   int     `json:"added"`
	Skipped []int64 `json:"skipped"`
}

// RemoveFromCartRequest 移除购物车条目, 逗号分隔的报价 ID
type RemoveFromCartRequest struct {
	ProductIDs string `json:"product_ids" form:"product_ids"`
}

// ==================== 订单 ====================

// ConfirmOrderRequest 确认下单
type ConfirmOrderRequest struct {
	OrderID   *int64 `json:"order_id"`
	ContactID *int64 `json:"contact_id"`
}

// OrderItemInfo 订单明细
type OrderItemInfo struct {
	ID            int64           `json:"id"`
	ProductInfoID int64           `json:"product_info_id"`
	Quantity      int             `json:"quantity"`
	ProductName   string          `json:"product_name"`
	Model         string          `json:"model"`
	Category      string          `json:"category"`
	ShopID        int64           `json:"shop_id"`
	ShopName      string          `json:"shop_name"`
	PriceRRC      decimal.Decimal `json:"price_rrc"`
	Sum           decimal.Decimal `json:"sum"`
}

// OrderInfo 订单 (含购物车)
type OrderInfo struct {
	ID        int64           `json:"id"`
	Status    string          `json:"status"`
	Dt        time.Time       `json:"dt"`
	Contact   *ContactInfo    `json:"contact,omitempty"`
	Items     []OrderItemInfo `json:"ordered_items"`
	TotalSum  decimal.Decimal `json:"total_sum"`
	ItemCount int             `json:"item_count"`
}

// ContactInfo 订单中的收货信息
type ContactInfo struct {
	ID        int64  `json:"id"`
	City      string `json:"city"`
	Street    string `json:"street"`
	House     string `json:"house"`
	Structure string `json:"structure"`
	Building  string `json:"building"`
	Apartment string `json:"apartment"`
	Phone     string `json:"phone"`
}
