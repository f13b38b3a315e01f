package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"购物车下单", OrderStatusBasket, OrderStatusNew, true},
		{"购物车不能直接发货", OrderStatusBasket, OrderStatusSent, false},
		{"新订单确认", OrderStatusNew, OrderStatusConfirmed, true},
		{"发货后送达", OrderStatusSent, OrderStatusDelivered, true},
		{"进行中可取消", OrderStatusAssembled, OrderStatusCanceled, true},
		{"已送达不可取消", OrderStatusDelivered, OrderStatusCanceled, false},
		{"已取消不可恢复", OrderStatusCanceled, OrderStatusNew, false},
		{"不能回退", OrderStatusNew, OrderStatusBasket, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestOrder_TotalSum(t *testing.T) {
	order := Order{
		Items: []OrderItem{
			{Quantity: 2, ProductInfo: &ProductInfo{PriceRRC: decimal.RequireFromString("12.00")}},
			{Quantity: 1, ProductInfo: &ProductInfo{PriceRRC: decimal.RequireFromString("0.50")}},
			{Quantity: 3}, // 报价已删除
		},
	}
	assert.True(t, order.TotalSum().Equal(decimal.RequireFromString("24.50")))

	assert.True(t, (&Order{}).TotalSum().IsZero())
}
