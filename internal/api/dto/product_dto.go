package dto

import "github.com/shopspring/decimal"

// ProductListRequest 商品列表请求
type ProductListRequest struct {
	ShopID     int64  `form:"shop_id"`
	CategoryID int64  `form:"category_id"`
	Keyword    string `form:"keyword"`
	Page       int    `form:"page,default=1" binding:"min=1"`
	PageSize   int    `form:"page_size,default=20" binding:"min=1,max=100"`
}

// ProductInfoResponse 店铺报价
type ProductInfoResponse struct {
	ID         int64             `json:"id"`
	Model      string            `json:"model"`
	ExternalID int64             `json:"external_id"`
	Quantity   int               `json:"quantity"`
	Price      decimal.Decimal   `json:"price"`
	PriceRRC   decimal.Decimal   `json:"price_rrc"`
	Product    ProductBrief      `json:"product"`
	Shop       ShopInfo          `json:"shop"`
	Parameters map[string]string `json:"parameters"`
}

// ProductBrief 商品摘要
type ProductBrief struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	ImageURL      string `json:"image_url,omitempty"`
	ImageThumbURL string `json:"image_thumb_url,omitempty"`
}

// ProductListResponse 商品列表响应
type ProductListResponse struct {
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
	List     []ProductInfoResponse `json:"list"`
}

// ShopInfo 店铺信息
type ShopInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	URL   string `json:"url,omitempty"`
	State bool   `json:"state"`
	// 仅商家查看自己店铺时返回
	Goods int64 `json:"goods,omitempty"`
}

// CategoryInfo 分类信息
type CategoryInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
