package dto

// PartnerUpdateRequest 价目表导入请求 (也可通过 multipart 字段 file 上传)
type PartnerUpdateRequest struct {
	URL string `json:"url" form:"url"`
}

// ImportResult 导入结果
type ImportResult struct {
	Status     bool   `json:"Status"`
	ShopID     int64  `json:"shop_id"`
	Shop       string `json:"shop"`
	Categories int    `json:"categories"`
	Goods      int    `json:"goods"`
}

// PartnerStateRequest 修改店铺接单状态
type PartnerStateRequest struct {
	State *bool `json:"state" binding:"required"`
}
