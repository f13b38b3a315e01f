package dto

// ContactRequest 新建/修改联系方式, 修改时需带 id
type ContactRequest struct {
	ID        int64  `json:"id"`
	City      string `json:"city" binding:"required,max=50"`
	Street    string `json:"street" binding:"required,max=100"`
	House     string `json:"house" binding:"max=15"`
	Structure string `json:"structure" binding:"max=15"`
	Building  string `json:"building" binding:"max=15"`
	Apartment string `json:"apartment" binding:"max=15"`
	Phone     string `json:"phone" binding:"required,max=20"`
}

// DeleteItemsRequest 按逗号分隔的 ID 列表删除, 如 "1,2,3"
type DeleteItemsRequest struct {
	Items string `json:"items" form:"items"`
}
