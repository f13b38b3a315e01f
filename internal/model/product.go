package model

import "github.com/shopspring/decimal"

// Product 商品 (跨店铺共享), 名称在分类内唯一
type Product struct {
	BaseModel
	Name          string `gorm:"size:80;not null;uniqueIndex:idx_product_name_category" json:"name"`
	CategoryID    int64  `gorm:"not null;uniqueIndex:idx_product_name_category" json:"category_id"`
	ImageURL      string `gorm:"size:512;comment:商品图片" json:"image_url"`
	ImageThumbURL string `gorm:"size:512;comment:商品图片缩略图" json:"image_thumb_url"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// ProductInfo 店铺报价 (listing), 每次导入整体替换
type ProductInfo struct {
	BaseModel
	ProductID  int64           `gorm:"index;not null" json:"product_id"`
	ShopID     int64           `gorm:"index;not null" json:"shop_id"`
	Name       string          `gorm:"size:80;comment:型号" json:"name"`
	ExternalID int64           `gorm:"uniqueIndex;not null;comment:供应商商品ID" json:"external_id"`
	Quantity   int             `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	PriceRRC   decimal.Decimal `gorm:"type:decimal(10,2);not null;comment:建议零售价" json:"price_rrc"`

	Product    *Product           `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Shop       *Shop              `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE" json:"shop,omitempty"`
	Parameters []ProductParameter `gorm:"foreignKey:ProductInfoID;constraint:OnDelete:CASCADE" json:"parameters,omitempty"`
}

func (ProductInfo) TableName() string {
	return "product_infos"
}

// Parameter 参数名 (如 "颜色")
type Parameter struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:40;uniqueIndex;not null" json:"name"`
}

func (Parameter) TableName() string {
	return "parameters"
}

// ProductParameter 报价的参数值
type ProductParameter struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductInfoID int64  `gorm:"index;not null" json:"product_info_id"`
	ParameterID   int64  `gorm:"index;not null" json:"parameter_id"`
	Value         string `gorm:"size:100;not null" json:"value"`

	Parameter *Parameter `gorm:"foreignKey:ParameterID;constraint:OnDelete:CASCADE" json:"parameter,omitempty"`
}

func (ProductParameter) TableName() string {
	return "product_parameters"
}
