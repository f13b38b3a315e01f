package model

// Shop 商家店铺, 每个商家用户最多一个
type Shop struct {
	BaseModel
	Name  string `gorm:"size:50;not null;comment:店铺名" json:"name"`
	URL   string `gorm:"size:255;comment:店铺地址" json:"url"`
	State bool   `gorm:"not null;default:true;comment:是否接单" json:"state"`

	UserID *int64 `gorm:"uniqueIndex;comment:所属商家用户" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Shop) TableName() string {
	return "shops"
}

// Category 商品分类, ID 由供应商价目表指定
type Category struct {
	ID    int64  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name  string `gorm:"size:40;not null" json:"name"`
	Shops []Shop `gorm:"many2many:category_shops;" json:"-"`
}

func (Category) TableName() string {
	return "categories"
}
