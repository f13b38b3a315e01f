package model

import (
	"time"
)

// BaseModel 公共字段
// 零售业务的数据全部物理删除 (导入会整体替换商品报价), 因此不带软删除字段
type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AllModels 需要自动建表的模型 (顺序即建表顺序)
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&ConfirmEmailToken{},
		&Contact{},
		&Shop{},
		&Category{},
		&Product{},
		&ProductInfo{},
		&Parameter{},
		&ProductParameter{},
		&Order{},
		&OrderItem{},
		&JobLog{},
	}
}
