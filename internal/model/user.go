package model

import "time"

// ==================== 用户类型 ====================

const (
	UserTypeShop  = "shop"
	UserTypeBuyer = "buyer"
)

// User 用户 (买家或商家)
type User struct {
	BaseModel
	Email    string `gorm:"size:254;uniqueIndex;not null;comment:邮箱(登录名)" json:"email"`
	Password string `gorm:"size:255;not null;comment:bcrypt 哈希" json:"-"`

	FirstName string `gorm:"size:150;comment:名" json:"first_name"`
	LastName  string `gorm:"size:150;comment:姓" json:"last_name"`
	Company   string `gorm:"size:40;comment:公司" json:"company"`
	Position  string `gorm:"size:40;comment:职位" json:"position"`

	Type     string `gorm:"size:5;not null;default:buyer;comment:用户类型(shop/buyer)" json:"type"`
	IsActive bool   `gorm:"not null;default:false;comment:邮箱确认后激活" json:"is_active"`

	AvatarURL      string `gorm:"size:512;comment:头像" json:"avatar_url"`
	AvatarThumbURL string `gorm:"size:512;comment:头像缩略图" json:"avatar_thumb_url"`

	LastLoginAt *time.Time `json:"last_login_at"`
}

func (User) TableName() string {
	return "users"
}

// IsShop 是否为商家账户
func (u *User) IsShop() bool {
	return u.Type == UserTypeShop
}

// ConfirmEmailToken 邮箱确认令牌
type ConfirmEmailToken struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	Key       string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ConfirmEmailToken) TableName() string {
	return "confirm_email_tokens"
}

// Contact 收货联系方式
type Contact struct {
	BaseModel
	UserID    int64  `gorm:"index;not null" json:"user_id"`
	City      string `gorm:"size:50;not null" json:"city"`
	Street    string `gorm:"size:100;not null" json:"street"`
	House     string `gorm:"size:15" json:"house"`
	Structure string `gorm:"size:15" json:"structure"`
	Building  string `gorm:"size:15" json:"building"`
	Apartment string `gorm:"size:15" json:"apartment"`
	Phone     string `gorm:"size:20;not null" json:"phone"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Contact) TableName() string {
	return "contacts"
}
