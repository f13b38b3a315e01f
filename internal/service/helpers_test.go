package service

import (
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"retail_service/internal/model"
	"retail_service/internal/repository"
	"retail_service/internal/testutil"
	"retail_service/pkg/utils"
)

// ==================== 测试辅助 ====================

const testPassword = "password123"

func seedUser(t *testing.T, db *gorm.DB, email, userType string, active bool) *model.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("密码哈希失败: %v", err)
	}
	user := &model.User{Email: email, Password: string(hashed), Type: userType, IsActive: active}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	return user
}

func seedShop(t *testing.T, db *gorm.DB, owner *model.User, name string) *model.Shop {
	t.Helper()
	shop := &model.Shop{Name: name, State: true, UserID: &owner.ID}
	if err := db.Create(shop).Error; err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}
	return shop
}

func seedListing(t *testing.T, db *gorm.DB, shop *model.Shop, externalID int64, name, priceRRC string) *model.ProductInfo {
	t.Helper()
	cat := model.Category{ID: 224, Name: "Смартфоны"}
	db.Where(model.Category{ID: cat.ID}).FirstOrCreate(&cat)

	product := model.Product{Name: name, CategoryID: cat.ID}
	db.Where(model.Product{Name: name, CategoryID: cat.ID}).FirstOrCreate(&product)

	info := &model.ProductInfo{
		ProductID:  product.ID,
		ShopID:     shop.ID,
		Name:       name + "-model",
		ExternalID: externalID,
		Quantity:   10,
		Price:      decimal.RequireFromString(priceRRC),
		PriceRRC:   decimal.RequireFromString(priceRRC),
	}
	if err := db.Omit("Product", "Shop", "Parameters").Create(info).Error; err != nil {
		t.Fatalf("创建报价失败: %v", err)
	}
	return info
}

func seedContact(t *testing.T, db *gorm.DB, owner *model.User) *model.Contact {
	t.Helper()
	contact := &model.Contact{UserID: owner.ID, City: "Москва", Street: "Тверская", House: "1", Phone: "+79990000000"}
	if err := db.Create(contact).Error; err != nil {
		t.Fatalf("创建联系方式失败: %v", err)
	}
	return contact
}

func int64Ptr(v int64) *int64 { return &v }

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

// ==================== 服务装配 ====================

func newTestCartService(db *gorm.DB, jobs JobEnqueuer) *CartService {
	return NewCartService(
		repository.NewOrderUnitOfWork(db),
		repository.NewOrderRepository(db),
		repository.NewContactRepository(db),
		jobs,
	)
}

func newTestImportService(db *gorm.DB, jobs JobEnqueuer) *ImportService {
	return NewImportService(
		repository.NewCatalogUnitOfWork(db),
		repository.NewUserRepository(db),
		utils.NewHTTPClient(utils.ClientOptions{}),
		1<<20,
		jobs,
	)
}

func newTestUserService(db *gorm.DB, jobs JobEnqueuer) *UserService {
	return NewUserService(repository.NewUserUnitOfWork(db), jobs)
}

var _ JobEnqueuer = (*testutil.FakeEnqueuer)(nil)
