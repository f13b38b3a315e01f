package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"retail_service/internal/model"
	"retail_service/internal/testutil"
)

func TestCategoryRepo_UpsertAndAttach(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()
	owner := seedUser(t, db, "shop@test.com", model.UserTypeShop)
	shop := seedShop(t, db, owner, "Связной")

	assert.NoError(t, repo.Upsert(ctx, &model.Category{ID: 224, Name: "Смартфоны"}))
	assert.NoError(t, repo.Upsert(ctx, &model.Category{ID: 224, Name: "Телефоны"}))

	assert.NoError(t, repo.AttachShop(ctx, 224, shop.ID))
	assert.NoError(t, repo.AttachShop(ctx, 224, shop.ID))

	list, err := repo.List(ctx)
	assert.NoError(t, err)
	if assert.Len(t, list, 1) {
		assert.Equal(t, "Телефоны", list[0].Name)
	}

	var links int64
	db.Table("category_shops").Count(&links)
	assert.Equal(t, int64(1), links)
}

func TestProductRepo_GetOrCreate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()
	db.Create(&model.Category{ID: 1, Name: "A"})
	db.Create(&model.Category{ID: 2, Name: "B"})

	p1, err := repo.GetOrCreate(ctx, "Phone", 1)
	assert.NoError(t, err)
	p2, err := repo.GetOrCreate(ctx, "Phone", 1)
	assert.NoError(t, err)
	p3, err := repo.GetOrCreate(ctx, "Phone", 2)
	assert.NoError(t, err)

	assert.Equal(t, p1.ID, p2.ID)
	assert.NotEqual(t, p1.ID, p3.ID)
}

func TestProductInfoRepo_DeleteByShop(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductInfoRepository(db)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	ownerA := seedUser(t, db, "a@test.com", model.UserTypeShop)
	ownerB := seedUser(t, db, "b@test.com", model.UserTypeShop)
	buyer := seedUser(t, db, "buyer@test.com", model.UserTypeBuyer)
	shopA := seedShop(t, db, ownerA, "A")
	shopB := seedShop(t, db, ownerB, "B")
	a1 := seedListing(t, db, shopA, 1, "1.00")
	b1 := seedListing(t, db, shopB, 2, "2.00")

	param, _ := NewParameterRepository(db).GetOrCreate(ctx, "Цвет")
	assert.NoError(t, repo.CreateParameters(ctx, []model.ProductParameter{
		{ProductInfoID: a1.ID, ParameterID: param.ID, Value: "черный"},
		{ProductInfoID: b1.ID, ParameterID: param.ID, Value: "белый"},
	}))

	basket, _ := orders.EnsureBasket(ctx, buyer.ID)
	assert.NoError(t, orders.AddItems(ctx, []model.OrderItem{
		{OrderID: basket.ID, ProductInfoID: a1.ID, Quantity: 1},
		{OrderID: basket.ID, ProductInfoID: b1.ID, Quantity: 1},
	}))

	deleted, err := repo.DeleteByShop(ctx, shopA.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var params, items int64
	db.Model(&model.ProductParameter{}).Count(&params)
	db.Model(&model.OrderItem{}).Count(&items)
	assert.Equal(t, int64(1), params)
	assert.Equal(t, int64(1), items)

	left, _ := repo.CountByShop(ctx, shopB.ID)
	assert.Equal(t, int64(1), left)
}

func TestProductInfoRepo_ExternalIDs(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductInfoRepository(db)
	ctx := context.Background()

	ownerA := seedUser(t, db, "a@test.com", model.UserTypeShop)
	ownerB := seedUser(t, db, "b@test.com", model.UserTypeShop)
	shopA := seedShop(t, db, ownerA, "A")
	shopB := seedShop(t, db, ownerB, "B")
	a := seedListing(t, db, shopA, 100, "1.00")
	seedListing(t, db, shopB, 200, "1.00")

	taken, err := repo.FindForeignExternalIDs(ctx, shopA.ID, []int64{100, 200, 300})
	assert.NoError(t, err)
	assert.Equal(t, []int64{200}, taken)

	// 唯一索引冲突被转换为 ErrDuplicatedKey
	err = repo.Create(ctx, &model.ProductInfo{ProductID: a.ProductID, ShopID: shopA.ID, ExternalID: 200, Quantity: 1})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
}

func TestProductInfoRepo_ListAndExisting(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductInfoRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "a@test.com", model.UserTypeShop)
	shop := seedShop(t, db, owner, "A")
	l1 := seedListing(t, db, shop, 1, "1.00")
	seedListing(t, db, shop, 2, "3.00")

	list, total, err := repo.List(ctx, ProductFilter{ShopID: shop.ID, Keyword: "Pho"})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	if assert.Len(t, list, 2) {
		assert.Equal(t, "Phone", list[0].Product.Name)
		assert.Equal(t, "A", list[0].Shop.Name)
	}

	list, total, err = repo.List(ctx, ProductFilter{CategoryID: 9999})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, list)

	existing, err := repo.FindExistingIDs(ctx, []int64{l1.ID, 12345})
	assert.NoError(t, err)
	assert.Equal(t, []int64{l1.ID}, existing)

	// 店铺停止接单后不再展示
	assert.NoError(t, NewShopRepository(db).UpdateFields(ctx, shop.ID, map[string]interface{}{"state": false}))
	_, total, _ = repo.List(ctx, ProductFilter{})
	assert.Equal(t, int64(0), total)
}
