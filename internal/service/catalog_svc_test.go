package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"retail_service/internal/api/dto"
	"retail_service/internal/model"
	"retail_service/internal/repository"
	"retail_service/internal/testutil"
)

func newTestCatalogService(t *testing.T) (*CatalogService, *ImportService, *model.User) {
	db := testutil.NewDB(t)
	catalog := NewCatalogService(
		repository.NewShopRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewProductInfoRepository(db),
		repository.NewUserRepository(db),
	)
	importer := newTestImportService(db, &testutil.FakeEnqueuer{})
	owner := seedUser(t, db, "shop@test.com", model.UserTypeShop, true)
	return catalog, importer, owner
}

func TestCatalogService_Browse(t *testing.T) {
	catalog, importer, owner := newTestCatalogService(t)
	ctx := context.Background()

	doc := acmePriceList + `  - id: 101
    name: Screwdriver
    model: S2
    category: 1
    price: 3
    price_rrc: 4
    quantity: 7
`
	_, err := importer.Import(ctx, owner.ID, ImportSource{File: strings.NewReader(doc)})
	assert.NoError(t, err)

	shops, err := catalog.ListShops(ctx)
	assert.NoError(t, err)
	assert.Len(t, shops, 1)
	assert.Equal(t, "Acme", shops[0].Name)

	categories, err := catalog.ListCategories(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []dto.CategoryInfo{{ID: 1, Name: "Tools"}}, categories)

	tests := []struct {
		name      string
		req       dto.ProductListRequest
		wantTotal int64
	}{
		{"全部", dto.ProductListRequest{Page: 1, PageSize: 20}, 2},
		{"按关键字", dto.ProductListRequest{Keyword: "Hammer", Page: 1, PageSize: 20}, 1},
		{"按型号", dto.ProductListRequest{Keyword: "S2", Page: 1, PageSize: 20}, 1},
		{"按分类", dto.ProductListRequest{CategoryID: 1, Page: 1, PageSize: 20}, 2},
		{"不存在的店铺", dto.ProductListRequest{ShopID: 999, Page: 1, PageSize: 20}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := catalog.ListProducts(ctx, &tt.req)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantTotal, resp.Total)
			assert.Len(t, resp.List, int(tt.wantTotal))
		})
	}

	page, err := catalog.ListProducts(ctx, &dto.ProductListRequest{Page: 2, PageSize: 1})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.List, 1)
	assert.Equal(t, "S2", page.List[0].Model)

	hammer, err := catalog.ListProducts(ctx, &dto.ProductListRequest{Keyword: "Hammer", Page: 1, PageSize: 20})
	assert.NoError(t, err)
	detail, err := catalog.GetProduct(ctx, hammer.List[0].ID)
	assert.NoError(t, err)
	assert.Equal(t, "Hammer", detail.Product.Name)
	assert.Equal(t, "Tools", detail.Product.Category)
	assert.Equal(t, "Acme", detail.Shop.Name)
	assert.Equal(t, map[string]string{"weight": "1kg"}, detail.Parameters)

	_, err = catalog.GetProduct(ctx, 9999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCatalogService_PartnerState(t *testing.T) {
	catalog, importer, owner := newTestCatalogService(t)
	ctx := context.Background()

	_, err := catalog.GetPartnerState(ctx, owner.ID)
	assert.True(t, errors.Is(err, ErrNotFound), "导入前没有店铺")

	_, err = importer.Import(ctx, owner.ID, ImportSource{File: strings.NewReader(acmePriceList)})
	assert.NoError(t, err)

	state, err := catalog.GetPartnerState(ctx, owner.ID)
	assert.NoError(t, err)
	assert.True(t, state.State)
	assert.Equal(t, int64(1), state.Goods)

	state, err = catalog.SetPartnerState(ctx, owner.ID, false)
	assert.NoError(t, err)
	assert.False(t, state.State)

	// 暂停接单后商品与店铺不再出现在列表中
	resp, err := catalog.ListProducts(ctx, &dto.ProductListRequest{Page: 1, PageSize: 20})
	assert.NoError(t, err)
	assert.Zero(t, resp.Total)
	shops, err := catalog.ListShops(ctx)
	assert.NoError(t, err)
	assert.Empty(t, shops)
}
