package service

import (
	"context"

	"retail_service/internal/api/dto"
	"retail_service/internal/model"
	"retail_service/internal/repository"
)

// CatalogService 店铺/分类/商品浏览, 以及商家接单状态
type CatalogService struct {
	shopRepo     repository.ShopRepository
	categoryRepo repository.CategoryRepository
	infoRepo     repository.ProductInfoRepository
	userRepo     repository.UserRepository
}

// NewCatalogService 创建目录服务
func NewCatalogService(
	shopRepo repository.ShopRepository,
	categoryRepo repository.CategoryRepository,
	infoRepo repository.ProductInfoRepository,
	userRepo repository.UserRepository,
) *CatalogService {
	return &CatalogService{
		shopRepo:     shopRepo,
		categoryRepo: categoryRepo,
		infoRepo:     infoRepo,
		userRepo:     userRepo,
	}
}

// ==================== 浏览 ====================

// ListShops 所有接单中的店铺
func (s *CatalogService) ListShops(ctx context.Context) ([]dto.ShopInfo, error) {
	shops, err := s.shopRepo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	list := make([]dto.ShopInfo, 0, len(shops))
	for i := range shops {
		list = append(list, toShopInfo(&shops[i]))
	}
	return list, nil
}

// ListCategories 所有分类
func (s *CatalogService) ListCategories(ctx context.Context) ([]dto.CategoryInfo, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]dto.CategoryInfo, 0, len(categories))
	for _, c := range categories {
		list = append(list, dto.CategoryInfo{ID: c.ID, Name: c.Name})
	}
	return list, nil
}

// ListProducts 分页查询店铺报价
func (s *CatalogService) ListProducts(ctx context.Context, req *dto.ProductListRequest) (*dto.ProductListResponse, error) {
	infos, total, err := s.infoRepo.List(ctx, repository.ProductFilter{
		ShopID:     req.ShopID,
		CategoryID: req.CategoryID,
		Keyword:    req.Keyword,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	list := make([]dto.ProductInfoResponse, 0, len(infos))
	for i := range infos {
		list = append(list, toProductInfoResponse(&infos[i]))
	}
	return &dto.ProductListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     list,
	}, nil
}

// GetProduct 报价详情
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*dto.ProductInfoResponse, error) {
	info, err := s.infoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, notFoundErr("商品 %d 不存在", id)
	}
	resp := toProductInfoResponse(info)
	return &resp, nil
}

// ==================== 商家接单状态 ====================

// GetPartnerState 当前商家的店铺信息
func (s *CatalogService) GetPartnerState(ctx context.Context, userID int64) (*dto.ShopInfo, error) {
	shop, err := s.partnerShop(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.partnerInfo(ctx, shop)
}

// SetPartnerState 开启或暂停接单, 暂停后店铺商品不再出现在列表中
func (s *CatalogService) SetPartnerState(ctx context.Context, userID int64, state bool) (*dto.ShopInfo, error) {
	shop, err := s.partnerShop(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.shopRepo.UpdateFields(ctx, shop.ID, map[string]interface{}{"state": state}); err != nil {
		return nil, err
	}
	shop.State = state
	return s.partnerInfo(ctx, shop)
}

func (s *CatalogService) partnerInfo(ctx context.Context, shop *model.Shop) (*dto.ShopInfo, error) {
	goods, err := s.infoRepo.CountByShop(ctx, shop.ID)
	if err != nil {
		return nil, err
	}
	info := toShopInfo(shop)
	info.Goods = goods
	return &info, nil
}

func (s *CatalogService) partnerShop(ctx context.Context, userID int64) (*model.Shop, error) {
	if err := requireShopUser(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}
	shop, err := s.shopRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, notFoundErr("尚未导入价目表, 店铺不存在")
	}
	return shop, nil
}

// requireShopUser 仅商家账户可操作
func requireShopUser(ctx context.Context, userRepo repository.UserRepository, userID int64) error {
	user, err := userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !user.IsShop() {
		return newKindError(ErrPermission, "仅商家账户可操作")
	}
	return nil
}

// ==================== 转换 ====================

func toShopInfo(shop *model.Shop) dto.ShopInfo {
	return dto.ShopInfo{ID: shop.ID, Name: shop.Name, URL: shop.URL, State: shop.State}
}

func toProductInfoResponse(info *model.ProductInfo) dto.ProductInfoResponse {
	resp := dto.ProductInfoResponse{
		ID:         info.ID,
		Model:      info.Name,
		ExternalID: info.ExternalID,
		Quantity:   info.Quantity,
		Price:      info.Price,
		PriceRRC:   info.PriceRRC,
		Parameters: make(map[string]string, len(info.Parameters)),
	}
	if info.Product != nil {
		resp.Product = dto.ProductBrief{
			ID:            info.Product.ID,
			Name:          info.Product.Name,
			ImageURL:      info.Product.ImageURL,
			ImageThumbURL: info.Product.ImageThumbURL,
		}
		if info.Product.Category != nil {
			resp.Product.Category = info.Product.Category.Name
		}
	}
	if info.Shop != nil {
		resp.Shop = toShopInfo(info.Shop)
	}
	for _, p := range info.Parameters {
		if p.Parameter != nil {
			resp.Parameters[p.Parameter.Name] = p.Value
		}
	}
	return resp
}
