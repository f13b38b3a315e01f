package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"retail_service/internal/api/dto"
	"retail_service/internal/model"
	"retail_service/internal/repository"
)

// ImportSource 价目表来源, File 优先于 URL
type ImportSource struct {
	File io.Reader
	URL  string
}

// ImportService 供应商价目表导入
type ImportService struct {
	uow          *repository.CatalogUnitOfWork
	userRepo     repository.UserRepository
	client       *resty.Client
	maxBodyBytes int64
	jobs         JobEnqueuer
	validate     *validator.Validate
}

// NewImportService 创建导入服务
func NewImportService(
	uow *repository.CatalogUnitOfWork,
	userRepo repository.UserRepository,
	client *resty.Client,
	maxBodyBytes int64,
	jobs JobEnqueuer,
) *ImportService {
	return &ImportService{
		uow:          uow,
		userRepo:     userRepo,
		client:       client,
		maxBodyBytes: maxBodyBytes,
		jobs:         jobs,
		validate:     validator.New(),
	}
}

// ==================== 入口 ====================

// Import 以商家身份导入价目表, 整体在一个事务内完成
func (s *ImportService) Import(ctx context.Context, userID int64, src ImportSource) (*dto.ImportResult, error) {
	if err := requireShopUser(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}

	data, err := s.load(ctx, src)
	if err != nil {
		return nil, err
	}

	list, err := ParsePriceList(data)
	if err != nil {
		return nil, err
	}

	return s.Apply(ctx, userID, list)
}

// ImportForEmail 命令行导入入口, 按邮箱定位商家
func (s *ImportService) ImportForEmail(ctx context.Context, email string, src ImportSource) (*dto.ImportResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.Import(ctx, user.ID, src)
}

// ==================== 读取 ====================

func (s *ImportService) load(ctx context.Context, src ImportSource) ([]byte, error) {
	if src.File != nil {
		return s.readFile(src.File)
	}
	if src.URL != "" {
		return s.fetch(ctx, src.URL)
	}
	return nil, validationErr("需要上传价目表文件 file 或提供地址 url")
}

func (s *ImportService) readFile(r io.Reader) ([]byte, error) {
	if s.maxBodyBytes > 0 {
		r = io.LimitReader(r, s.maxBodyBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, validationErr("读取上传文件失败: %v", err)
	}
	if s.maxBodyBytes > 0 && int64(len(data)) > s.maxBodyBytes {
		return nil, validationErr("价目表超过 %d 字节", s.maxBodyBytes)
	}
	return data, nil
}

// fetch 拉取远程价目表, 网络错误与非 2xx 响应均返回 ErrFetch
func (s *ImportService) fetch(ctx context.Context, url string) ([]byte, error) {
	if err := s.validate.Var(url, "required,url"); err != nil {
		return nil, validationErr("价目表地址不合法: %s", url)
	}

	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, newKindError(ErrFetch, "拉取价目表失败: %v", err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, newKindError(ErrFetch, "拉取价目表失败, 状态码 %d", resp.StatusCode())
	}

	body := resp.Body()
	if s.maxBodyBytes > 0 && int64(len(body)) > s.maxBodyBytes {
		return nil, newKindError(ErrFetch, "价目表超过 %d 字节", s.maxBodyBytes)
	}
	return body, nil
}

// ==================== 写入 ====================

// Apply 将价目表写入商家店铺
// 店铺原有报价全部删除后按文档重建, 任一步失败整体回滚
func (s *ImportService) Apply(ctx context.Context, userID int64, list *PriceList) (*dto.ImportResult, error) {
	result := &dto.ImportResult{
		Shop:       list.Shop,
		Categories: len(list.Categories),
		Goods:      len(list.Goods),
	}
	var thumbs []int64

	err := s.uow.Transaction(ctx, func(uow *repository.CatalogUnitOfWork) error {
		shop, err := s.upsertShop(ctx, uow, userID, list.Shop)
		if err != nil {
			return err
		}
		result.ShopID = shop.ID

		for _, c := range list.Categories {
			if err := uow.Categories.Upsert(ctx, &model.Category{ID: c.ID, Name: c.Name}); err != nil {
				return err
			}
			if err := uow.Categories.AttachShop(ctx, c.ID, shop.ID); err != nil {
				return err
			}
		}

		taken, err := uow.ProductInfos.FindForeignExternalIDs(ctx, shop.ID, list.ExternalIDs())
		if err != nil {
			return err
		}
		if len(taken) > 0 {
			return validationErr("商品 id %v 已属于其他店铺", taken)
		}

		removed, err := uow.ProductInfos.DeleteByShop(ctx, shop.ID)
		if err != nil {
			return err
		}

		for _, good := range list.Goods {
			productID, needThumb, err := s.createListing(ctx, uow, shop.ID, good)
			if err != nil {
				return err
			}
			if needThumb {
				thumbs = append(thumbs, productID)
			}
		}

		zap.L().Info("[ImportService] 价目表已导入",
			zap.Int64("user_id", userID),
			zap.Int64("shop_id", shop.ID),
			zap.Int64("removed", removed),
			zap.Int("goods", len(list.Goods)),
		)
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validationErr("价目表与现有数据冲突: %v", err)
		}
		return nil, err
	}

	for _, productID := range thumbs {
		s.jobs.Enqueue(JobGenerateProductThumbnail, productID)
	}

	result.Status = true
	return result, nil
}

// upsertShop 商家已有店铺则按文档改名, 否则新建
func (s *ImportService) upsertShop(ctx context.Context, uow *repository.CatalogUnitOfWork, userID int64, name string) (*model.Shop, error) {
	shop, err := uow.Shops.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		shop = &model.Shop{Name: name, UserID: &userID, State: true}
		if err := uow.Shops.Create(ctx, shop); err != nil {
			return nil, err
		}
		return shop, nil
	}

	if shop.Name != name {
		if err := uow.Shops.UpdateFields(ctx, shop.ID, map[string]interface{}{"name": name}); err != nil {
			return nil, err
		}
		shop.Name = name
	}
	return shop, nil
}

// createListing 创建一条报价及其参数, 返回商品 ID 以及是否需要生成缩略图
func (s *ImportService) createListing(ctx context.Context, uow *repository.CatalogUnitOfWork, shopID int64, good PriceListGood) (int64, bool, error) {
	product, err := uow.Products.GetOrCreate(ctx, good.Name, good.Category)
	if err != nil {
		return 0, false, fmt.Errorf("商品 %d: %w", good.ID, err)
	}

	needThumb := false
	if good.Image != "" && good.Image != product.ImageURL {
		err := uow.Products.UpdateFields(ctx, product.ID, map[string]interface{}{
			"image_url":       good.Image,
			"image_thumb_url": "",
		})
		if err != nil {
			return 0, false, err
		}
		needThumb = true
	}

	info := &model.ProductInfo{
		ProductID:  product.ID,
		ShopID:     shopID,
		Name:       good.Model,
		ExternalID: good.ID,
		Quantity:   good.Quantity,
		Price:      good.Price,
		PriceRRC:   good.PriceRRC,
	}
	if err := uow.ProductInfos.Create(ctx, info); err != nil {
		return 0, false, fmt.Errorf("商品 %d: %w", good.ID, err)
	}

	params := make([]model.ProductParameter, 0, len(good.Parameters))
	for name, value := range good.Parameters {
		param, err := uow.Parameters.GetOrCreate(ctx, name)
		if err != nil {
			return 0, false, err
		}
		params = append(params, model.ProductParameter{
			ProductInfoID: info.ID,
			ParameterID:   param.ID,
			Value:         value,
		})
	}
	if err := uow.ProductInfos.CreateParameters(ctx, params); err != nil {
		return 0, false, err
	}

	return product.ID, needThumb, nil
}
