package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"retail_service/internal/model"
)

// ==================== 仓储接口 ====================

// ShopRepository 店铺仓储接口
type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	GetByID(ctx context.Context, id int64) (*model.Shop, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Shop, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	List(ctx context.Context, activeOnly bool) ([]model.Shop, error)
}

// CategoryRepository 分类仓储接口
type CategoryRepository interface {
	Upsert(ctx context.Context, category *model.Category) error
	AttachShop(ctx context.Context, categoryID, shopID int64) error
	List(ctx context.Context) ([]model.Category, error)
}

// ProductRepository 商品仓储接口
type ProductRepository interface {
	GetOrCreate(ctx context.Context, name string, categoryID int64) (*model.Product, error)
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
}

// ProductInfoRepository 店铺报价仓储接口
type ProductInfoRepository interface {
	Create(ctx context.Context, info *model.ProductInfo) error
	CreateParameters(ctx context.Context, params []model.ProductParameter) error
	GetByID(ctx context.Context, id int64) (*model.ProductInfo, error)
	FindExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
	List(ctx context.Context, filter ProductFilter) ([]model.ProductInfo, int64, error)
	CountByShop(ctx context.Context, shopID int64) (int64, error)

	// 导入相关
	DeleteByShop(ctx context.Context, shopID int64) (int64, error)
	FindForeignExternalIDs(ctx context.Context, shopID int64, externalIDs []int64) ([]int64, error)
}

// ParameterRepository 参数名仓储接口
type ParameterRepository interface {
	GetOrCreate(ctx context.Context, name string) (*model.Parameter, error)
}

// ==================== 过滤条件 ====================

// ProductFilter 商品报价过滤条件
type ProductFilter struct {
	ShopID     int64
	CategoryID int64
	Keyword    string
	Page       int
	PageSize   int
}

// ==================== Shop 仓储实现 ====================

type shopRepo struct {
	db *gorm.DB
}

// NewShopRepository 创建店铺仓储
func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepo{db: db}
}

func (r *shopRepo) Create(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *shopRepo) GetByID(ctx context.Context, id int64) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).First(&shop, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &shop, err
}

func (r *shopRepo) GetByUserID(ctx context.Context, userID int64) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &shop, err
}

func (r *shopRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Shop{}).Where("id = ?", id).Updates(fields).Error
}

func (r *shopRepo) List(ctx context.Context, activeOnly bool) ([]model.Shop, error) {
	var shops []model.Shop
	query := r.db.WithContext(ctx).Model(&model.Shop{})
	if activeOnly {
		query = query.Where("state = ?", true)
	}
	err := query.Order("id ASC").Find(&shops).Error
	return shops, err
}

// ==================== Category 仓储实现 ====================

type categoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

// Upsert 按 ID 创建分类, 已存在时更新名称
func (r *categoryRepo) Upsert(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).
		Omit("Shops").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).
		Create(category).Error
}

// AttachShop 关联分类与店铺, 已关联时忽略
func (r *categoryRepo) AttachShop(ctx context.Context, categoryID, shopID int64) error {
	return r.db.WithContext(ctx).
		Table("category_shops").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]interface{}{
			"category_id": categoryID,
			"shop_id":     shopID,
		}).Error
}

func (r *categoryRepo) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error
	return categories, err
}

// ==================== Product 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

// GetOrCreate 按 (名称, 分类) 查找或创建商品
func (r *productRepo) GetOrCreate(ctx context.Context, name string, categoryID int64) (*model.Product, error) {
	product := model.Product{Name: name, CategoryID: categoryID}
	err := r.db.WithContext(ctx).
		Where(&model.Product{Name: name, CategoryID: categoryID}).
		FirstOrCreate(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *productRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(fields).Error
}

// ==================== ProductInfo 仓储实现 ====================

type productInfoRepo struct {
	db *gorm.DB
}

// NewProductInfoRepository 创建报价仓储
func NewProductInfoRepository(db *gorm.DB) ProductInfoRepository {
	return &productInfoRepo{db: db}
}

func (r *productInfoRepo) Create(ctx context.Context, info *model.ProductInfo) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(info).Error
}

func (r *productInfoRepo) CreateParameters(ctx context.Context, params []model.ProductParameter) error {
	if len(params) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&params).Error
}

// GetByID 获取报价及其商品/店铺/参数, 不存在时返回 nil, nil
func (r *productInfoRepo) GetByID(ctx context.Context, id int64) (*model.ProductInfo, error) {
	var info model.ProductInfo
	err := r.db.WithContext(ctx).
		Preload("Product.Category").
		Preload("Shop").
		Preload("Parameters.Parameter").
		First(&info, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &info, err
}

// FindExistingIDs 返回 ids 中实际存在的报价 ID
func (r *productInfoRepo) FindExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	var existing []int64
	if len(ids) == 0 {
		return existing, nil
	}
	err := r.db.WithContext(ctx).Model(&model.ProductInfo{}).
		Where("id IN ?", ids).
		Pluck("id", &existing).Error
	return existing, err
}

func (r *productInfoRepo) List(ctx context.Context, filter ProductFilter) ([]model.ProductInfo, int64, error) {
	var infos []model.ProductInfo
	var total int64

	query := r.db.WithContext(ctx).Model(&model.ProductInfo{}).
		Joins("JOIN products ON products.id = product_infos.product_id").
		Joins("JOIN shops ON shops.id = product_infos.shop_id").
		Where("shops.state = ?", true)

	if filter.ShopID > 0 {
		query = query.Where("product_infos.shop_id = ?", filter.ShopID)
	}
	if filter.CategoryID > 0 {
		query = query.Where("products.category_id = ?", filter.CategoryID)
	}
	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		query = query.Where("products.name LIKE ? OR product_infos.name LIKE ?", kw, kw)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.
		Select("product_infos.*").
		Preload("Product.Category").
		Preload("Shop").
		Preload("Parameters.Parameter").
		Order("product_infos.id ASC").
		Limit(filter.PageSize).Offset(offset).
		Find(&infos).Error
	if err != nil {
		return nil, 0, err
	}

	return infos, total, nil
}

func (r *productInfoRepo) CountByShop(ctx context.Context, shopID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ProductInfo{}).Where("shop_id = ?", shopID).Count(&count).Error
	return count, err
}

// DeleteByShop 删除店铺全部报价, 连同其参数值与引用它们的订单明细
func (r *productInfoRepo) DeleteByShop(ctx context.Context, shopID int64) (int64, error) {
	db := r.db.WithContext(ctx)
	ids := db.Model(&model.ProductInfo{}).Select("id").Where("shop_id = ?", shopID)

	if err := db.Where("product_info_id IN (?)", ids).Delete(&model.ProductParameter{}).Error; err != nil {
		return 0, err
	}
	if err := db.Where("product_info_id IN (?)", ids).Delete(&model.OrderItem{}).Error; err != nil {
		return 0, err
	}

	result := db.Where("shop_id = ?", shopID).Delete(&model.ProductInfo{})
	return result.RowsAffected, result.Error
}

// FindForeignExternalIDs 返回已被其他店铺占用的供应商商品 ID
func (r *productInfoRepo) FindForeignExternalIDs(ctx context.Context, shopID int64, externalIDs []int64) ([]int64, error) {
	var taken []int64
	if len(externalIDs) == 0 {
		return taken, nil
	}
	err := r.db.WithContext(ctx).Model(&model.ProductInfo{}).
		Where("external_id IN ? AND shop_id <> ?", externalIDs, shopID).
		Order("external_id ASC").
		Pluck("external_id", &taken).Error
	return taken, err
}

// ==================== Parameter 仓储实现 ====================

type parameterRepo struct {
	db *gorm.DB
}

// NewParameterRepository 创建参数名仓储
func NewParameterRepository(db *gorm.DB) ParameterRepository {
	return &parameterRepo{db: db}
}

func (r *parameterRepo) GetOrCreate(ctx context.Context, name string) (*model.Parameter, error) {
	param := model.Parameter{Name: name}
	err := r.db.WithContext(ctx).Where(&model.Parameter{Name: name}).FirstOrCreate(&param).Error
	if err != nil {
		return nil, err
	}
	return &param, nil
}

// ==================== 工作单元 ====================

// CatalogUnitOfWork 目录工作单元（事务）
type CatalogUnitOfWork struct {
	db           *gorm.DB
	Shops        ShopRepository
	Categories   CategoryRepository
	Products     ProductRepository
	ProductInfos ProductInfoRepository
	Parameters   ParameterRepository
}

// NewCatalogUnitOfWork 创建工作单元
func NewCatalogUnitOfWork(db *gorm.DB) *CatalogUnitOfWork {
	return newCatalogUnitOfWork(db)
}

func newCatalogUnitOfWork(db *gorm.DB) *CatalogUnitOfWork {
	return &CatalogUnitOfWork{
		db:           db,
		Shops:        NewShopRepository(db),
		Categories:   NewCategoryRepository(db),
		Products:     NewProductRepository(db),
		ProductInfos: NewProductInfoRepository(db),
		Parameters:   NewParameterRepository(db),
	}
}

// Transaction 执行事务, fn 返回错误时整体回滚
func (u *CatalogUnitOfWork) Transaction(ctx context.Context, fn func(uow *CatalogUnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newCatalogUnitOfWork(tx))
	})
}
