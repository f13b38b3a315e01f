package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"retail_service/internal/api/dto"
	"retail_service/internal/service"
)

// CatalogController 商品目录控制器 (匿名可访问)
type CatalogController struct {
	catalogService *service.CatalogService
}

// NewCatalogController 创建目录控制器
func NewCatalogController(catalogService *service.CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

// ListShops 店铺列表
// @Summary 获取接单中的店铺
// @Tags Catalog
// @Produce json
// @Success 200 {array} dto.ShopInfo
// @Router /api/shops/ [get]
func (ctrl *CatalogController) ListShops(c *gin.Context) {
	shops, err := ctrl.catalogService.ListShops(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "success", shops)
}

// ListCategories 分类列表
// @Summary 获取商品分类
// @Tags Catalog
// @Produce json
// @Success 200 {array} dto.CategoryInfo
// @Router /api/categories/ [get]
func (ctrl *CatalogController) ListCategories(c *gin.Context) {
	categories, err := ctrl.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "success", categories)
}

// ListProducts 商品列表
// @Summary 分页查询店铺报价
// @Tags Catalog
// @Produce json
// @Param shop_id query int false "店铺 ID"
// @Param category_id query int false "分类 ID"
// @Param keyword query string false "名称或型号关键字"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ProductListResponse
// @Failure 400 {object} map[string]interface{}
// @Router /api/products/ [get]
func (ctrl *CatalogController) ListProducts(c *gin.Context) {
	var req dto.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := ctrl.catalogService.ListProducts(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "success", resp)
}

// GetProduct 报价详情
// @Summary 获取单个店铺报价
// @Tags Catalog
// @Produce json
// @Param id path int true "报价 ID"
// @Success 200 {object} dto.ProductInfoResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/products/{id} [get]
func (ctrl *CatalogController) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondBindError(c, errInvalidID)
		return
	}

	info, err := ctrl.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "success", info)
}
