package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"retail_service/internal/api/dto"
	"retail_service/internal/middleware"
	"retail_service/internal/service"
)

// PartnerController 商家 (店铺) 控制器
type PartnerController struct {
	importService  *service.ImportService
	catalogService *service.CatalogService
}

// NewPartnerController 创建商家控制器
func NewPartnerController(importService *service.ImportService, catalogService *service.CatalogService) *PartnerController {
	return &PartnerController{importService: importService, catalogService: catalogService}
}

// UpdatePrice 导入价目表
// @Summary 上传或拉取 YAML 价目表, 替换店铺全部报价
// @Description 同时提供 file 与 url 时以 file 为准
// @Tags Partner
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param file formData file false "YAML 价目表"
// @Param url formData string false "价目表地址"
// @Success 200 {object} dto.ImportResult
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/update-partner/ [post]
func (ctrl *PartnerController) UpdatePrice(c *gin.Context) {
	var req dto.PartnerUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	src := service.ImportSource{URL: req.URL}
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			respondBindError(c, err)
			return
		}
		defer f.Close()
		src.File = f
	}

	userID := middleware.GetUserID(c)
	result, err := ctrl.importService.Import(c.Request.Context(), userID, src)
	if err != nil {
		zap.L().Warn("[Partner] 价目表导入失败", zap.Int64("user_id", userID), zap.Error(err))
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "导入成功", result)
}

// GetState 查看接单状态
// @Summary 查看当前店铺接单状态
// @Tags Partner
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ShopInfo
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/partner/state [get]
func (ctrl *PartnerController) GetState(c *gin.Context) {
	shop, err := ctrl.catalogService.GetPartnerState(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "success", shop)
}

// SetState 修改接单状态
// @Summary 开启或暂停接单
// @Tags Partner
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PartnerStateRequest true "接单状态"
// @Success 200 {object} dto.ShopInfo
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/partner/state [post]
func (ctrl *PartnerController) SetState(c *gin.Context) {
	var req dto.PartnerStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	shop, err := ctrl.catalogService.SetPartnerState(c.Request.Context(), middleware.GetUserID(c), *req.State)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "success", shop)
}
