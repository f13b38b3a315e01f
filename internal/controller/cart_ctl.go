package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"retail_service/internal/api/dto"
	"retail_service/internal/middleware"
	"retail_service/internal/service"
)

var errInvalidID = errors.New("invalid id")

// ==================== CartController 购物车与订单 ====================

// CartController 购物车控制器
type CartController struct {
	cartService *service.CartService
}

// NewCartController 创建购物车控制器
func NewCartController(cartService *service.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// AddToCart 加入购物车
// @Summary 将报价加入购物车, 每个条目新增一条明细
// @Description 不存在的报价会被跳过并在 skipped 中返回
// @Tags Cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AddToCartRequest true "购物车条目"
// @Success 201 {object} dto.AddToCartResponse
// @Failure 400 {object} map[string]interface{}
// @Router /api/cart/ [post]
func (ctrl *CartController) AddToCart(c *gin.Context) {
	var req dto.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := ctrl.cartService.AddToCart(c.Request.Context(), middleware.GetUserID(c), req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "已加入购物车", resp)
}

// GetCart 查看购物车
// @Summary 查看购物车
// @Tags Cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.OrderInfo
// @Failure 404 {object} map[string]interface{}
// @Router /api/cart/ [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	cart, err := ctrl.cartService.GetCart(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "success", cart)
}

// RemoveFromCart 移除购物车条目
// @Summary 按报价 ID 移除购物车条目
// @Tags Cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RemoveFromCartRequest true "逗号分隔的报价 ID, 如 1,2"
// @Success 204
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/cart/ [delete]
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	var req dto.RemoveFromCartRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if _, err := ctrl.cartService.RemoveFromCart(c.Request.Context(), middleware.GetUserID(c), req.ProductIDs); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ConfirmOrder 确认下单
// @Summary 确认购物车为新订单
// @Tags Order
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ConfirmOrderRequest true "订单 ID 与收货联系方式 ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/confirm-order/ [post]
func (ctrl *CartController) ConfirmOrder(c *gin.Context) {
	var req dto.ConfirmOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := ctrl.cartService.ConfirmOrder(c.Request.Context(), middleware.GetUserID(c), &req); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "订单已确认", gin.H{"Status": true})
}

// ListOrders 订单列表
// @Summary 查看已下单的订单 (不含购物车)
// @Tags Order
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.OrderInfo
// @Router /api/orders/ [get]
func (ctrl *CartController) ListOrders(c *gin.Context) {
	orders, err := ctrl.cartService.ListOrders(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "success", orders)
}
