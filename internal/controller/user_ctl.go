package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"retail_service/internal/api/dto"
	"retail_service/internal/middleware"
	"retail_service/internal/service"
)

// ==================== UserController 用户控制器 ====================

// UserController 用户控制器
type UserController struct {
	userService    *service.UserService
	contactService *service.ContactService
}

// NewUserController 创建用户控制器
func NewUserController(userService *service.UserService, contactService *service.ContactService) *UserController {
	return &UserController{userService: userService, contactService: contactService}
}

// ==================== 注册与认证 ====================

// Register 用户注册
// @Summary 注册新用户
// @Description 账户创建后处于未激活状态, 确认令牌通过邮件发送
// @Tags User
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "注册信息"
// @Success 201 {object} dto.UserInfo
// @Failure 400 {object} map[string]interface{}
// @Router /api/user/register [post]
func (c *UserController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	user, err := c.userService.Register(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, http.StatusCreated, "注册成功, 请查收确认邮件", user)
}

// ConfirmEmail 确认邮箱
// @Summary 确认邮箱并激活账户
// @Tags User
// @Accept json
// @Produce json
// @Param request body dto.ConfirmEmailRequest true "邮箱与确认令牌"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/user/register/confirm [post]
func (c *UserController) ConfirmEmail(ctx *gin.Context) {
	var req dto.ConfirmEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	if err := c.userService.ConfirmEmail(ctx.Request.Context(), &req); err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, http.StatusOK, "邮箱已确认", nil)
}

// Login 用户登录
// @Summary 用户登录
// @Tags User
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/user/login [post]
func (c *UserController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	resp, err := c.userService.Login(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, http.StatusOK, "登录成功", resp)
}

// RefreshToken 刷新 Token
// @Summary 刷新 Token
// @Tags User
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token"
// @Success 200 {object} dto.RefreshTokenResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/user/refresh [post]
func (c *UserController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	resp, err := c.userService.RefreshToken(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, http.StatusOK, "刷新成功", resp)
}

// ==================== 个人信息 ====================

// GetProfile 获取当前用户信息
// @Summary 获取当前用户信息
// @Tags User
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserInfo
// @Failure 401 {object} map[string]interface{}
// @Router /api/user/details [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	user, err := c.userService.GetProfile(ctx.Request.Context(), middleware.GetUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, http.StatusOK, "success", user)
}

// UpdateProfile 修改个人信息
// @Summary 修改个人信息与密码
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "要修改的字段"
// @Success 200 {object} dto.UserInfo
// @Failure 400 {object} map[string]interface{}
// @Router /api/user/details [post]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	user, err := c.userService.UpdateProfile(ctx.Request.Context(), middleware.GetUserID(ctx), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, http.StatusOK, "修改成功", user)
}

// SetAvatar 设置头像
// @Summary 设置头像地址, 缩略图异步生成
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SetAvatarRequest true "头像地址"
// @Success 200 {object} dto.UserInfo
// @Failure 400 {object} map[string]interface{}
// @Router /api/user/avatar [put]
func (c *UserController) SetAvatar(ctx *gin.Context) {
	var req dto.SetAvatarRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	user, err := c.userService.SetAvatar(ctx.Request.Context(), middleware.GetUserID(ctx), req.AvatarURL)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, http.StatusOK, "头像已更新", user)
}

// ==================== 联系方式 ====================

// ListContacts 联系方式列表
// @Summary 获取当前用户的联系方式
// @Tags Contact
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ContactInfo
// @Router /api/user/contact [get]
func (c *UserController) ListContacts(ctx *gin.Context) {
	list, err := c.contactService.List(ctx.Request.Context(), middleware.GetUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, http.StatusOK, "success", list)
}

// CreateContact 新建联系方式
// @Summary 新建联系方式
// @Tags Contact
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ContactRequest true "联系方式"
// @Success 201 {object} dto.ContactInfo
// @Failure 400 {object} map[string]interface{}
// @Router /api/user/contact [post]
func (c *UserController) CreateContact(ctx *gin.Context) {
	var req dto.ContactRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	contact, err := c.contactService.Create(ctx.Request.Context(), middleware.GetUserID(ctx), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, http.StatusCreated, "创建成功", contact)
}

// UpdateContact 修改联系方式
// @Summary 修改联系方式 (需带 id)
// @Tags Contact
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ContactRequest true "联系方式"
// @Success 200 {object} dto.ContactInfo
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/user/contact [put]
func (c *UserController) UpdateContact(ctx *gin.Context) {
	var req dto.ContactRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	contact, err := c.contactService.Update(ctx.Request.Context(), middleware.GetUserID(ctx), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, http.StatusOK, "修改成功", contact)
}

// DeleteContacts 删除联系方式
// @Summary 删除联系方式
// @Tags Contact
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.DeleteItemsRequest true "逗号分隔的 ID, 如 1,2"
// @Success 204
// @Failure 400 {object} map[string]interface{}
// @Router /api/user/contact [delete]
func (c *UserController) DeleteContacts(ctx *gin.Context) {
	var req dto.DeleteItemsRequest
	if err := ctx.ShouldBind(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	if _, err := c.contactService.Delete(ctx.Request.Context(), middleware.GetUserID(ctx), req.Items); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
