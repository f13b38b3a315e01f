package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"retail_service/internal/controller"
	"retail_service/internal/middleware"
	"retail_service/internal/model"
	"retail_service/pkg/config"

	_ "retail_service/docs"
)

// Controllers 路由依赖的控制器集合
type Controllers struct {
	User    *controller.UserController
	Catalog *controller.CatalogController
	Cart    *controller.CartController
	Partner *controller.PartnerController
}

// Options 路由中间件配置
type Options struct {
	Logger         *zap.Logger
	CORS           config.CORSConfig
	RateLimit      config.RateLimitConfig
	ImportCooldown time.Duration
	// 健康检查附带的后台任务状态, 可为 nil
	Status func() map[string]interface{}
}

// SetupRouter 创建 gin 引擎并注册全部路由
func SetupRouter(ctls Controllers, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.L()
	}

	r := gin.New()
	r.Use(middleware.ZapRecovery(opts.Logger), middleware.ZapLogger(opts.Logger))
	r.Use(cors.New(corsConfig(opts.CORS)))

	InitRoutes(r, ctls, opts)
	return r
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization")
	if len(cfg.AllowOrigins) == 0 || (len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowOrigins
	}
	return c
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctls Controllers, opts Options) {
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", func(c *gin.Context) {
		resp := gin.H{"status": "ok"}
		if opts.Status != nil {
			resp["tasks"] = opts.Status()
		}
		c.JSON(http.StatusOK, resp)
	})

	authLimiter := middleware.NewKeyedLimiter(opts.RateLimit.RPS, opts.RateLimit.Burst)

	api := r.Group("/api")
	{
		// user 用户与鉴权
		user := api.Group("/user")
		{
			user.POST("/register", middleware.RateLimit(authLimiter), ctls.User.Register)
			user.POST("/register/confirm", ctls.User.ConfirmEmail)
			user.POST("/login", middleware.RateLimit(authLimiter), ctls.User.Login)
			user.POST("/refresh", ctls.User.RefreshToken)

			authed := user.Group("", middleware.JWTAuth())
			{
				authed.GET("/details", ctls.User.GetProfile)
				authed.POST("/details", ctls.User.UpdateProfile)
				authed.PUT("/avatar", ctls.User.SetAvatar)

				authed.GET("/contact", ctls.User.ListContacts)
				authed.POST("/contact", ctls.User.CreateContact)
				authed.PUT("/contact", ctls.User.UpdateContact)
				authed.DELETE("/contact", ctls.User.DeleteContacts)
			}
		}

		// 目录 (匿名)
		api.GET("/shops/", ctls.Catalog.ListShops)
		api.GET("/categories/", ctls.Catalog.ListCategories)
		api.GET("/products/", ctls.Catalog.ListProducts)
		api.GET("/products/:id", ctls.Catalog.GetProduct)

		// 购物车与订单
		buyer := api.Group("", middleware.JWTAuth())
		{
			buyer.POST("/cart/", ctls.Cart.AddToCart)
			buyer.GET("/cart/", ctls.Cart.GetCart)
			buyer.DELETE("/cart/", ctls.Cart.RemoveFromCart)
			buyer.POST("/confirm-order/", ctls.Cart.ConfirmOrder)
			buyer.GET("/orders/", ctls.Cart.ListOrders)
		}

		// 商家
		partner := api.Group("", middleware.JWTAuth(), middleware.RequireUserType(model.UserTypeShop))
		{
			update := []gin.HandlerFunc{}
			if opts.ImportCooldown > 0 {
				update = append(update, middleware.UserCooldown(&middleware.Cooldown{}, "update-partner", opts.ImportCooldown))
			}
			update = append(update, ctls.Partner.UpdatePrice)
			partner.POST("/update-partner/", update...)

			partner.GET("/partner/state", ctls.Partner.GetState)
			partner.POST("/partner/state", ctls.Partner.SetState)
		}
	}
}
