package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"retail_service/internal/controller"
	"retail_service/internal/middleware"
	"retail_service/internal/model"
	"retail_service/internal/repository"
	"retail_service/internal/router"
	"retail_service/internal/service"
	"retail_service/internal/task"
	"retail_service/pkg/config"
	"retail_service/pkg/database"
	"retail_service/pkg/logger"
	"retail_service/pkg/utils"
)

// @title Retail Service API
// @version 1.0
// @description 零售订货后端: 商家价目表导入, 买家购物车与下单
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app := &cli.App{
		Name:  "retail",
		Usage: "零售订货后端",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径, 默认查找 ./config.yaml",
				EnvVars: []string{"RETAIL_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "启动 HTTP 服务与后台任务",
				Action: runServe,
			},
			{
				Name:   "migrate",
				Usage:  "自动建表",
				Action: runMigrate,
			},
			{
				Name:      "import",
				Usage:     "以商家身份导入价目表",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "商家邮箱", Required: true},
					&cli.StringFlag{Name: "file", Usage: "本地 YAML 价目表"},
					&cli.StringFlag{Name: "url", Usage: "价目表地址"},
				},
				Action: runImport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	Config      *config.Config
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Queue       *task.Queue
	Tasks       *task.TaskManager
	Controllers router.Controllers
}

// Repositories 仓库集合
type Repositories struct {
	User         repository.UserRepository
	ConfirmToken repository.ConfirmTokenRepository
	Contact      repository.ContactRepository
	Shop         repository.ShopRepository
	Category     repository.CategoryRepository
	Product      repository.ProductRepository
	ProductInfo  repository.ProductInfoRepository
	Order        repository.OrderRepository
	JobLog       repository.JobLogRepository
	UserUow      *repository.UserUnitOfWork
	OrderUow     *repository.OrderUnitOfWork
	CatalogUow   *repository.CatalogUnitOfWork
}

// Services 服务集合
type Services struct {
	User      *service.UserService
	Contact   *service.ContactService
	Catalog   *service.CatalogService
	Cart      *service.CartService
	Import    *service.ImportService
	Notify    *service.NotificationService
	Thumbnail *service.ThumbnailService
	Storage   service.StorageProvider
}

// ==================== 初始化函数 ====================

// bootstrap 加载配置, 初始化日志与数据库
// 返回的 cleanup 需在退出前调用
func bootstrap(c *cli.Context, migrate bool) (*config.Config, *gorm.DB, func(), error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, nil, err
	}

	syncLogger, err := logger.Init(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, nil, nil, err
	}

	var models []interface{}
	if migrate {
		models = model.AllModels()
	}
	db, err := database.InitDB(cfg.Database.DSN, database.Options{
		LogLevel:        logger.GormLevel(cfg.Database.LogLevel),
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, models...)
	if err != nil {
		syncLogger()
		return nil, nil, nil, err
	}

	return cfg, db, func() {
		database.Close(db)
		syncLogger()
	}, nil
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB) (*Dependencies, error) {
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenTTL:  cfg.JWT.AccessTTL,
		RefreshTokenTTL: cfg.JWT.RefreshTTL,
		Issuer:          cfg.JWT.Issuer,
	})

	// -------- Repo 层 --------
	repos := initRepositories(db)

	// -------- 后台任务队列 --------
	queue := task.NewQueue(task.QueueConfig{
		Workers:     cfg.Queue.Workers,
		Size:        cfg.Queue.Size,
		MaxAttempts: cfg.Queue.MaxAttempts,
		JobTimeout:  cfg.Queue.JobTimeout,
		RetryDelay:  time.Second,
	}, repos.JobLog, zap.L().Named("queue"))

	// -------- 存储 & 外部请求 --------
	storage, err := service.NewStorageProvider(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("存储服务初始化失败: %w", err)
	}
	client := utils.NewHTTPClient(utils.ClientOptions{
		Timeout:   cfg.Importer.FetchTimeout,
		UserAgent: cfg.Importer.UserAgent,
	})

	// -------- 业务服务 --------
	services := &Services{Storage: storage}
	services.User = service.NewUserService(repos.UserUow, queue)
	services.Contact = service.NewContactService(repos.Contact)
	services.Catalog = service.NewCatalogService(repos.Shop, repos.Category, repos.ProductInfo, repos.User)
	services.Cart = service.NewCartService(repos.OrderUow, repos.Order, repos.Contact, queue)
	services.Import = service.NewImportService(repos.CatalogUow, repos.User, client, cfg.Importer.MaxBodyBytes, queue)
	services.Notify = service.NewNotificationService(
		repos.User, repos.ConfirmToken, repos.Order,
		service.NewLogMailer(zap.L().Named("mail")),
	)
	services.Thumbnail = service.NewThumbnailService(repos.User, repos.Product, storage, client, cfg.Thumbnail)

	task.RegisterJobs(queue, services.Notify, services.Thumbnail)
	cleanup := task.NewJobLogCleanupTask(repos.JobLog, cfg.JobLog.CleanupSpec, cfg.JobLog.RetentionDays)

	return &Dependencies{
		Config:      cfg,
		DB:          db,
		Repos:       repos,
		Services:    services,
		Queue:       queue,
		Tasks:       task.NewTaskManager(queue, cleanup),
		Controllers: initControllers(services),
	}, nil
}

// initRepositories 初始化所有仓库
func initRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         repository.NewUserRepository(db),
		ConfirmToken: repository.NewConfirmTokenRepository(db),
		Contact:      repository.NewContactRepository(db),
		Shop:         repository.NewShopRepository(db),
		Category:     repository.NewCategoryRepository(db),
		Product:      repository.NewProductRepository(db),
		ProductInfo:  repository.NewProductInfoRepository(db),
		Order:        repository.NewOrderRepository(db),
		JobLog:       repository.NewJobLogRepository(db),
		UserUow:      repository.NewUserUnitOfWork(db),
		OrderUow:     repository.NewOrderUnitOfWork(db),
		CatalogUow:   repository.NewCatalogUnitOfWork(db),
	}
}

// initControllers 初始化所有控制器
func initControllers(svc *Services) router.Controllers {
	return router.Controllers{
		User:    controller.NewUserController(svc.User, svc.Contact),
		Catalog: controller.NewCatalogController(svc.Catalog),
		Cart:    controller.NewCartController(svc.Cart),
		Partner: controller.NewPartnerController(svc.Import, svc.Catalog),
	}
}

// ==================== 命令 ====================

func runMigrate(c *cli.Context) error {
	_, _, cleanup, err := bootstrap(c, true)
	if err != nil {
		return err
	}
	defer cleanup()
	return nil
}

func runImport(c *cli.Context) error {
	cfg, db, cleanup, err := bootstrap(c, false)
	if err != nil {
		return err
	}
	defer cleanup()

	deps, err := initDependencies(cfg, db)
	if err != nil {
		return err
	}

	src := service.ImportSource{URL: c.String("url")}
	if path := c.String("file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		src.File = f
	}

	// 导入后投递的缩略图任务在退出前执行完
	deps.Queue.Start()
	result, err := deps.Services.Import.ImportForEmail(c.Context, c.String("email"), src)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if stopErr := deps.Queue.Stop(ctx); stopErr != nil {
		zap.L().Warn("[Import] 后台任务未全部完成", zap.Error(stopErr))
	}
	if err != nil {
		return err
	}

	zap.L().Info("[Import] 导入完成",
		zap.Int64("shop_id", result.ShopID),
		zap.String("shop", result.Shop),
		zap.Int("categories", result.Categories),
		zap.Int("goods", result.Goods),
	)
	return nil
}

func runServe(c *cli.Context) error {
	cfg, db, cleanup, err := bootstrap(c, true)
	if err != nil {
		return err
	}
	defer cleanup()

	deps, err := initDependencies(cfg, db)
	if err != nil {
		return err
	}

	if err := deps.Tasks.Start(); err != nil {
		return err
	}

	gin.SetMode(cfg.Server.Mode)
	r := router.SetupRouter(deps.Controllers, router.Options{
		Logger:         zap.L().Named("http"),
		CORS:           cfg.CORS,
		RateLimit:      cfg.RateLimit,
		ImportCooldown: cfg.Importer.Cooldown,
		Status:         deps.Tasks.Status,
	})
	if cfg.Storage.Provider == "local" {
		r.Static(cfg.Storage.PublicURL, cfg.Storage.LocalDir)
	}

	return startServer(r, deps)
}

// ==================== 服务启动 ====================

// startServer 启动服务, 收到退出信号后依次关闭 HTTP 服务与后台任务
func startServer(r *gin.Engine, deps *Dependencies) error {
	port := deps.Config.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("[Server] 服务启动", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case <-quit:
	case serveErr = <-errCh:
		zap.L().Error("[Server] 服务启动失败", zap.Error(serveErr))
	}

	zap.L().Info("[Server] 正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), deps.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("[Server] 服务强制关闭", zap.Error(err))
	}
	if err := deps.Tasks.Stop(ctx); err != nil {
		zap.L().Warn("[Server] 后台任务未全部完成", zap.Error(err))
	}

	zap.L().Info("[Server] 服务已退出")
	return serveErr
}
