package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shopcopy_v1_202602/internal/config"
	"shopcopy_v1_202602/internal/controller"
	"shopcopy_v1_202602/internal/middleware"
	"shopcopy_v1_202602/internal/model"
	"shopcopy_v1_202602/internal/repository"
	"shopcopy_v1_202602/internal/router"
	"shopcopy_v1_202602/internal/service"
	"shopcopy_v1_202602/internal/task"
	"shopcopy_v1_202602/pkg/database"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	// 2. 初始化数据库
	db := initDatabase(cfg)

	// 3. 初始化依赖
	deps := initDependencies(db, cfg)

	// 4. 启动定时任务
	tasks := initTasks(deps)
	defer tasks.Stop()

	// 5. 初始化路由
	gin.SetMode(cfg.Server.GinMode)
	r := gin.Default()
	router.InitRoutes(r,
		deps.Limiter, cfg.Limiter.RequestLimit,
		deps.Controllers.Enrich,
		deps.Controllers.Credits,
		deps.Controllers.Settings,
	)

	// 6. 启动服务
	startServer(r, cfg.Server.Port)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Limiter     *middleware.SlidingWindowLimiter
	Controllers *Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Shop    repository.ShopRepository
	Credit  repository.CreditRepository
	History repository.HistoryRepository
}

// Services 服务集合
type Services struct {
	Catalog   service.CatalogClient
	Generator service.Generator
	Credit    *service.CreditService
	Enrich    *service.EnrichService
}

// Controllers 控制器集合
type Controllers struct {
	Enrich   *controller.EnrichController
	Credits  *controller.CreditsController
	Settings *controller.SettingsController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	return database.InitDB(
		cfg.Database.DSN(),
		// Shop
		&model.Shop{}, &model.ShopSettings{},
		// Credits
		&model.Credits{},
		// History
		&model.GenerationHistory{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB, cfg *config.Config) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Shop:    repository.NewShopRepository(db),
		Credit:  repository.NewCreditRepository(db),
		History: repository.NewHistoryRepository(db),
	}

	// -------- 外部客户端 --------
	catalogSvc := service.NewShopifyCatalogService(&service.CatalogConfig{
		APIVersion: cfg.Catalog.APIVersion,
		Timeout:    cfg.Catalog.Timeout,
	})

	generator, err := service.NewGenerator(&service.AIConfig{
		Provider:    cfg.AI.Provider,
		APIKey:      cfg.AI.APIKey,
		TextModel:   cfg.AI.TextModel,
		VisionModel: cfg.AI.VisionModel,
	})
	if err != nil {
		log.Fatalf("生成服务初始化失败: %v", err)
	}

	// -------- 业务服务 --------
	creditSvc := service.NewCreditService(repos.Credit, repos.Shop, repos.History)
	enrichSvc := service.NewEnrichService(
		catalogSvc, generator, creditSvc,
		repos.History, repos.Shop,
		cfg.Pipeline.Concurrency,
	)

	services := &Services{
		Catalog:   catalogSvc,
		Generator: generator,
		Credit:    creditSvc,
		Enrich:    enrichSvc,
	}

	// -------- 限流器 --------
	limiter := middleware.NewSlidingWindowLimiter(middleware.LimiterOptions{
		Interval: cfg.Limiter.Interval,
	})

	// -------- Controller 层 --------
	controllers := &Controllers{
		Enrich:   controller.NewEnrichController(enrichSvc),
		Credits:  controller.NewCreditsController(creditSvc),
		Settings: controller.NewSettingsController(repos.Shop),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Limiter:     limiter,
		Controllers: controllers,
	}
}

// ==================== 定时任务 ====================

// Tasks 后台任务集合
type Tasks struct {
	CreditReset    *task.CreditResetTask
	HistoryCleanup *task.HistoryCleanupTask
}

// Stop 停止所有任务
func (t *Tasks) Stop() {
	t.CreditReset.Stop()
	t.HistoryCleanup.Stop()
}

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) *Tasks {
	// 额度周期重置
	creditReset := task.NewCreditResetTask(
		deps.Repos.Credit,
		deps.Repos.Shop,
		deps.Services.Credit,
	)
	creditReset.Start()

	// 孤儿历史记录清理
	historyCleanup := task.NewHistoryCleanupTask(deps.Repos.History)
	historyCleanup.Start()

	log.Println("定时任务已启动")

	return &Tasks{
		CreditReset:    creditReset,
		HistoryCleanup: historyCleanup,
	}
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, port string) {
	if envPort := getEnv("SERVER_PORT", ""); envPort != "" {
		port = envPort
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
