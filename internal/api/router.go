package api

import (
	"context"

	"noticeboard/config"
	"noticeboard/internal/api/admin"
	"noticeboard/internal/api/apis"
	"noticeboard/internal/api/handler"
	"noticeboard/internal/middleware"
	"noticeboard/internal/repository"
	"noticeboard/internal/scheduler"
	"noticeboard/internal/service"
	"noticeboard/pkg/async"
	"noticeboard/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// SetupRouter 设置API路由，返回的函数用于停止后台调度
func SetupRouter(cfg *config.Config, logger *logger.Logger, db *sqlx.DB, redisClient *redis.Client, worker *async.Worker, observer *service.Observer) (*gin.Engine, func()) {
	// 创建Gin引擎
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 使用中间件
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// 初始化存储库
	noticeRepo := repository.NewNoticeRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	viewerRepo := repository.NewViewerStateRepository(redisClient)

	// 初始化服务
	categoryService := service.NewCategoryService(categoryRepo, noticeRepo, observer, logger)
	tracker := service.NewDismissalTracker(viewerRepo, logger)
	readMarkers := service.NewReadMarkers(viewerRepo, logger)
	noticeService := service.NewNoticeService(noticeRepo, categoryService, tracker, readMarkers, observer, worker, redisClient, cfg.Notice.CacheTTL, logger)

	// 分类表为空时写入默认分类，失败时列表仍回退到默认分类
	if err := categoryService.EnsureDefaults(context.Background()); err != nil {
		logger.Error("初始化默认分类失败", "error", err)
	}

	// 初始化生命周期调度器，间隔为0时不启动
	stop := func() {}
	if cfg.Notice.SweepInterval > 0 {
		lifecycleScheduler := scheduler.NewLifecycleScheduler(noticeService, cfg.Notice.SweepInterval, logger)
		lifecycleScheduler.Start()
		stop = lifecycleScheduler.Stop
	}

	// 初始化处理器
	noticeHandler := handler.NewNoticeHandler(noticeService, categoryService, logger)
	changeFeedHandler := handler.NewChangeFeedHandler(observer, logger)
	bannerCarouselHandler := handler.NewBannerCarouselHandler(noticeService, tracker, observer, logger)

	// 初始化管理员处理器
	noticeAdminHandler := admin.NewNoticeAdminHandler(noticeService, logger)
	categoryAdminHandler := admin.NewCategoryAdminHandler(categoryService, logger)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API版本v1
	v1 := router.Group("/api/v1")

	// 访客路由需要访客身份
	viewerRouter := v1.Group("")
	viewerRouter.Use(middleware.Viewer(logger))
	apis.RegisterPublicRoutes(viewerRouter, noticeHandler, changeFeedHandler, bannerCarouselHandler)

	// 注册管理员API路由
	adminRouter := v1.Group("/admin")
	adminRouter.Use(middleware.AdminAuth(cfg.Admin.TokenHash, logger))
	admin.RegisterAdminRoutes(adminRouter, noticeAdminHandler, categoryAdminHandler)

	return router, stop
}
