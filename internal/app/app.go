package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"papershare_backend/internal/config"
	"papershare_backend/internal/controller"
	"papershare_backend/internal/repository"
	"papershare_backend/internal/service"
	"papershare_backend/internal/util"
	"papershare_backend/pkg/cache"
	"papershare_backend/pkg/configwatcher"
	"papershare_backend/pkg/database"
	"papershare_backend/pkg/logger"
	"papershare_backend/pkg/monitoring"
	"papershare_backend/pkg/security"
	"papershare_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	taxonomy   *repository.TaxonomyRepository
	question   *repository.QuestionRepository
	submission *repository.SubmissionRepository
	vote       *repository.VoteRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	converter  *service.ConverterService
	question   *service.QuestionService
	paperCache *service.PaperCacheService
	submission *service.SubmissionService
	vote       *service.VoteService
	paper      *service.PaperService
	admin      *service.AdminService
}

type controllers struct {
	auth       *controller.AuthController
	paper      *controller.PaperController
	submission *controller.SubmissionController
	vote       *controller.VoteController
	admin      *controller.AdminController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		taxonomy:   repository.NewTaxonomyRepository(db),
		question:   repository.NewQuestionRepository(db),
		submission: repository.NewSubmissionRepository(db),
		vote:       repository.NewVoteRepository(db),
	}
}

// initCacheStore 按配置选择缓存后端。Redis不可用时降级为进程内缓存，
// 服务照常启动，只是多实例之间不再共享失效。
func (a *App) initCacheStore(cfg *config.Config) cache.Store {
	if cfg.Cache.Type == util.CacheRedis {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err == nil {
			a.Redis = rdb
			return cache.NewRedisStore(rdb)
		}
		logger.Log.Warn("Redis unavailable, falling back to in-process cache", zap.Error(err))
	}
	return cache.NewMemoryStore()
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.converter = service.NewConverterService(cfg)
	s.question = service.NewQuestionService(repos.question)
	s.paperCache = service.NewPaperCacheService(a.initCacheStore(cfg), cfg)
	s.submission = service.NewSubmissionService(
		repos.submission,
		repos.taxonomy,
		repos.vote,
		s.question,
		s.storage,
		s.converter,
		s.paperCache,
		cfg,
	)
	s.vote = service.NewVoteService(repos.vote, repos.submission, s.paperCache)
	s.paper = service.NewPaperService(repos.question, repos.taxonomy, repos.vote, repos.submission, s.paperCache)
	s.admin = service.NewAdminService(repos.question, repos.vote, s.question, s.storage, s.paperCache)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		paper:      controller.NewPaperController(s.paper, s.submission),
		submission: controller.NewSubmissionController(s.submission, s.auth),
		vote:       controller.NewVoteController(s.vote),
		admin:      controller.NewAdminController(s.admin, s.submission),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) watchConfig() {
	go configwatcher.WatchConfig("configs/config.yaml", a.Config, func(newCfg interface{}) {
		cfg, ok := newCfg.(*config.Config)
		if !ok {
			return
		}
		logger.Log.Info("config reloaded")
		for _, callback := range a.configCallbacks {
			callback(cfg)
		}
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}

	if cfg.MigrateOnly {
		return app
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg)
	controllers := app.initControllers(services, db)

	app.RegisterConfigCallback(services.converter.ApplyConfig)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("paper-share", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.watchConfig()

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
