package app

import (
	"context"
	"faaqs_backend/internal/config"
	"faaqs_backend/internal/controller"
	"faaqs_backend/internal/repository"
	"faaqs_backend/internal/repository/memstore"
	"faaqs_backend/internal/service"
	"faaqs_backend/internal/util"
	"faaqs_backend/pkg/configwatcher"
	"faaqs_backend/pkg/database"
	"faaqs_backend/pkg/logger"
	"faaqs_backend/pkg/monitoring"
	"faaqs_backend/pkg/security"
	"faaqs_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user      service.UserStore
	quiz      service.QuizStore
	progress  service.ProgressStore
	post      service.PostStore
	programme service.ProgrammeStore
	file      service.FileStore
}

type services struct {
	auth      *service.AuthService
	user      *service.UserService
	quiz      *service.QuizService
	sessions  *service.QuizSessionService
	progress  *service.ProgressService
	community *service.CommunityService
	programme *service.ProgrammeService
	file      *service.FileService
}

type controllers struct {
	auth      *controller.AuthController
	user      *controller.UserController
	programme *controller.ProgrammeController
	quiz      *controller.QuizController
	session   *controller.SessionController
	progress  *controller.ProgressController
	community *controller.CommunityController
	file      *controller.FileController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()
	for _, cb := range callbacks {
		cb(cfg)
	}
}

// initRepositories db 为 nil 时使用内存存储
func (a *App) initRepositories(db *gorm.DB) *repositories {
	if db == nil {
		mem := memstore.Open()
		return &repositories{
			user:      memstore.NewUserRepository(mem),
			quiz:      memstore.NewQuizRepository(mem),
			progress:  memstore.NewProgressRepository(mem),
			post:      memstore.NewPostRepository(mem),
			programme: memstore.NewProgrammeRepository(mem),
			file:      memstore.NewFileRepository(mem),
		}
	}
	return &repositories{
		user:      repository.NewUserRepository(db),
		quiz:      repository.NewQuizRepository(db),
		progress:  repository.NewProgressRepository(db),
		post:      repository.NewPostRepository(db),
		programme: repository.NewProgrammeRepository(db),
		file:      repository.NewFileRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	var tokens service.TokenStore = service.NewMemoryTokenStore()
	if rdb != nil {
		tokens = service.NewRedisTokenStore(rdb)
	}
	mailer := service.NewMailer(&cfg.Mail)

	s.auth = service.NewAuthService(repos.user, tokens, mailer, cfg)
	s.user = service.NewUserService(repos.user)
	s.quiz = service.NewQuizService(repos.quiz)
	s.progress = service.NewProgressService(repos.progress)
	s.sessions = service.NewQuizSessionService(repos.quiz, s.progress, cfg.Quiz)
	s.community = service.NewCommunityService(repos.post, repos.user, cfg.Community.ListLimit)
	s.programme = service.NewProgrammeService(repos.programme, s.quiz)
	s.file = service.NewFileService(repos.file, service.NewBlobStore(&cfg.Storage))

	a.RegisterConfigCallback(func(c *config.Config) {
		s.auth.SetRetryPolicy(c.Auth.ProfileRetry)
		s.community.SetListLimit(c.Community.ListLimit)
		s.sessions.SetTickInterval(c.Quiz.TickInterval)
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		user:      controller.NewUserController(s.user),
		programme: controller.NewProgrammeController(s.programme),
		quiz:      controller.NewQuizController(s.quiz),
		session:   controller.NewSessionController(s.sessions, a.Config.CORS.AllowedOrigins),
		progress:  controller.NewProgressController(s.progress),
		community: controller.NewCommunityController(s.community),
		file:      controller.NewFileController(s.file),
		health:    controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter("global", cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// seed 写入项目目录，并在 -create-admin 时创建默认管理员
func (a *App) seed(ctx context.Context, cfg *config.Config) {
	if cfg.Catalog.SeedFile != "" {
		programmes, err := service.LoadCatalog(cfg.Catalog.SeedFile)
		if err != nil {
			logger.Log.Warn("programme catalog not loaded", zap.String("file", cfg.Catalog.SeedFile), zap.Error(err))
		} else if _, err := a.services.programme.Seed(ctx, programmes); err != nil {
			logger.Log.Error("programme catalog seed failed", zap.Error(err))
		}
	}

	if cfg.CreateAdmin {
		admin, created, err := a.services.user.EnsureAdmin(ctx, cfg.Admin)
		switch {
		case err != nil:
			logger.Log.Error("Failed to create admin", zap.Error(err))
		case created:
			logger.Log.Info("Admin account created", zap.String("email", admin.Email))
		default:
			logger.Log.Info("Admin account already exists", zap.String("email", admin.Email))
		}
	}
}

// New 组装路由与服务，db/rdb 可为 nil
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(app.services, db, rdb)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	var db *gorm.DB
	if cfg.Database.Driver != util.DatabaseMemory {
		var err error
		db, err = database.InitDB(cfg)
		if err != nil {
			logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		}
	} else {
		logger.Log.Warn("Using in-memory store, data is lost on restart")
	}

	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	// 监控初始化
	monitoring.Init()

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tp, err = tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		logger.Log.Info("Tracing enabled", zap.String("collector", cfg.Tracing.CollectorEndpoint))
	}

	app := New(cfg, db, rdb)
	app.tracer = tp
	app.seed(context.Background(), cfg)
	return app
}

func (a *App) Run() {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	a.services.sessions.StartSweeper()

	if a.Config.ConfigFile != "" {
		go func() {
			if err := configwatcher.Watch(ctx, a.Config.ConfigFile, a.applyConfig); err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// 停止倒计时与清理任务，未提交的作答随进程丢弃
	a.services.sessions.Shutdown()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
