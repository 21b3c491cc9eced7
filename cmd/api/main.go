package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "motoboy/api/swagger" // swagger docs
	"motoboy/internal/config"
	"motoboy/internal/database"
	"motoboy/internal/handler"
	"motoboy/internal/logger"
	"motoboy/internal/middleware"
	"motoboy/internal/repository"
	"motoboy/internal/service"
	"motoboy/internal/storage"
	"motoboy/internal/voucher"
	"motoboy/internal/webhook"
	"motoboy/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Motoboy Back-office API
// @version         1.0
// @description     Fuel advances and parts vouchers for motorcycle couriers: approval workflow, PDF vouchers and chat-bot notifications.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load("configs/.env")

	if err := logger.Init(os.Getenv("LOG_LEVEL")); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.L()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.Database, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db, log); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("database handle unavailable", zap.Error(err))
	}
	defer sqlDB.Close()
	log.Info("connected to PostgreSQL")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	supervisorRepo := repository.NewSupervisorRepository(db)
	motoboyRepo := repository.NewMotoboyRepository(db)
	solicitationRepo := repository.NewSolicitationRepository(db)
	webhookConfigRepo := repository.NewWebhookConfigRepository(db)
	webhookLogRepo := repository.NewWebhookLogRepository(db)
	txManager := repository.NewTransactionManager(db)

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("object storage unavailable", zap.Error(err))
	}
	defer closeStore()

	dispatcher := webhook.NewDispatcher(webhookConfigRepo, webhookLogRepo, webhook.Options{
		DefaultTimeout: cfg.Webhook.DefaultTimeout,
		DefaultRetries: cfg.Webhook.DefaultRetries,
		FallbackURLs:   cfg.Webhook.FallbackURLs,
	}, log.Named("webhook"))

	hub := websocket.NewHub(log.Named("ws"))
	go hub.Run(ctx)

	generator := voucher.NewGenerator()

	// Services
	userService := service.NewUserService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	auditService := service.NewAuditService(auditRepo)
	supervisorService := service.NewSupervisorService(supervisorRepo)
	motoboyService := service.NewMotoboyService(motoboyRepo, supervisorRepo)
	webhookService := service.NewWebhookService(webhookConfigRepo, webhookLogRepo, auditRepo, dispatcher)
	solicitationService := service.NewSolicitationService(service.SolicitationDeps{
		Repo:        solicitationRepo,
		Supervisors: supervisorRepo,
		Motoboys:    motoboyRepo,
		Audit:       auditRepo,
		Tx:          txManager,
		Vouchers:    generator,
		Store:       store,
		Notifier:    dispatcher,
		Events:      hub,
		Logger:      log.Named("solicitations"),
	})

	if cfg.Auth.AdminUsername != "" && cfg.Auth.AdminPassword != "" {
		if err := userService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			log.Error("admin bootstrap failed", zap.Error(err))
		}
	}

	auth := middleware.NewAuth(cfg.Auth.JWTSecret, cfg.Server.Mode == gin.ReleaseMode)
	pdfLimiter := middleware.NewRateLimiter(cfg.RateLimit.PDFPerMinute, time.Minute)
	pdfLimiter.StartCleanup(10*time.Minute, ctx.Done())

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.AccessLog(log.Named("http")))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/ws", func(c *gin.Context) {
		hub.ServeWs(c, auth)
	})
	if cfg.Storage.Driver == "local" {
		router.Static("/files", cfg.Storage.LocalDir)
	}

	api := router.Group("/api")
	handler.NewHealthHandler(sqlDB).RegisterRoutes(api)
	handler.NewUserHandler(userService, auth, cfg.Auth.TokenTTL).RegisterRoutes(api)
	handler.NewAuditHandler(auditService, auth).RegisterRoutes(api)
	handler.NewSupervisorHandler(supervisorService, auth).RegisterRoutes(api)
	handler.NewMotoboyHandler(motoboyService, auth).RegisterRoutes(api)
	handler.NewSolicitationHandler(solicitationService, auth).RegisterRoutes(api)
	handler.NewWebhookHandler(webhookService, auth).RegisterRoutes(api)
	handler.NewPDFHandler(generator, pdfLimiter.Middleware(), log.Named("pdf")).RegisterRoutes(api)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	// Transitions can sit in webhook backoff for several seconds.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.ObjectStore, func(), error) {
	if cfg.Storage.Driver == "gcs" {
		gcs, err := storage.NewGCSStore(ctx, cfg.Storage.Bucket, cfg.Storage.CredentialsFile, cfg.Storage.PublicBaseURL, log.Named("gcs"))
		if err != nil {
			return nil, nil, err
		}
		return gcs, func() { _ = gcs.Close() }, nil
	}

	base := cfg.Storage.PublicBaseURL
	if base == "" {
		base = "http://localhost:" + cfg.Server.Port + "/files"
	}
	local, err := storage.NewLocalStore(cfg.Storage.LocalDir, base)
	if err != nil {
		return nil, nil, err
	}
	return local, func() {}, nil
}
