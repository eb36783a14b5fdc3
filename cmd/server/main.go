package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fakturly/backend/internal/application/billing"
	identityapp "github.com/fakturly/backend/internal/application/identity"
	invoicingapp "github.com/fakturly/backend/internal/application/invoicing"
	"github.com/fakturly/backend/internal/infrastructure/auth"
	"github.com/fakturly/backend/internal/infrastructure/config"
	"github.com/fakturly/backend/internal/infrastructure/logger"
	"github.com/fakturly/backend/internal/infrastructure/persistence"
	"github.com/fakturly/backend/internal/infrastructure/persistence/businessscope"
	"github.com/fakturly/backend/internal/infrastructure/storage"
	"github.com/fakturly/backend/internal/infrastructure/telemetry"
	"github.com/fakturly/backend/internal/interfaces/http/handler"
	"github.com/fakturly/backend/internal/interfaces/http/middleware"
	"github.com/fakturly/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is stamped at build time via -ldflags
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Fakturly backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Initialize tracing
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Token blacklist falls back to the in-memory implementation when Redis
	// is unreachable; logout then only holds within a single process.
	var blacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = redisBlacklist
		log.Info("Redis token blacklist connected")
	}

	// Object storage for logo uploads
	var objects storage.ObjectStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objects = s3Storage
		log.Info("Object storage initialized", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		objects = storage.NewStubObjectStorage()
		log.Warn("Object storage disabled, uploads will be rejected")
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize repositories
	txRunner := businessscope.NewBusinessDB(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	businessRepo := persistence.NewGormBusinessRepository(db.DB)
	memberRepo := persistence.NewGormTeamMemberRepository(db.DB)
	invitationRepo := persistence.NewGormTeamMemberInvitationRepository(db.DB)
	planRepo := persistence.NewGormSubscriptionPlanRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	movementRepo := persistence.NewGormInventoryTransactionRepository(db.DB)

	// Initialize application services
	contextResolver := identityapp.NewContextResolver(businessRepo, memberRepo, log)
	planLimits := billing.NewPlanLimitService(billing.PlanLimitRepositories{
		Users:       userRepo,
		Plans:       planRepo,
		Businesses:  businessRepo,
		Members:     memberRepo,
		Invitations: invitationRepo,
		Clients:     clientRepo,
		Invoices:    invoiceRepo,
		Expenses:    expenseRepo,
		Products:    productRepo,
	}, cfg.Demo.AccountEmail, log)

	authService := identityapp.NewAuthService(userRepo, memberRepo, invitationRepo, jwtService, blacklist, log)
	businessService := identityapp.NewBusinessService(businessRepo, planLimits, objects, txRunner, log)
	teamService := identityapp.NewTeamService(userRepo, memberRepo, invitationRepo, planLimits, txRunner, log)

	clientService := invoicingapp.NewClientService(clientRepo, planLimits, txRunner, log)
	invoiceService := invoicingapp.NewInvoiceService(invoiceRepo, clientRepo, planLimits, txRunner, log)
	productService := invoicingapp.NewProductService(productRepo, categoryRepo, planLimits, txRunner, log)
	expenseService := invoicingapp.NewExpenseService(expenseRepo, categoryRepo, planLimits, txRunner, log)
	paymentService := invoicingapp.NewPaymentService(paymentRepo, invoiceRepo, log)
	categoryService := invoicingapp.NewCategoryService(categoryRepo, log)
	inventoryService := invoicingapp.NewInventoryService(movementRepo, productRepo, log)

	// Initialize handlers
	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Business:  handler.NewBusinessHandler(businessService),
		Team:      handler.NewTeamHandler(teamService),
		Plan:      handler.NewPlanHandler(planLimits),
		Client:    handler.NewClientHandler(clientService),
		Invoice:   handler.NewInvoiceHandler(invoiceService, paymentService),
		Product:   handler.NewProductHandler(productService, inventoryService),
		Expense:   handler.NewExpenseHandler(expenseService),
		Payment:   handler.NewPaymentHandler(paymentService),
		Category:  handler.NewCategoryHandler(categoryService),
		Inventory: handler.NewInventoryHandler(inventoryService),
		Health:    handler.NewHealthHandler(db, version),
	}

	// Setup gin engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}
	engine.MaxMultipartMemory = cfg.HTTP.MaxBodySize

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	}
	var authRateLimiter *middleware.RateLimiter
	if cfg.HTTP.AuthRateLimitEnabled {
		authRateLimiter = middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
	}

	router.Setup(engine, router.Config{
		Logger:          log,
		JWTService:      jwtService,
		TokenBlacklist:  blacklist,
		ContextResolver: contextResolver,
		CORS:            corsConfig,
		RateLimiter:     rateLimiter,
		AuthRateLimiter: authRateLimiter,
		ServiceName:     cfg.Telemetry.ServiceName,
		TracingEnabled:  tp.IsEnabled(),
	}, handlers)

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}
