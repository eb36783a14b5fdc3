// Package router assembles the gin engine: the global middleware stack,
// the public auth endpoints, and the authenticated and business-scoped
// route groups.
package router

import (
	identityapp "github.com/fakturly/backend/internal/application/identity"
	"github.com/fakturly/backend/internal/infrastructure/auth"
	"github.com/fakturly/backend/internal/infrastructure/logger"
	"github.com/fakturly/backend/internal/interfaces/http/handler"
	"github.com/fakturly/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// Handlers bundles every route registrar of the API
type Handlers struct {
	Auth      *handler.AuthHandler
	Business  *handler.BusinessHandler
	Team      *handler.TeamHandler
	Plan      *handler.PlanHandler
	Client    *handler.ClientHandler
	Invoice   *handler.InvoiceHandler
	Product   *handler.ProductHandler
	Expense   *handler.ExpenseHandler
	Payment   *handler.PaymentHandler
	Category  *handler.CategoryHandler
	Inventory *handler.InventoryHandler
	Health    *handler.HealthHandler
}

// Config holds everything the router needs beyond the handlers themselves
type Config struct {
	Logger          *zap.Logger
	JWTService      *auth.JWTService
	TokenBlacklist  auth.TokenBlacklist
	ContextResolver *identityapp.ContextResolver
	CORS            middleware.CORSConfig
	RateLimiter     *middleware.RateLimiter
	AuthRateLimiter *middleware.RateLimiter
	ServiceName     string
	TracingEnabled  bool
}

// Setup registers the middleware stack and all routes on the engine.
// Route layering:
//
//	public  - no authentication (register, login, refresh, health)
//	private - valid access token required
//	scoped  - additionally requires a resolved X-Business-ID
func Setup(engine *gin.Engine, cfg Config, h Handlers) {
	middleware.SetupValidator()

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(cfg.Logger))
	engine.Use(logger.GinMiddleware(cfg.Logger))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	if cfg.TracingEnabled {
		engine.Use(otelgin.Middleware(cfg.ServiceName))
	}
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	engine.GET("/health", h.Health.Check)

	api := engine.Group("/api/v1")

	// Credential endpoints get a tighter limit to slow down brute forcing
	public := api.Group("")
	if cfg.AuthRateLimiter != nil {
		public.Use(middleware.RateLimit(cfg.AuthRateLimiter))
	}

	private := api.Group("", middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		JWTService:     cfg.JWTService,
		TokenBlacklist: cfg.TokenBlacklist,
		Logger:         cfg.Logger,
	}))

	scoped := private.Group("", middleware.BusinessContext(cfg.ContextResolver))

	h.Auth.RegisterRoutes(public, private)
	h.Business.RegisterRoutes(private, scoped)
	h.Team.RegisterRoutes(scoped)
	h.Plan.RegisterRoutes(scoped)
	h.Client.RegisterRoutes(scoped)
	h.Invoice.RegisterRoutes(scoped)
	h.Product.RegisterRoutes(scoped)
	h.Expense.RegisterRoutes(scoped)
	h.Payment.RegisterRoutes(scoped)
	h.Category.RegisterRoutes(scoped)
	h.Inventory.RegisterRoutes(scoped)
}
