package router

import (
	"time"

	"tallypos/internal/config"
	"tallypos/internal/handler"
	"tallypos/internal/infra"
	"tallypos/internal/middleware"
	"tallypos/internal/repository"
	"tallypos/internal/service"
	"tallypos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, gateway *infra.GatewayClient) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	terminalRepo := repository.NewTerminalRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	stockSvc := service.NewStockService(productRepo, movementRepo)
	productSvc := service.NewProductService(productRepo, stockSvc)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// A nil gateway leaves electronic tenders locally approved.
	var authorizer service.PaymentGateway
	if gateway != nil {
		authorizer = gateway
	} else {
		authorizer = infra.OfflineAuthorizer{}
	}
	saleSvc := service.NewSaleService(saleRepo, productRepo, terminalRepo, customerRepo, stockSvc, authorizer, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	salesH := handler.NewSalesHandler(saleSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, gateway))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Sales — any authenticated register role can sell and look up
		v1.POST("/sales", middleware.RequireRole(middleware.RoleCashier, middleware.RoleSupervisor, middleware.RoleAdmin), salesH.CreateSale)
		v1.GET("/sales/:id", middleware.RequireRole(middleware.RoleCashier, middleware.RoleSupervisor, middleware.RoleAdmin), salesH.GetSale)
		v1.GET("/sales/number/:number", middleware.RequireRole(middleware.RoleCashier, middleware.RoleSupervisor, middleware.RoleAdmin), salesH.GetSaleByNumber)
		// Void requires elevated role
		v1.POST("/sales/:id/void", middleware.RequireRole(middleware.RoleSupervisor, middleware.RoleAdmin), salesH.VoidSale)

		// Products — reads for everyone at the register
		v1.GET("/products/:id", middleware.RequireRole(middleware.RoleCashier, middleware.RoleSupervisor, middleware.RoleAdmin), productsH.GetProduct)
		// Stock adjustment — supervisor or admin, always through the ledger
		v1.PATCH("/products/:id/stock", middleware.RequireRole(middleware.RoleSupervisor, middleware.RoleAdmin), productsH.AdjustStock)
		// Catalog writes — admin only
		prods := v1.Group("/products", middleware.RequireRole(middleware.RoleAdmin))
		{
			prods.POST("", productsH.CreateProduct)
			prods.PUT("/:id", productsH.UpdateProduct)
			prods.DELETE("/:id", productsH.DeactivateProduct)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
