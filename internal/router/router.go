package router

import (
	"time"

	"github.com/agastya71/mysl-pos-project-sub006/internal/config"
	"github.com/agastya71/mysl-pos-project-sub006/internal/handler"
	"github.com/agastya71/mysl-pos-project-sub006/internal/infra"
	"github.com/agastya71/mysl-pos-project-sub006/internal/middleware"
	"github.com/agastya71/mysl-pos-project-sub006/internal/model"
	"github.com/agastya71/mysl-pos-project-sub006/internal/repository"
	"github.com/agastya71/mysl-pos-project-sub006/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the infrastructure pieces built by the composition root.
// Redis, Breaker and Receipts may be nil.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Redis     *redis.Client
	Breaker   *infra.CircuitBreaker
	Processor infra.PaymentProcessor
	Receipts  service.ReceiptEnqueuer
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(d.DB)
	productRepo := repository.NewProductRepository(d.DB)
	movementRepo := repository.NewStockMovementRepository(d.DB)
	txnRepo := repository.NewTransactionRepository(d.DB)
	terminalRepo := repository.NewTerminalRepository(d.DB)
	customerRepo := repository.NewCustomerRepository(d.DB)
	creditRepo := repository.NewStoreCreditRepository(d.DB)
	giftCardRepo := repository.NewGiftCardRepository(d.DB)
	receiptRepo := repository.NewReceiptRepository(d.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, d.Redis)
	inventorySvc := service.NewInventoryService(productRepo, movementRepo)
	giftCardSvc := service.NewGiftCardService(giftCardRepo)
	receiptSvc := service.NewReceiptService(receiptRepo, txnRepo, cfg.OrgName, cfg.ReceiptStoragePath)
	payments := service.NewPaymentHandlers(d.Processor, giftCardSvc, creditRepo)
	cards := service.NewCardSettlement(d.Processor, cfg.CardAutoCapture)
	txnSvc := service.NewTransactionService(
		txnRepo, terminalRepo, productRepo, customerRepo,
		inventorySvc, payments, cards, productSvc, d.Receipts,
	)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	txnH := handler.NewTransactionsHandler(txnSvc)
	giftCardsH := handler.NewGiftCardsHandler(giftCardSvc)
	productsH := handler.NewProductsHandler(productSvc, inventorySvc)
	receiptsH := handler.NewReceiptsHandler(receiptSvc, d.Receipts)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(d.DB, d.Redis, d.Breaker))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check at the counter, no login required
	r.GET("/v1/products/lookup/:barcode", productsH.Lookup)

	anyRole := middleware.RequireRole(model.RoleCashier, model.RoleManager, model.RoleAdmin)
	managers := middleware.RequireRole(model.RoleManager, model.RoleAdmin)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		txns := v1.Group("/transactions")
		{
			txns.POST("", anyRole, txnH.Create)
			txns.GET("", anyRole, txnH.List)
			txns.GET("/:id", anyRole, txnH.Get)
			txns.POST("/:id/void", managers, txnH.Void)
		}

		cards := v1.Group("/gift-cards")
		{
			cards.POST("", anyRole, giftCardsH.Create)
			cards.GET("/balance/:number", anyRole, giftCardsH.Balance)
			cards.POST("/validate-redemption", anyRole, giftCardsH.ValidateRedemption)
			cards.POST("/adjust", managers, giftCardsH.Adjust)
			cards.GET("/:id", anyRole, giftCardsH.Get)
			cards.GET("/:id/history", anyRole, giftCardsH.History)
			cards.DELETE("/:id", managers, giftCardsH.Deactivate)
		}

		receipts := v1.Group("/receipts")
		{
			receipts.GET("/pdf/:id", anyRole, receiptsH.DownloadPDF)
			receipts.GET("/:transaction_id", anyRole, receiptsH.Get)
			receipts.POST("/:transaction_id/retry", managers, receiptsH.Retry)
		}

		v1.GET("/stock-movements", managers, productsH.Movements)
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
