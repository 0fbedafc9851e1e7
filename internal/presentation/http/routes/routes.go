package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tablepos/internal/config"
	"github.com/sangkips/tablepos/internal/presentation/http/handler"
	"github.com/sangkips/tablepos/internal/presentation/http/middleware"
	"github.com/sangkips/tablepos/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Table             *handler.TableHandler
	Session           *handler.SessionHandler
	Drawer            *handler.DrawerHandler
	Transaction       *handler.TransactionHandler
	FailedTransaction *handler.FailedTransactionHandler
	Printer           *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager *utils.JWTManager
	Cfg        *config.Config
	Log        *zap.Logger
}

// Setup creates the Gin router and registers all routes. ctx bounds the
// rate limiter's background sweep.
func Setup(ctx context.Context, h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
			"printer": h.Printer.Status(),
		})
	})

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWTManager))

	rateLimiter := middleware.NewCashierRateLimiter(ctx, rateLimiterConfig(deps.Cfg.RateLimit))
	protected.Use(rateLimiter.Middleware())

	registerProtectedRoutes(protected, h)

	return router
}

func rateLimiterConfig(cfg config.RateLimitConfig) middleware.RateLimiterConfig {
	rl := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 && cfg.Duration > 0 {
		rl.RequestsPerSecond = float64(cfg.Requests) / float64(cfg.Duration)
		rl.BurstSize = cfg.Requests
	}
	rl.CleanupInterval = 5 * time.Minute
	rl.EntryTTL = 10 * time.Minute
	return rl
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers) {
	// Tables
	registerTableRoutes(protected, h)

	// Session
	registerSessionRoutes(protected, h)

	// Drawers
	registerDrawerRoutes(protected, h)

	// Transactions
	registerTransactionRoutes(protected, h)

	// Failed transactions
	registerFailedTransactionRoutes(protected, h)

	// Printer
	registerPrinterRoutes(protected, h)
}

func registerTableRoutes(protected *gin.RouterGroup, h *Handlers) {
	tables := protected.Group("/tables")
	{
		tables.GET("", h.Table.List)
		tables.GET("/statistics", h.Table.Statistics)
		tables.PUT("/:id/status", h.Table.SetStatus)
	}
}

func registerSessionRoutes(protected *gin.RouterGroup, h *Handlers) {
	session := protected.Group("/session")
	{
		session.GET("", h.Session.Get)
		session.DELETE("", h.Session.End)
		session.GET("/events", h.Session.Events)
		session.POST("/tables/:id/switch", h.Session.SwitchTable)
		session.DELETE("/tables/:id", h.Session.CloseTable)
		session.POST("/items", h.Session.AddItem)
		session.PATCH("/items/:line", h.Session.EditItem)
		session.DELETE("/items/:line", h.Session.RemoveItem)
		session.POST("/wholesale", h.Session.SetWholesaleMode)
		session.POST("/customer", h.Session.SelectCustomer)
		session.POST("/payment", h.Session.SetPayment)
		session.POST("/hold", h.Session.Hold)
		session.POST("/held/:id/restore", h.Session.Restore)
		// Checkout keys come from the Idempotency-Key header
		session.POST("/checkout", middleware.Idempotency(), h.Session.Checkout)
	}
}

func registerDrawerRoutes(protected *gin.RouterGroup, h *Handlers) {
	drawers := protected.Group("/drawers")
	{
		drawers.GET("/current", h.Drawer.Current)
		drawers.POST("/open", h.Drawer.Open)
		drawers.POST("/:id/cash-in", h.Drawer.CashIn)
		drawers.POST("/:id/cash-out", h.Drawer.CashOut)
		drawers.POST("/:id/close", h.Drawer.Close)
		drawers.GET("/:id/movements", h.Drawer.Movements)
		drawers.POST("/:id/report", h.Drawer.PrintReport)
	}
}

func registerTransactionRoutes(protected *gin.RouterGroup, h *Handlers) {
	transactions := protected.Group("/transactions")
	{
		transactions.GET("/:id", h.Transaction.Get)
		transactions.GET("/:id/next", h.Transaction.Next)
		transactions.GET("/:id/previous", h.Transaction.Previous)
		transactions.PUT("/:id", h.Transaction.Update)
		transactions.POST("/:id/print", h.Transaction.Print)
	}
}

func registerFailedTransactionRoutes(protected *gin.RouterGroup, h *Handlers) {
	failed := protected.Group("/failed-transactions")
	{
		failed.GET("", h.FailedTransaction.List)
		failed.POST("/import", h.FailedTransaction.ImportBackups)
		failed.GET("/:id", h.FailedTransaction.Get)
		failed.POST("/:id/retry", h.FailedTransaction.Retry)
		failed.POST("/:id/cancel", h.FailedTransaction.Cancel)
		failed.DELETE("/:id", h.FailedTransaction.Delete)
	}
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers) {
	printerGroup := protected.Group("/printer")
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
		printerGroup.POST("/test", h.Printer.TestPrint)
	}
}
