package router

import (
	"github.com/gin-gonic/gin"

	"github.com/minimart/backend/internal/interfaces/http/handler"
)

// Config carries the handlers and middleware the router mounts
type Config struct {
	OrderHandler     *handler.OrderHandler
	PaymentHandler   *handler.PaymentHandler
	CatalogHandler   *handler.CatalogHandler
	InventoryHandler *handler.InventoryHandler
	SystemHandler    *handler.SystemHandler

	// AuthMiddleware guards everything under /api/v1 except the public
	// catalog reads; AdminMiddleware additionally guards /admin
	AuthMiddleware  gin.HandlerFunc
	AdminMiddleware gin.HandlerFunc
}

// Router wires all HTTP routes onto a gin engine
type Router struct {
	engine *gin.Engine
	cfg    Config
}

// NewRouter creates a new Router
func NewRouter(engine *gin.Engine, cfg Config) *Router {
	return &Router{engine: engine, cfg: cfg}
}

// Setup registers all routes
func (r *Router) Setup() {
	// Health check sits outside API versioning and authentication
	r.engine.GET("/health", r.cfg.SystemHandler.Health)

	api := r.engine.Group("/api/v1")

	// Public catalog reads: the storefront is browsable without a login
	public := api.Group("")
	{
		public.GET("/products", r.cfg.CatalogHandler.ListProducts)
		public.GET("/products/:id", r.cfg.CatalogHandler.GetProduct)
		public.GET("/categories", r.cfg.CatalogHandler.ListCategories)
	}

	authed := api.Group("")
	authed.Use(r.cfg.AuthMiddleware)
	{
		orders := authed.Group("/orders")
		{
			orders.POST("", r.cfg.OrderHandler.Create)
			orders.GET("", r.cfg.OrderHandler.List)
			orders.GET("/:id", r.cfg.OrderHandler.Get)
			orders.POST("/:id/cancel", r.cfg.OrderHandler.Cancel)
			orders.GET("/:id/payment-status", r.cfg.OrderHandler.PaymentStatus)
			orders.POST("/:id/payment-screenshot", r.cfg.PaymentHandler.UploadScreenshot)
			orders.GET("/:id/payment", r.cfg.PaymentHandler.GetByOrder)
		}

		admin := authed.Group("/admin")
		admin.Use(r.cfg.AdminMiddleware)
		{
			admin.GET("/orders/pending", r.cfg.OrderHandler.ListPending)
			admin.POST("/orders/:id/confirm-payment", r.cfg.PaymentHandler.Confirm)
			admin.POST("/orders/:id/reject-payment", r.cfg.PaymentHandler.Reject)

			admin.POST("/products", r.cfg.CatalogHandler.CreateProduct)
			admin.PUT("/products/:id/price", r.cfg.CatalogHandler.UpdateProductPrice)
			admin.POST("/products/:id/disable", r.cfg.CatalogHandler.DisableProduct)
			admin.POST("/categories", r.cfg.CatalogHandler.CreateCategory)

			admin.POST("/stocks", r.cfg.InventoryHandler.Initialize)
			admin.GET("/stocks", r.cfg.InventoryHandler.List)
			admin.GET("/stocks/:id", r.cfg.InventoryHandler.GetByProduct)
			admin.POST("/stocks/:id/replenish", r.cfg.InventoryHandler.Replenish)
		}
	}
}
