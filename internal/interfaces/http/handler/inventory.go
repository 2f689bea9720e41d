package handler

import (
	"github.com/gin-gonic/gin"

	appinventory "github.com/minimart/backend/internal/application/inventory"
)

// InventoryHandler handles stock API endpoints
type InventoryHandler struct {
	BaseHandler
	stockService *appinventory.StockService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stockService *appinventory.StockService) *InventoryHandler {
	return &InventoryHandler{stockService: stockService}
}

// listStocksRequest carries the optional low-stock threshold
type listStocksRequest struct {
	LowStockBelow int `form:"low_stock_below" binding:"omitempty,gt=0"`
}

// List handles GET /admin/stocks
func (h *InventoryHandler) List(c *gin.Context) {
	var req listStocksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.stockService.List(c.Request.Context(), req.LowStockBelow)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByProduct handles GET /admin/stocks/:id (the ID is a product ID)
func (h *InventoryHandler) GetByProduct(c *gin.Context) {
	productID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	resp, err := h.stockService.GetByProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Initialize handles POST /admin/stocks
func (h *InventoryHandler) Initialize(c *gin.Context) {
	var req appinventory.InitializeStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.stockService.Initialize(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// Replenish handles POST /admin/stocks/:id/replenish (the ID is a product ID)
func (h *InventoryHandler) Replenish(c *gin.Context) {
	productID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req appinventory.ReplenishStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.stockService.Replenish(c.Request.Context(), productID, req.Quantity)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}
