package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/stock"
	"stockroom/internal/infrastructure/http/v1/dto"
)

// StockHandler serves the stock ledger endpoints.
type StockHandler struct {
	BaseHandler
	service *stock.Service
}

// NewStockHandler creates a stock handler.
func NewStockHandler(service *stock.Service) *StockHandler {
	return &StockHandler{service: service}
}

// Create handles POST /stock.
func (h *StockHandler) Create(c *gin.Context) {
	var req dto.CreateStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id").WithDetail("productId", req.ProductID))
		return
	}

	r, err := h.service.Create(c.Request.Context(), stock.CreateInput{
		ProductID:   productID,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
		MaxQuantity: req.MaxQuantity,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromStockRecord(r))
}

// Get handles GET /stock/:productId.
func (h *StockHandler) Get(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	r, err := h.service.GetByProduct(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if r == nil {
		h.Error(c, apperror.NewNotFound("stock record", productID.String()))
		return
	}

	c.JSON(http.StatusOK, dto.FromStockRecord(r))
}

// Availability handles GET /stock/:productId/availability?quantity=N.
func (h *StockHandler) Availability(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}
	qty := h.ParseIntQuery(c, "quantity", 1)

	available, err := h.service.HasSufficientStock(c.Request.Context(), productID, qty)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AvailabilityResponse{
		ProductID: productID.String(),
		Quantity:  qty,
		Available: available,
	})
}

// Increase handles POST /stock/:productId/increase.
func (h *StockHandler) Increase(c *gin.Context) {
	h.adjust(c, h.service.Increase)
}

// Decrease handles POST /stock/:productId/decrease.
func (h *StockHandler) Decrease(c *gin.Context) {
	h.adjust(c, h.service.Decrease)
}

func (h *StockHandler) adjust(c *gin.Context, op func(ctx context.Context, productID id.ID, qty int) (*stock.Record, error)) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	r, err := op(c.Request.Context(), productID, req.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStockRecord(r))
}

// SetQuantity handles PUT /stock/:productId/quantity.
func (h *StockHandler) SetQuantity(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	var req dto.SetStockQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	r, err := h.service.SetQuantity(c.Request.Context(), productID, req.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStockRecord(r))
}

// UpdateThresholds handles PUT /stock/:productId/thresholds.
func (h *StockHandler) UpdateThresholds(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	var req dto.UpdateThresholdsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	r, err := h.service.UpdateThresholds(c.Request.Context(), productID, req.MinQuantity, req.MaxQuantity)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStockRecord(r))
}

// Deactivate handles DELETE /stock/:productId.
func (h *StockHandler) Deactivate(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "stock record deactivated"})
}

// List handles GET /stock.
func (h *StockHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}

	result, err := h.service.ListActive(c.Request.Context(), page.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.StockResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, dto.FromStockRecord(&result.Items[i]))
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:  items,
		Total:  result.Total,
		Limit:  result.Limit,
		Offset: result.Offset,
	})
}

// LowStock handles GET /stock/low.
func (h *StockHandler) LowStock(c *gin.Context) {
	records, err := h.service.FindLowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.StockResponse, 0, len(records))
	for i := range records {
		items = append(items, dto.FromStockRecord(&records[i]))
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Stats handles GET /stock/stats.
func (h *StockHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StockStatsResponse{
		TotalRecords:  stats.TotalRecords,
		TotalQuantity: stats.TotalQuantity,
		LowStockCount: stats.LowStockCount,
	})
}
