package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/purchase"
	"stockroom/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler serves the purchase workflow and ledger endpoints.
type PurchaseHandler struct {
	BaseHandler
	service *purchase.Service
}

// NewPurchaseHandler creates a purchase handler.
func NewPurchaseHandler(service *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

// Process handles POST /purchases.
func (h *PurchaseHandler) Process(c *gin.Context) {
	var req dto.ProcessPurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id").WithDetail("productId", req.ProductID))
		return
	}

	p, err := h.service.Process(c.Request.Context(), productID, req.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromPurchase(p))
}

// Cancel handles POST /purchases/:id/cancel.
func (h *PurchaseHandler) Cancel(c *gin.Context) {
	purchaseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.Cancel(c.Request.Context(), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromPurchase(p))
}

// CanProcess handles GET /purchases/can-process?productId=&quantity=.
// Always answers 200 with a boolean; failures read as "no".
func (h *PurchaseHandler) CanProcess(c *gin.Context) {
	rawID := c.Query("productId")
	productID, err := id.Parse(rawID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id").WithDetail("productId", rawID))
		return
	}
	qty := h.ParseIntQuery(c, "quantity", 1)

	ok := h.service.CanProcess(c.Request.Context(), productID, qty)

	c.JSON(http.StatusOK, dto.CanProcessResponse{
		ProductID:  productID.String(),
		Quantity:   qty,
		CanProcess: ok,
	})
}

// Get handles GET /purchases/:id.
func (h *PurchaseHandler) Get(c *gin.Context) {
	purchaseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromPurchase(p))
}

// List handles GET /purchases with optional productId/status filters.
func (h *PurchaseHandler) List(c *gin.Context) {
	var req dto.PurchaseListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := purchase.ListFilter{ListFilter: req.ToFilter()}
	if req.ProductID != "" {
		productID, err := id.Parse(req.ProductID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid product id").WithDetail("productId", req.ProductID))
			return
		}
		filter.ProductID = &productID
	}
	if req.Status != "" {
		status := purchase.Status(req.Status)
		filter.Status = &status
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.PurchaseResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, dto.FromPurchase(&result.Items[i]))
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:  items,
		Total:  result.Total,
		Limit:  result.Limit,
		Offset: result.Offset,
	})
}

// Recent handles GET /purchases/recent?limit=N.
func (h *PurchaseHandler) Recent(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 10)

	purchases, err := h.service.Recent(c.Request.Context(), limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.PurchaseResponse, 0, len(purchases))
	for i := range purchases {
		items = append(items, dto.FromPurchase(&purchases[i]))
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Stats handles GET /purchases/stats.
func (h *PurchaseHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PurchaseStatsResponse{
		TotalPurchases: stats.TotalPurchases,
		Completed:      stats.Completed,
		Cancelled:      stats.Cancelled,
		TotalSales:     stats.TotalSales,
	})
}

// SalesByProduct handles GET /purchases/sales/:productId.
func (h *PurchaseHandler) SalesByProduct(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	total, err := h.service.TotalSalesByProduct(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProductSalesResponse{
		ProductID:  productID.String(),
		TotalSales: total,
	})
}
