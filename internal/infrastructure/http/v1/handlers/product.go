package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockroom/internal/domain/product"
	"stockroom/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves the catalog endpoints.
type ProductHandler struct {
	BaseHandler
	service *product.Service
}

// NewProductHandler creates a product handler.
func NewProductHandler(service *product.Service) *ProductHandler {
	return &ProductHandler{service: service}
}

// Create handles POST /products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Create(c.Request.Context(), product.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromProduct(p))
}

// Get handles GET /products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromProduct(p))
}

// List handles GET /products. The optional "search" query filters by
// name substring.
func (h *ProductHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}

	result, err := h.service.SearchByName(c.Request.Context(), c.Query("search"), page.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.ProductResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, dto.FromProduct(&result.Items[i]))
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:  items,
		Total:  result.Total,
		Limit:  result.Limit,
		Offset: result.Offset,
	})
}

// Update handles PUT /products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Update(c.Request.Context(), productID, product.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromProduct(p))
}

// Delete handles DELETE /products/:id.
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "product deleted"})
}

// Exists handles GET /products/:id/exists. Absence is a regular answer,
// not a 404: the inventory service polls this endpoint.
func (h *ProductHandler) Exists(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	exists, err := h.service.Exists(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ExistsResponse{Exists: exists})
}

// Stats handles GET /products/stats.
func (h *ProductHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProductStatsResponse{
		TotalProducts: stats.TotalProducts,
		AveragePrice:  stats.AveragePrice,
	})
}
