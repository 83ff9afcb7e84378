package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthHandler reports service liveness and database readiness.
type HealthHandler struct {
	pool    *pgxpool.Pool
	service string
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(pool *pgxpool.Pool, service string) *HealthHandler {
	return &HealthHandler{pool: pool, service: service}
}

// Live reports process liveness.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": h.service})
}

// Ready reports whether the database is reachable.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.pool.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"service": h.service,
			"error":   "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"service":    h.service,
		"db_ping_ms": time.Since(start).Milliseconds(),
	})
}
