package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tradeinlabs/phoneworth/internal/domain/catalog"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	store *catalog.Store
	// readyTimeout bounds the catalog load a readiness probe may trigger.
	readyTimeout time.Duration
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(store *catalog.Store) *HealthHandler {
	return &HealthHandler{store: store, readyTimeout: 5 * time.Second}
}

// Liveness handles GET /healthz: the process is up.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz: the service can answer catalog-backed
// requests.  A cold cache is warmed here, so the first probe doubles as a
// preload.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.readyTimeout)
	defer cancel()

	phones, err := h.store.Phones(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "phones": len(phones)})
}
