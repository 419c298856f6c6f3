package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medihack/competency-service/internal/cache"
	"github.com/medihack/competency-service/internal/services"
)

type HealthHandler struct {
	serviceManager services.ServiceManager
	cache          *cache.CacheManager
}

func NewHealthHandler(serviceManager services.ServiceManager, cm *cache.CacheManager) *HealthHandler {
	return &HealthHandler{serviceManager: serviceManager, cache: cm}
}

// HealthCheck pings the database and, when configured, redis.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok"}
	status := http.StatusOK

	if err := h.serviceManager.HealthCheck(ctx); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	if h.cache != nil && h.cache.Fast.Available() {
		checks["redis"] = "ok"
		if err := h.cache.HealthCheck(ctx); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":    state,
		"service":   "competency-service",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
