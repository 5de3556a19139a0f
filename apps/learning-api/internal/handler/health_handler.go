package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

const serviceName = "learning-api"

// Pinger is a dependency that can report whether it is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	db    Pinger
	redis Pinger
}

// NewHealthHandler creates a new HealthHandler. redis may be nil.
func NewHealthHandler(db, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Health returns basic health status
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": serviceName,
	})
}

// Ready checks if the service is ready to accept traffic
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not_ready",
			"service":  serviceName,
			"database": "not_configured",
		})
		return
	}
	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not_ready",
			"service":  serviceName,
			"database": "disconnected",
		})
		return
	}

	body := gin.H{
		"status":   "ready",
		"service":  serviceName,
		"database": "connected",
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"service":  serviceName,
				"database": "connected",
				"redis":    "disconnected",
			})
			return
		}
		body["redis"] = "connected"
	}

	c.JSON(http.StatusOK, body)
}
