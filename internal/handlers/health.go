package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is anything the health check should ping (database, cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	service string
	checks  map[string]Pinger
}

func NewHealthHandler(service string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{service: service, checks: checks}
}

// HealthCheck returns server status
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	statuses := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			statuses[name] = "unhealthy: " + err.Error()
			healthy = false
			continue
		}
		statuses[name] = "healthy"
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":       "unhealthy",
			"service":      h.service,
			"dependencies": statuses,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"service":      h.service,
		"dependencies": statuses,
	})
}
