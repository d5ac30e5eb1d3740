package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LivenessMessage is the body of GET /.
const LivenessMessage = "Smart server is running"

// PingFunc checks one dependency.
type PingFunc func(ctx context.Context) error

// HealthHandler reports liveness and dependency health
type HealthHandler struct {
	service string
	checks  map[string]PingFunc
	timeout time.Duration
	log     *zap.Logger
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(service string, checks map[string]PingFunc, timeout time.Duration, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		checks:  checks,
		timeout: timeout,
		log:     log,
	}
}

// Root handles GET /
func (h *HealthHandler) Root(c *gin.Context) {
	c.String(http.StatusOK, LivenessMessage)
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	deps := gin.H{}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.log.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			deps[name] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "healthy"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status":       overall,
		"service":      h.service,
		"dependencies": deps,
	})
}
