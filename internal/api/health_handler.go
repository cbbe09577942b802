package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ericfisherdev/simple-easy-issues/internal/services"
)

const (
	fullCheckTimeout  = 10 * time.Second
	readyCheckTimeout = 5 * time.Second
)

// HealthHandler serves the health endpoints. They sit outside /api and need no token.
type HealthHandler struct {
	healthService *services.HealthService
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(healthService *services.HealthService) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

// RegisterRoutes mounts /ping and the /health endpoints.
func (h *HealthHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/ping", PingHandler)

	health := router.Group("/health")
	health.GET("", h.HealthCheck)
	health.GET("/live", h.Liveness)
	health.GET("/ready", h.Readiness)
}

// healthBody is the JSON shape shared by the health endpoints.
type healthBody struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Version     string                 `json:"version"`
	Uptime      string                 `json:"uptime"`
	Environment string                 `json:"environment"`
	Checks      []services.HealthCheck `json:"checks,omitempty"`
	System      map[string]interface{} `json:"system,omitempty"`
}

func newHealthBody(status string, r services.HealthResponse) healthBody {
	return healthBody{
		Status:      status,
		Timestamp:   r.Timestamp,
		Version:     r.Version,
		Uptime:      r.Uptime.String(),
		Environment: r.Environment,
		Checks:      r.Checks,
		System:      r.System,
	}
}

// HealthCheck runs every registered check. Non-critical failures degrade the status
// but still answer 200.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), fullCheckTimeout)
	defer cancel()

	h.render(c, h.healthService.Check(ctx))
}

// Liveness answers 200 while the process runs, whatever its dependencies say.
func (h *HealthHandler) Liveness(c *gin.Context) {
	body := newHealthBody("alive", h.healthService.Liveness())
	body.Checks, body.System = nil, nil
	c.JSON(http.StatusOK, body)
}

// Readiness runs the critical checks only: the store, and Redis when enabled.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyCheckTimeout)
	defer cancel()

	h.render(c, h.healthService.Readiness(ctx))
}

func (h *HealthHandler) render(c *gin.Context, response services.HealthResponse) {
	c.JSON(healthHTTPStatus(response.Status), newHealthBody(string(response.Status), response))
}

func healthHTTPStatus(status services.HealthStatus) int {
	switch status {
	case services.HealthStatusHealthy, services.HealthStatusDegraded:
		return http.StatusOK
	case services.HealthStatusUnhealthy:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PingHandler answers pong.
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
		"time":    time.Now().Unix(),
	})
}
