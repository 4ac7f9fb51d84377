// Package health exposes the optional ops HTTP surface: liveness and
// readiness probes plus the Prometheus metrics endpoint. It runs beside the
// chat listener and has no part in the wire protocol.
package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chatwire/chatwire/internal/v1/middleware"
)

// Prober reports whether the chat listener is bound and accepting. The
// transport server implements it.
type Prober interface {
	Ready() bool
}

// Handler serves the health check endpoints.
type Handler struct {
	probe Prober
}

// NewHandler creates a health handler backed by probe.
func NewHandler(probe Prober) *Handler {
	return &Handler{probe: probe}
}

// LivenessResponse is the liveness probe response body.
type LivenessResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ReadinessResponse is the readiness probe response body.
type ReadinessResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

// Liveness handles GET /health/live. It returns 200 whenever the process is
// up; no dependencies are consulted.
func (h *Handler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, LivenessResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Readiness handles GET /health/ready. It returns 200 once the chat
// listener is bound and 503 before that or after it shuts down.
func (h *Handler) Readiness(c *gin.Context) {
	checks := make(map[string]string, 1)

	status := "ready"
	code := http.StatusOK
	if h.probe != nil && h.probe.Ready() {
		checks["listener"] = "healthy"
	} else {
		checks["listener"] = "unhealthy"
		status = "unavailable"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, ReadinessResponse{
		Status:    status,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Router assembles the gin engine for the ops listener.
func Router(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CorrelationID())

	r.GET("/health/live", h.Liveness)
	r.GET("/health/ready", h.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
