package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	infralogger "github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/example-api/internal/health"
)

// HealthReporter produces host health snapshots.
type HealthReporter interface {
	Snapshot(ctx context.Context) (*health.Snapshot, error)
}

// LivenessResponse is the body of GET /health/simple.
type LivenessResponse struct {
	Status    health.Status `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
}

// HealthHandler serves /health and /health/simple.
type HealthHandler struct {
	reporter HealthReporter
	logger   infralogger.Logger
}

// NewHealthHandler creates a handler over reporter.
func NewHealthHandler(reporter HealthReporter, log infralogger.Logger) *HealthHandler {
	return &HealthHandler{reporter: reporter, logger: log}
}

// Health samples the host. A sampling failure is a 500.
func (h *HealthHandler) Health(c *gin.Context) {
	snapshot, err := h.reporter.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if snapshot.Status != health.StatusHealthy {
		infralogger.FromContextOr(c.Request.Context(), h.logger).Warn("Host resources under pressure",
			infralogger.String("status", string(snapshot.Status)),
			infralogger.Float64("cpu_usage", snapshot.Metrics.CPUUsage),
			infralogger.Float64("memory_usage", snapshot.Metrics.MemoryUsage),
		)
	}

	c.JSON(http.StatusOK, snapshot)
}

// Simple always reports healthy without sampling.
func (h *HealthHandler) Simple(c *gin.Context) {
	c.JSON(http.StatusOK, LivenessResponse{
		Status:    health.StatusHealthy,
		Timestamp: time.Now().UTC(),
	})
}
