package gin

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	infracontext "github.com/jonesrussell/north-cloud/example-api/infrastructure/context"
)

// ReadinessPath is where RegisterReadinessRoutes mounts the dependency report.
const ReadinessPath = "/health/ready"

// CheckStatus represents the status of a dependency check.
type CheckStatus string

const (
	CheckStatusHealthy   CheckStatus = "healthy"
	CheckStatusDegraded  CheckStatus = "degraded"
	CheckStatusUnhealthy CheckStatus = "unhealthy"
)

// ReadinessResponse reports the state of each dependency.
type ReadinessResponse struct {
	Status  CheckStatus            `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Uptime  string                 `json:"uptime"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of one dependency check.
type CheckResult struct {
	Status  CheckStatus `json:"status"`
	Message string      `json:"message,omitempty"`
	Latency string      `json:"latency"`
}

// Checker probes one dependency.
type Checker func(ctx context.Context) CheckResult

// ReadinessOptions configures RegisterReadinessRoutes.
type ReadinessOptions struct {
	ServiceName    string
	ServiceVersion string
	StartTime      time.Time
	Checks         map[string]Checker
}

// RegisterReadinessRoutes adds:
//   - GET /health/ready: runs every check; 503 if any is unhealthy
//   - HEAD /health: constant 200 for load balancers
func RegisterReadinessRoutes(router *gin.Engine, opts ReadinessOptions) {
	if opts.StartTime.IsZero() {
		opts.StartTime = time.Now()
	}

	router.GET(ReadinessPath, readinessHandler(opts))
	router.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
}

func readinessHandler(opts ReadinessOptions) gin.HandlerFunc {
	names := make([]string, 0, len(opts.Checks))
	for name := range opts.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := infracontext.WithPingTimeout(c.Request.Context())
		defer cancel()

		response := ReadinessResponse{
			Status:  CheckStatusHealthy,
			Service: opts.ServiceName,
			Version: opts.ServiceVersion,
			Uptime:  time.Since(opts.StartTime).Truncate(time.Second).String(),
		}

		if len(names) > 0 {
			response.Checks = make(map[string]CheckResult, len(names))
		}
		for _, name := range names {
			result := opts.Checks[name](ctx)
			response.Checks[name] = result

			switch {
			case result.Status == CheckStatusUnhealthy:
				response.Status = CheckStatusUnhealthy
			case result.Status == CheckStatusDegraded && response.Status == CheckStatusHealthy:
				response.Status = CheckStatusDegraded
			}
		}

		statusCode := http.StatusOK
		if response.Status == CheckStatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, response)
	}
}

// PingChecker builds a Checker from a ping function. failStatus is reported
// when ping fails: unhealthy for hard dependencies, degraded for optional ones.
func PingChecker(label string, failStatus CheckStatus, ping func(ctx context.Context) error) Checker {
	return func(ctx context.Context) CheckResult {
		start := time.Now()
		err := ping(ctx)
		latency := time.Since(start).String()

		if err != nil {
			return CheckResult{
				Status:  failStatus,
				Message: label + " connection failed",
				Latency: latency,
			}
		}
		return CheckResult{
			Status:  CheckStatusHealthy,
			Message: label + " connection OK",
			Latency: latency,
		}
	}
}
