// Package health reports host resource usage and classifies it.
package health

import (
	"context"
	"fmt"
	"time"
)

// Status is the overall health classification.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusWarning   Status = "warning"
	StatusUnhealthy Status = "unhealthy"
)

// Thresholds are exclusive: a value equal to the threshold does not trip it.
const (
	WarningThreshold   = 70.0
	UnhealthyThreshold = 90.0
)

// DefaultVersion is reported when no build version is configured.
const DefaultVersion = "1.0.0"

// Snapshot is the body of GET /health.
type Snapshot struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Metrics   Metrics   `json:"metrics"`
	Version   string    `json:"version"`
}

// Classify returns the status and message for the given CPU and memory usage.
// Disk usage is reported but never classified.
func Classify(cpuUsage, memoryUsage float64) (Status, string) {
	switch {
	case cpuUsage > UnhealthyThreshold || memoryUsage > UnhealthyThreshold:
		return StatusUnhealthy, fmt.Sprintf("Critical resource usage: CPU %.1f%%, Memory %.1f%%", cpuUsage, memoryUsage)
	case cpuUsage > WarningThreshold || memoryUsage > WarningThreshold:
		return StatusWarning, fmt.Sprintf("High resource usage: CPU %.1f%%, Memory %.1f%%", cpuUsage, memoryUsage)
	default:
		return StatusHealthy, "All systems operational"
	}
}

// Reporter builds health snapshots from a Sampler.
type Reporter struct {
	sampler Sampler
	version string
	now     func() time.Time
}

// NewReporter creates a reporter that stamps snapshots with version.
func NewReporter(sampler Sampler, version string) *Reporter {
	if version == "" {
		version = DefaultVersion
	}
	return &Reporter{
		sampler: sampler,
		version: version,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Snapshot samples the host and classifies the result. Sampling errors are
// returned as is.
func (r *Reporter) Snapshot(ctx context.Context) (*Snapshot, error) {
	metrics, err := r.sampler.Sample(ctx)
	if err != nil {
		return nil, fmt.Errorf("health snapshot: %w", err)
	}

	status, message := Classify(metrics.CPUUsage, metrics.MemoryUsage)

	return &Snapshot{
		Status:    status,
		Timestamp: r.now(),
		Message:   message,
		Metrics:   metrics,
		Version:   r.version,
	}, nil
}

// Version returns the version stamped on snapshots.
func (r *Reporter) Version() string {
	return r.version
}
