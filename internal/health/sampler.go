package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// Default sampling settings.
const (
	DefaultDiskPath          = "/"
	DefaultCPUSampleInterval = 100 * time.Millisecond
)

const percent = 100

// Metrics is one host resource sample. Percentages are in [0, 100].
type Metrics struct {
	CPUUsage      float64 `json:"cpu_usage"`
	MemoryUsage   float64 `json:"memory_usage"`
	DiskUsage     float64 `json:"disk_usage"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Sampler reads host resource usage.
type Sampler interface {
	Sample(ctx context.Context) (Metrics, error)
}

// SystemSampler samples the local host with gopsutil.
type SystemSampler struct {
	diskPath    string
	cpuInterval time.Duration
}

// NewSystemSampler creates a sampler that measures disk usage of the volume
// holding diskPath and averages CPU usage over cpuInterval.
func NewSystemSampler(diskPath string, cpuInterval time.Duration) *SystemSampler {
	if diskPath == "" {
		diskPath = DefaultDiskPath
	}
	if cpuInterval <= 0 {
		cpuInterval = DefaultCPUSampleInterval
	}
	return &SystemSampler{diskPath: diskPath, cpuInterval: cpuInterval}
}

// Sample blocks for the CPU interval.
func (s *SystemSampler) Sample(ctx context.Context) (Metrics, error) {
	cpuPercents, err := cpu.PercentWithContext(ctx, s.cpuInterval, false)
	if err != nil {
		return Metrics{}, fmt.Errorf("sample cpu: %w", err)
	}
	if len(cpuPercents) == 0 {
		return Metrics{}, errors.New("sample cpu: no data")
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("sample memory: %w", err)
	}

	usage, err := disk.UsageWithContext(ctx, s.diskPath)
	if err != nil {
		return Metrics{}, fmt.Errorf("sample disk %s: %w", s.diskPath, err)
	}

	uptime, err := host.UptimeWithContext(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("sample uptime: %w", err)
	}

	return Metrics{
		CPUUsage:      cpuPercents[0],
		MemoryUsage:   vm.UsedPercent,
		DiskUsage:     diskPercent(usage.Used, usage.Total),
		UptimeSeconds: float64(uptime),
	}, nil
}

func diskPercent(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total) * percent
}
