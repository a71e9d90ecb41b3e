package system

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Stats is a point-in-time host snapshot for the admin dashboard
type Stats struct {
	Hostname      string      `json:"hostname"`
	UptimeSeconds uint64      `json:"uptime_seconds"`
	CPU           CPUStats    `json:"cpu"`
	Memory        MemoryStats `json:"memory"`
	Disk          DiskStats   `json:"disk"`
	Timestamp     time.Time   `json:"timestamp"`
}

// CPUStats represents CPU usage statistics
type CPUStats struct {
	UsagePercent float64 `json:"usage_percent"`
	Cores        int     `json:"cores"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Total        uint64  `json:"total_bytes"`
	Used         uint64  `json:"used_bytes"`
	Free         uint64  `json:"free_bytes"`
	Available    uint64  `json:"available_bytes"`
	UsagePercent float64 `json:"usage_percent"`
}

// DiskStats represents disk usage statistics
type DiskStats struct {
	Total        uint64  `json:"total_bytes"`
	Used         uint64  `json:"used_bytes"`
	Free         uint64  `json:"free_bytes"`
	UsagePercent float64 `json:"usage_percent"`
	Path         string  `json:"path"`
}

// Collect gathers a host snapshot. Individual probe failures leave their
// section zeroed rather than failing the whole snapshot.
func Collect(dataPath string) *Stats {
	stats := &Stats{Timestamp: time.Now()}

	if info, err := host.Info(); err == nil {
		stats.Hostname = info.Hostname
		stats.UptimeSeconds = info.Uptime
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPU.UsagePercent = percents[0]
	}
	if cores, err := cpu.Counts(true); err == nil {
		stats.CPU.Cores = cores
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.Memory = MemoryStats{
			Total:        vm.Total,
			Used:         vm.Used,
			Free:         vm.Free,
			Available:    vm.Available,
			UsagePercent: vm.UsedPercent,
		}
	}

	if dataPath == "" {
		dataPath = "/"
	}
	if usage, err := disk.Usage(dataPath); err == nil {
		stats.Disk = DiskStats{
			Total:        usage.Total,
			Used:         usage.Used,
			Free:         usage.Free,
			UsagePercent: usage.UsedPercent,
			Path:         dataPath,
		}
	}

	return stats
}
