package services

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

type HostSnapshot struct {
	CapturedAt        time.Time `json:"capturedAt"`
	ProcessRSSBytes   int64     `json:"processRssBytes"`
	SystemMemoryTotal int64     `json:"systemMemoryTotalBytes"`
	SystemMemoryUsed  int64     `json:"systemMemoryUsedBytes"`
	DiskTotalBytes    int64     `json:"diskTotalBytes"`
	DiskUsedBytes     int64     `json:"diskUsedBytes"`
	ProcessCpuLoad    float64   `json:"processCpuLoad"`
	SystemCpuLoad     float64   `json:"systemCpuLoad"`
}

// CaptureHost samples process and host usage. Individual probes that fail
// leave their fields at zero; a disk path that cannot be read falls back to /.
func CaptureHost(diskPath string) HostSnapshot {
	snapshot := HostSnapshot{CapturedAt: time.Now().UTC()}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if rss, err := proc.MemoryInfo(); err == nil && rss != nil {
			snapshot.ProcessRSSBytes = int64(rss.RSS)
		}
		if pct, err := proc.CPUPercent(); err == nil {
			snapshot.ProcessCpuLoad = pct / 100.0
		}
	}
	if memStat, err := mem.VirtualMemory(); err == nil {
		snapshot.SystemMemoryTotal = int64(memStat.Total)
		snapshot.SystemMemoryUsed = int64(memStat.Total - memStat.Available)
	}
	if diskPath == "" {
		diskPath = "/"
	}
	diskStat, err := disk.Usage(diskPath)
	if err != nil {
		diskStat, err = disk.Usage("/")
	}
	if err == nil {
		snapshot.DiskTotalBytes = int64(diskStat.Total)
		snapshot.DiskUsedBytes = int64(diskStat.Used)
	}
	if sysCPU, err := cpu.Percent(0, false); err == nil && len(sysCPU) > 0 {
		snapshot.SystemCpuLoad = sysCPU[0] / 100.0
	}
	return snapshot
}
