package bench

import (
	"context"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// SchedulerInfo is a snapshot of the scheduler population and resource usage,
// used to corroborate benchmark numbers with what the process actually
// consumed.
type SchedulerInfo struct {
	Goroutines        int     `json:"goroutines"`
	OSThreads         int     `json:"os_threads"`
	GOMAXPROCS        int     `json:"gomaxprocs"`
	NumCPU            int     `json:"num_cpu"`
	HeapAllocMB       uint64  `json:"heap_alloc_mb"`
	HeapSysMB         uint64  `json:"heap_sys_mb"`
	ProcessRSSMB      uint64  `json:"process_rss_mb"`
	ProcessCPUPercent float64 `json:"process_cpu_percent"`
	HostMemoryPercent float64 `json:"host_memory_percent"`
}

func CollectSchedulerInfo(ctx context.Context) (SchedulerInfo, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	info := SchedulerInfo{
		Goroutines:  runtime.NumGoroutine(),
		GOMAXPROCS:  runtime.GOMAXPROCS(0),
		NumCPU:      runtime.NumCPU(),
		HeapAllocMB: ms.HeapAlloc / 1024 / 1024,
		HeapSysMB:   ms.HeapSys / 1024 / 1024,
	}

	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return info, err
	}

	if threads, err := proc.NumThreadsWithContext(ctx); err == nil {
		info.OSThreads = int(threads)
	}
	if memInfo, err := proc.MemoryInfoWithContext(ctx); err == nil {
		info.ProcessRSSMB = memInfo.RSS / 1024 / 1024
	}
	if cpuPercent, err := proc.CPUPercentWithContext(ctx); err == nil {
		info.ProcessCPUPercent = cpuPercent
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.HostMemoryPercent = vm.UsedPercent
	}

	return info, nil
}
