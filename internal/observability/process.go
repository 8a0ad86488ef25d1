package observability

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats - снимок потребления ресурсов текущим процессом
type ProcessStats struct {
	RSSMB      float64 // Резидентная память, MB
	HeapMB     float64 // Куча Go, MB
	CPUPercent float64 // CPU процесса с момента запуска
	Goroutines int
}

// CollectProcessStats возвращает статистику текущего процесса
func CollectProcessStats() (ProcessStats, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := ProcessStats{
		HeapMB:     float64(m.HeapAlloc) / 1024 / 1024,
		Goroutines: runtime.NumGoroutine(),
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return stats, fmt.Errorf("process stats: %w", err)
	}

	mem, err := proc.MemoryInfo()
	if err != nil {
		return stats, fmt.Errorf("process memory: %w", err)
	}
	stats.RSSMB = float64(mem.RSS) / 1024 / 1024

	// Если процент CPU недоступен (например, в контейнере), оставляем 0
	if cpu, err := proc.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}
	return stats, nil
}

func (s ProcessStats) String() string {
	return fmt.Sprintf("rss=%.1fMB heap=%.1fMB cpu=%.1f%% goroutines=%d",
		s.RSSMB, s.HeapMB, s.CPUPercent, s.Goroutines)
}
