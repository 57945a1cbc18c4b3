package metrics

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats — снимок потребления ресурсов процессом
type ProcessStats struct {
	CPUPercent float64 // CPU процесса, %
	RSSBytes   uint64  // Резидентная память, байт
	HeapBytes  uint64  // Выделено в куче Go, байт
	Goroutines int
}

// ProcessSampler читает показатели текущего процесса через gopsutil
type ProcessSampler struct {
	StartTime time.Time
	proc      *process.Process
}

// NewProcessSampler создаёт сэмплер для текущего процесса
func NewProcessSampler() (*ProcessSampler, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть процесс: %w", err)
	}
	return &ProcessSampler{StartTime: time.Now(), proc: proc}, nil
}

// Sample снимает показатели. Если CPU процесса недоступен, берётся системный.
func (ps *ProcessSampler) Sample() (ProcessStats, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats := ProcessStats{HeapBytes: m.HeapAlloc, Goroutines: runtime.NumGoroutine()}

	cpuPercent, err := ps.proc.CPUPercent()
	if err != nil {
		cpuPercents, sysErr := cpu.Percent(100*time.Millisecond, false)
		if sysErr != nil || len(cpuPercents) == 0 {
			return stats, fmt.Errorf("CPU процесса: %w", err)
		}
		cpuPercent = cpuPercents[0]
	}
	stats.CPUPercent = cpuPercent

	mem, err := ps.proc.MemoryInfo()
	if err != nil {
		return stats, fmt.Errorf("память процесса: %w", err)
	}
	stats.RSSBytes = mem.RSS
	return stats, nil
}

// Uptime возвращает время работы в виде "1д 2ч 3м 4с"
func (ps *ProcessSampler) Uptime() string {
	return FormatUptime(time.Since(ps.StartTime))
}

// FormatUptime форматирует длительность работы сервера
func FormatUptime(uptime time.Duration) string {
	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	default:
		return fmt.Sprintf("%dс", seconds)
	}
}
