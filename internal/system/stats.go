package system

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// HostStats is a snapshot of host load taken for the performance report.
type HostStats struct {
	CPUPercent    float64
	MemUsedPct    float64
	MemTotalBytes uint64
	ProcessRSS    uint64
	ProcessCPU    float64
}

// CollectHostStats samples CPU over interval. Metrics the platform does not
// provide stay zero; the error is the first one encountered.
func CollectHostStats(interval time.Duration) (HostStats, error) {
	var st HostStats
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	pct, err := cpu.Percent(interval, false)
	keep(err)
	if len(pct) > 0 {
		st.CPUPercent = pct[0]
	}

	vm, err := mem.VirtualMemory()
	keep(err)
	if vm != nil {
		st.MemUsedPct = vm.UsedPercent
		st.MemTotalBytes = vm.Total
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	keep(err)
	if proc != nil {
		if mi, err := proc.MemoryInfo(); err == nil && mi != nil {
			st.ProcessRSS = mi.RSS
		} else {
			keep(err)
		}
		if c, err := proc.CPUPercent(); err == nil {
			st.ProcessCPU = c
		} else {
			keep(err)
		}
	}

	return st, firstErr
}

// Report is the -stats summary of one run.
type Report struct {
	Build    string
	Input    string
	Surface  string
	Images   int
	Frames   uint64
	Wall     time.Duration
	Host     HostStats
	PoolHits uint64
}

func (r Report) FPS() float64 {
	if r.Wall <= 0 {
		return 0
	}
	return float64(r.Frames) / r.Wall.Seconds()
}

func (r Report) String() string {
	var b strings.Builder
	b.WriteString("--- [PERFORMANCE REPORT] ---\n")
	fmt.Fprintf(&b, "Build: %s\n", r.Build)
	fmt.Fprintf(&b, "Surface: %s | Images: %d\n", r.Surface, r.Images)
	fmt.Fprintf(&b, "Frames: %d | Total Time: %.2fs\n", r.Frames, r.Wall.Seconds())
	fmt.Fprintf(&b, "Effective FPS: %.2f\n", r.FPS())
	fmt.Fprintf(&b, "Host CPU: %.1f%% | Host Mem: %.1f%% of %d MiB\n", r.Host.CPUPercent, r.Host.MemUsedPct, r.Host.MemTotalBytes>>20)
	fmt.Fprintf(&b, "Process: CPU %.1f%% | RSS %d MiB | Buffer reuse: %d\n", r.Host.ProcessCPU, r.Host.ProcessRSS>>20, r.PoolHits)
	b.WriteString("----------------------------\n")
	return b.String()
}

// LogLine is the one-line form appended to the benchmark log.
func (r Report) LogLine(now time.Time) string {
	return fmt.Sprintf("[%s] Build: %s | Input: %s | Surface: %s | Images: %d | Frames: %d | Total: %.2fs | FPS: %.2f | CPU: %.1f%% | RSS: %dMiB\n",
		now.Format("2006-01-02 15:04:05"),
		r.Build,
		filepath.Base(r.Input),
		r.Surface,
		r.Images,
		r.Frames,
		r.Wall.Seconds(),
		r.FPS(),
		r.Host.CPUPercent,
		r.Host.ProcessRSS>>20,
	)
}

// AppendLog appends the report line to path.
func (r Report) AppendLog(path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(r.LogLine(time.Now()))
	return err
}
