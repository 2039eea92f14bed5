//go:build linux

package resmon

import (
	"time"

	"github.com/ja7ad/consumption/pkg/consumption"
	"github.com/ja7ad/consumption/pkg/system/proc"
)

type linuxMonitor struct {
	col     proc.Collector
	acc     *consumption.Accumulator
	backend string
	samples int
}

// New builds a Monitor backed by cgroup-aware /proc accounting. alpha is the
// EMA smoothing factor for VM utilization (0 disables smoothing). Falls back
// to an unsupported no-op Monitor if cgroup detection fails (e.g. running in
// an unprivileged container without delegation).
func New(alpha float64) Monitor {
	col, err := proc.NewCollector(alpha)
	if err != nil {
		return &unsupportedMonitor{}
	}
	return &linuxMonitor{
		col:     col,
		acc:     consumption.New(nil),
		backend: "cgroup",
	}
}

func (m *linuxMonitor) Sample(pids []int, dt time.Duration) {
	if len(pids) == 0 {
		return
	}
	snap, err := m.col.Sample(pids, dt.Seconds())
	if err != nil {
		return
	}
	m.acc.Apply(snap)
	m.samples++
}

func (m *linuxMonitor) Result() Usage {
	avg := m.acc.Averages()
	return Usage{
		CPUWatts:     avg.PCPU,
		DiskWatts:    avg.PDisk,
		RAMWatts:     avg.PRAM,
		TotalWatts:   avg.PTotal,
		EnergyJoules: m.acc.EnergyCumJ(),
		Samples:      m.samples,
		Backend:      m.backend,
	}
}

func (m *linuxMonitor) Close() {
	_ = m.col.Close()
}
