// Package resmon attaches best-effort resource accounting to a flow run,
// surfaced under the "_resource_usage" results key. It is
// never allowed to fail a flow: every constructor and sampling call reports
// unavailability rather than an error a caller must propagate.
//
// Linux accounting samples CPU/disk/RAM/energy via
// github.com/ja7ad/consumption; other platforms fall back to a no-op monitor
// with the same interface. DetectCapabilities separately reports BTF and
// cgroup v2 support; New does not consult it.
package resmon

import "time"

// Usage is one accounting sample, in the units consumption.Result uses.
type Usage struct {
	CPUWatts     float64 `json:"cpu_watts"`
	DiskWatts    float64 `json:"disk_watts"`
	RAMWatts     float64 `json:"ram_watts"`
	TotalWatts   float64 `json:"total_watts"`
	EnergyJoules float64 `json:"energy_joules"`
	Samples      int     `json:"samples"`
	Backend      string  `json:"backend"` // "cgroup" (Linux monitor) or "unsupported"
}

// Monitor samples resource usage for a set of PIDs over the lifetime of a
// flow run. Implementations must tolerate being constructed and sampled on
// platforms/kernels without the required support: Sample becomes a no-op
// and Result().Backend reports "unsupported".
type Monitor interface {
	// Sample records one window of usage for pids, covering the last dt.
	Sample(pids []int, dt time.Duration)
	// Result returns the cumulative usage observed so far.
	Result() Usage
	// Close releases any backend resources (e.g. a temporary cgroup leaf).
	Close()
}
