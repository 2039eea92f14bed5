//go:build !linux

package resmon

// New returns a no-op Monitor: cgroup-aware accounting requires Linux.
func New(alpha float64) Monitor {
	return unsupportedMonitor{}
}
