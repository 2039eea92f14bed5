package resmon

import "time"

// unsupportedMonitor is the no-op Monitor used when cgroup-aware accounting
// isn't available: unprivileged containers, kernels without cgroup v1/v2, or
// any non-Linux platform.
type unsupportedMonitor struct{}

func (unsupportedMonitor) Sample(pids []int, dt time.Duration) {}

func (unsupportedMonitor) Result() Usage { return Usage{Backend: "unsupported"} }

func (unsupportedMonitor) Close() {}
