package resmon

import (
	"os"
	"strconv"
	"strings"
)

// Capabilities reports what native BTF/CO-RE and cgroup v2 support the
// running kernel offers. It is informational: resmon.New does not consult
// it when choosing a backend, and no eBPF program is loaded.
type Capabilities struct {
	BTFAvailable  bool   `json:"btf_available"`
	KernelVersion string `json:"kernel_version"`
	CORESupport   bool   `json:"core_support"` // kernel >= 5.8
	CgroupV2      bool   `json:"cgroup_v2"`
}

// DetectCapabilities probes /proc and /sys for BTF and cgroup v2 support.
// Safe to call on any platform; returns the zero value where the relevant
// paths don't exist.
func DetectCapabilities() Capabilities {
	c := Capabilities{}
	c.KernelVersion = readKernelVersion()
	major, minor := parseKernelVersion(c.KernelVersion)
	c.CORESupport = major > 5 || (major == 5 && minor >= 8)

	c.BTFAvailable = btfAvailable()
	if data, err := os.ReadFile("/proc/mounts"); err == nil {
		c.CgroupV2 = strings.Contains(string(data), "cgroup2 /sys/fs/cgroup cgroup2")
	}
	return c
}

func readKernelVersion() string {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return ""
	}
	fields := strings.Fields(string(data))
	if len(fields) >= 3 {
		return fields[2]
	}
	return ""
}

func parseKernelVersion(version string) (int, int) {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return 0, 0
	}
	major, _ := strconv.Atoi(parts[0])
	minorStr := parts[1]
	if idx := strings.IndexAny(minorStr, "-+~"); idx >= 0 {
		minorStr = minorStr[:idx]
	}
	minor, _ := strconv.Atoi(minorStr)
	return major, minor
}
