//go:build linux

package resmon

import (
	"github.com/cilium/ebpf/btf"
	"github.com/cilium/ebpf/rlimit"
)

// btfAvailable parses the running kernel's BTF via cilium/ebpf rather than
// merely checking that /sys/kernel/btf/vmlinux exists: a present-but-
// unreadable or malformed blob should not be reported available.
func btfAvailable() bool {
	_ = rlimit.RemoveMemlock() // pre-5.11 kernels cap locked memory for BPF maps
	_, err := btf.LoadKernelSpec()
	return err == nil
}
