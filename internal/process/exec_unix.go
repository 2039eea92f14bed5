//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// setPlatformProcAttr puts the child in its own process group so terminate
// can signal the whole group with a single kill(2) call.
func setPlatformProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// signalProcessGroup signals the negative PID (the process group) so
// children spawned by the tool are reached too.
func signalProcessGroup(cmd *exec.Cmd, sig syscall.Signal) {
	if cmd.Process == nil {
		return
	}
	_ = syscall.Kill(-cmd.Process.Pid, sig)
}
