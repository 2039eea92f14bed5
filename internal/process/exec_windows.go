//go:build windows

package process

import (
	"os/exec"
	"syscall"
)

func setPlatformProcAttr(cmd *exec.Cmd) {}

func signalProcessGroup(cmd *exec.Cmd, sig syscall.Signal) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
