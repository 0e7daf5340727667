//go:build !windows

package executor

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setProcessGroup places the child in its own process group so that
// timeout signals reach the whole shell pipeline, not just the shell.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// signalGroup delivers sig to the child's entire process group, falling
// back to the child alone when the group cannot be resolved.
func signalGroup(cmd *exec.Cmd, sig unix.Signal) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	if pid <= 0 {
		return
	}
	if pgid, err := unix.Getpgid(pid); err == nil && pgid > 0 {
		// Negative PGID targets the full group (shell + spawned children).
		_ = unix.Kill(-pgid, sig)
		return
	}
	_ = cmd.Process.Signal(syscall.Signal(sig))
}
