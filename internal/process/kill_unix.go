//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// Group places the command in its own process group before it starts. The
// local compile engine forks the real work (pandoc runs xelatex) as
// children of the tool we invoke; without a group, cancellation would kill
// only the direct child.
func Group(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// KillGroup force-kills the command's process group. Safe to call when the
// process never started.
func KillGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
