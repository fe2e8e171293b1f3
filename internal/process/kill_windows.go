//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// Group is a no-op on Windows; KillGroup terminates the tree instead.
func Group(_ *exec.Cmd) {}

// KillGroup force-kills the command and its children via taskkill.
// /F forces, /T walks the process tree.
func KillGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(cmd.Process.Pid)).Run()
}
