package process

// Notes:
// - Real group-kill behavior needs a spawned tree and is exercised through
//   the runner's cancellation path in integration runs; here we pin the
//   safe-by-construction cases only.
// - Cannot test killing a real PID: SIGKILL to an arbitrary group could
//   target unrelated processes on a loaded machine.

import (
	"os/exec"
	"testing"
)

// ---------------------------------------------------------------------------
// TestKillGroup - Unstarted command
// ---------------------------------------------------------------------------

func TestKillGroup_NotStarted(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("this-tool-does-not-exist")
	if err := KillGroup(cmd); err != nil {
		t.Errorf("KillGroup() on unstarted command = %v, want nil", err)
	}
}

// ---------------------------------------------------------------------------
// TestGroup - Attribute setup
// ---------------------------------------------------------------------------

func TestGroup_DoesNotPanic(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("this-tool-does-not-exist")
	Group(cmd)
}
