// Package toolchain locates and invokes the external programs the build
// pipeline drives: the container engine hosting the Pandoc/XeLaTeX image, a
// locally installed pandoc, and the pdftk/cpdf merge tools.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/bookpress/bookpress/internal/process"
)

// CommandRunner abstracts command execution to enable testing without real
// subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec. Commands run in their
// own process group and cancellation kills the whole group: a local pandoc
// run forks xelatex, and the child must not outlive a cancelled build.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	process.Group(cmd)
	cmd.Cancel = func() error { return process.KillGroup(cmd) }

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return "", "", fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", "", fmt.Errorf("starting command: %w", err)
	}

	stderrContent, err := io.ReadAll(stderrPipe)
	if err != nil {
		return "", "", fmt.Errorf("reading stderr: %w", err)
	}

	err = cmd.Wait()
	return stdout.String(), string(stderrContent), err
}

// LookTool reports the resolved path of an external tool, if installed.
func LookTool(name string) (string, bool) {
	path, err := exec.LookPath(name)
	return path, err == nil
}

// ExitStatus extracts the process exit code from a command error.
// Returns -1 when the error does not carry one (start failure, cancellation).
func ExitStatus(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
