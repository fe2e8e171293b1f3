// Package shell runs the config-defined build hooks with an embedded POSIX
// shell interpreter, so hooks behave the same on every platform without
// depending on a host /bin/sh.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ErrEmptyScript is returned for blank scripts; callers skip empty hooks
// before reaching this package.
var ErrEmptyScript = errors.New("script cannot be empty")

// Options configure one script run. Hooks are non-interactive: stdin is
// always closed.
type Options struct {
	Dir    string   // working directory; empty means the process cwd
	Env    []string // extra KEY=VALUE pairs appended to the process env
	Stdout io.Writer
	Stderr io.Writer
}

// Check parses the script and reports syntax errors without running it.
func Check(script string) error {
	if strings.TrimSpace(script) == "" {
		return ErrEmptyScript
	}
	if _, err := syntax.NewParser().Parse(strings.NewReader(script), "hook"); err != nil {
		return fmt.Errorf("parsing hook script: %w", err)
	}
	return nil
}

// Run executes the script and fails on its first non-zero status. The
// returned error wraps interp.ExitStatus when the script itself exited
// non-zero, so callers can distinguish script failure from interpreter
// failure.
func Run(ctx context.Context, script string, opts Options) error {
	if strings.TrimSpace(script) == "" {
		return ErrEmptyScript
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "hook")
	if err != nil {
		return fmt.Errorf("parsing hook script: %w", err)
	}

	env := expand.ListEnviron(append(os.Environ(), opts.Env...)...)

	runner, err := interp.New(
		interp.Dir(opts.Dir),
		interp.Env(env),
		interp.StdIO(nil, opts.Stdout, opts.Stderr),
	)
	if err != nil {
		return fmt.Errorf("creating interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		return fmt.Errorf("running hook: %w", err)
	}
	return nil
}
