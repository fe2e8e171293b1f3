package bookpress

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookpress/bookpress/internal/shell"
)

// runHook executes one configured hook script in the project directory with
// the build context exported in the environment. An empty script is a no-op.
// Hooks are non-interactive and fail fast: a non-zero exit aborts the run.
func (s *Service) runHook(ctx context.Context, phase, script string, cfg BuildConfig) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}
	opts := shell.Options{
		Dir: cfg.baseDir(),
		Env: []string{
			"BOOKPRESS_VARIANT=" + cfg.Name,
			"BOOKPRESS_OUTPUT=" + cfg.hostOutput(),
		},
		Stdout: s.cfg.stdout,
		Stderr: s.cfg.stderr,
	}
	if err := s.runScript(ctx, script, opts); err != nil {
		return fmt.Errorf("running %s hook: %w", phase, err)
	}
	return nil
}
