package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// runCleanCmd executes the clean command and returns an exit code. It
// removes the configured output directory entirely, chunk fragments
// included. The config must load so clean never guesses at a path.
func runCleanCmd(args []string, env *Environment) int {
	flags, positional, err := parseCleanFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}
	if len(positional) > 0 {
		fmt.Fprintf(env.Stderr, "clean takes no arguments, got %d\n", len(positional))
		return ExitUsage
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	proj, err := loadProject(&flags.common, nil, envCfg)
	if err != nil {
		printError(env, err)
		return exitCodeFor(err)
	}

	// Refuse to remove the project root itself. Validation already rejects
	// absolute paths and parent traversal.
	if filepath.Clean(proj.cfg.Output.Dir) == "." {
		fmt.Fprintln(env.Stderr, "output directory is the project root; refusing to remove")
		return ExitUsage
	}

	dir := filepath.Join(proj.cfg.BaseDir, proj.cfg.Output.Dir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		if !flags.common.quiet {
			fmt.Fprintf(env.Stdout, "Nothing to clean: %s\n", dir)
		}
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}

	if flags.dryRun {
		for _, entry := range entries {
			fmt.Fprintf(env.Stdout, "Would remove %s\n", filepath.Join(dir, entry.Name()))
		}
		return ExitSuccess
	}

	if err := os.RemoveAll(dir); err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Removed %s (%d entries)\n", dir, len(entries))
	}
	return ExitSuccess
}
