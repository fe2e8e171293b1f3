package main

import (
	"context"
	"fmt"

	"github.com/bookpress/bookpress"
	"github.com/bookpress/bookpress/internal/fileutil"
)

// runTOCCmd executes the toc command and returns an exit code. Without
// --merge it builds the standalone fragment and leaves it in the fragments
// directory for inspection; with --merge it prepends the fragment to the
// built artifact, and a skipped merge is an error.
func runTOCCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseTOCFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}
	if len(positional) > 1 {
		fmt.Fprintf(env.Stderr, "toc takes at most one variant, got %d\n", len(positional))
		return ExitUsage
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	proj, err := loadProject(&flags.common, &flags.toolchain, envCfg)
	if err != nil {
		printError(env, err)
		return exitCodeFor(err)
	}

	names, err := proj.cfg.ResolveVariantNames(positional)
	if err != nil {
		printError(env, err)
		return exitCodeFor(err)
	}
	name := names[0]

	cfg, err := variantBuildConfig(proj, name)
	if err != nil {
		printError(env, err)
		return exitCodeFor(err)
	}

	svc := newService(proj.cfg, flags.verify, env)

	if !flags.merge {
		frag, err := svc.BuildTOC(ctx, cfg)
		if err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", name, err, errorHint(err))
			return exitCodeFor(err)
		}
		if !flags.common.quiet {
			fmt.Fprintf(env.Stdout, "Created %s\n", frag.Path)
		}
		return ExitSuccess
	}

	artPath := cfg.HostOutput()
	if !fileutil.FileExists(artPath) {
		err := fmt.Errorf("%w: %s (run 'bookpress build %s' first)", ErrNoArtifact, artPath, name)
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}

	enr, err := svc.MergeTOC(ctx, bookpress.Artifact{Path: artPath}, cfg)
	if err != nil {
		fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", name, err, errorHint(err))
		return exitCodeFor(err)
	}
	if !enr.Applied {
		fmt.Fprintf(env.Stderr, "table of contents not applied to %s: %s\n", artPath, enr.Reason)
		return ExitGeneral
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Merged table of contents into %s\n", artPath)
	}
	return ExitSuccess
}
