package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookpress/bookpress"
	"github.com/bookpress/bookpress/internal/fileutil"
)

// ErrNoArtifact means an enrichment command was asked to modify an artifact
// that has not been built yet.
var ErrNoArtifact = errors.New("artifact not found")

// runCoverCmd executes the cover command and returns an exit code. Unlike
// the tolerant cover step inside build, an explicit cover invocation treats
// a skipped step as an error: the user asked for covers and got none.
func runCoverCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseCoverFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}
	if len(positional) > 1 {
		fmt.Fprintf(env.Stderr, "cover takes at most one variant, got %d\n", len(positional))
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

	artPath := cfg.HostOutput()
	if !fileutil.FileExists(artPath) {
		err := fmt.Errorf("%w: %s (run 'bookpress build %s' first)", ErrNoArtifact, artPath, name)
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}

	svc := newService(proj.cfg, flags.verify, env)
	art := bookpress.Artifact{Path: artPath}

	enr, err := svc.AddCover(ctx, art, cfg.HostPath(cfg.CoverFront), cfg.HostPath(cfg.CoverBack))
	if err != nil {
		fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", name, err, errorHint(err))
		return exitCodeFor(err)
	}
	if !enr.Applied {
		fmt.Fprintf(env.Stderr, "covers not applied to %s: %s\n", artPath, enr.Reason)
		return ExitGeneral
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Added covers to %s\n", artPath)
	}
	return ExitSuccess
}
