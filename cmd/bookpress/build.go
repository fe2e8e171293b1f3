package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookpress/bookpress"
)

// ErrOutputWithVariants rejects --output across multiple variants: one path
// cannot hold several artifacts.
var ErrOutputWithVariants = errors.New("--output requires exactly one variant")

// runBuildCmd executes the build command and returns an exit code.
func runBuildCmd(ctx context.Context, args []string, env *Environment) int {
	flags, variants, err := parseBuildFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	proj, err := loadProject(&flags.common, &flags.toolchain, envCfg)
	if err != nil {
		printError(env, err)
		return exitCodeFor(err)
	}

	names, err := proj.cfg.ResolveVariantNames(variants)
	if err != nil {
		printError(env, err)
		return exitCodeFor(err)
	}
	if flags.output != "" && len(names) > 1 {
		fmt.Fprintln(env.Stderr, ErrOutputWithVariants)
		return ExitUsage
	}

	svc := newService(proj.cfg, flags.verify, env)

	// Variants build sequentially and stop at the first failure, so a broken
	// shared profile does not fail the same way N times.
	for _, name := range names {
		if code := buildVariant(ctx, svc, proj, name, flags, env); code != ExitSuccess {
			return code
		}
	}
	return ExitSuccess
}

// buildVariant runs the full pipeline for one variant and reports the result.
func buildVariant(ctx context.Context, svc *bookpress.Service, proj *project, name string, flags *buildFlags, env *Environment) int {
	cfg, err := variantBuildConfig(proj, name)
	if err != nil {
		printError(env, err)
		return exitCodeFor(err)
	}
	applyBuildFlags(&cfg, flags)

	if flags.common.verbose {
		fmt.Fprintf(env.Stdout, "Building %s (%d units, chunk size %d)\n", name, len(cfg.Units), cfg.ChunkSize)
	}

	start := env.Now()
	res, err := svc.Run(ctx, cfg)
	if err != nil {
		fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", name, err, errorHint(err))
		return exitCodeFor(err)
	}

	printBuildResult(env, flags.common, res, env.Now().Sub(start))
	return ExitSuccess
}

// applyBuildFlags overlays per-invocation build flags onto the variant
// configuration. Flags win over environment values and the file.
func applyBuildFlags(cfg *bookpress.BuildConfig, flags *buildFlags) {
	if flags.chunkSize != chunkSizeSentinel {
		cfg.ChunkSize = flags.chunkSize
	}
	if flags.output != "" {
		cfg.Output = flags.output
	}
	if flags.noTOC {
		cfg.Options.TOC = false
		cfg.TOCMerge = false
	}
	if flags.noCover {
		cfg.CoverFront = ""
		cfg.CoverBack = ""
	}
}

// printBuildResult reports one successful variant build.
func printBuildResult(env *Environment, common commonFlags, res bookpress.RunResult, elapsed time.Duration) {
	if common.quiet {
		return
	}
	if res.Pages > 0 {
		fmt.Fprintf(env.Stdout, "Built %s (%d pages)\n", res.Artifact.Path, res.Pages)
	} else {
		fmt.Fprintf(env.Stdout, "Built %s\n", res.Artifact.Path)
	}
	if common.verbose {
		fmt.Fprintf(env.Stdout, "  elapsed: %s\n", elapsed.Round(time.Millisecond))
		fmt.Fprintf(env.Stdout, "  covers:  %s\n", enrichmentStatus(res.Cover))
		fmt.Fprintf(env.Stdout, "  toc:     %s\n", enrichmentStatus(res.TOC))
	}
}

// enrichmentStatus formats an optional pipeline step's outcome.
func enrichmentStatus(e bookpress.Enrichment) string {
	if e.Applied {
		return "applied"
	}
	return "skipped (" + e.Reason + ")"
}
