package bookpress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bookpress/bookpress/internal/fileutil"
	"github.com/bookpress/bookpress/internal/shell"
)

// Service orchestrates the book build pipeline: compiling the ordered units,
// chunked builds with ordered recombination, cover and table-of-contents
// enrichment, hooks, and page count verification.
type Service struct {
	cfg       serviceConfig
	compiler  Compiler
	merger    Merger
	runScript func(ctx context.Context, script string, opts shell.Options) error
}

// New creates a Service with default configuration: auto-detected container
// engine and merge tool, silent output. Use options to customize behavior.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:       serviceConfig{stdout: io.Discard, stderr: io.Discard, now: time.Now},
		runScript: shell.Run,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.compiler == nil {
		s.compiler = NewPandocCompiler(CompilerConfig{})
	}
	if s.merger == nil {
		s.merger = NewCommandMerger(MergerAuto)
	}
	return s
}

// Build compiles the configured units into a single artifact with one
// compiler invocation. The output directory is created if missing. An empty
// unit list fails with ErrCompile: the pipeline never produces an empty
// artifact. An "auto" date variable is expanded against the service clock
// before the compiler sees it.
func (s *Service) Build(ctx context.Context, cfg BuildConfig) (Artifact, error) {
	if err := cfg.Validate(); err != nil {
		return Artifact{}, err
	}
	if len(cfg.Units) == 0 {
		return Artifact{}, fmt.Errorf("%w: nothing to compile", ErrCompile)
	}
	opts, err := resolveDates(cfg.Options, s.cfg.now())
	if err != nil {
		return Artifact{}, err
	}
	if err := fileutil.EnsureDir(filepath.Dir(cfg.hostOutput())); err != nil {
		return Artifact{}, err
	}

	job := CompileJob{BaseDir: cfg.BaseDir, Units: cfg.Units, Options: opts, Output: cfg.Output}
	if err := s.compiler.Compile(ctx, job); err != nil {
		return Artifact{}, fmt.Errorf("compiling %s: %w", cfg.Output, err)
	}
	return Artifact{Path: cfg.hostOutput()}, nil
}

// BuildChunked partitions the ordered units into contiguous groups of at
// most cfg.ChunkSize files, builds each group sequentially to a
// deterministic fragment path, then concatenates the fragments in order.
// The overall unit order is preserved across every partition boundary.
//
// Any chunk failure or merge failure is reported as ErrMerge; a failed
// chunk's ErrCompile stays visible through the wrap chain.
func (s *Service) BuildChunked(ctx context.Context, cfg BuildConfig) (Artifact, error) {
	if err := cfg.Validate(); err != nil {
		return Artifact{}, err
	}
	if len(cfg.Units) == 0 {
		return Artifact{}, fmt.Errorf("%w: nothing to compile", ErrCompile)
	}

	groups := partition(cfg.Units, cfg.ChunkSize)
	if len(groups) == 1 {
		return s.Build(ctx, cfg)
	}

	// One resolution for the whole build, so every chunk carries the same
	// date even across a midnight boundary.
	opts, err := resolveDates(cfg.Options, s.cfg.now())
	if err != nil {
		return Artifact{}, err
	}
	if err := fileutil.EnsureDir(filepath.Dir(cfg.hostPath(chunkPath(cfg.Output, 1)))); err != nil {
		return Artifact{}, err
	}

	fragments := make([]string, 0, len(groups))
	for i, group := range groups {
		rel := chunkPath(cfg.Output, i+1)
		job := CompileJob{BaseDir: cfg.BaseDir, Units: group, Options: opts, Output: rel}
		if err := s.compiler.Compile(ctx, job); err != nil {
			if ctx.Err() != nil {
				return Artifact{}, ctx.Err()
			}
			return Artifact{}, fmt.Errorf("%w: building chunk %d of %d: %w", ErrMerge, i+1, len(groups), err)
		}
		fragments = append(fragments, cfg.hostPath(rel))
	}

	if err := s.mergeInto(ctx, fragments, cfg.hostOutput()); err != nil {
		if ctx.Err() != nil {
			return Artifact{}, ctx.Err()
		}
		return Artifact{}, fmt.Errorf("concatenating %d chunks: %w", len(groups), err)
	}
	return Artifact{Path: cfg.hostOutput()}, nil
}

// AddCover wraps the artifact between the front and back cover PDFs,
// atomically replacing the output. Covers are strictly optional: when
// either is unconfigured or missing on disk the artifact is left unchanged
// and the skip is reported in the Enrichment, not as an error. A merge
// failure with both covers present is an error.
func (s *Service) AddCover(ctx context.Context, art Artifact, front, back string) (Enrichment, error) {
	switch {
	case front == "" && back == "":
		return Enrichment{Reason: "no covers configured"}, nil
	case front == "" || back == "":
		return Enrichment{Reason: "both covers are required, only one is configured"}, nil
	}
	for _, cover := range []string{front, back} {
		if !fileutil.FileExists(cover) {
			return Enrichment{Reason: fmt.Sprintf("cover %s not found", cover)}, nil
		}
	}

	if err := s.mergeInto(ctx, []string{front, art.Path, back}, art.Path); err != nil {
		return Enrichment{}, fmt.Errorf("adding covers to %s: %w", art.Path, err)
	}
	return Enrichment{Applied: true}, nil
}

// MergeTOC builds the standalone table-of-contents fragment over the full
// document set and prepends it to the artifact, atomically replacing the
// output. Best effort: a failed fragment build or merge leaves the artifact
// unchanged with the reason recorded. Only context cancellation aborts.
func (s *Service) MergeTOC(ctx context.Context, art Artifact, cfg BuildConfig) (Enrichment, error) {
	if err := cfg.Validate(); err != nil {
		return Enrichment{}, err
	}
	if len(cfg.Units) == 0 {
		return Enrichment{Reason: "no units to derive a table of contents from"}, nil
	}

	frag, err := s.BuildTOC(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return Enrichment{}, ctx.Err()
		}
		return Enrichment{Reason: err.Error()}, nil
	}

	if err := s.mergeInto(ctx, []string{frag.Path, art.Path}, art.Path); err != nil {
		if ctx.Err() != nil {
			return Enrichment{}, ctx.Err()
		}
		return Enrichment{Reason: fmt.Sprintf("merging table of contents: %v", err)}, nil
	}
	return Enrichment{Applied: true}, nil
}

// Run executes the composite pipeline for one variant: before hook, build
// (chunked when configured), covers, table of contents, verification, after
// hook. Steps run sequentially with no retries; the first failure outside
// the optional enrichment steps aborts the run.
func (s *Service) Run(ctx context.Context, cfg BuildConfig) (RunResult, error) {
	var res RunResult
	if err := cfg.Validate(); err != nil {
		return res, err
	}

	if err := s.runHook(ctx, "before", cfg.Hooks.Before, cfg); err != nil {
		return res, err
	}

	var art Artifact
	var err error
	if cfg.ChunkSize > 0 {
		art, err = s.BuildChunked(ctx, cfg)
	} else {
		art, err = s.Build(ctx, cfg)
	}
	if err != nil {
		return res, err
	}
	res.Artifact = art

	res.Cover, err = s.AddCover(ctx, art, cfg.hostPath(cfg.CoverFront), cfg.hostPath(cfg.CoverBack))
	if err != nil {
		return res, err
	}

	if cfg.TOCMerge {
		res.TOC, err = s.MergeTOC(ctx, art, cfg)
		if err != nil {
			return res, err
		}
	} else {
		res.TOC = Enrichment{Reason: "not configured"}
	}

	pages, err := CountPages(art.Path)
	if err != nil {
		if s.cfg.verify {
			return res, fmt.Errorf("%w: %v", ErrVerify, err)
		}
		fmt.Fprintf(s.cfg.stderr, "warning: could not read page count of %s: %v\n", art.Path, err)
	}
	res.Pages = pages

	if err := s.runHook(ctx, "after", cfg.Hooks.After, cfg); err != nil {
		return res, err
	}
	return res, nil
}

// mergeInto concatenates inputs in order into dst, writing to a temporary
// sibling first and replacing dst atomically on success, so a failed merge
// never clobbers an existing artifact. The merged page count is checked
// against the sum of the inputs: mismatches fail under WithStrictVerify and
// are warnings otherwise.
func (s *Service) mergeInto(ctx context.Context, inputs []string, dst string) error {
	tmp := dst + ".tmp"
	if err := s.merger.Merge(ctx, inputs, tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := s.checkMerge(tmp, inputs); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := fileutil.ReplaceFile(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", dst, err)
	}
	return nil
}

// checkMerge compares the merged page count against the sum of the inputs.
// Unreadable counts fail strict verification: an artifact that cannot be
// verified is treated the same as one that failed.
func (s *Service) checkMerge(merged string, inputs []string) error {
	want, err := SumPages(inputs...)
	if err == nil {
		var got int
		got, err = CountPages(merged)
		if err == nil {
			if got == want {
				return nil
			}
			err = fmt.Errorf("%w: merged artifact has %d pages, inputs total %d", ErrVerify, got, want)
		}
	}
	if s.cfg.verify {
		if !errors.Is(err, ErrVerify) {
			err = fmt.Errorf("%w: %v", ErrVerify, err)
		}
		return err
	}
	fmt.Fprintf(s.cfg.stderr, "warning: %v\n", err)
	return nil
}
