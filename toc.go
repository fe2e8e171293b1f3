package bookpress

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bookpress/bookpress/internal/fileutil"
)

// BuildTOC compiles the standalone table-of-contents fragment for the
// variant's full document set: a short PDF holding only the contents pages,
// written under the output's fragments directory with a deterministic name.
// The variant's TOCArgs typically point the compiler at a TOC-only template.
func (s *Service) BuildTOC(ctx context.Context, cfg BuildConfig) (Artifact, error) {
	if err := cfg.Validate(); err != nil {
		return Artifact{}, err
	}
	if len(cfg.Units) == 0 {
		return Artifact{}, fmt.Errorf("%w: nothing to compile", ErrCompile)
	}

	rel := tocFragmentPath(cfg.Output)
	host := cfg.hostPath(rel)
	if err := fileutil.EnsureDir(filepath.Dir(host)); err != nil {
		return Artifact{}, err
	}

	opts, err := resolveDates(cfg.Options, s.cfg.now())
	if err != nil {
		return Artifact{}, err
	}
	opts.TOC = true
	opts.ExtraArgs = concatArgs(cfg.Options.ExtraArgs, cfg.TOCArgs)

	job := CompileJob{BaseDir: cfg.BaseDir, Units: cfg.Units, Options: opts, Output: rel}
	if err := s.compiler.Compile(ctx, job); err != nil {
		return Artifact{}, fmt.Errorf("generating table of contents: %w", err)
	}
	return Artifact{Path: host}, nil
}

// concatArgs returns a fresh slice holding a followed by b, leaving both
// inputs untouched.
func concatArgs(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
