package bookpress

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bookpress/bookpress/internal/toolchain"
)

// Compiler turns an ordered list of source units into one PDF.
// Implementations report failures with an error wrapping ErrCompile, except
// for context cancellation which is returned as-is.
type Compiler interface {
	Compile(ctx context.Context, job CompileJob) error
}

// CompileJob is a single compiler invocation: ordered inputs, formatting
// options, one output. Paths are relative to BaseDir.
type CompileJob struct {
	BaseDir string
	Units   []string
	Options CompileOptions
	Output  string
}

// DefaultImage is the compiler image used when none is configured.
const DefaultImage = "pandoc/extra:3.5"

// defaultPandoc is the compiler binary for local runs.
const defaultPandoc = "pandoc"

// CompilerConfig describes how the external compiler is hosted.
type CompilerConfig struct {
	Engine string // "auto", "docker", "podman", "local"; empty means auto
	Image  string // compiler image for container runs
	Memory string // container memory limit, e.g. "2g"
	User   string // uid:gid for container runs
	Pandoc string // binary for local runs, default "pandoc"

	// Runner overrides command execution, e.g. for tests. Nil runs real
	// subprocesses.
	Runner toolchain.CommandRunner
}

// PandocCompiler invokes pandoc over the ordered units of a compile job,
// either through a container engine with the project directory mounted as
// the working directory, or directly on the host.
type PandocCompiler struct {
	cfg    CompilerConfig
	runner toolchain.CommandRunner
	engine toolchain.Engine // resolved on first use
}

// Compile-time interface check
var _ Compiler = (*PandocCompiler)(nil)

// NewPandocCompiler creates a compiler. The engine is detected lazily on the
// first compile, so construction never probes the system.
func NewPandocCompiler(cfg CompilerConfig) *PandocCompiler {
	runner := cfg.Runner
	if runner == nil {
		runner = &toolchain.ExecRunner{}
	}
	return &PandocCompiler{cfg: cfg, runner: runner}
}

// Compile runs one compiler invocation to completion. Non-zero exits are
// wrapped as ErrCompile with the exit status and the tail of stderr, where
// LaTeX reports the actual failure.
func (c *PandocCompiler) Compile(ctx context.Context, job CompileJob) error {
	if len(job.Units) == 0 {
		return fmt.Errorf("%w: nothing to compile", ErrCompile)
	}

	engine, err := c.resolveEngine(ctx)
	if err != nil {
		return err
	}

	bin, args, err := c.command(engine, job)
	if err != nil {
		return err
	}

	_, stderr, err := c.runner.Run(ctx, bin, args...)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if status := toolchain.ExitStatus(err); status >= 0 {
			return fmt.Errorf("%w: %s exited with status %d: %s", ErrCompile, bin, status, stderrTail(stderr))
		}
		return fmt.Errorf("%w: running %s: %v", ErrCompile, bin, err)
	}
	return nil
}

// resolveEngine detects the engine once and reuses the result. A named
// engine that is not responding fails rather than being substituted.
func (c *PandocCompiler) resolveEngine(ctx context.Context) (toolchain.Engine, error) {
	if c.engine != "" {
		return c.engine, nil
	}
	requested := toolchain.Engine(c.cfg.Engine)
	if requested == "" {
		requested = toolchain.EngineAuto
	}
	engine, err := toolchain.Detect(ctx, c.runner, requested)
	if err != nil {
		return "", err
	}
	c.engine = engine
	return engine, nil
}

// command assembles the binary and argument list for one invocation.
// Container runs keep the job's relative paths and rely on the mounted
// working directory; local runs resolve them against BaseDir instead.
func (c *PandocCompiler) command(engine toolchain.Engine, job CompileJob) (string, []string, error) {
	if engine == toolchain.EngineLocal {
		return c.pandocBin(), pandocArgs(job, job.BaseDir), nil
	}

	workdir := job.BaseDir
	if workdir == "" {
		workdir = "."
	}
	workdir, err := filepath.Abs(workdir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving project directory: %w", err)
	}

	spec := toolchain.RunSpec{
		Image:   c.image(),
		Workdir: workdir,
		Memory:  c.cfg.Memory,
		User:    c.cfg.User,
		Command: append([]string{defaultPandoc}, pandocArgs(job, "")...),
	}
	return string(engine), toolchain.RunArgs(engine, spec), nil
}

func (c *PandocCompiler) image() string {
	if c.cfg.Image == "" {
		return DefaultImage
	}
	return c.cfg.Image
}

func (c *PandocCompiler) pandocBin() string {
	if c.cfg.Pandoc == "" {
		return defaultPandoc
	}
	return c.cfg.Pandoc
}

// pandocArgs builds the pandoc command line for a job. A non-empty root
// resolves relative paths against it for host-side runs; an empty root
// keeps them relative for container runs. ExtraArgs are appended verbatim.
func pandocArgs(job CompileJob, root string) []string {
	resolve := func(p string) string {
		if root == "" || p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}

	opts := job.Options
	args := []string{"--from", "markdown"}
	if opts.PDFEngine != "" {
		args = append(args, "--pdf-engine", opts.PDFEngine)
	}
	if opts.StyleFile != "" {
		args = append(args, "--include-in-header", resolve(opts.StyleFile))
	}
	if opts.MetadataFile != "" {
		args = append(args, "--metadata-file", resolve(opts.MetadataFile))
	}
	if opts.TOC {
		args = append(args, "--toc")
	}
	if opts.TOCDepth > 0 {
		args = append(args, "--toc-depth", strconv.Itoa(opts.TOCDepth))
	}
	if opts.NumberSections {
		args = append(args, "--number-sections")
	}
	if opts.TopLevelDivision != "" && opts.TopLevelDivision != "default" {
		args = append(args, "--top-level-division", opts.TopLevelDivision)
	}
	if opts.HighlightStyle != "" {
		args = append(args, "--highlight-style", opts.HighlightStyle)
	}
	// Invocations must be reproducible, so map-backed flags are emitted in
	// sorted order.
	for _, k := range sortedVarNames(opts.Variables) {
		args = append(args, "-V", k+"="+opts.Variables[k])
	}
	args = append(args, opts.ExtraArgs...)
	args = append(args, "--output", resolve(job.Output))
	for _, u := range job.Units {
		args = append(args, resolve(u))
	}
	return args
}

func sortedVarNames(vars map[string]string) []string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// stderrTail trims tool stderr to its last few lines, where LaTeX and the
// merge tools report the actual failure.
func stderrTail(stderr string) string {
	const maxLines = 8
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	tail := strings.Join(lines, "\n")
	if tail == "" {
		return "(no diagnostic output)"
	}
	return tail
}
