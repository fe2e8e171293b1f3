package bookpress

import (
	"fmt"
	"io"
	"path/filepath"
	"time"
)

// CompileOptions is the formatting option set handed to the external
// compiler. The zero value produces an unstyled document with the
// compiler's own defaults.
type CompileOptions struct {
	TOC              bool              // embed a table of contents in the document
	TOCDepth         int               // 1-6; 0 uses the compiler default
	NumberSections   bool
	TopLevelDivision string // "chapter", "section", "part"
	HighlightStyle   string
	PDFEngine        string // e.g. "xelatex"
	StyleFile        string // LaTeX header include, relative to BaseDir
	MetadataFile     string // metadata file, relative to BaseDir
	Variables        map[string]string
	ExtraArgs        []string // appended verbatim after the generated flags
}

// BuildConfig describes one build variant: the ordered document units, the
// formatting options, and where the artifact goes. Immutable per invocation.
//
// All paths except BaseDir are relative to BaseDir, which the container
// engine mounts as the compiler's working directory. Unit order is
// significant and never changed by the pipeline.
type BuildConfig struct {
	Name    string   // variant name, exported to hooks
	BaseDir string   // project root; empty means the current directory
	Units   []string // ordered source files
	Options CompileOptions
	Output  string // artifact path, e.g. "dist/book.pdf"

	// ChunkSize > 0 partitions the units into contiguous groups of at most
	// that many files, builds them sequentially, and concatenates the
	// results in order. Works around compiler memory ceilings on large
	// books.
	ChunkSize int

	// Optional cover PDFs. Both must exist for the cover step to apply.
	CoverFront string
	CoverBack  string

	// TOCMerge enables the standalone table-of-contents fragment prepended
	// after the main build. TOCArgs are extra compiler arguments for that
	// fragment run, e.g. a TOC-only template.
	TOCMerge bool
	TOCArgs  []string

	Hooks Hooks
}

// Hooks are optional shell snippets run before and after a build.
type Hooks struct {
	Before string
	After  string
}

// Validate checks the fields the pipeline depends on. An empty unit list is
// allowed here and fails at build time instead, so that variants can be
// configured before their sources exist.
func (c BuildConfig) Validate() error {
	if c.Output == "" {
		return ErrEmptyOutput
	}
	if c.ChunkSize < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChunkSize, c.ChunkSize)
	}
	return nil
}

// baseDir returns the project root, defaulting to the current directory.
func (c BuildConfig) baseDir() string {
	if c.BaseDir == "" {
		return "."
	}
	return c.BaseDir
}

// hostPath resolves a BaseDir-relative path for host-side file operations.
// Empty and absolute paths pass through unchanged.
func (c BuildConfig) hostPath(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(c.baseDir(), rel)
}

// hostOutput returns the artifact path on the host.
func (c BuildConfig) hostOutput() string {
	return c.hostPath(c.Output)
}

// HostOutput returns the artifact path on the host, resolving the
// BaseDir-relative output.
func (c BuildConfig) HostOutput() string {
	return c.hostOutput()
}

// HostPath resolves a BaseDir-relative path for host-side file operations.
// Empty and absolute paths pass through unchanged.
func (c BuildConfig) HostPath(rel string) string {
	return c.hostPath(rel)
}

// Artifact is a produced output file. Enrichment steps replace the file at
// Path atomically rather than mutating it in place.
type Artifact struct {
	Path string
}

// Enrichment reports whether an optional pipeline step (covers, table of
// contents) changed the artifact. A skipped step is not an error: the
// artifact is left unchanged and Reason records why.
type Enrichment struct {
	Applied bool
	Reason  string
}

// RunResult collects what the composite pipeline produced for one variant.
type RunResult struct {
	Artifact Artifact
	Cover    Enrichment
	TOC      Enrichment
	Pages    int // final artifact page count; 0 when unreadable
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	stdout io.Writer
	stderr io.Writer
	verify bool
	now    func() time.Time
}

// WithCompiler replaces the document compiler, e.g. for tests.
func WithCompiler(c Compiler) Option {
	return func(s *Service) {
		s.compiler = c
	}
}

// WithMerger replaces the artifact merger, e.g. for tests.
func WithMerger(m Merger) Option {
	return func(s *Service) {
		s.merger = m
	}
}

// WithOutput directs hook output and pipeline warnings to the given
// writers. Nil writers discard.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(s *Service) {
		if stdout != nil {
			s.cfg.stdout = stdout
		}
		if stderr != nil {
			s.cfg.stderr = stderr
		}
	}
}

// WithStrictVerify makes page count verification fatal: a merged artifact
// whose page count cannot be read or does not match the sum of its inputs
// fails the operation instead of producing a warning.
func WithStrictVerify() Option {
	return func(s *Service) {
		s.cfg.verify = true
	}
}

// WithClock replaces the time source used to resolve "auto" date
// variables, e.g. for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.cfg.now = now
		}
	}
}
