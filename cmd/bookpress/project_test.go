package main

// Notes:
// - loadProject: we test config resolution precedence (flag > env > default
//   name) and that toolchain overrides are revalidated, so a bad --engine
//   fails the same way a bad file value would.
// - variantBuildConfig: assembled from a real config file in a temp dir, so
//   unit joining, output naming, and the BOOKPRESS_CHUNK_SIZE override are
//   tested end to end rather than against hand-built structs.
// - compileOptions: book metadata flows into compiler variables unless the
//   profile sets its own. The override direction is pinned here.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bookpress/bookpress/internal/config"
)

// writeProjectConfig writes a small but complete book.yaml into a temp dir
// and returns its path. Two variants: "print" with covers, chunking and TOC
// merge, and "ebook" riding on a minimal profile.
func writeProjectConfig(t *testing.T) string {
	t.Helper()

	const doc = `book:
  title: Practical Weaving
  author: R. Calloway
  language: en-US
  style: styles/book.sty
  metadata: metadata.yaml
units:
  dir: manuscript
  frontmatter:
    - 00-preface.md
  chapters:
    - 01-looms.md
    - 02-warping.md
output:
  dir: dist
profiles:
  default:
    toc: true
    tocDepth: 2
    numberSections: true
    topLevelDivision: chapter
    highlightStyle: pygments
    pdfEngine: xelatex
    variables:
      documentclass: book
  plain:
    toc: false
variants:
  print:
    profile: default
    output: weaving-print.pdf
    chunkSize: 2
    cover:
      front: covers/front.pdf
      back: covers/back.pdf
    toc:
      merge: true
      args: ["--template", "toc.tex"]
  ebook:
    profile: plain
defaultVariant: print
toolchain:
  engine: docker
  image: pandoc/extra:3.5
  memory: 2g
  merger: pdftk
`

	dir := t.TempDir()
	path := filepath.Join(dir, "book.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestLoadProject - Config resolution and override precedence
// ---------------------------------------------------------------------------

func TestLoadProject(t *testing.T) {
	t.Parallel()

	t.Run("loads config named by flag", func(t *testing.T) {
		t.Parallel()
		path := writeProjectConfig(t)

		proj, err := loadProject(&commonFlags{config: path}, nil, &envConfig{})
		if err != nil {
			t.Fatalf("loadProject() error = %v", err)
		}
		if got := proj.cfg.Book.Title; got != "Practical Weaving" {
			t.Errorf("Book.Title = %q, want Practical Weaving", got)
		}
		if got := proj.cfg.BaseDir; got != filepath.Dir(path) {
			t.Errorf("BaseDir = %q, want %q", got, filepath.Dir(path))
		}
	})

	t.Run("flag config wins over environment config", func(t *testing.T) {
		t.Parallel()
		path := writeProjectConfig(t)
		envCfg := &envConfig{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")}

		proj, err := loadProject(&commonFlags{config: path}, nil, envCfg)
		if err != nil {
			t.Fatalf("loadProject() error = %v", err)
		}
		if got := proj.cfg.Book.Title; got != "Practical Weaving" {
			t.Errorf("Book.Title = %q, want Practical Weaving", got)
		}
	})

	t.Run("environment config used when flag empty", func(t *testing.T) {
		t.Parallel()
		path := writeProjectConfig(t)

		proj, err := loadProject(&commonFlags{}, nil, &envConfig{ConfigPath: path})
		if err != nil {
			t.Fatalf("loadProject() error = %v", err)
		}
		if got := proj.cfg.Book.Author; got != "R. Calloway" {
			t.Errorf("Book.Author = %q, want R. Calloway", got)
		}
	})

	t.Run("environment overrides file toolchain", func(t *testing.T) {
		t.Parallel()
		path := writeProjectConfig(t)

		proj, err := loadProject(&commonFlags{config: path}, nil, &envConfig{Engine: "podman"})
		if err != nil {
			t.Fatalf("loadProject() error = %v", err)
		}
		if got := proj.cfg.Toolchain.Engine; got != "podman" {
			t.Errorf("Toolchain.Engine = %q, want podman", got)
		}
	})

	t.Run("flag overrides environment and file", func(t *testing.T) {
		t.Parallel()
		path := writeProjectConfig(t)
		tc := &toolchainFlags{engine: "local"}

		proj, err := loadProject(&commonFlags{config: path}, tc, &envConfig{Engine: "podman"})
		if err != nil {
			t.Fatalf("loadProject() error = %v", err)
		}
		if got := proj.cfg.Toolchain.Engine; got != "local" {
			t.Errorf("Toolchain.Engine = %q, want local", got)
		}
	})

	t.Run("nil toolchain flags leave config untouched", func(t *testing.T) {
		t.Parallel()
		path := writeProjectConfig(t)

		proj, err := loadProject(&commonFlags{config: path}, nil, &envConfig{})
		if err != nil {
			t.Fatalf("loadProject() error = %v", err)
		}
		if got := proj.cfg.Toolchain.Engine; got != "docker" {
			t.Errorf("Toolchain.Engine = %q, want docker", got)
		}
	})

	t.Run("invalid override fails validation", func(t *testing.T) {
		t.Parallel()
		path := writeProjectConfig(t)
		tc := &toolchainFlags{engine: "frobnicate"}

		if _, err := loadProject(&commonFlags{config: path}, tc, &envConfig{}); err == nil {
			t.Fatal("loadProject() with bad engine: expected error, got nil")
		}
	})

	t.Run("missing config file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "absent.yaml")

		_, err := loadProject(&commonFlags{config: path}, nil, &envConfig{})
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("loadProject() error = %v, want ErrConfigNotFound", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestApplyToolchainFlags - Flag overlay semantics
// ---------------------------------------------------------------------------

func TestApplyToolchainFlags(t *testing.T) {
	t.Parallel()

	t.Run("set flags overwrite config", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		f := &toolchainFlags{engine: "podman", image: "pandoc/extra:3.6", memory: "4g", merger: "cpdf"}

		applyToolchainFlags(cfg, f)

		if cfg.Toolchain.Engine != "podman" {
			t.Errorf("Engine = %q, want podman", cfg.Toolchain.Engine)
		}
		if cfg.Toolchain.Image != "pandoc/extra:3.6" {
			t.Errorf("Image = %q, want pandoc/extra:3.6", cfg.Toolchain.Image)
		}
		if cfg.Toolchain.Memory != "4g" {
			t.Errorf("Memory = %q, want 4g", cfg.Toolchain.Memory)
		}
		if cfg.Toolchain.Merger != "cpdf" {
			t.Errorf("Merger = %q, want cpdf", cfg.Toolchain.Merger)
		}
	})

	t.Run("empty flags leave config alone", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		before := cfg.Toolchain

		applyToolchainFlags(cfg, &toolchainFlags{})

		if cfg.Toolchain != before {
			t.Errorf("Toolchain = %+v, want %+v", cfg.Toolchain, before)
		}
	})
}

// ---------------------------------------------------------------------------
// TestVariantBuildConfig - Pipeline config assembly
// ---------------------------------------------------------------------------

func TestVariantBuildConfig(t *testing.T) {
	t.Parallel()

	load := func(t *testing.T) *project {
		t.Helper()
		path := writeProjectConfig(t)
		cfg, err := config.LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		return &project{cfg: cfg, env: &envConfig{}}
	}

	t.Run("full variant", func(t *testing.T) {
		t.Parallel()
		proj := load(t)

		bc, err := variantBuildConfig(proj, "print")
		if err != nil {
			t.Fatalf("variantBuildConfig() error = %v", err)
		}

		if bc.Name != "print" {
			t.Errorf("Name = %q, want print", bc.Name)
		}
		wantUnits := []string{
			filepath.Join("manuscript", "00-preface.md"),
			filepath.Join("manuscript", "01-looms.md"),
			filepath.Join("manuscript", "02-warping.md"),
		}
		if !reflect.DeepEqual(bc.Units, wantUnits) {
			t.Errorf("Units = %v, want %v", bc.Units, wantUnits)
		}
		if want := filepath.Join("dist", "weaving-print.pdf"); bc.Output != want {
			t.Errorf("Output = %q, want %q", bc.Output, want)
		}
		if bc.ChunkSize != 2 {
			t.Errorf("ChunkSize = %d, want 2", bc.ChunkSize)
		}
		if bc.CoverFront != "covers/front.pdf" || bc.CoverBack != "covers/back.pdf" {
			t.Errorf("covers = %q/%q, want covers/front.pdf and covers/back.pdf", bc.CoverFront, bc.CoverBack)
		}
		if !bc.TOCMerge {
			t.Error("TOCMerge = false, want true")
		}
		if want := []string{"--template", "toc.tex"}; !reflect.DeepEqual(bc.TOCArgs, want) {
			t.Errorf("TOCArgs = %v, want %v", bc.TOCArgs, want)
		}
		if !bc.Options.TOC {
			t.Error("Options.TOC = false, want true from default profile")
		}
		if got := bc.Options.Variables["documentclass"]; got != "book" {
			t.Errorf("Variables[documentclass] = %q, want book", got)
		}
	})

	t.Run("default output name when variant has none", func(t *testing.T) {
		t.Parallel()
		proj := load(t)

		bc, err := variantBuildConfig(proj, "ebook")
		if err != nil {
			t.Fatalf("variantBuildConfig() error = %v", err)
		}
		if want := filepath.Join("dist", "ebook.pdf"); bc.Output != want {
			t.Errorf("Output = %q, want %q", bc.Output, want)
		}
		if bc.Options.TOC {
			t.Error("Options.TOC = true, want false from plain profile")
		}
		if bc.ChunkSize != 0 {
			t.Errorf("ChunkSize = %d, want 0", bc.ChunkSize)
		}
	})

	t.Run("environment chunk size replaces variant chunking", func(t *testing.T) {
		t.Parallel()
		proj := load(t)
		proj.env = &envConfig{ChunkSize: 7}

		bc, err := variantBuildConfig(proj, "print")
		if err != nil {
			t.Fatalf("variantBuildConfig() error = %v", err)
		}
		if bc.ChunkSize != 7 {
			t.Errorf("ChunkSize = %d, want 7 from environment", bc.ChunkSize)
		}
	})

	t.Run("unknown variant", func(t *testing.T) {
		t.Parallel()
		proj := load(t)

		_, err := variantBuildConfig(proj, "hardcover")
		if !errors.Is(err, config.ErrUnknownVariant) {
			t.Errorf("variantBuildConfig() error = %v, want ErrUnknownVariant", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestCompileOptions - Profile to compiler option mapping
// ---------------------------------------------------------------------------

func TestCompileOptions(t *testing.T) {
	t.Parallel()

	t.Run("book metadata becomes variables", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		cfg.Book.Title = "Practical Weaving"
		cfg.Book.Author = "R. Calloway"
		cfg.Book.Language = "en-US"

		opts := compileOptions(cfg, config.Profile{})

		want := map[string]string{"title": "Practical Weaving", "author": "R. Calloway", "lang": "en-US"}
		if !reflect.DeepEqual(opts.Variables, want) {
			t.Errorf("Variables = %v, want %v", opts.Variables, want)
		}
	})

	t.Run("empty book fields are omitted", func(t *testing.T) {
		t.Parallel()
		opts := compileOptions(config.DefaultConfig(), config.Profile{})

		if len(opts.Variables) != 0 {
			t.Errorf("Variables = %v, want empty", opts.Variables)
		}
	})

	t.Run("profile variables win over book metadata", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		cfg.Book.Title = "Practical Weaving"

		p := config.Profile{Variables: map[string]string{"title": "Weaving, Annotated Edition"}}
		opts := compileOptions(cfg, p)

		if got := opts.Variables["title"]; got != "Weaving, Annotated Edition" {
			t.Errorf("Variables[title] = %q, want the profile override", got)
		}
	})

	t.Run("profile formatting carries through", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		cfg.Book.Style = "styles/book.sty"
		cfg.Book.Metadata = "metadata.yaml"

		p := config.Profile{
			TOC:              true,
			TOCDepth:         3,
			NumberSections:   true,
			TopLevelDivision: "chapter",
			HighlightStyle:   "pygments",
			PDFEngine:        "xelatex",
			ExtraArgs:        []string{"--strip-comments"},
		}
		opts := compileOptions(cfg, p)

		if !opts.TOC || opts.TOCDepth != 3 {
			t.Errorf("TOC/TOCDepth = %v/%d, want true/3", opts.TOC, opts.TOCDepth)
		}
		if !opts.NumberSections || opts.TopLevelDivision != "chapter" {
			t.Errorf("NumberSections/TopLevelDivision = %v/%q, want true/chapter", opts.NumberSections, opts.TopLevelDivision)
		}
		if opts.HighlightStyle != "pygments" || opts.PDFEngine != "xelatex" {
			t.Errorf("HighlightStyle/PDFEngine = %q/%q, want pygments/xelatex", opts.HighlightStyle, opts.PDFEngine)
		}
		if opts.StyleFile != "styles/book.sty" || opts.MetadataFile != "metadata.yaml" {
			t.Errorf("StyleFile/MetadataFile = %q/%q, want styles/book.sty and metadata.yaml", opts.StyleFile, opts.MetadataFile)
		}
		if want := []string{"--strip-comments"}; !reflect.DeepEqual(opts.ExtraArgs, want) {
			t.Errorf("ExtraArgs = %v, want %v", opts.ExtraArgs, want)
		}
	})
}
