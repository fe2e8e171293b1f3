package main

import (
	"github.com/bookpress/bookpress"
	"github.com/bookpress/bookpress/internal/config"
)

// defaultConfigName is the config searched for when neither --config nor
// BOOKPRESS_CONFIG names one. Resolves to book.yaml or book.yml in the
// current directory, then the user config directory.
const defaultConfigName = "book"

// project bundles the loaded configuration with the environment overrides
// shared by every command that operates on a book.
type project struct {
	cfg *config.Config
	env *envConfig
}

// loadProject resolves and loads the project config with flag > environment
// > default name precedence, applies environment and toolchain flag
// overrides, and revalidates so bad override values fail like bad file
// values.
func loadProject(common *commonFlags, tc *toolchainFlags, envCfg *envConfig) (*project, error) {
	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name == "" {
		name = defaultConfigName
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(envCfg, cfg)
	if tc != nil {
		applyToolchainFlags(cfg, tc)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &project{cfg: cfg, env: envCfg}, nil
}

// applyToolchainFlags overlays per-invocation toolchain flags onto the
// config. Flags win over environment values and the file.
func applyToolchainFlags(cfg *config.Config, f *toolchainFlags) {
	if f.engine != "" {
		cfg.Toolchain.Engine = f.engine
	}
	if f.image != "" {
		cfg.Toolchain.Image = f.image
	}
	if f.memory != "" {
		cfg.Toolchain.Memory = f.memory
	}
	if f.merger != "" {
		cfg.Toolchain.Merger = f.merger
	}
}

// newService builds the pipeline service from the resolved toolchain
// configuration. Hook output and warnings go to the environment's writers.
func newService(cfg *config.Config, strict bool, env *Environment) *bookpress.Service {
	opts := []bookpress.Option{
		bookpress.WithCompiler(bookpress.NewPandocCompiler(bookpress.CompilerConfig{
			Engine: cfg.Toolchain.Engine,
			Image:  cfg.Toolchain.Image,
			Memory: cfg.Toolchain.Memory,
			User:   cfg.Toolchain.User,
			Pandoc: cfg.Toolchain.Pandoc,
		})),
		bookpress.WithMerger(bookpress.NewCommandMerger(cfg.Toolchain.Merger)),
		bookpress.WithOutput(env.Stdout, env.Stderr),
	}
	if strict {
		opts = append(opts, bookpress.WithStrictVerify())
	}
	return bookpress.New(opts...)
}

// variantBuildConfig assembles the pipeline configuration for one variant.
// A BOOKPRESS_CHUNK_SIZE override replaces the variant's chunking; the
// --chunk-size flag replaces both (applied by the build command).
func variantBuildConfig(proj *project, name string) (bookpress.BuildConfig, error) {
	v, err := proj.cfg.Variant(name)
	if err != nil {
		return bookpress.BuildConfig{}, err
	}
	profile := proj.cfg.ProfileFor(v)

	bc := bookpress.BuildConfig{
		Name:       name,
		BaseDir:    proj.cfg.BaseDir,
		Units:      proj.cfg.UnitPaths(v),
		Options:    compileOptions(proj.cfg, profile),
		Output:     proj.cfg.OutputPath(name, v),
		ChunkSize:  v.ChunkSize,
		CoverFront: v.Cover.Front,
		CoverBack:  v.Cover.Back,
		TOCMerge:   v.TOC.Merge,
		TOCArgs:    v.TOC.Args,
		Hooks:      bookpress.Hooks{Before: proj.cfg.Hooks.Before, After: proj.cfg.Hooks.After},
	}
	if proj.env.ChunkSize > 0 {
		bc.ChunkSize = proj.env.ChunkSize
	}
	return bc, nil
}

// compileOptions maps a formatting profile onto compiler options. Book
// metadata flows in as compiler variables unless the profile sets its own.
func compileOptions(cfg *config.Config, p config.Profile) bookpress.CompileOptions {
	vars := make(map[string]string, len(p.Variables)+3)
	if cfg.Book.Title != "" {
		vars["title"] = cfg.Book.Title
	}
	if cfg.Book.Author != "" {
		vars["author"] = cfg.Book.Author
	}
	if cfg.Book.Language != "" {
		vars["lang"] = cfg.Book.Language
	}
	for k, v := range p.Variables {
		vars[k] = v
	}

	return bookpress.CompileOptions{
		TOC:              p.TOC,
		TOCDepth:         p.TOCDepth,
		NumberSections:   p.NumberSections,
		TopLevelDivision: p.TopLevelDivision,
		HighlightStyle:   p.HighlightStyle,
		PDFEngine:        p.PDFEngine,
		StyleFile:        cfg.Book.Style,
		MetadataFile:     cfg.Book.Metadata,
		Variables:        vars,
		ExtraArgs:        p.ExtraArgs,
	}
}
