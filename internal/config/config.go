// Package config loads and validates book.yaml, the project file describing
// a book: its source units, formatting profiles, build variants, and the
// external toolchain that compiles and merges the PDF.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bookpress/bookpress/internal/fileutil"
	"github.com/bookpress/bookpress/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrUnknownVariant  = errors.New("unknown variant")
	ErrUnknownProfile  = errors.New("unknown profile")
	ErrNoVariant       = errors.New("no variant selected and no default set")
)

// Field length and count limits. Config files are author-written, but the
// values end up in command lines and file names, so they are bounded.
const (
	MaxTitleLength    = 200
	MaxAuthorLength   = 100
	MaxLanguageLength = 35 // BCP 47 upper bound
	MaxPathLength     = 4096
	MaxNameLength     = 64 // variant and profile names become file names
	MaxImageLength    = 256
	MaxMemoryLength   = 16 // "2048m", "2g"
	MaxUserLength     = 64
	MaxArgLength      = 512
	MaxVarLength      = 256
	MaxHookLength     = 1 << 16
	MaxUnits          = 2048
	MaxChunkSize      = 500
	MaxTOCDepth       = 6
	MaxProfiles       = 64
	MaxVariants       = 64
)

// Defaults applied to absent fields.
const (
	DefaultOutputDir = "dist"
	DefaultImage     = "pandoc/extra:3.5"
	DefaultEngine    = "auto"
	DefaultMerger    = "auto"
	DefaultPandoc    = "pandoc"
)

// Config is the parsed book.yaml.
type Config struct {
	// BaseDir is the directory the config file was loaded from. All relative
	// paths in the file resolve against it, and the container engine mounts
	// it as the build's working directory.
	BaseDir string `yaml:"-"`

	Book           BookConfig         `yaml:"book"`
	Units          UnitsConfig        `yaml:"units"`
	Output         OutputConfig       `yaml:"output"`
	Profiles       map[string]Profile `yaml:"profiles"`
	Variants       map[string]Variant `yaml:"variants"`
	DefaultVariant string             `yaml:"defaultVariant"`
	Toolchain      ToolchainConfig    `yaml:"toolchain"`
	Hooks          HooksConfig        `yaml:"hooks"`
}

// BookConfig holds book-level metadata and shared style inputs.
type BookConfig struct {
	Title    string `yaml:"title"`
	Author   string `yaml:"author"`
	Language string `yaml:"language"`
	Metadata string `yaml:"metadata"` // Pandoc metadata file, relative path
	Style    string `yaml:"style"`    // LaTeX style include, relative path
}

// UnitsConfig lists the ordered source documents. Order is significant: it
// defines reading and TOC order, and the pipeline never reorders it.
type UnitsConfig struct {
	Dir         string   `yaml:"dir"` // base directory for unit paths
	Frontmatter []string `yaml:"frontmatter"`
	Chapters    []string `yaml:"chapters"`
}

// OutputConfig defines where artifacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir"` // default "dist"
}

// Profile is a named set of formatting options handed to the compiler.
type Profile struct {
	TOC              bool              `yaml:"toc"`      // embedded table of contents
	TOCDepth         int               `yaml:"tocDepth"` // 1-6, default 2
	NumberSections   bool              `yaml:"numberSections"`
	TopLevelDivision string            `yaml:"topLevelDivision"` // "chapter", "section", "part"
	HighlightStyle   string            `yaml:"highlightStyle"`
	PDFEngine        string            `yaml:"pdfEngine"` // default "xelatex"
	Variables        map[string]string `yaml:"variables"` // -V key=value pairs
	ExtraArgs        []string          `yaml:"extraArgs"`
}

// Variant binds a profile to a unit selection, chunking, optional covers and
// TOC merging, and an output name. Variants are configuration, not code
// paths: every variant runs the same pipeline.
type Variant struct {
	Profile   string         `yaml:"profile"`
	Output    string         `yaml:"output"`    // basename under output.dir; default "<variant>.pdf"
	ChunkSize int            `yaml:"chunkSize"` // 0 = single compiler invocation
	Units     []string       `yaml:"units"`     // optional subset; empty = all units
	Cover     CoverConfig    `yaml:"cover"`
	TOC       TOCMergeConfig `yaml:"toc"`
}

// CoverConfig names the optional front and back cover PDFs.
type CoverConfig struct {
	Front string `yaml:"front"`
	Back  string `yaml:"back"`
}

// TOCMergeConfig controls the standalone TOC fragment prepended after the
// main build. Args are extra compiler arguments for the fragment run, e.g. a
// TOC-only template.
type TOCMergeConfig struct {
	Merge bool     `yaml:"merge"`
	Args  []string `yaml:"args"`
}

// ToolchainConfig describes the external programs driving the build.
type ToolchainConfig struct {
	Engine string `yaml:"engine"` // "auto", "docker", "podman", "local"
	Image  string `yaml:"image"`
	Memory string `yaml:"memory"` // container memory limit, e.g. "2g"
	User   string `yaml:"user"`   // uid:gid for container runs
	Merger string `yaml:"merger"` // "auto", "pdftk", "cpdf"
	Pandoc string `yaml:"pandoc"` // binary used when engine is "local"
}

// HooksConfig holds optional shell snippets run around a build.
type HooksConfig struct {
	Before string `yaml:"before"`
	After  string `yaml:"after"`
}

// Validate checks enums, limits, and cross-references. Called automatically
// by LoadConfig, but available for consumers who construct Config manually.
// It deliberately does not require units to exist or be non-empty: missing
// files and empty unit lists surface as compile errors at build time.
func (c *Config) Validate() error {
	if err := validateFieldLength("book.title", c.Book.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("book.author", c.Book.Author, MaxAuthorLength); err != nil {
		return err
	}
	if err := validateFieldLength("book.language", c.Book.Language, MaxLanguageLength); err != nil {
		return err
	}
	if err := validateRelPath("book.metadata", c.Book.Metadata); err != nil {
		return err
	}
	if err := validateRelPath("book.style", c.Book.Style); err != nil {
		return err
	}

	if err := c.validateUnits(); err != nil {
		return err
	}
	if err := validateRelPath("output.dir", c.Output.Dir); err != nil {
		return err
	}

	if len(c.Profiles) > MaxProfiles {
		return fmt.Errorf("profiles: %d defined, max %d", len(c.Profiles), MaxProfiles)
	}
	for _, name := range sortedKeys(c.Profiles) {
		if err := c.validateProfile(name, c.Profiles[name]); err != nil {
			return err
		}
	}

	if len(c.Variants) > MaxVariants {
		return fmt.Errorf("variants: %d defined, max %d", len(c.Variants), MaxVariants)
	}
	for _, name := range sortedKeys(c.Variants) {
		if err := c.validateVariant(name, c.Variants[name]); err != nil {
			return err
		}
	}

	if c.DefaultVariant != "" {
		if _, ok := c.Variants[c.DefaultVariant]; !ok {
			return fmt.Errorf("defaultVariant: %w: %s", ErrUnknownVariant, c.DefaultVariant)
		}
	}

	if err := c.validateToolchain(); err != nil {
		return err
	}

	if err := validateFieldLength("hooks.before", c.Hooks.Before, MaxHookLength); err != nil {
		return err
	}
	if err := validateFieldLength("hooks.after", c.Hooks.After, MaxHookLength); err != nil {
		return err
	}

	return nil
}

func (c *Config) validateUnits() error {
	if err := validateRelPath("units.dir", c.Units.Dir); err != nil {
		return err
	}
	total := len(c.Units.Frontmatter) + len(c.Units.Chapters)
	if total > MaxUnits {
		return fmt.Errorf("units: %d listed, max %d", total, MaxUnits)
	}
	for i, u := range c.Units.Frontmatter {
		if err := validateUnitPath(fmt.Sprintf("units.frontmatter[%d]", i), u); err != nil {
			return err
		}
	}
	for i, u := range c.Units.Chapters {
		if err := validateUnitPath(fmt.Sprintf("units.chapters[%d]", i), u); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateProfile(name string, p Profile) error {
	if err := validateMapName("profiles", name); err != nil {
		return err
	}
	if p.TOCDepth != 0 {
		if p.TOCDepth < 1 || p.TOCDepth > MaxTOCDepth {
			return fmt.Errorf("profiles.%s.tocDepth: must be between 1 and %d, got %d", name, MaxTOCDepth, p.TOCDepth)
		}
	}
	switch p.TopLevelDivision {
	case "", "default", "section", "chapter", "part":
		// valid
	default:
		return fmt.Errorf("profiles.%s.topLevelDivision: invalid value %q (must be default, section, chapter, or part)", name, p.TopLevelDivision)
	}
	if err := validateFieldLength("profiles."+name+".highlightStyle", p.HighlightStyle, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("profiles."+name+".pdfEngine", p.PDFEngine, MaxNameLength); err != nil {
		return err
	}
	for _, key := range sortedKeys(p.Variables) {
		if err := validateFieldLength(fmt.Sprintf("profiles.%s.variables.%s", name, key), p.Variables[key], MaxVarLength); err != nil {
			return err
		}
	}
	for i, arg := range p.ExtraArgs {
		if err := validateFieldLength(fmt.Sprintf("profiles.%s.extraArgs[%d]", name, i), arg, MaxArgLength); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateVariant(name string, v Variant) error {
	if err := validateMapName("variants", name); err != nil {
		return err
	}
	if v.Profile != "" {
		if _, ok := c.Profiles[v.Profile]; !ok {
			return fmt.Errorf("variants.%s.profile: %w: %s", name, ErrUnknownProfile, v.Profile)
		}
	}
	if err := validateRelPath("variants."+name+".output", v.Output); err != nil {
		return err
	}
	if v.ChunkSize < 0 || v.ChunkSize > MaxChunkSize {
		return fmt.Errorf("variants.%s.chunkSize: must be between 0 and %d, got %d", name, MaxChunkSize, v.ChunkSize)
	}
	for i, u := range v.Units {
		if err := validateUnitPath(fmt.Sprintf("variants.%s.units[%d]", name, i), u); err != nil {
			return err
		}
	}
	if err := validateRelPath("variants."+name+".cover.front", v.Cover.Front); err != nil {
		return err
	}
	if err := validateRelPath("variants."+name+".cover.back", v.Cover.Back); err != nil {
		return err
	}
	for i, arg := range v.TOC.Args {
		if err := validateFieldLength(fmt.Sprintf("variants.%s.toc.args[%d]", name, i), arg, MaxArgLength); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateToolchain() error {
	switch c.Toolchain.Engine {
	case "", "auto", "docker", "podman", "local":
		// valid
	default:
		return fmt.Errorf("toolchain.engine: invalid value %q (must be auto, docker, podman, or local)", c.Toolchain.Engine)
	}
	switch c.Toolchain.Merger {
	case "", "auto", "pdftk", "cpdf":
		// valid
	default:
		return fmt.Errorf("toolchain.merger: invalid value %q (must be auto, pdftk, or cpdf)", c.Toolchain.Merger)
	}
	if err := validateFieldLength("toolchain.image", c.Toolchain.Image, MaxImageLength); err != nil {
		return err
	}
	if err := validateFieldLength("toolchain.memory", c.Toolchain.Memory, MaxMemoryLength); err != nil {
		return err
	}
	if !validMemoryLimit(c.Toolchain.Memory) {
		return fmt.Errorf("toolchain.memory: invalid value %q (expect digits with optional b/k/m/g suffix)", c.Toolchain.Memory)
	}
	if err := validateFieldLength("toolchain.user", c.Toolchain.User, MaxUserLength); err != nil {
		return err
	}
	if err := validateFieldLength("toolchain.pandoc", c.Toolchain.Pandoc, MaxPathLength); err != nil {
		return err
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateRelPath checks that a configured path stays inside the project
// directory. The container engine mounts only that directory, so absolute
// paths and parent traversal would point at files the toolchain cannot see.
func validateRelPath(fieldName, value string) error {
	if value == "" {
		return nil
	}
	if err := validateFieldLength(fieldName, value, MaxPathLength); err != nil {
		return err
	}
	if fileutil.IsURL(value) {
		return fmt.Errorf("%s: must be a local path, got URL %q", fieldName, value)
	}
	if filepath.IsAbs(value) {
		return fmt.Errorf("%s: must be relative to the project directory, got %q", fieldName, value)
	}
	if clean := filepath.Clean(value); clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%s: must not escape the project directory, got %q", fieldName, value)
	}
	return nil
}

func validateUnitPath(fieldName, value string) error {
	if value == "" {
		return fmt.Errorf("%s: path cannot be empty", fieldName)
	}
	return validateRelPath(fieldName, value)
}

// validateMapName checks profile and variant names, which become artifact
// file names.
func validateMapName(section, name string) error {
	if name == "" {
		return fmt.Errorf("%s: name cannot be empty", section)
	}
	if err := validateFieldLength(section+" name "+name, name, MaxNameLength); err != nil {
		return err
	}
	if fileutil.IsFilePath(name) {
		return fmt.Errorf("%s: name %q must not contain path separators", section, name)
	}
	return nil
}

// validMemoryLimit accepts the engine's memory syntax: digits with an
// optional b/k/m/g suffix. Empty disables the limit.
func validMemoryLimit(s string) bool {
	if s == "" {
		return true
	}
	digits := s
	switch s[len(s)-1] {
	case 'b', 'k', 'm', 'g', 'B', 'K', 'M', 'G':
		digits = s[:len(s)-1]
	}
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DefaultConfig returns a configuration with toolchain defaults applied and
// no units, profiles, or variants defined.
func DefaultConfig() *Config {
	cfg := &Config{BaseDir: "."}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}
	if c.Toolchain.Engine == "" {
		c.Toolchain.Engine = DefaultEngine
	}
	if c.Toolchain.Image == "" {
		c.Toolchain.Image = DefaultImage
	}
	if c.Toolchain.Merger == "" {
		c.Toolchain.Merger = DefaultMerger
	}
	if c.Toolchain.Pandoc == "" {
		c.Toolchain.Pandoc = DefaultPandoc
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(configPath)
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	cfg.BaseDir = baseDir

	return &cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/bookpress/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "bookpress", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// Variant returns the named variant.
func (c *Config) Variant(name string) (Variant, error) {
	v, ok := c.Variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %s (have: %s)", ErrUnknownVariant, name, strings.Join(sortedKeys(c.Variants), ", "))
	}
	return v, nil
}

// ProfileFor resolves a variant's formatting profile. An unset profile name
// falls back to the profile named "default" when one is defined; otherwise
// the zero profile applies and the compiler fills in its own defaults.
func (c *Config) ProfileFor(v Variant) Profile {
	name := v.Profile
	if name == "" {
		name = "default"
	}
	return c.Profiles[name]
}

// UnitPaths returns the variant's ordered source paths relative to the
// project root. A variant-level unit list overrides the shared one; order is
// preserved either way.
func (c *Config) UnitPaths(v Variant) []string {
	units := v.Units
	if len(units) == 0 {
		units = make([]string, 0, len(c.Units.Frontmatter)+len(c.Units.Chapters))
		units = append(units, c.Units.Frontmatter...)
		units = append(units, c.Units.Chapters...)
	}
	paths := make([]string, 0, len(units))
	for _, u := range units {
		paths = append(paths, filepath.Join(c.Units.Dir, u))
	}
	return paths
}

// OutputName returns the variant's output file name.
func OutputName(name string, v Variant) string {
	if v.Output != "" {
		return v.Output
	}
	return name + ".pdf"
}

// OutputPath returns the variant's artifact path relative to the project root.
func (c *Config) OutputPath(name string, v Variant) string {
	return filepath.Join(c.Output.Dir, OutputName(name, v))
}

// ResolveVariantNames picks the variants a command operates on: explicit
// arguments win, then defaultVariant, then a sole defined variant.
func (c *Config) ResolveVariantNames(args []string) ([]string, error) {
	if len(args) > 0 {
		for _, name := range args {
			if _, ok := c.Variants[name]; !ok {
				return nil, fmt.Errorf("%w: %s (have: %s)", ErrUnknownVariant, name, strings.Join(sortedKeys(c.Variants), ", "))
			}
		}
		return args, nil
	}
	if c.DefaultVariant != "" {
		return []string{c.DefaultVariant}, nil
	}
	if len(c.Variants) == 1 {
		return sortedKeys(c.Variants), nil
	}
	return nil, fmt.Errorf("%w (have: %s)", ErrNoVariant, strings.Join(sortedKeys(c.Variants), ", "))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
