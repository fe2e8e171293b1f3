package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bookpress/bookpress/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without editing book.yaml.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string // BOOKPRESS_CONFIG: config file name or path
	OutputDir  string // BOOKPRESS_OUTPUT_DIR: artifact directory

	// Tier 2 - Toolchain
	Engine string // BOOKPRESS_ENGINE: auto, docker, podman, local
	Image  string // BOOKPRESS_IMAGE: compiler container image
	Memory string // BOOKPRESS_MEMORY: container memory limit
	Merger string // BOOKPRESS_MERGER: auto, pdftk, cpdf
	Pandoc string // BOOKPRESS_PANDOC: binary for the local engine

	// Tier 3 - Build shape
	ChunkSize int // BOOKPRESS_CHUNK_SIZE: units per compiler invocation
}

// knownEnvVars lists valid BOOKPRESS_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"BOOKPRESS_CONFIG":     true,
	"BOOKPRESS_OUTPUT_DIR": true,
	// Tier 2 - Toolchain
	"BOOKPRESS_ENGINE": true,
	"BOOKPRESS_IMAGE":  true,
	"BOOKPRESS_MEMORY": true,
	"BOOKPRESS_MERGER": true,
	"BOOKPRESS_PANDOC": true,
	// Tier 3 - Build shape
	"BOOKPRESS_CHUNK_SIZE": true,
	// Exported to hook processes; accepted here so values re-exported by a
	// wrapping script do not trip the typo warning.
	"BOOKPRESS_VARIANT": true,
	"BOOKPRESS_OUTPUT":  true,
}

// loadEnvConfig reads configuration from environment variables.
// Returns a struct with all recognized BOOKPRESS_* values.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		// Tier 1
		ConfigPath: os.Getenv("BOOKPRESS_CONFIG"),
		OutputDir:  os.Getenv("BOOKPRESS_OUTPUT_DIR"),
		// Tier 2
		Engine: os.Getenv("BOOKPRESS_ENGINE"),
		Image:  os.Getenv("BOOKPRESS_IMAGE"),
		Memory: os.Getenv("BOOKPRESS_MEMORY"),
		Merger: os.Getenv("BOOKPRESS_MERGER"),
		Pandoc: os.Getenv("BOOKPRESS_PANDOC"),
	}

	// Parse int for chunk size
	if chunk := os.Getenv("BOOKPRESS_CHUNK_SIZE"); chunk != "" {
		if n, err := strconv.Atoi(chunk); err == nil && n > 0 {
			cfg.ChunkSize = n
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized BOOKPRESS_* variables.
// Helps catch typos like BOOKPRESS_ENIGNE instead of BOOKPRESS_ENGINE.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "BOOKPRESS_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvOverrides applies environment values onto the loaded config.
// Environment variables override file values unconditionally: the file
// carries toolchain defaults, so fill-if-empty would make the variables
// dead. CLI flags override both (applied later per command).
func applyEnvOverrides(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.Engine != "" {
		cfg.Toolchain.Engine = env.Engine
	}
	if env.Image != "" {
		cfg.Toolchain.Image = env.Image
	}
	if env.Memory != "" {
		cfg.Toolchain.Memory = env.Memory
	}
	if env.Merger != "" {
		cfg.Toolchain.Merger = env.Merger
	}
	if env.Pandoc != "" {
		cfg.Toolchain.Pandoc = env.Pandoc
	}
}
