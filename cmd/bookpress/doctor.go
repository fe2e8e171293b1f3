package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bookpress/bookpress"
	"github.com/bookpress/bookpress/internal/config"
	"github.com/bookpress/bookpress/internal/toolchain"
)

// doctorTimeout bounds the engine probes so a hung daemon cannot stall the
// diagnosis.
const doctorTimeout = 10 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Config   configInfo `json:"config"`
	Engine   engineInfo `json:"engine"`
	Merger   mergerInfo `json:"merger"`
	Output   outputInfo `json:"output"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// configInfo holds config detection results.
type configInfo struct {
	Found    bool   `json:"found"`
	BaseDir  string `json:"base_dir,omitempty"`
	Variants int    `json:"variants"`
	Units    int    `json:"units"`
}

// engineInfo holds container engine detection results.
type engineInfo struct {
	Configured string `json:"configured"`
	Resolved   string `json:"resolved,omitempty"`
	Version    string `json:"version,omitempty"`
	Image      string `json:"image,omitempty"`
	ImageFound bool   `json:"image_found"`
	Pandoc     string `json:"pandoc,omitempty"` // local engine binary path
}

// mergerInfo holds PDF merge tool detection results.
type mergerInfo struct {
	Configured string `json:"configured"`
	Resolved   string `json:"resolved,omitempty"`
	Path       string `json:"path,omitempty"`
}

// outputInfo holds output directory check results.
type outputInfo struct {
	Dir          string `json:"dir"`
	Exists       bool   `json:"exists"`
	Writable     bool   `json:"writable"`
	TempWritable bool   `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseDoctorFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}
	if len(positional) > 0 {
		fmt.Fprintf(env.Stderr, "doctor takes no arguments, got %d\n", len(positional))
		return ExitUsage
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()

	result := runDoctor(ctx, flags.common.config, envCfg)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, flagConfig string, envCfg *envConfig) *doctorResult {
	result := &doctorResult{Status: "ready"}

	cfg := checkConfig(result, flagConfig, envCfg)
	runner := &toolchain.ExecRunner{}
	checkEngine(ctx, result, runner, cfg)
	checkMerger(result, cfg)
	checkOutput(result, cfg)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkConfig loads the project config. Doctor stays useful before a
// project exists: a missing config is a warning and the toolchain defaults
// are checked instead.
func checkConfig(result *doctorResult, flagConfig string, envCfg *envConfig) *config.Config {
	name := flagConfig
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name == "" {
		name = defaultConfigName
	}

	cfg, err := config.LoadConfig(name)
	switch {
	case err == nil:
		result.Config.Found = true
		result.Config.BaseDir = cfg.BaseDir
		result.Config.Variants = len(cfg.Variants)
		result.Config.Units = len(cfg.Units.Frontmatter) + len(cfg.Units.Chapters)
	case errors.Is(err, config.ErrConfigNotFound):
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("No config %q found; checking toolchain defaults", name))
		cfg = config.DefaultConfig()
	default:
		result.Errors = append(result.Errors, fmt.Sprintf("Config invalid: %v", err))
		cfg = config.DefaultConfig()
	}
	applyEnvOverrides(envCfg, cfg)
	return cfg
}

// checkEngine probes the configured container engine, or the local pandoc
// when the engine is "local".
func checkEngine(ctx context.Context, result *doctorResult, runner toolchain.CommandRunner, cfg *config.Config) {
	configured := toolchain.Engine(cfg.Toolchain.Engine)
	result.Engine.Configured = string(configured)

	if configured == toolchain.EngineLocal {
		path, ok := toolchain.LookTool(cfg.Toolchain.Pandoc)
		if !ok {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s not found on PATH; install pandoc or switch toolchain.engine", cfg.Toolchain.Pandoc))
			return
		}
		result.Engine.Resolved = string(toolchain.EngineLocal)
		result.Engine.Pandoc = path
		if out, _, err := runner.Run(ctx, cfg.Toolchain.Pandoc, "--version"); err == nil {
			result.Engine.Version = firstLine(out)
		}
		return
	}

	resolved, err := toolchain.Detect(ctx, runner, configured)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Container engine: %v", err))
		return
	}
	result.Engine.Resolved = string(resolved)

	if v, err := toolchain.Version(ctx, runner, resolved); err == nil {
		result.Engine.Version = v
	}

	result.Engine.Image = cfg.Toolchain.Image
	if toolchain.ImageExists(ctx, runner, resolved, cfg.Toolchain.Image) {
		result.Engine.ImageFound = true
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Image %s not present locally; the first build will pull it", cfg.Toolchain.Image))
	}
}

// checkMerger locates the PDF merge tool. A missing tool is only a warning
// under auto resolution: plain unchunked builds never touch it.
func checkMerger(result *doctorResult, cfg *config.Config) {
	configured := cfg.Toolchain.Merger
	result.Merger.Configured = configured

	switch configured {
	case "", bookpress.MergerAuto:
		for _, tool := range []string{bookpress.MergerPDFTK, bookpress.MergerCPDF} {
			if path, ok := toolchain.LookTool(tool); ok {
				result.Merger.Resolved = tool
				result.Merger.Path = path
				return
			}
		}
		result.Warnings = append(result.Warnings,
			"No PDF merge tool found (pdftk or cpdf); chunked builds, covers, and toc merging will fail")
	default:
		if path, ok := toolchain.LookTool(configured); ok {
			result.Merger.Resolved = configured
			result.Merger.Path = path
			return
		}
		result.Errors = append(result.Errors, fmt.Sprintf("Merge tool %s not found on PATH", configured))
	}
}

// checkOutput verifies the artifact directory and the temp directory.
func checkOutput(result *doctorResult, cfg *config.Config) {
	dir := filepath.Join(cfg.BaseDir, cfg.Output.Dir)
	result.Output.Dir = dir

	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		result.Output.Exists = true
		probe := filepath.Join(dir, ".bookpress-doctor")
		if err := os.WriteFile(probe, []byte("probe"), 0o600); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Output directory not writable: %s", dir))
		} else {
			_ = os.Remove(probe)
			result.Output.Writable = true
		}
	}

	tmp := filepath.Join(os.TempDir(), "bookpress-doctor-test")
	if err := os.WriteFile(tmp, []byte("probe"), 0o600); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
	} else {
		_ = os.Remove(tmp)
		result.Output.TempWritable = true
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "bookpress doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config")
	if r.Config.Found {
		fmt.Fprintf(w, "  [OK] Loaded from %s (%d variants, %d units)\n",
			r.Config.BaseDir, r.Config.Variants, r.Config.Units)
	} else {
		fmt.Fprintln(w, "  [WARN] Not found; checking toolchain defaults")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Engine")
	if r.Engine.Resolved != "" {
		label := r.Engine.Resolved
		if r.Engine.Configured == "auto" {
			label += " (auto-detected)"
		}
		if r.Engine.Version != "" {
			fmt.Fprintf(w, "  [OK] %s, version %s\n", label, r.Engine.Version)
		} else {
			fmt.Fprintf(w, "  [OK] %s\n", label)
		}
		switch {
		case r.Engine.Pandoc != "":
			fmt.Fprintf(w, "  [OK] pandoc at %s\n", r.Engine.Pandoc)
		case r.Engine.ImageFound:
			fmt.Fprintf(w, "  [OK] Image %s present\n", r.Engine.Image)
		default:
			fmt.Fprintf(w, "  [WARN] Image %s not present locally\n", r.Engine.Image)
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] No usable engine")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Merger")
	switch {
	case r.Merger.Resolved != "":
		fmt.Fprintf(w, "  [OK] %s at %s\n", r.Merger.Resolved, r.Merger.Path)
	case r.Merger.Configured == "" || r.Merger.Configured == "auto":
		fmt.Fprintln(w, "  [WARN] No merge tool found")
	default:
		fmt.Fprintf(w, "  [ERROR] %s not found\n", r.Merger.Configured)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Output")
	switch {
	case !r.Output.Exists:
		fmt.Fprintf(w, "  [OK] %s: will be created\n", r.Output.Dir)
	case r.Output.Writable:
		fmt.Fprintf(w, "  [OK] %s: writable\n", r.Output.Dir)
	default:
		fmt.Fprintf(w, "  [ERROR] %s: not writable\n", r.Output.Dir)
	}
	if r.Output.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to build")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

// firstLine returns the first line of a tool's version output.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
