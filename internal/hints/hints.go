// Package hints builds actionable suffixes for common failure scenarios.
// Hints are formatted as "\n  hint: <text>" so callers can append them
// directly to an error message before printing.
package hints

import (
	"os"
	"strings"

	"github.com/bookpress/bookpress/internal/fileutil"
)

// IsInContainer detects whether the process runs inside a container, via
// the /.dockerenv marker Docker creates. Variable so tests can stub it.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForEngine returns the hint for a missing or unresponsive container
// engine.
func ForEngine() string {
	return format("install docker or podman, or set toolchain.engine: local to use a host pandoc")
}

// ForMergeTool returns the hint for a missing PDF merge tool. Chunked
// builds, covers, and table-of-contents merging all need one.
func ForMergeTool() string {
	return format("install pdftk or cpdf; chunked builds, covers, and toc merging need a merge tool")
}

// ForConfig returns the hint for a config file that could not be found.
func ForConfig() string {
	return format("use --config /path/to/book.yaml or run from the project directory")
}

// ForCompile returns the hint for a failed compiler run.
func ForCompile() string {
	return format("run 'bookpress doctor' to check the toolchain")
}

// ForTimeout returns the hint for an operation cut off by its deadline.
func ForTimeout() string {
	return format("for large books, raise --timeout")
}

// ForStyle returns the hint listing the available highlight styles, or ""
// when none are known.
func ForStyle(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForDateFormat returns the hint for an unparseable date variable.
func ForDateFormat() string {
	return format(`use "auto", "auto:iso|european|us|long", or "auto:FORMAT" with YYYY MM DD tokens`)
}

// ForBrowserConnect returns hints for preview browser launch failures.
// Containerized and CI environments usually need the sandbox disabled,
// and a preinstalled Chrome avoids the managed download.
func ForBrowserConnect() string {
	var parts []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		parts = append(parts, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		parts = append(parts, "set ROD_BROWSER_BIN to use an installed Chrome")
	}

	return formatHints(parts)
}

// format renders a single hint with the shared prefix.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints into one suffix.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
