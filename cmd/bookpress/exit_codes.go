package main

import (
	"errors"
	"os"

	"github.com/bookpress/bookpress"
	"github.com/bookpress/bookpress/internal/config"
	"github.com/bookpress/bookpress/internal/dateutil"
	"github.com/bookpress/bookpress/internal/toolchain"
)

// Exit codes for the bookpress CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful build
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitCompile = 3 // Compilation failed or an input is missing
	ExitTool    = 4 // Container engine, merge tool, or browser unavailable or failed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Toolchain availability errors (exit 4). Checked before compile errors:
	// a compile attempt with no usable engine wraps both, and the missing
	// engine is the actionable cause.
	if errors.Is(err, toolchain.ErrNoEngine) ||
		errors.Is(err, toolchain.ErrEngineUnavailable) ||
		errors.Is(err, toolchain.ErrUnknownEngine) ||
		errors.Is(err, bookpress.ErrNoMergeTool) ||
		errors.Is(err, bookpress.ErrUnknownMergeTool) ||
		errors.Is(err, bookpress.ErrBrowserConnect) ||
		errors.Is(err, bookpress.ErrPageCreate) ||
		errors.Is(err, bookpress.ErrPageLoad) ||
		errors.Is(err, bookpress.ErrPDFRender) {
		return ExitTool
	}

	// Compile errors (exit 3). Checked before merge errors: a failed chunk
	// in a chunked build wraps both, and the compiler is the root cause.
	if errors.Is(err, bookpress.ErrCompile) ||
		errors.Is(err, ErrNoArtifact) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitCompile
	}

	// Merge errors (exit 4)
	if errors.Is(err, bookpress.ErrMerge) {
		return ExitTool
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrUnknownVariant) ||
		errors.Is(err, config.ErrUnknownProfile) ||
		errors.Is(err, config.ErrNoVariant) ||
		errors.Is(err, bookpress.ErrEmptyOutput) ||
		errors.Is(err, bookpress.ErrInvalidChunkSize) ||
		errors.Is(err, bookpress.ErrUnknownStyle) ||
		errors.Is(err, dateutil.ErrInvalidFormat) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, ErrOutputWithVariants) {
		return ExitUsage
	}

	return ExitGeneral
}
