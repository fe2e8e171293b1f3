package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bookpress/bookpress"
	"github.com/bookpress/bookpress/internal/manuscript"
)

// filePermissions for rendered previews.
const filePermissions = 0o644 // rw-r--r--: owner read+write, others read

// runPreviewCmd executes the preview command and returns an exit code.
// Previews render single chapters without the PDF toolchain and work
// without a config file, so authors can check a chapter anywhere.
func runPreviewCmd(ctx context.Context, args []string, env *Environment) int {
	flags, units, err := parsePreviewFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}
	if len(units) == 0 {
		fmt.Fprintln(env.Stderr, "preview requires at least one unit file")
		printPreviewUsage(env.Stderr)
		return ExitUsage
	}
	if flags.output != "" && len(units) > 1 {
		fmt.Fprintln(env.Stderr, "--output requires exactly one unit")
		return ExitUsage
	}

	var timeout time.Duration
	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil || d <= 0 {
			fmt.Fprintf(env.Stderr, "invalid timeout %q (expect a duration like 30s or 2m)\n", flags.timeout)
			return ExitUsage
		}
		timeout = d
	}

	var renderer *bookpress.PDFRenderer
	if flags.pdf {
		renderer = bookpress.NewPDFRenderer(timeout)
		defer func() { _ = renderer.Close() }()
	}

	for _, unitPath := range units {
		if err := previewUnit(ctx, unitPath, flags, renderer, env); err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", unitPath, err, errorHint(err))
			return exitCodeFor(err)
		}
	}
	return ExitSuccess
}

// previewUnit renders one chapter to HTML, or to PDF when requested.
func previewUnit(ctx context.Context, unitPath string, flags *previewFlags, renderer *bookpress.PDFRenderer, env *Environment) error {
	src, err := os.ReadFile(unitPath) // #nosec G304 -- unit paths are user arguments
	if err != nil {
		return err
	}

	// Best effort: unreadable front matter falls back to the default title,
	// the preview itself still renders.
	var title string
	if unit, err := manuscript.Analyze(unitPath, src); err == nil {
		title = unit.Title
	}

	page, err := bookpress.RenderPreview(src, bookpress.PreviewOptions{Title: title, Style: flags.style})
	if err != nil {
		return err
	}

	out := flags.output
	if out == "" {
		ext := ".html"
		if flags.pdf {
			ext = ".pdf"
		}
		out = strings.TrimSuffix(unitPath, filepath.Ext(unitPath)) + ext
	}

	data := page
	if flags.pdf {
		data, err = renderer.Render(ctx, string(page))
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(out, data, filePermissions); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s\n", out)
	}
	return nil
}
