package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: bookpress <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build       Build book variants to PDF")
	fmt.Fprintln(w, "  cover       Wrap a built artifact in its cover pages")
	fmt.Fprintln(w, "  toc         Build the table of contents fragment")
	fmt.Fprintln(w, "  clean       Remove the output directory")
	fmt.Fprintln(w, "  doctor      Check the external toolchain")
	fmt.Fprintln(w, "  preview     Render single chapters to HTML or PDF")
	fmt.Fprintln(w, "  serve       Serve chapter previews with live reload")
	fmt.Fprintln(w, "  stats       Show manuscript statistics")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'bookpress help <command>' for details on a specific command.")
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: bookpress build [variant...] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build book variants through the full pipeline: before hook, compile")
	fmt.Fprintln(w, "(chunked when configured), covers, table of contents, verification,")
	fmt.Fprintln(w, "after hook. Without arguments the default variant builds. Multiple")
	fmt.Fprintln(w, "variants build sequentially and stop at the first failure.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  variant    Variant names from book.yaml (default: defaultVariant)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build:")
	fmt.Fprintln(w, "  -o, --output <path>     Artifact path (single variant only)")
	fmt.Fprintln(w, "      --chunk-size <n>    Units per compiler invocation (0 = whole book)")
	fmt.Fprintln(w, "      --no-toc            Disable table of contents")
	fmt.Fprintln(w, "      --no-cover          Disable cover pages")
	fmt.Fprintln(w, "      --verify            Fail when page counts cannot be verified")
	fmt.Fprintln(w)
	printToolchainUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printCoverUsage prints usage for the cover command.
func printCoverUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: bookpress cover [variant] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Wrap an already built artifact between its configured front and back")
	fmt.Fprintln(w, "cover PDFs. Unlike build, a skipped cover step is an error here.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --verify            Fail when page counts cannot be verified")
	fmt.Fprintln(w)
	printToolchainUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printTOCUsage prints usage for the toc command.
func printTOCUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: bookpress toc [variant] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build the standalone table of contents fragment for a variant. With")
	fmt.Fprintln(w, "--merge the fragment is prepended to the already built artifact.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --merge             Prepend the fragment to the built artifact")
	fmt.Fprintln(w, "      --verify            Fail when page counts cannot be verified")
	fmt.Fprintln(w)
	printToolchainUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printCleanUsage prints usage for the clean command.
func printCleanUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: bookpress clean [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Remove the configured output directory with all artifacts and chunk")
	fmt.Fprintln(w, "fragments.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -n, --dry-run           List what would be removed without removing")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: bookpress doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the external toolchain: container engine, compiler image, local")
	fmt.Fprintln(w, "pandoc, merge tools, and the output directory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json              Output machine-readable JSON")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printPreviewUsage prints usage for the preview command.
func printPreviewUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: bookpress preview <unit.md>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render single chapters to standalone HTML, or to PDF with headless")
	fmt.Fprintln(w, "Chrome, without involving the PDF toolchain. Works without a config")
	fmt.Fprintln(w, "file.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  unit       Markdown files to render")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>     Output file (single unit only)")
	fmt.Fprintln(w, "      --style <name>      Syntax highlight style (default github)")
	fmt.Fprintln(w, "      --pdf               Render to PDF instead of HTML")
	fmt.Fprintln(w, "  -t, --timeout <d>       PDF render timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: bookpress serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve chapter previews over HTTP with live reload: edits to any unit")
	fmt.Fprintln(w, "listed in book.yaml refresh open browser tabs.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --addr <host:port>  Listen address (default localhost:8080)")
	fmt.Fprintln(w, "      --style <name>      Syntax highlight style (default github)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printStatsUsage prints usage for the stats command.
func printStatsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: bookpress stats [variant] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Show per-unit word, heading, and code block counts for a variant's")
	fmt.Fprintln(w, "manuscript, with totals.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json              Output machine-readable JSON")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printToolchainUsage prints the shared toolchain flag block.
func printToolchainUsage(w io.Writer) {
	fmt.Fprintln(w, "Toolchain:")
	fmt.Fprintln(w, "      --engine <name>     Container engine: auto, docker, podman, local")
	fmt.Fprintln(w, "      --image <ref>       Compiler container image")
	fmt.Fprintln(w, "      --memory <limit>    Container memory limit (e.g., 2g)")
	fmt.Fprintln(w, "      --merger <name>     PDF merge tool: auto, pdftk, cpdf")
}

// printCommonUsage prints the shared common flag block.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>     Config file name or path (default book.yaml)")
	fmt.Fprintln(w, "  -q, --quiet             Only show errors")
	fmt.Fprintln(w, "  -v, --verbose           Show detailed progress")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "cover":
		printCoverUsage(env.Stdout)
	case "toc":
		printTOCUsage(env.Stdout)
	case "clean":
		printCleanUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "preview":
		printPreviewUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "stats":
		printStatsUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: bookpress version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: bookpress help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
