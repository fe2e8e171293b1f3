// Package bookpress builds book manuscripts: ordered Markdown chapters in,
// one PDF out, through an external Pandoc/XeLaTeX toolchain running in a
// container (docker or podman) or directly on the host.
//
// # Quick Start
//
// Create a service and run the composite pipeline for one build
// configuration:
//
//	svc := bookpress.New(
//	    bookpress.WithCompiler(bookpress.NewPandocCompiler(bookpress.CompilerConfig{
//	        Engine: "auto",
//	        Image:  "pandoc/extra:3.5",
//	        Memory: "2g",
//	    })),
//	)
//
//	res, err := svc.Run(ctx, bookpress.BuildConfig{
//	    Name:    "book",
//	    BaseDir: "/path/to/project",
//	    Units:   []string{"chapters/01-intro.md", "chapters/02-setup.md"},
//	    Options: bookpress.CompileOptions{PDFEngine: "xelatex", TOCDepth: 2},
//	    Output:  "dist/book.pdf",
//	})
//
// # Pipeline
//
// A run executes these stages in order, sequentially and without retries:
//
//  1. Before hook (portable shell, fail fast)
//  2. Compile: one compiler invocation over the ordered units, or a chunked
//     build for very large books (fixed-size contiguous groups compiled one
//     at a time, then concatenated in order)
//  3. Covers: front ++ body ++ back when both cover PDFs exist
//  4. Table of contents: a standalone TOC fragment prepended to the
//     artifact, best effort
//  5. Page count verification
//  6. After hook
//
// Unit order defines reading order and is never changed by the pipeline.
// Merge steps write to a temporary file and atomically replace the output,
// so a failed merge never clobbers an existing artifact. Covers and the TOC
// are strictly optional: a skipped step reports an Enrichment with the
// reason instead of an error.
//
// # External Tools
//
// Compilation needs docker or podman with a pandoc image (or a local pandoc
// with the "local" engine). Concatenation needs pdftk or cpdf on the PATH;
// auto-detection prefers pdftk. Page counts are read with a pure Go PDF
// parser, so inspection and verification need no external tool.
//
// # Previews
//
// RenderPreview converts a single chapter to standalone HTML with syntax
// highlighting for fast iteration, and PDFRenderer prints that HTML to PDF
// with headless Chrome, neither touching the book toolchain. For containers
// and CI, set ROD_BROWSER_BIN to a pre-installed Chrome binary.
package bookpress
