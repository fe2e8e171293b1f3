package bookpress

import (
	"bytes"
	"fmt"
	"html"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/bookpress/bookpress/internal/manuscript"
)

// defaultHighlightStyle is the chroma style used when none is requested.
const defaultHighlightStyle = "github"

// previewTemplate wraps the rendered chapter in a complete HTML5 document.
const previewTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
%s
</style>
</head>
<body>
<main>
%s
</main>
</body>
</html>`

// previewCSS gives previews a readable book-like layout. The chroma
// stylesheet for the chosen highlight style is appended to it.
const previewCSS = `body { margin: 0 auto; max-width: 42rem; padding: 2rem 1rem; font-family: Georgia, serif; line-height: 1.6; color: #222; }
h1, h2, h3 { line-height: 1.25; }
pre { padding: 1rem; overflow-x: auto; border-radius: 4px; }
code { font-family: "SF Mono", Consolas, monospace; font-size: 0.9em; }
img { max-width: 100%; }
blockquote { margin-left: 0; padding-left: 1rem; border-left: 3px solid #ccc; color: #555; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 0.3rem 0.6rem; }`

// PreviewOptions configure chapter preview rendering.
type PreviewOptions struct {
	Title string // page title; defaults to "Preview"
	Style string // chroma highlight style name; defaults to "github"
	CSS   string // extra CSS appended after the built-in stylesheet
}

// RenderPreview converts one chapter's Markdown to a standalone HTML page
// with syntax-highlighted code blocks, without involving the PDF toolchain.
// Front matter is stripped before rendering.
func RenderPreview(src []byte, opts PreviewOptions) ([]byte, error) {
	style := opts.Style
	if style == "" {
		style = defaultHighlightStyle
	}
	if err := validateStyle(style); err != nil {
		return nil, err
	}

	title := opts.Title
	if title == "" {
		title = "Preview"
	}

	_, body := manuscript.SplitFrontMatter(src)

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	var rendered bytes.Buffer
	if err := md.Convert(body, &rendered); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTMLRender, err)
	}

	var css bytes.Buffer
	css.WriteString(previewCSS)
	css.WriteString("\n")
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&css, styles.Get(style)); err != nil {
		return nil, fmt.Errorf("writing highlight stylesheet: %w", err)
	}
	if opts.CSS != "" {
		css.WriteString("\n")
		css.WriteString(opts.CSS)
	}

	page := fmt.Sprintf(previewTemplate, html.EscapeString(title), css.String(), rendered.String())
	return []byte(page), nil
}

// validateStyle rejects unknown chroma style names instead of letting the
// highlighter silently fall back.
func validateStyle(name string) error {
	for _, known := range styles.Names() {
		if known == name {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownStyle, name)
}

// HighlightStyles lists the available highlight style names.
func HighlightStyles() []string {
	return styles.Names()
}
