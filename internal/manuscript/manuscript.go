// Package manuscript reads and analyzes book source units: it splits YAML
// front matter from the Markdown body and walks the goldmark AST to collect
// the heading outline, word count, and code block count used by the stats
// and serve commands.
package manuscript

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/bookpress/bookpress/internal/yamlutil"
)

// Heading is one outline entry.
type Heading struct {
	Level int
	Text  string
}

// Unit is the analyzed form of one source document.
type Unit struct {
	Path        string
	Title       string
	FrontMatter map[string]any
	Outline     []Heading
	Words       int
	CodeBlocks  int
}

// Headings returns the outline length.
func (u *Unit) Headings() int {
	return len(u.Outline)
}

// Load reads and analyzes one source unit from disk.
func Load(path string) (*Unit, error) {
	src, err := os.ReadFile(path) // #nosec G304 -- unit paths come from the project config
	if err != nil {
		return nil, fmt.Errorf("reading unit %s: %w", path, err)
	}
	return Analyze(path, src)
}

// Analyze parses Markdown source without touching the filesystem. The unit
// title is the front matter "title" when present, else the first level-one
// heading, else the file name without extension.
func Analyze(path string, src []byte) (*Unit, error) {
	meta, body := SplitFrontMatter(src)

	unit := &Unit{Path: path}
	if len(meta) > 0 {
		m, err := yamlutil.UnmarshalMap(meta)
		if err != nil {
			return nil, fmt.Errorf("parsing front matter of %s: %w", path, err)
		}
		unit.FrontMatter = m
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM, extension.Footnote))
	doc := md.Parser().Parse(text.NewReader(body))

	var firstH1 string
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			heading := Heading{Level: node.Level, Text: textOf(node, body)}
			unit.Outline = append(unit.Outline, heading)
			unit.Words += len(strings.Fields(heading.Text))
			if firstH1 == "" && heading.Level == 1 {
				firstH1 = heading.Text
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			unit.CodeBlocks++
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			unit.Words += len(strings.Fields(string(node.Segment.Value(body))))
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", path, err)
	}

	unit.Title = pickTitle(unit.FrontMatter, firstH1, path)
	return unit, nil
}

func pickTitle(frontMatter map[string]any, firstH1, path string) string {
	if t, ok := frontMatter["title"].(string); ok && t != "" {
		return t
	}
	if firstH1 != "" {
		return firstH1
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// textOf collects the plain text of a node's inline children.
func textOf(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		} else {
			buf.WriteString(textOf(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}

// SplitFrontMatter separates a leading YAML block delimited by "---" lines
// from the Markdown body. An absent or unterminated block yields a nil meta
// slice and the source unchanged.
func SplitFrontMatter(src []byte) (meta, body []byte) {
	s := string(src)
	firstNL := strings.IndexByte(s, '\n')
	if firstNL < 0 || strings.TrimRight(s[:firstNL], "\r") != "---" {
		return nil, src
	}

	pos := firstNL + 1
	for pos <= len(s) {
		lineEnd := strings.IndexByte(s[pos:], '\n')
		line := s[pos:]
		next := len(s)
		if lineEnd >= 0 {
			line = s[pos : pos+lineEnd]
			next = pos + lineEnd + 1
		}
		trimmed := strings.TrimRight(line, "\r")
		if trimmed == "---" || trimmed == "..." {
			return src[firstNL+1 : pos], src[next:]
		}
		if lineEnd < 0 {
			break
		}
		pos = next
	}
	return nil, src
}
