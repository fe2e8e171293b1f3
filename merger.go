package bookpress

import (
	"context"
	"fmt"

	"github.com/bookpress/bookpress/internal/toolchain"
)

// Merger concatenates PDF artifacts in input order into one output file.
// Implementations report failures with an error wrapping ErrMerge, except
// for context cancellation which is returned as-is.
type Merger interface {
	Merge(ctx context.Context, inputs []string, output string) error
}

// Known merge tools. Auto resolution prefers pdftk and falls back to cpdf.
const (
	MergerAuto  = "auto"
	MergerPDFTK = "pdftk"
	MergerCPDF  = "cpdf"
)

// CommandMerger drives an external PDF merge tool on the host. The tool is
// resolved on first use: a named tool is taken as-is, "auto" probes the
// PATH for pdftk, then cpdf.
type CommandMerger struct {
	tool     string
	resolved string
	runner   toolchain.CommandRunner
	look     func(name string) (string, bool)
}

// Compile-time interface check
var _ Merger = (*CommandMerger)(nil)

// NewCommandMerger creates a merger for the named tool ("pdftk", "cpdf", or
// "auto").
func NewCommandMerger(tool string) *CommandMerger {
	return &CommandMerger{
		tool:   tool,
		runner: &toolchain.ExecRunner{},
		look:   toolchain.LookTool,
	}
}

// Merge concatenates inputs in order into output.
func (m *CommandMerger) Merge(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("%w: no inputs", ErrMerge)
	}

	tool, err := m.resolveTool()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMerge, err)
	}

	_, stderr, err := m.runner.Run(ctx, tool, mergeArgs(tool, inputs, output)...)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if status := toolchain.ExitStatus(err); status >= 0 {
			return fmt.Errorf("%w: %s exited with status %d: %s", ErrMerge, tool, status, stderrTail(stderr))
		}
		return fmt.Errorf("%w: running %s: %v", ErrMerge, tool, err)
	}
	return nil
}

func (m *CommandMerger) resolveTool() (string, error) {
	if m.resolved != "" {
		return m.resolved, nil
	}
	switch m.tool {
	case "", MergerAuto:
		for _, tool := range []string{MergerPDFTK, MergerCPDF} {
			if _, ok := m.look(tool); ok {
				m.resolved = tool
				return tool, nil
			}
		}
		return "", ErrNoMergeTool
	case MergerPDFTK, MergerCPDF:
		m.resolved = m.tool
		return m.tool, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMergeTool, m.tool)
	}
}

// mergeArgs builds the tool-specific concatenation command line.
// pdftk: a.pdf b.pdf cat output out.pdf
// cpdf:  a.pdf b.pdf -o out.pdf
func mergeArgs(tool string, inputs []string, output string) []string {
	args := make([]string, 0, len(inputs)+3)
	args = append(args, inputs...)
	if tool == MergerCPDF {
		return append(args, "-o", output)
	}
	return append(args, "cat", "output", output)
}
