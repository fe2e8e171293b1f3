package bookpress

import (
	"fmt"
	"path/filepath"
	"strings"
)

// fragmentsDirName is the subdirectory of the output directory holding
// intermediate artifacts (chunk PDFs, the TOC fragment). Re-runs overwrite
// fragments in place.
const fragmentsDirName = "fragments"

// partition splits items into contiguous groups of at most size elements,
// preserving order. A size of zero or less, or one covering the whole
// slice, yields a single group. Partition boundaries are an artifact of
// external tool limits, not of the document structure, so recombining the
// groups in order must reproduce the original sequence exactly.
func partition[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size >= len(items) {
		return [][]T{items}
	}
	groups := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		groups = append(groups, items[start:min(start+size, len(items))])
	}
	return groups
}

// fragmentStem returns the output's base name without its extension,
// e.g. "dist/book.pdf" -> "book".
func fragmentStem(output string) string {
	base := filepath.Base(output)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// chunkPath returns the deterministic path of chunk n (1-based) for the
// given output: "dist/book.pdf" -> "dist/fragments/book.chunk-01.pdf".
func chunkPath(output string, n int) string {
	name := fmt.Sprintf("%s.chunk-%02d.pdf", fragmentStem(output), n)
	return filepath.Join(filepath.Dir(output), fragmentsDirName, name)
}

// tocFragmentPath returns the deterministic path of the standalone TOC
// fragment: "dist/book.pdf" -> "dist/fragments/book.toc.pdf".
func tocFragmentPath(output string) string {
	return filepath.Join(filepath.Dir(output), fragmentsDirName, fragmentStem(output)+".toc.pdf")
}
