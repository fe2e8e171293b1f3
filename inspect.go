package bookpress

import (
	"fmt"

	pdflib "github.com/ledongthuc/pdf"
)

// CountPages returns the number of pages in the PDF at path, read with a
// pure Go parser so no external tool is needed.
func CountPages(path string) (int, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()
	return reader.NumPage(), nil
}

// SumPages totals the page counts of the given PDFs.
func SumPages(paths ...string) (int, error) {
	total := 0
	for _, p := range paths {
		n, err := CountPages(p)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// VerifyMerge checks that a merged artifact holds exactly the pages of its
// inputs. A concatenation that silently dropped or duplicated pages shows
// up here as an ErrVerify.
func VerifyMerge(output string, inputs ...string) error {
	want, err := SumPages(inputs...)
	if err != nil {
		return err
	}
	got, err := CountPages(output)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: %s has %d pages, inputs total %d", ErrVerify, output, got, want)
	}
	return nil
}
