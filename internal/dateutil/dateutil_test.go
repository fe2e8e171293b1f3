package dateutil

// Notes:
// - Resolve is tested against a fixed time so the expected strings are
//   deterministic.
// - Token greediness matters: MMMM before MM, DD before D. The table pins
//   the combined formats where a wrong match order would show.

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestLayout - Token format translation
// ---------------------------------------------------------------------------

func TestLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr error
	}{
		{
			name:   "iso date",
			format: "YYYY-MM-DD",
			want:   "2006-01-02",
		},
		{
			name:   "european date",
			format: "DD/MM/YYYY",
			want:   "02/01/2006",
		},
		{
			name:   "long format with full month name",
			format: "MMMM D, YYYY",
			want:   "January 2, 2006",
		},
		{
			name:   "short month and two-digit year",
			format: "MMM 'YY",
			want:   "Jan '06",
		},
		{
			name:   "unpadded day and month",
			format: "D.M.YYYY",
			want:   "2.1.2006",
		},
		{
			name:   "literal characters pass through",
			format: "(YYYY)",
			want:   "(2006)",
		},
		{
			name:   "token letters in words are still tokens",
			format: "Date: YYYY",
			want:   "2ate: 2006",
		},
		{
			name:   "brackets escape literal text",
			format: "[Date]: YYYY",
			want:   "Date: 2006",
		},
		{
			name:   "brackets escape token letters",
			format: "[YYYY]-MM-DD",
			want:   "YYYY-01-02",
		},
		{
			name:   "empty brackets are allowed",
			format: "YYYY[]MM",
			want:   "200601",
		},
		{
			name:    "unclosed bracket",
			format:  "[Date YYYY",
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "empty format",
			format:  "",
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "overlong format",
			format:  strings.Repeat("Y", maxFormatLen+1),
			wantErr: ErrInvalidFormat,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Layout(tt.format)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Layout(%q) error = %v, want %v", tt.format, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Layout(%q) unexpected error: %v", tt.format, err)
			}
			if got != tt.want {
				t.Errorf("Layout(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestResolve - Auto date expansion
// ---------------------------------------------------------------------------

func TestResolve(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 7, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr error
	}{
		{
			name:  "empty value passes through",
			value: "",
			want:  "",
		},
		{
			name:  "literal date passes through",
			value: "2025-12-31",
			want:  "2025-12-31",
		},
		{
			name:  "free text passes through",
			value: "First Edition",
			want:  "First Edition",
		},
		{
			name:  "bare auto uses the iso layout",
			value: "auto",
			want:  "2026-03-07",
		},
		{
			name:  "auto is case insensitive",
			value: "AUTO",
			want:  "2026-03-07",
		},
		{
			name:  "explicit format",
			value: "auto:DD/MM/YYYY",
			want:  "07/03/2026",
		},
		{
			name:  "long preset",
			value: "auto:long",
			want:  "March 7, 2026",
		},
		{
			name:  "preset lookup is case insensitive",
			value: "auto:European",
			want:  "07/03/2026",
		},
		{
			name:  "bracket escape inside format",
			value: "auto:[Printed] MMMM YYYY",
			want:  "Printed March 2026",
		},
		{
			name:    "auto with empty format",
			value:   "auto:",
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "auto with trailing junk",
			value:   "automatic",
			wantErr: ErrInvalidFormat,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Resolve(tt.value, now)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve(%q) error = %v, want %v", tt.value, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
