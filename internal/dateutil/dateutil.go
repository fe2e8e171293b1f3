// Package dateutil expands the special "auto" forms of the date metadata
// variable into concrete dates, so a book rebuilt tomorrow carries
// tomorrow's date without editing the config.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidFormat reports a date format that cannot be translated.
var ErrInvalidFormat = errors.New("invalid date format")

// maxFormatLen bounds user-supplied format strings.
const maxFormatLen = 50

// Presets name common formats for use as "auto:<preset>".
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// tokens in greedy match order, longest first, so MMMM is not consumed as
// two MM tokens.
var tokens = []struct {
	in  string
	out string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Layout translates a token date format into a Go time layout. Square
// brackets escape literal text: "[Date]: YYYY" keeps the word Date even
// though D is a token. Characters matching no token pass through.
func Layout(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: empty format", ErrInvalidFormat)
	}
	if len(format) > maxFormatLen {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidFormat, maxFormatLen)
	}

	var b strings.Builder
	b.Grow(len(format))
	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.Index(format[i+1:], "]")
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidFormat, i)
			}
			b.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}
		if out, n := matchToken(format[i:]); n > 0 {
			b.WriteString(out)
			i += n
			continue
		}
		b.WriteByte(format[i])
		i++
	}
	return b.String(), nil
}

// matchToken reports the Go layout fragment for the token at the start of
// s, with the token's length, or a zero length when none matches.
func matchToken(s string) (string, int) {
	for _, t := range tokens {
		if strings.HasPrefix(s, t.in) {
			return t.out, len(t.in)
		}
	}
	return "", 0
}

// Resolve expands value when it starts with "auto". A bare "auto" formats
// now as YYYY-MM-DD, and "auto:<format>" accepts a token format or one of
// the Presets. Any other value is returned unchanged, so literal dates and
// free text like "First Edition" survive.
func Resolve(value string, now time.Time) (string, error) {
	lower := strings.ToLower(value)
	switch {
	case lower == "auto":
		return now.Format("2006-01-02"), nil
	case strings.HasPrefix(lower, "auto:"):
		format := value[len("auto:"):]
		if preset, ok := Presets[strings.ToLower(format)]; ok {
			format = preset
		}
		layout, err := Layout(format)
		if err != nil {
			return "", err
		}
		return now.Format(layout), nil
	case strings.HasPrefix(lower, "auto"):
		return "", fmt.Errorf("%w: %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidFormat, value)
	default:
		return value, nil
	}
}
