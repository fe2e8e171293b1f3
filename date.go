package bookpress

import (
	"fmt"
	"time"

	"github.com/bookpress/bookpress/internal/dateutil"
)

// resolveDates expands the "auto" forms of the date variable against the
// given time. The caller's map is never mutated: when the value changes,
// the options come back with a fresh Variables map.
func resolveDates(opts CompileOptions, now time.Time) (CompileOptions, error) {
	raw, ok := opts.Variables["date"]
	if !ok {
		return opts, nil
	}
	resolved, err := dateutil.Resolve(raw, now)
	if err != nil {
		return opts, fmt.Errorf("resolving date variable: %w", err)
	}
	if resolved == raw {
		return opts, nil
	}

	vars := make(map[string]string, len(opts.Variables))
	for k, v := range opts.Variables {
		vars[k] = v
	}
	vars["date"] = resolved
	opts.Variables = vars
	return opts, nil
}
