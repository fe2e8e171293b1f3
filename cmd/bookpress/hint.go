package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookpress/bookpress"
	"github.com/bookpress/bookpress/internal/config"
	"github.com/bookpress/bookpress/internal/dateutil"
	"github.com/bookpress/bookpress/internal/hints"
	"github.com/bookpress/bookpress/internal/toolchain"
)

// errorHint maps well-known failures to an actionable suffix, or "" when
// none applies. Checked in the same order as exitCodeFor: an error wrapping
// both a missing engine and a failed compile gets the engine hint.
func errorHint(err error) string {
	switch {
	case errors.Is(err, toolchain.ErrNoEngine),
		errors.Is(err, toolchain.ErrEngineUnavailable):
		return hints.ForEngine()
	case errors.Is(err, bookpress.ErrNoMergeTool):
		return hints.ForMergeTool()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfig()
	case errors.Is(err, bookpress.ErrUnknownStyle):
		return hints.ForStyle(bookpress.HighlightStyles())
	case errors.Is(err, dateutil.ErrInvalidFormat):
		return hints.ForDateFormat()
	case errors.Is(err, bookpress.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, bookpress.ErrCompile):
		return hints.ForCompile()
	}
	return ""
}

// printError reports a failure on stderr with its hint when one applies.
func printError(env *Environment, err error) {
	fmt.Fprintf(env.Stderr, "%v%s\n", err, errorHint(err))
}
