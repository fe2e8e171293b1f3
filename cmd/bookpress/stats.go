package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/bookpress/bookpress/internal/config"
	"github.com/bookpress/bookpress/internal/manuscript"
)

// unitStats is one row of the stats report.
type unitStats struct {
	Unit     string `json:"unit"`
	Title    string `json:"title"`
	Words    int    `json:"words"`
	Headings int    `json:"headings"`
	Code     int    `json:"codeBlocks"`
}

// statsReport is the machine-readable shape of the stats output.
type statsReport struct {
	Units      []unitStats `json:"units"`
	TotalWords int         `json:"totalWords"`
	TotalCode  int         `json:"totalCodeBlocks"`
}

// runStatsCmd executes the stats command and returns an exit code. With a
// variant argument it reports that variant's unit subset, otherwise the full
// shared unit list.
func runStatsCmd(args []string, env *Environment) int {
	flags, positional, err := parseStatsFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}
	if len(positional) > 1 {
		fmt.Fprintf(env.Stderr, "stats takes at most one variant, got %d\n", len(positional))
		return ExitUsage
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	proj, err := loadProject(&flags.common, nil, envCfg)
	if err != nil {
		printError(env, err)
		return exitCodeFor(err)
	}

	var variant config.Variant
	if len(positional) == 1 {
		variant, err = proj.cfg.Variant(positional[0])
		if err != nil {
			fmt.Fprintln(env.Stderr, err)
			return exitCodeFor(err)
		}
	}

	report, err := collectStats(proj.cfg, variant)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintln(env.Stderr, err)
			return ExitGeneral
		}
		return ExitSuccess
	}

	printStats(env, report)
	return ExitSuccess
}

// collectStats analyzes every unit and accumulates the totals.
func collectStats(cfg *config.Config, v config.Variant) (*statsReport, error) {
	rel := cfg.UnitPaths(v)
	report := &statsReport{Units: make([]unitStats, 0, len(rel))}
	for _, r := range rel {
		unit, err := manuscript.Load(filepath.Join(cfg.BaseDir, r))
		if err != nil {
			return nil, err
		}
		report.Units = append(report.Units, unitStats{
			Unit:     r,
			Title:    unit.Title,
			Words:    unit.Words,
			Headings: unit.Headings(),
			Code:     unit.CodeBlocks,
		})
		report.TotalWords += unit.Words
		report.TotalCode += unit.CodeBlocks
	}
	return report, nil
}

// printStats writes the aligned text table.
func printStats(env *Environment, report *statsReport) {
	w := tabwriter.NewWriter(env.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "UNIT\tTITLE\tWORDS\tHEADINGS\tCODE")
	for _, u := range report.Units {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", u.Unit, u.Title, u.Words, u.Headings, u.Code)
	}
	fmt.Fprintf(w, "TOTAL\t%d units\t%d\t\t%d\n", len(report.Units), report.TotalWords, report.TotalCode)
	_ = w.Flush()
}
