package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// chunkSizeSentinel detects if --chunk-size was explicitly set.
// Zero is a valid value (one compiler invocation for the whole book), so an
// out-of-range sentinel marks "not given" instead.
const chunkSizeSentinel = -1

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// toolchainFlags holds per-invocation overrides for the external toolchain.
type toolchainFlags struct {
	engine string
	image  string
	memory string
	merger string
}

// buildFlags holds all flags for the build command.
type buildFlags struct {
	common    commonFlags
	toolchain toolchainFlags
	output    string
	chunkSize int
	noTOC     bool
	noCover   bool
	verify    bool
}

// coverFlags holds flags for the cover command.
type coverFlags struct {
	common    commonFlags
	toolchain toolchainFlags
	verify    bool
}

// tocFlags holds flags for the toc command.
type tocFlags struct {
	common    commonFlags
	toolchain toolchainFlags
	merge     bool
	verify    bool
}

// cleanFlags holds flags for the clean command.
type cleanFlags struct {
	common commonFlags
	dryRun bool
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	json   bool
}

// previewFlags holds flags for the preview command.
type previewFlags struct {
	common  commonFlags
	output  string
	style   string
	pdf     bool
	timeout string
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common commonFlags
	addr   string
	style  string
}

// statsFlags holds flags for the stats command.
type statsFlags struct {
	common commonFlags
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed progress")
}

// addToolchainFlags adds toolchain override flags to a FlagSet.
func addToolchainFlags(fs *flag.FlagSet, f *toolchainFlags) {
	fs.StringVar(&f.engine, "engine", "", "container engine: auto, docker, podman, local")
	fs.StringVar(&f.image, "image", "", "compiler container image")
	fs.StringVar(&f.memory, "memory", "", "container memory limit (e.g., 2g)")
	fs.StringVar(&f.merger, "merger", "", "PDF merge tool: auto, pdftk, cpdf")
}

// The newXFlagSet constructors are the single place each command's flags are
// registered. Parsing and completion both read from them.

func newBuildFlagSet() (*buildFlags, *flag.FlagSet) {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	f := &buildFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "artifact path (single variant only)")
	fs.IntVar(&f.chunkSize, "chunk-size", chunkSizeSentinel, "units per compiler invocation (0 = whole book)")
	fs.BoolVar(&f.noTOC, "no-toc", false, "disable table of contents")
	fs.BoolVar(&f.noCover, "no-cover", false, "disable cover pages")
	fs.BoolVar(&f.verify, "verify", false, "fail when page counts cannot be verified")

	addCommonFlags(fs, &f.common)
	addToolchainFlags(fs, &f.toolchain)

	fs.Usage = func() { printBuildUsage(os.Stderr) }
	return f, fs
}

func newCoverFlagSet() (*coverFlags, *flag.FlagSet) {
	fs := flag.NewFlagSet("cover", flag.ContinueOnError)
	f := &coverFlags{}

	fs.BoolVar(&f.verify, "verify", false, "fail when page counts cannot be verified")

	addCommonFlags(fs, &f.common)
	addToolchainFlags(fs, &f.toolchain)

	fs.Usage = func() { printCoverUsage(os.Stderr) }
	return f, fs
}

func newTOCFlagSet() (*tocFlags, *flag.FlagSet) {
	fs := flag.NewFlagSet("toc", flag.ContinueOnError)
	f := &tocFlags{}

	fs.BoolVar(&f.merge, "merge", false, "prepend the fragment to the built artifact")
	fs.BoolVar(&f.verify, "verify", false, "fail when page counts cannot be verified")

	addCommonFlags(fs, &f.common)
	addToolchainFlags(fs, &f.toolchain)

	fs.Usage = func() { printTOCUsage(os.Stderr) }
	return f, fs
}

func newCleanFlagSet() (*cleanFlags, *flag.FlagSet) {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	f := &cleanFlags{}

	fs.BoolVarP(&f.dryRun, "dry-run", "n", false, "list what would be removed without removing")

	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printCleanUsage(os.Stderr) }
	return f, fs
}

func newDoctorFlagSet() (*doctorFlags, *flag.FlagSet) {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	f := &doctorFlags{}

	fs.BoolVar(&f.json, "json", false, "output machine-readable JSON")

	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printDoctorUsage(os.Stderr) }
	return f, fs
}

func newPreviewFlagSet() (*previewFlags, *flag.FlagSet) {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	f := &previewFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file (single unit only; default sibling .html)")
	fs.StringVar(&f.style, "style", "", "syntax highlight style (default github)")
	fs.BoolVar(&f.pdf, "pdf", false, "render to PDF with headless Chrome instead of HTML")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF render timeout (e.g., 30s, 2m)")

	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printPreviewUsage(os.Stderr) }
	return f, fs
}

func newServeFlagSet() (*serveFlags, *flag.FlagSet) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	f := &serveFlags{}

	fs.StringVar(&f.addr, "addr", "localhost:8080", "listen address")
	fs.StringVar(&f.style, "style", "", "syntax highlight style (default github)")

	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printServeUsage(os.Stderr) }
	return f, fs
}

func newStatsFlagSet() (*statsFlags, *flag.FlagSet) {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	f := &statsFlags{}

	fs.BoolVar(&f.json, "json", false, "output machine-readable JSON")

	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printStatsUsage(os.Stderr) }
	return f, fs
}

// parseBuildFlags parses build command flags and returns variant arguments.
func parseBuildFlags(args []string) (*buildFlags, []string, error) {
	f, fs := newBuildFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseCoverFlags parses cover command flags and returns variant arguments.
func parseCoverFlags(args []string) (*coverFlags, []string, error) {
	f, fs := newCoverFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseTOCFlags parses toc command flags and returns variant arguments.
func parseTOCFlags(args []string) (*tocFlags, []string, error) {
	f, fs := newTOCFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseCleanFlags parses clean command flags.
func parseCleanFlags(args []string) (*cleanFlags, []string, error) {
	f, fs := newCleanFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string) (*doctorFlags, []string, error) {
	f, fs := newDoctorFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parsePreviewFlags parses preview command flags and returns unit arguments.
func parsePreviewFlags(args []string) (*previewFlags, []string, error) {
	f, fs := newPreviewFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string) (*serveFlags, []string, error) {
	f, fs := newServeFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseStatsFlags parses stats command flags and returns variant arguments.
func parseStatsFlags(args []string) (*statsFlags, []string, error) {
	f, fs := newStatsFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
