package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	logLevel  string
	logFormat string
	quiet     bool
	verbose   bool
}

// browserFlags holds rendering and capture flags.
type browserFlags struct {
	timeout     string
	style       string
	assetPath   string
	stylesheets []string
	scale       float64
	noCORS      bool
}

// exportFlags holds all flags for the export command.
type exportFlags struct {
	common  commonFlags
	browser browserFlags
	output  string
	workers int
	html    bool
}

// editFlags holds all flags for the edit command.
type editFlags struct {
	common  commonFlags
	browser browserFlags
	output  string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error, off")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: console, json")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show timings and debug logs")
}

// addBrowserFlags adds rendering and capture flags to a FlagSet.
func addBrowserFlags(fs *flag.FlagSet, f *browserFlags) {
	fs.StringVarP(&f.timeout, "timeout", "t", "", "page load timeout (e.g. 30s, 2m)")
	fs.StringVarP(&f.style, "style", "s", "", "style name, CSS file path, or CSS")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.StringSliceVar(&f.stylesheets, "stylesheet", nil, "external stylesheet URL (repeatable)")
	fs.Float64Var(&f.scale, "scale", 0, "capture device pixel ratio (default 2)")
	fs.BoolVar(&f.noCORS, "no-cors", false, "load external stylesheets without crossorigin")
}

// newExportFlagSet registers the export flags into f.
func newExportFlagSet(f *exportFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel exports (0 = auto)")
	fs.BoolVar(&f.html, "html", false, "also write the rendered HTML")
	addCommonFlags(fs, &f.common)
	addBrowserFlags(fs, &f.browser)
	return fs
}

// newEditFlagSet registers the edit flags into f.
func newEditFlagSet(f *editFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	addCommonFlags(fs, &f.common)
	addBrowserFlags(fs, &f.browser)
	return fs
}

// parseExportFlags parses export command flags and returns positional args.
func parseExportFlags(args []string, usage io.Writer) (*exportFlags, []string, error) {
	f := &exportFlags{}
	fs := newExportFlagSet(f)
	fs.SetOutput(usage)
	fs.Usage = func() { printExportUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}

// parseEditFlags parses edit command flags and returns positional args.
func parseEditFlags(args []string, usage io.Writer) (*editFlags, []string, error) {
	f := &editFlags{}
	fs := newEditFlagSet(f)
	fs.SetOutput(usage)
	fs.Usage = func() { printEditUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}
