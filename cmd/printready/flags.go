package main

import (
	"io"
	"strconv"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-printready/internal/config"
)

// cliFlags holds the command line flags.
type cliFlags struct {
	output      string
	config      string
	workers     int
	timeoutMS   int
	width       string
	height      string
	orientation string
	engine      string
	pagedJS     string
	debug       bool
	quiet       bool
	help        bool
	version     bool

	fs *flag.FlagSet
}

// parseFlags parses args (without the program name) and returns the flags
// and the positional inputs.
func parseFlags(args []string) (*cliFlags, []string, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("printready", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel renders (0 = auto)")
	fs.IntVar(&f.timeoutMS, "timeout", 0, "PDF capture timeout in milliseconds")
	fs.StringVar(&f.width, "width", "", "page width as a CSS length")
	fs.StringVar(&f.height, "height", "", "page height as a CSS length")
	fs.StringVar(&f.orientation, "orientation", "", "portrait or landscape")
	fs.StringVar(&f.engine, "engine", "", "browser backend: rod or chromedp")
	fs.StringVar(&f.pagedJS, "paged-js", "", "Paged.js polyfill URL or path")
	fs.BoolVar(&f.debug, "debug", false, "log every render event")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.help, "help", "h", false, "show help")
	fs.BoolVar(&f.version, "version", false, "show version")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.fs = fs
	return f, fs.Args(), nil
}

// mergeFlags copies explicitly set flags over cfg (CLI wins).
func mergeFlags(f *cliFlags, cfg *config.Config) {
	changed := f.fs.Changed

	if changed("engine") {
		cfg.Browser.Engine = f.engine
	}
	if changed("paged-js") {
		cfg.Pagination.Script = f.pagedJS
	}
	if changed("width") {
		cfg.PDF.Width = f.width
	}
	if changed("height") {
		cfg.PDF.Height = f.height
	}
	if changed("orientation") {
		cfg.PDF.Orientation = f.orientation
	}
	if changed("timeout") {
		cfg.PDF.Timeout = strconv.Itoa(f.timeoutMS) + "ms"
		if f.timeoutMS == 0 {
			cfg.PDF.Timeout = ""
		}
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if f.debug {
		cfg.Log.Level = "debug"
	}
}

// captureTimeout formats d the way the CLI prints it.
func captureTimeout(d time.Duration) string {
	if d == 0 {
		return "none"
	}
	return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
}
