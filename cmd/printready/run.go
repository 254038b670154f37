package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	printready "github.com/alnah/go-printready"
	"github.com/alnah/go-printready/internal/config"
	"github.com/alnah/go-printready/internal/fileutil"
	"github.com/alnah/go-printready/internal/hints"
	"github.com/alnah/go-printready/internal/logger"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput  = errors.New("no input specified")
	ErrWritePDF = errors.New("failed to write PDF file")
	errUsage    = errors.New("invalid usage")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// job pairs an input with the file its PDF is written to.
type job struct {
	input  string
	output string
}

// runMain runs the CLI and returns the process exit code.
func runMain(args []string, env *Environment) int {
	f, inputs, err := parseFlags(args[1:])
	if err != nil {
		fmt.Fprintf(env.Stderr, "%v\nRun 'printready --help' for usage.\n", err)
		return ExitUsage
	}
	if f.help {
		printUsage(env.Stdout)
		return ExitSuccess
	}
	if f.version {
		fmt.Fprintf(env.Stdout, "printready %s\n", Version)
		return ExitSuccess
	}
	if len(inputs) == 0 {
		printUsage(env.Stderr)
		return ExitGeneral
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := run(ctx, f, inputs, env); err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// errRenderFailed carries the exit code of the first failed render after
// results have been reported.
type errRenderFailed struct {
	failed int
	first  error
}

func (e *errRenderFailed) Error() string {
	return fmt.Sprintf("%d render(s) failed", e.failed)
}

func (e *errRenderFailed) Unwrap() error { return e.first }

func run(ctx context.Context, f *cliFlags, inputs []string, env *Environment) error {
	cfg := config.DefaultConfig()
	if f.config != "" {
		loaded, err := config.LoadConfig(f.config)
		if err != nil {
			var nf *config.NotFoundError
			if errors.As(err, &nf) {
				return fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(nf.Tried))
			}
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	mergeFlags(f, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Writer: env.Stderr})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	workers := printready.ResolveWorkers(cfg.Workers)
	log.Debug("configuration",
		zap.String("engine", cfg.Browser.Engine),
		zap.Int("workers", workers),
		zap.String("captureTimeout", captureTimeout(cfg.CaptureTimeout())),
	)

	r, err := env.NewRenderer(printerOptions(cfg, log)...)
	if err != nil {
		return err
	}
	if f.debug {
		if err := subscribeDebug(r, log); err != nil {
			return err
		}
	}

	jobs := planJobs(inputs, f.output, cfg.Output.DefaultDir)
	pdfOpts := printready.PDFOptions{
		Orientation: cfg.PDF.Orientation,
		Width:       cfg.PDF.Width,
		Height:      cfg.PDF.Height,
		Timeout:     cfg.CaptureTimeout(),
	}
	reqs := make([]printready.RenderRequest, len(jobs))
	for i, j := range jobs {
		reqs[i] = printready.RenderRequest{Source: j.input, PDF: pdfOpts}
	}

	results := r.RenderAll(ctx, reqs, workers)
	return report(results, jobs, f.quiet, cfg, env)
}

// printerOptions maps the configuration to printer options.
func printerOptions(cfg *config.Config, log *zap.Logger) []printready.Option {
	opts := []printready.Option{
		printready.WithLogger(log),
		printready.WithEngine(cfg.Browser.Engine),
		printready.WithBeforeHook(cfg.Pagination.Before),
		printready.WithAfterHook(cfg.Pagination.After),
	}
	if cfg.Browser.Bin != "" {
		opts = append(opts, printready.WithBrowserBin(cfg.Browser.Bin))
	}
	if cfg.Browser.NoSandbox {
		opts = append(opts, printready.WithNoSandbox(true))
	}
	if d := cfg.NavigationTimeout(); d > 0 {
		opts = append(opts, printready.WithNavigationTimeout(d))
	}
	if cfg.Pagination.Script != "" {
		opts = append(opts, printready.WithPaginationScript(cfg.Pagination.Script))
	}
	return opts
}

// planJobs picks the output file of every input. A single input with an
// output ending in .pdf writes there; otherwise output (or defaultDir) is
// a directory. Without either, files are written to the working directory.
func planJobs(inputs []string, output, defaultDir string) []job {
	jobs := make([]job, len(inputs))
	single := len(inputs) == 1 && strings.EqualFold(filepath.Ext(output), ".pdf")

	for i, in := range inputs {
		if single {
			jobs[i] = job{input: in, output: output}
			continue
		}

		dir := output
		if dir == "" {
			dir = defaultDir
		}
		jobs[i] = job{input: in, output: filepath.Join(dir, outputName(in)+".pdf")}
	}
	return jobs
}

// outputName returns the PDF base name for an input.
func outputName(input string) string {
	if fileutil.IsURL(input) {
		u, err := url.Parse(input)
		if err == nil && strings.EqualFold(u.Scheme, "file") {
			p := filepath.FromSlash(u.Path)
			return strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		}
		base := ""
		if err == nil {
			base = strings.TrimSuffix(path.Base(u.Path), path.Ext(u.Path))
			if base == "" || base == "/" || base == "." {
				base = u.Hostname()
			}
		}
		if base == "" {
			base = "index"
		}
		return base
	}
	return strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
}

// report writes successful PDFs and prints one line per input. It returns
// an error wrapping the first failure, after every result has been printed.
func report(results []printready.BatchResult, jobs []job, quiet bool, cfg *config.Config, env *Environment) error {
	var (
		failed int
		first  error
	)
	for i, res := range results {
		j := jobs[i]
		err := res.Err
		if err == nil {
			err = writePDF(j.output, res.Artifact.PDF)
		}
		if err != nil {
			failed++
			if first == nil {
				first = err
			}
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", j.input, err, hintFor(err, cfg))
			continue
		}
		if !quiet {
			fmt.Fprintf(env.Stdout, "Created %s (%d pages)\n", j.output, res.Artifact.Outcome.PageCount)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}
	if failed > 0 {
		return &errRenderFailed{failed: failed, first: first}
	}
	return nil
}

func writePDF(path string, pdf []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("%w: %w%s", ErrWritePDF, err, hints.ForOutputDirectory())
		}
	}
	if err := os.WriteFile(path, pdf, filePermissions); err != nil { // #nosec G306 -- PDFs are meant to be shared
		return fmt.Errorf("%w: %w", ErrWritePDF, err)
	}
	return nil
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, cfg *config.Config) string {
	switch {
	case errors.Is(err, printready.ErrBrowserConnect):
		return hints.ForBrowserConnect(cfg.Browser.Engine)
	case errors.Is(err, printready.ErrCaptureTimeout), errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case printready.PhaseOf(err) == printready.PhasePagination:
		return hints.ForPagination(cfg.Pagination.Script)
	}
	return ""
}
