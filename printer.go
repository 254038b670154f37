package printready

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-printready/internal/assets"
	"github.com/alnah/go-printready/internal/browser"
	"github.com/alnah/go-printready/internal/fileutil"
	"github.com/alnah/go-printready/internal/markdown"
)

// Printer renders paginated documents to PDF. It is safe for concurrent
// use; every render launches its own browser.
type Printer struct {
	cfg      printerConfig
	launcher browser.Launcher
	scripts  scriptSet
	engine   engineScript
	md       *markdown.Converter
	events   *Events
	log      *zap.Logger
	now      func() time.Time
}

type scriptSet struct {
	prepare  string
	bridge   string
	metadata string
}

// NewPrinter creates a Printer. Without options it uses the rod backend
// and loads Paged.js from DefaultPagedJSURL.
func NewPrinter(opts ...Option) (*Printer, error) {
	p := &Printer{
		cfg: printerConfig{
			navigationTimeout: browser.DefaultNavigationTimeout,
			launch:            browser.DefaultLaunchOptions(),
			script:            DefaultPagedJSURL,
		},
		md:  markdown.NewConverter(),
		log: zap.NewNop(),
		now: time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}
	p.events = newEvents(p.log)

	scripts, err := loadScripts(assets.NewEmbeddedLoader())
	if err != nil {
		return nil, err
	}
	p.scripts = scripts

	engine, err := loadEngine(p.cfg)
	if err != nil {
		return nil, err
	}
	p.engine = engine

	// Tests inject a launcher.
	if p.launcher == nil {
		l, err := browser.New(p.cfg.engine, p.cfg.launch)
		if err != nil {
			return nil, err
		}
		p.launcher = l
	}

	return p, nil
}

func loadScripts(loader assets.ScriptLoader) (scriptSet, error) {
	var s scriptSet
	for _, item := range []struct {
		name string
		dst  *string
	}{
		{assets.ScriptPrepare, &s.prepare},
		{assets.ScriptBridge, &s.bridge},
		{assets.ScriptMetadata, &s.metadata},
	} {
		js, err := loader.LoadScript(item.name)
		if err != nil {
			return scriptSet{}, fmt.Errorf("loading %s script: %w", item.name, err)
		}
		*item.dst = js
	}
	return s, nil
}

func loadEngine(cfg printerConfig) (engineScript, error) {
	switch {
	case cfg.scriptContent != "":
		return engineScript{content: cfg.scriptContent}, nil
	case fileutil.IsURL(cfg.script):
		return engineScript{url: cfg.script}, nil
	}

	content, err := os.ReadFile(cfg.script) // #nosec G304 -- engine path chosen by the caller
	if err != nil {
		return engineScript{}, fmt.Errorf("%w: %v", ErrPaginationScript, err)
	}
	return engineScript{content: string(content)}, nil
}

// On subscribes fn to the named event. See SupportedEvents.
func (p *Printer) On(name string, fn Handler) (unsubscribe func(), err error) {
	return p.events.On(name, fn)
}

// PrintFileToPDF renders the HTML or Markdown file at path.
func (p *Printer) PrintFileToPDF(ctx context.Context, path string, opts ...RenderOption) ([]byte, error) {
	return p.print(ctx, path, opts)
}

// PrintURLToPDF renders the document at url.
func (p *Printer) PrintURLToPDF(ctx context.Context, url string, opts ...RenderOption) ([]byte, error) {
	if url != "" && !fileutil.IsURL(url) {
		return nil, &RenderError{Phase: PhaseNavigation, Err: fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidSource, url)}
	}
	return p.print(ctx, url, opts)
}

func (p *Printer) print(ctx context.Context, source string, opts []RenderOption) ([]byte, error) {
	req := RenderRequest{Source: source}
	for _, opt := range opts {
		opt(&req)
	}
	art, err := p.Render(ctx, req)
	if err != nil {
		return nil, err
	}
	return art.PDF, nil
}

// session owns the browser handles of one render.
type session struct {
	browser browser.Browser
	page    browser.Page
}

// release closes the page, then the browser. Each handle is closed once.
func (s *session) release(log *zap.Logger) {
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			log.Warn("closing page", zap.Error(err))
		}
		s.page = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			log.Warn("closing browser", zap.Error(err))
		}
		s.browser = nil
	}
}

func (p *Printer) open(ctx context.Context, s *session) error {
	b, err := p.launcher.Launch(ctx)
	if err != nil {
		if !errors.Is(err, ErrBrowserConnect) {
			err = fmt.Errorf("%w: %w", ErrBrowserConnect, err)
		}
		return err
	}
	s.browser = b

	page, err := b.NewPage(ctx)
	if err != nil {
		if !errors.Is(err, ErrPageCreate) {
			err = fmt.Errorf("%w: %w", ErrPageCreate, err)
		}
		return err
	}
	s.page = page
	return nil
}

// Render runs the whole pipeline for req. Failures are *RenderError values
// naming the phase that failed. Browser handles are released on every path.
func (p *Printer) Render(ctx context.Context, req RenderRequest) (art *Artifact, err error) {
	phase := PhaseNavigation
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("render panicked", zap.String("phase", string(phase)), zap.Any("panic", r))
			art, err = nil, &RenderError{Phase: phase, Err: fmt.Errorf("%w: %v", ErrInternal, r)}
		}
	}()
	fail := func(err error) (*Artifact, error) {
		p.log.Debug("render failed", zap.String("phase", string(phase)), zap.Error(err))
		return nil, &RenderError{Phase: phase, Err: err}
	}

	if err := req.PDF.Validate(); err != nil {
		phase = PhaseCapture
		return fail(err)
	}

	target, cleanup, err := p.resolveSource(ctx, req.Source, req.WorkingDir)
	defer cleanup()
	if err != nil {
		return fail(err)
	}

	start := time.Now()
	p.events.emit(Event{Name: EventNavigationStart, URL: target})

	s := &session{}
	defer s.release(p.log)
	if err := p.open(ctx, s); err != nil {
		return fail(err)
	}

	navCtx, cancel := context.WithTimeout(ctx, p.cfg.navigationTimeout)
	err = s.page.Navigate(navCtx, target)
	cancel()
	if err != nil {
		return fail(err)
	}
	p.events.emit(Event{Name: EventNavigationEnd, URL: target})
	p.log.Debug("navigation finished", zap.String("url", target), zap.Duration("elapsed", time.Since(start)))

	phase = PhasePagination
	outcome, pages, err := p.paginate(ctx, s.page, target)
	if err != nil {
		return fail(err)
	}
	if err := waitForPages(ctx, s.page, p.cfg.navigationTimeout); err != nil {
		return fail(err)
	}
	p.log.Debug("pagination finished", zap.Int("pages", outcome.PageCount), zap.Duration("elapsed", outcome.Elapsed))

	phase = PhaseCapture
	p.events.emit(Event{Name: EventPDFStart, URL: target})
	pdf, err := p.capture(ctx, s.page, req)
	if err != nil {
		return fail(err)
	}
	p.events.emit(Event{Name: EventPDFEnd, URL: target, Bytes: len(pdf)})

	phase = PhaseMetadata
	md, err := p.extractMetadata(ctx, s.page)
	if err != nil {
		return fail(err)
	}
	pdf, info, err := p.stampMetadata(pdf, md)
	if err != nil {
		return fail(err)
	}
	p.log.Debug("render finished", zap.String("url", target), zap.Int("bytes", len(pdf)), zap.Duration("elapsed", time.Since(start)))

	return &Artifact{
		PDF:      pdf,
		Info:     *info,
		Metadata: md,
		Outcome:  outcome,
		Pages:    pages,
		URL:      target,
	}, nil
}

// captureTimeout picks the first positive of the request's PDF timeout,
// the request timeout and the printer timeout. Zero means unbounded.
func (p *Printer) captureTimeout(req RenderRequest) time.Duration {
	for _, d := range []time.Duration{req.PDF.Timeout, req.Timeout, p.cfg.timeout} {
		if d > 0 {
			return d
		}
	}
	return 0
}

func (p *Printer) capture(ctx context.Context, page browser.Page, req RenderRequest) ([]byte, error) {
	opts := buildPrintOptions(req.PDF)
	timeout := p.captureTimeout(req)
	if timeout > 0 {
		opts.Timeout = timeout
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	pdf, err := page.PDF(ctx, opts)
	if err != nil {
		if timeout > 0 && errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %dms", ErrCaptureTimeout, timeout.Milliseconds())
		}
		return nil, err
	}
	return pdf, nil
}
