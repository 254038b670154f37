package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/alnah/go-printready/internal/process"
)

// Compile-time interface checks.
var (
	_ Launcher = (*RodLauncher)(nil)
	_ Browser  = (*rodBrowser)(nil)
	_ Page     = (*rodPage)(nil)
)

// RodLauncher launches Chrome through go-rod. Rod downloads a managed
// Chromium on first run when no binary is configured or found.
type RodLauncher struct {
	opts LaunchOptions
}

// NewRodLauncher creates a RodLauncher.
func NewRodLauncher(opts LaunchOptions) *RodLauncher {
	return &RodLauncher{opts: opts}
}

// Launch starts a new browser process and connects to it.
func (r *RodLauncher) Launch(ctx context.Context) (Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := launcher.New().Context(ctx).Headless(r.opts.Headless)
	if r.opts.Bin != "" {
		l = l.Bin(r.opts.Bin)
	}
	if r.opts.NoSandbox {
		l = l.NoSandbox(true)
	}
	for _, f := range launchFlags {
		l = l.Set(flags.Flag(f))
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	if err := b.IgnoreCertErrors(true); err != nil {
		_ = b.Close()
		l.Kill()
		return nil, fmt.Errorf("%w: ignoring certificate errors: %v", ErrBrowserConnect, err)
	}

	return &rodBrowser{browser: b, launcher: l}, nil
}

// rodBrowser owns one Chrome process.
type rodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func (b *rodBrowser) NewPage(ctx context.Context) (Page, error) {
	p, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	return &rodPage{page: p}, nil
}

// Close asks the browser to exit, then makes sure the whole process tree
// is gone and the profile directory is removed.
func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	if err != nil {
		_ = process.KillProcessGroup(b.launcher.PID())
		b.launcher.Kill()
	}
	b.launcher.Cleanup()
	return err
}

// rodPage adapts *rod.Page to Page.
type rodPage struct {
	page *rod.Page

	mu    sync.Mutex
	stops []func() error
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)

	wait := page.WaitRequestIdle(NetworkIdleWindow, nil, nil, nil)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
	}
	wait()

	// WaitRequestIdle returns silently when its context ends.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: waiting for network idle: %w", ErrNavigation, url, err)
	}
	return nil
}

func (p *rodPage) AddScriptTag(ctx context.Context, url, content string) error {
	if err := p.page.Context(ctx).AddScriptTag(url, content); err != nil {
		return fmt.Errorf("%w: %v", ErrScriptInject, err)
	}
	return nil
}

func (p *rodPage) Expose(ctx context.Context, name string, fn HostFunc) error {
	stop, err := p.page.Context(ctx).Expose(name, func(arg gson.JSON) (interface{}, error) {
		fn(arg.Str())
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrExpose, name, err)
	}

	p.mu.Lock()
	p.stops = append(p.stops, stop)
	p.mu.Unlock()
	return nil
}

func (p *rodPage) Evaluate(ctx context.Context, fn string, args ...any) (json.RawMessage, error) {
	res, err := p.page.Context(ctx).Evaluate(rod.Eval(fn, args...).ByPromise())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEvaluate, err)
	}
	return json.RawMessage(res.Value.JSON("", "")), nil
}

func (p *rodPage) WaitForSelector(ctx context.Context, selector string) error {
	if _, err := p.page.Context(ctx).Element(selector); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrSelector, selector, err)
	}
	return nil
}

func (p *rodPage) PDF(ctx context.Context, opts PrintOptions) ([]byte, error) {
	req, err := rodPrintRequest(opts)
	if err != nil {
		return nil, err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	reader, err := p.page.Context(ctx).PDF(req)
	if err != nil {
		return nil, printError(ctx, err)
	}

	buf, err := io.ReadAll(reader)
	if err != nil {
		return nil, printError(ctx, fmt.Errorf("reading PDF stream: %w", err))
	}
	return buf, nil
}

// Close removes exposed functions and closes the tab.
func (p *rodPage) Close() error {
	p.mu.Lock()
	stops := p.stops
	p.stops = nil
	p.mu.Unlock()

	var errs []error
	for _, stop := range stops {
		if err := stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := p.page.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// rodPrintRequest maps PrintOptions to the CDP request.
func rodPrintRequest(opts PrintOptions) (*proto.PagePrintToPDF, error) {
	width, height, err := paperSize(opts)
	if err != nil {
		return nil, err
	}

	req := &proto.PagePrintToPDF{
		Landscape:           opts.Landscape,
		DisplayHeaderFooter: opts.DisplayHeaderFooter,
		PrintBackground:     opts.PrintBackground,
		PreferCSSPageSize:   opts.PreferCSSPageSize,
		MarginTop:           floatPtr(opts.MarginTop),
		MarginRight:         floatPtr(opts.MarginRight),
		MarginBottom:        floatPtr(opts.MarginBottom),
		MarginLeft:          floatPtr(opts.MarginLeft),
	}
	if width > 0 {
		req.PaperWidth = floatPtr(width)
	}
	if height > 0 {
		req.PaperHeight = floatPtr(height)
	}
	return req, nil
}

// printError marks errors caused by an expired capture deadline.
func printError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrPrint, context.DeadlineExceeded)
	}
	return fmt.Errorf("%w: %v", ErrPrint, err)
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

