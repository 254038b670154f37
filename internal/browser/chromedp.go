package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Compile-time interface checks.
var (
	_ Launcher = (*ChromedpLauncher)(nil)
	_ Browser  = (*cdpBrowser)(nil)
	_ Page     = (*cdpPage)(nil)
)

// lifecycleBuffer bounds queued lifecycle events during one navigation.
const lifecycleBuffer = 256

// addScriptTagJS mirrors rod's AddScriptTag for chromedp.
const addScriptTagJS = `(url, content) => new Promise((resolve, reject) => {
	const s = document.createElement("script");
	if (url) {
		s.src = url;
		s.onload = () => resolve(null);
		s.onerror = () => reject(new Error("failed to load script " + url));
		document.head.appendChild(s);
		return;
	}
	s.text = content;
	document.head.appendChild(s);
	resolve(null);
})`

// ChromedpLauncher launches Chrome through chromedp's exec allocator.
type ChromedpLauncher struct {
	opts LaunchOptions
}

// NewChromedpLauncher creates a ChromedpLauncher.
func NewChromedpLauncher(opts LaunchOptions) *ChromedpLauncher {
	return &ChromedpLauncher{opts: opts}
}

// Launch starts a browser process. The process outlives ctx and ends with
// Browser.Close.
func (c *ChromedpLauncher) Launch(ctx context.Context) (Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.opts.Headless),
		chromedp.Flag("ignore-certificate-errors", true),
	)
	for _, f := range launchFlags {
		opts = append(opts, chromedp.Flag(f, true))
	}
	if c.opts.Bin != "" {
		opts = append(opts, chromedp.ExecPath(c.opts.Bin))
	}
	if c.opts.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	return &cdpBrowser{ctx: browserCtx, cancel: browserCancel, allocCancel: allocCancel}, nil
}

// cdpBrowser owns the allocator and the first browser context.
type cdpBrowser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

func (b *cdpBrowser) NewPage(ctx context.Context) (Page, error) {
	tabCtx, tabCancel := chromedp.NewContext(b.ctx)
	p := &cdpPage{ctx: tabCtx, cancel: tabCancel}
	if err := p.run(ctx); err != nil {
		tabCancel()
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	return p, nil
}

func (b *cdpBrowser) Close() error {
	err := chromedp.Cancel(b.ctx)
	b.cancel()
	b.allocCancel()
	return err
}

// cdpPage is one tab. Its context carries the chromedp target; per call
// contexts only bound how long an action may take.
type cdpPage struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// run executes actions on the tab, aborting them when ctx ends.
func (p *cdpPage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w (%v)", ctx.Err(), err)
	}
	return err
}

func (p *cdpPage) Navigate(ctx context.Context, url string) error {
	var mainFrame cdp.FrameID
	if err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		mainFrame = tree.Frame.ID
		return nil
	})); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
	}

	listenCtx, stopListening := context.WithCancel(p.ctx)
	defer stopListening()
	events := make(chan *page.EventLifecycleEvent, lifecycleBuffer)
	chromedp.ListenTarget(listenCtx, func(ev interface{}) {
		e, ok := ev.(*page.EventLifecycleEvent)
		if !ok || e.FrameID != mainFrame {
			return
		}
		select {
		case events <- e:
		default:
		}
	})

	if err := p.run(ctx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.Navigate(url),
	); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNavigation, url, err)
	}

	timer := time.NewTimer(idleTimeout(ctx))
	defer timer.Stop()

	var loader cdp.LoaderID
	for {
		select {
		case e := <-events:
			switch e.Name {
			case "init":
				loader = e.LoaderID
			case "networkIdle":
				if loader == "" || e.LoaderID == loader {
					return nil
				}
			}
		case <-ctx.Done():
			return fmt.Errorf("%w: %s: waiting for network idle: %w", ErrNavigation, url, ctx.Err())
		case <-timer.C:
			return fmt.Errorf("%w: %s: waiting for network idle: %w", ErrNavigation, url, context.DeadlineExceeded)
		}
	}
}

func (p *cdpPage) AddScriptTag(ctx context.Context, url, content string) error {
	if _, err := p.Evaluate(ctx, addScriptTagJS, url, content); err != nil {
		return fmt.Errorf("%w: %v", ErrScriptInject, err)
	}
	return nil
}

// Expose relies on CDP bindings, which take exactly one string argument.
func (p *cdpPage) Expose(ctx context.Context, name string, fn HostFunc) error {
	chromedp.ListenTarget(p.ctx, func(ev interface{}) {
		if e, ok := ev.(*runtime.EventBindingCalled); ok && e.Name == name {
			fn(e.Payload)
		}
	})
	if err := p.run(ctx, runtime.AddBinding(name)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrExpose, name, err)
	}
	return nil
}

func (p *cdpPage) Evaluate(ctx context.Context, fn string, args ...any) (json.RawMessage, error) {
	if args == nil {
		args = []any{}
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding arguments: %v", ErrEvaluate, err)
	}

	// chromedp refuses undefined results, so normalize them to null.
	expr := fmt.Sprintf("(async () => { const r = await (%s)(...%s); return r === undefined ? null : r; })()", fn, encoded)

	var raw []byte
	err = p.run(ctx, chromedp.Evaluate(expr, &raw, func(ep *runtime.EvaluateParams) *runtime.EvaluateParams {
		return ep.WithAwaitPromise(true)
	}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEvaluate, err)
	}
	return json.RawMessage(raw), nil
}

func (p *cdpPage) WaitForSelector(ctx context.Context, selector string) error {
	if err := p.run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrSelector, selector, err)
	}
	return nil
}

func (p *cdpPage) PDF(ctx context.Context, opts PrintOptions) ([]byte, error) {
	params, err := cdpPrintParams(opts)
	if err != nil {
		return nil, err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var buf []byte
	err = p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		data, _, err := params.Do(ctx)
		if err != nil {
			return err
		}
		buf = data
		return nil
	}))
	if err != nil {
		return nil, printError(ctx, err)
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: empty output", ErrPrint)
	}
	return buf, nil
}

func (p *cdpPage) Close() error {
	err := chromedp.Cancel(p.ctx)
	p.cancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// cdpPrintParams maps PrintOptions to the CDP request.
func cdpPrintParams(opts PrintOptions) (*page.PrintToPDFParams, error) {
	width, height, err := paperSize(opts)
	if err != nil {
		return nil, err
	}

	params := page.PrintToPDF().
		WithLandscape(opts.Landscape).
		WithDisplayHeaderFooter(opts.DisplayHeaderFooter).
		WithPrintBackground(opts.PrintBackground).
		WithPreferCSSPageSize(opts.PreferCSSPageSize).
		WithMarginTop(opts.MarginTop).
		WithMarginRight(opts.MarginRight).
		WithMarginBottom(opts.MarginBottom).
		WithMarginLeft(opts.MarginLeft)
	if width > 0 {
		params = params.WithPaperWidth(width)
	}
	if height > 0 {
		params = params.WithPaperHeight(height)
	}
	return params, nil
}

// idleTimeout returns how long Navigate may wait for network idle.
func idleTimeout(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		return time.Until(deadline)
	}
	return DefaultNavigationTimeout
}
