package printready

import (
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-printready/internal/browser"
)

// DefaultPagedJSURL is the pagination engine injected when none is
// configured.
const DefaultPagedJSURL = "https://unpkg.com/pagedjs@0.4.3/dist/paged.polyfill.js"

// Option configures a Printer.
type Option func(*Printer)

// printerConfig holds the settings folded from Options. It is not modified
// after NewPrinter returns.
type printerConfig struct {
	workingDir        string
	timeout           time.Duration
	navigationTimeout time.Duration
	engine            string
	launch            browser.LaunchOptions
	script            string
	scriptContent     string
	beforeHook        string
	afterHook         string
}

// WithWorkingDir sets the directory relative sources resolve against.
func WithWorkingDir(dir string) Option {
	return func(p *Printer) {
		p.cfg.workingDir = dir
	}
}

// WithTimeout bounds every PDF capture.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("printready: WithTimeout duration must be positive")
	}
	return func(p *Printer) {
		p.cfg.timeout = d
	}
}

// WithNavigationTimeout bounds navigation and the wait for paginated
// output. Panics if d <= 0.
func WithNavigationTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("printready: WithNavigationTimeout duration must be positive")
	}
	return func(p *Printer) {
		p.cfg.navigationTimeout = d
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(log *zap.Logger) Option {
	return func(p *Printer) {
		if log == nil {
			log = zap.NewNop()
		}
		p.log = log
	}
}

// WithEngine selects the browser backend ("rod" or "chromedp").
func WithEngine(name string) Option {
	return func(p *Printer) {
		p.cfg.engine = name
	}
}

// WithBrowserBin sets the browser executable.
func WithBrowserBin(path string) Option {
	return func(p *Printer) {
		p.cfg.launch.Bin = path
	}
}

// WithNoSandbox disables the browser sandbox, as required in most
// containers.
func WithNoSandbox(noSandbox bool) Option {
	return func(p *Printer) {
		p.cfg.launch.NoSandbox = noSandbox
	}
}

// WithPaginationScript sets the pagination engine by URL or local path.
// A local file is read when the Printer is created.
func WithPaginationScript(urlOrPath string) Option {
	return func(p *Printer) {
		p.cfg.script = urlOrPath
		p.cfg.scriptContent = ""
	}
}

// WithPaginationScriptContent sets the pagination engine source inline.
func WithPaginationScriptContent(js string) Option {
	return func(p *Printer) {
		p.cfg.script = ""
		p.cfg.scriptContent = js
	}
}

// WithBeforeHook installs a JavaScript function expression run before
// pagination starts. It may return a promise.
func WithBeforeHook(js string) Option {
	return func(p *Printer) {
		p.cfg.beforeHook = js
	}
}

// WithAfterHook installs a JavaScript function expression run after
// pagination with the engine's result. It may return a promise.
func WithAfterHook(js string) Option {
	return func(p *Printer) {
		p.cfg.afterHook = js
	}
}

// WithLauncher replaces the browser launcher, mainly for tests.
func WithLauncher(l browser.Launcher) Option {
	return func(p *Printer) {
		p.launcher = l
	}
}

// RenderOption adjusts a single render request.
type RenderOption func(*RenderRequest)

// WithPDFOptions sets the capture options.
func WithPDFOptions(o PDFOptions) RenderOption {
	return func(r *RenderRequest) {
		r.PDF = o
	}
}

// WithRenderTimeout bounds the capture of this render.
func WithRenderTimeout(d time.Duration) RenderOption {
	return func(r *RenderRequest) {
		r.Timeout = d
	}
}

// WithCwd resolves a relative source against dir.
func WithCwd(dir string) RenderOption {
	return func(r *RenderRequest) {
		r.WorkingDir = dir
	}
}
