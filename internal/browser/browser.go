// Package browser abstracts the headless browser that renders documents.
//
// The orchestrator only needs a narrow remote-control surface: open a page,
// navigate until the network is idle, inject scripts, expose host callbacks,
// evaluate in-page code, wait for a selector and print to PDF. Two backends
// implement it: go-rod (default) and chromedp.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Engine names accepted by New.
const (
	EngineRod      = "rod"
	EngineChromedp = "chromedp"
)

// Defaults shared by both backends.
const (
	// DefaultNavigationTimeout mirrors the default navigation timeout of
	// browser automation libraries.
	DefaultNavigationTimeout = 30 * time.Second

	// NetworkIdleWindow is how long the page must have no in-flight
	// requests before navigation is considered settled.
	NetworkIdleWindow = 500 * time.Millisecond
)

// Sentinel errors for browser operations.
var (
	ErrUnknownEngine  = errors.New("unknown browser engine")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrNavigation     = errors.New("navigation failed")
	ErrScriptInject   = errors.New("script injection failed")
	ErrExpose         = errors.New("failed to expose host function")
	ErrEvaluate       = errors.New("in-page evaluation failed")
	ErrSelector       = errors.New("selector did not appear")
	ErrPrint          = errors.New("PDF printing failed")
)

// Launcher starts browser processes.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// Browser is a running browser process.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// HostFunc receives the payload an in-page caller passed to an exposed
// function. In-page code always passes a single JSON string.
type HostFunc func(payload string)

// Page is a single browser tab. Methods are not safe for concurrent use.
type Page interface {
	// Navigate loads url and waits until the network has been idle for
	// NetworkIdleWindow, or ctx is done.
	Navigate(ctx context.Context, url string) error

	// AddScriptTag injects a <script> element, by src when url is set,
	// inline otherwise, and waits for it to load.
	AddScriptTag(ctx context.Context, url, content string) error

	// Expose installs window[name] in the page. Calls are delivered to fn.
	Expose(ctx context.Context, name string, fn HostFunc) error

	// Evaluate calls the JavaScript function expression fn with args,
	// awaits the returned promise, and returns the JSON encoded result.
	Evaluate(ctx context.Context, fn string, args ...any) (json.RawMessage, error)

	// WaitForSelector blocks until selector matches an element.
	WaitForSelector(ctx context.Context, selector string) error

	// PDF prints the current page.
	PDF(ctx context.Context, opts PrintOptions) ([]byte, error)

	Close() error
}

// PrintOptions is the engine neutral PDF option set. Width and Height are
// CSS lengths passed through unmodified; backends convert them to inches.
type PrintOptions struct {
	Landscape           bool
	PrintBackground     bool
	DisplayHeaderFooter bool
	PreferCSSPageSize   bool
	Width               string
	Height              string
	MarginTop           float64
	MarginRight         float64
	MarginBottom        float64
	MarginLeft          float64

	// Timeout bounds the capture. Zero means the engine default.
	Timeout time.Duration
}

// LaunchOptions configures browser processes.
type LaunchOptions struct {
	Bin       string // browser binary; empty = discover or download
	NoSandbox bool
	Headless  bool
}

// DefaultLaunchOptions reads ROD_BROWSER_BIN, ROD_NO_SANDBOX and CI.
func DefaultLaunchOptions() LaunchOptions {
	bin := os.Getenv("ROD_BROWSER_BIN")
	return LaunchOptions{
		Bin:       bin,
		NoSandbox: os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true" || bin != "",
		Headless:  true,
	}
}

// launchFlags are the Chrome switches every backend sets.
var launchFlags = []string{
	"disable-dev-shm-usage",
	"export-tagged-pdf",
	"allow-file-access-from-files",
}

// New returns the launcher for engine. An empty engine selects rod.
func New(engine string, opts LaunchOptions) (Launcher, error) {
	switch strings.ToLower(engine) {
	case "", EngineRod:
		return NewRodLauncher(opts), nil
	case EngineChromedp:
		return NewChromedpLauncher(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q (must be %s or %s)", ErrUnknownEngine, engine, EngineRod, EngineChromedp)
	}
}

// IsValidEngine reports whether New accepts engine.
func IsValidEngine(engine string) bool {
	switch strings.ToLower(engine) {
	case "", EngineRod, EngineChromedp:
		return true
	}
	return false
}
