package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Browser.Engine != "rod" {
		t.Errorf("Browser.Engine = %q, want rod", cfg.Browser.Engine)
	}
	if cfg.Output.DefaultDir != "" {
		t.Errorf("Output.DefaultDir = %q, want empty", cfg.Output.DefaultDir)
	}
	if cfg.NavigationTimeout() != 0 || cfg.CaptureTimeout() != 0 {
		t.Error("default timeouts should be unset")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

// ---- TestValidate ----

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "chromedp engine", mutate: func(c *Config) { c.Browser.Engine = "chromedp" }},
		{name: "landscape", mutate: func(c *Config) { c.PDF.Orientation = "Landscape" }},
		{name: "explicit size", mutate: func(c *Config) { c.PDF.Width, c.PDF.Height = "6in", "9in" }},
		{name: "durations", mutate: func(c *Config) { c.Browser.NavigationTimeout, c.PDF.Timeout = "45s", "1m" }},
		{name: "unknown engine", mutate: func(c *Config) { c.Browser.Engine = "gecko" }, wantErr: ErrInvalidValue},
		{name: "bad orientation", mutate: func(c *Config) { c.PDF.Orientation = "sideways" }, wantErr: ErrInvalidOrientation},
		{name: "bad width", mutate: func(c *Config) { c.PDF.Width = "wide" }, wantErr: ErrInvalidValue},
		{name: "bad navigation timeout", mutate: func(c *Config) { c.Browser.NavigationTimeout = "soon" }, wantErr: ErrInvalidDuration},
		{name: "negative capture timeout", mutate: func(c *Config) { c.PDF.Timeout = "-1s" }, wantErr: ErrInvalidDuration},
		{name: "script too long", mutate: func(c *Config) { c.Pagination.Script = strings.Repeat("a", MaxURLLength+1) }, wantErr: ErrFieldTooLong},
		{name: "hook too long", mutate: func(c *Config) { c.Pagination.After = strings.Repeat("a", MaxHookLength+1) }, wantErr: ErrFieldTooLong},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "chatty" }, wantErr: ErrInvalidValue},
		{name: "negative workers", mutate: func(c *Config) { c.Workers = -1 }, wantErr: ErrInvalidValue},
		{name: "too many workers", mutate: func(c *Config) { c.Workers = MaxWorkers + 1 }, wantErr: ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTimeoutAccessors(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Browser.NavigationTimeout = "45s"
	cfg.PDF.Timeout = "1500ms"

	if got := cfg.NavigationTimeout(); got != 45*time.Second {
		t.Errorf("NavigationTimeout() = %v, want 45s", got)
	}
	if got := cfg.CaptureTimeout(); got != 1500*time.Millisecond {
		t.Errorf("CaptureTimeout() = %v, want 1.5s", got)
	}
}

// ---- TestLoadConfig ----

func TestLoadConfig_FromPath(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), "book.yaml", `
browser:
  engine: chromedp
  navigationTimeout: 45s
pagination:
  after: "async (flow) => { document.body.dataset.pages = flow.total; }"
pdf:
  orientation: landscape
  width: 6in
  height: 9in
workers: 2
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}
	if cfg.Browser.Engine != "chromedp" {
		t.Errorf("Browser.Engine = %q", cfg.Browser.Engine)
	}
	if cfg.NavigationTimeout() != 45*time.Second {
		t.Errorf("NavigationTimeout() = %v", cfg.NavigationTimeout())
	}
	if !strings.Contains(cfg.Pagination.After, "flow.total") {
		t.Errorf("Pagination.After = %q", cfg.Pagination.After)
	}
	if cfg.PDF.Width != "6in" || cfg.PDF.Height != "9in" || cfg.PDF.Orientation != "landscape" {
		t.Errorf("PDF = %+v", cfg.PDF)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d", cfg.Workers)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want default warn", cfg.Log.Level)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "empty name", path: "", wantErr: ErrEmptyConfigName},
		{name: "missing file", path: filepath.Join(dir, "missing.yaml"), wantErr: ErrConfigNotFound},
		{name: "unknown key", path: writeConfig(t, dir, "unknown.yaml", "browser:\n  engin: rod\n"), wantErr: ErrConfigParse},
		{name: "syntax error", path: writeConfig(t, dir, "broken.yaml", "pdf: [\n"), wantErr: ErrConfigParse},
		{name: "invalid value", path: writeConfig(t, dir, "invalid.yaml", "pdf:\n  orientation: diagonal\n"), wantErr: ErrInvalidOrientation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadConfig(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadConfig(%q) error = %v, want %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(writeConfig(t, t.TempDir(), "empty.yaml", ""))
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}
	if cfg.Browser.Engine != "rod" {
		t.Errorf("Browser.Engine = %q, want rod", cfg.Browser.Engine)
	}
}

// Not parallel: changes the working directory and XDG_CONFIG_HOME.
func TestLoadConfig_ByName(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME is only honored on Linux")
	}

	work := t.TempDir()
	xdg := t.TempDir()
	t.Chdir(work)
	t.Setenv("XDG_CONFIG_HOME", xdg)

	writeConfig(t, xdg, filepath.Join(AppDir, "book.yml"), "workers: 3\n")
	cfg, err := LoadConfig("book")
	if err != nil {
		t.Fatalf("LoadConfig(user dir) unexpected error: %v", err)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3 from user config dir", cfg.Workers)
	}

	writeConfig(t, work, "book.yaml", "workers: 4\n")
	cfg, err = LoadConfig("book")
	if err != nil {
		t.Fatalf("LoadConfig(local) unexpected error: %v", err)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4 from current directory", cfg.Workers)
	}

	_, err = LoadConfig("absent")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("LoadConfig(absent) error = %v, want *NotFoundError", err)
	}
	if len(nf.Tried) != 4 || !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("NotFoundError = %+v", nf)
	}
}
