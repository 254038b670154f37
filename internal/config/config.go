// Package config loads the YAML configuration file of the printready CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-printready/internal/browser"
	"github.com/alnah/go-printready/internal/logger"
	"github.com/alnah/go-printready/internal/yamlutil"
)

// AppDir is the directory under the user config directory searched for
// config names.
const AppDir = "printready"

// Sentinel errors for config operations.
var (
	ErrConfigNotFound     = errors.New("config file not found")
	ErrEmptyConfigName    = errors.New("config name cannot be empty")
	ErrConfigParse        = errors.New("failed to parse config")
	ErrFieldTooLong       = errors.New("field exceeds maximum length")
	ErrInvalidValue       = errors.New("invalid config value")
	ErrInvalidDuration    = errors.New("invalid duration")
	ErrInvalidOrientation = errors.New("invalid orientation")
)

// Field length limits.
const (
	MaxURLLength  = 2048     // pagination.script
	MaxPathLength = 4096     // browser.bin, output.defaultDir
	MaxHookLength = 64 << 10 // pagination.before/after sources
)

// MaxWorkers bounds the workers setting.
const MaxWorkers = 32

// Config holds all configuration for the CLI.
type Config struct {
	Browser    BrowserConfig    `yaml:"browser"`
	Pagination PaginationConfig `yaml:"pagination"`
	PDF        PDFConfig        `yaml:"pdf"`
	Output     OutputConfig     `yaml:"output"`
	Log        LogConfig        `yaml:"log"`
	Workers    int              `yaml:"workers"` // 0 = derive from GOMAXPROCS
}

// BrowserConfig selects and configures the headless browser.
type BrowserConfig struct {
	Engine            string `yaml:"engine"` // rod (default) or chromedp
	Bin               string `yaml:"bin"`
	NoSandbox         bool   `yaml:"noSandbox"`
	NavigationTimeout string `yaml:"navigationTimeout"` // Go duration, e.g. "45s"
}

// PaginationConfig configures the Paged.js engine.
type PaginationConfig struct {
	Script string `yaml:"script"` // URL or path of paged.polyfill.js (empty = pinned release)
	Before string `yaml:"before"` // JS function source run before preview
	After  string `yaml:"after"`  // JS function source run after preview, receives the flow
}

// PDFConfig holds capture options.
type PDFConfig struct {
	Orientation string `yaml:"orientation"` // portrait or landscape
	Width       string `yaml:"width"`       // CSS length
	Height      string `yaml:"height"`      // CSS length
	Timeout     string `yaml:"timeout"`     // Go duration; empty = no capture timeout
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty = working directory
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{Engine: browser.EngineRod},
		Log:     LogConfig{Level: "warn", Format: logger.FormatConsole},
	}
}

// Validate checks every field and returns the first problem found.
func (c *Config) Validate() error {
	if !browser.IsValidEngine(c.Browser.Engine) {
		return fmt.Errorf("%w: browser.engine %q (must be %s or %s)", ErrInvalidValue, c.Browser.Engine, browser.EngineRod, browser.EngineChromedp)
	}
	if err := validateFieldLength("browser.bin", c.Browser.Bin, MaxPathLength); err != nil {
		return err
	}
	if _, err := parseDuration("browser.navigationTimeout", c.Browser.NavigationTimeout); err != nil {
		return err
	}

	if err := validateFieldLength("pagination.script", c.Pagination.Script, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("pagination.before", c.Pagination.Before, MaxHookLength); err != nil {
		return err
	}
	if err := validateFieldLength("pagination.after", c.Pagination.After, MaxHookLength); err != nil {
		return err
	}

	switch strings.ToLower(c.PDF.Orientation) {
	case "", "portrait", "landscape":
	default:
		return fmt.Errorf("%w: pdf.orientation %q (must be portrait or landscape)", ErrInvalidOrientation, c.PDF.Orientation)
	}
	for field, v := range map[string]string{"pdf.width": c.PDF.Width, "pdf.height": c.PDF.Height} {
		if v == "" {
			continue
		}
		if _, err := browser.LengthToInches(v); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
		}
	}
	if _, err := parseDuration("pdf.timeout", c.PDF.Timeout); err != nil {
		return err
	}

	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}

	if err := (logger.Config{Level: c.Log.Level, Format: c.Log.Format}).Validate(); err != nil {
		return fmt.Errorf("%w: log: %v", ErrInvalidValue, err)
	}

	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers %d (must be 0..%d)", ErrInvalidValue, c.Workers, MaxWorkers)
	}
	return nil
}

// NavigationTimeout returns browser.navigationTimeout, zero when unset.
func (c *Config) NavigationTimeout() time.Duration {
	d, _ := parseDuration("browser.navigationTimeout", c.Browser.NavigationTimeout)
	return d
}

// CaptureTimeout returns pdf.timeout, zero when unset.
func (c *Config) CaptureTimeout() time.Duration {
	d, _ := parseDuration("pdf.timeout", c.PDF.Timeout)
	return d
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidDuration, field, s)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s %q is negative", ErrInvalidDuration, field, s)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator or a YAML extension, it's treated
// as a file path. Otherwise, it's searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.DecodeStrict(data, cfg); err != nil && !errors.Is(err, yamlutil.ErrEmptyInput) {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func isFilePath(s string) bool {
	ext := strings.ToLower(filepath.Ext(s))
	return strings.ContainsAny(s, "/\\") || ext == ".yaml" || ext == ".yml"
}

// resolveConfigPath searches for name.yaml then name.yml in the current
// directory, then in the user config directory under AppDir.
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppDir, name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", &NotFoundError{Name: name, Tried: triedPaths}
}

// NotFoundError lists the locations searched for a config name.
type NotFoundError struct {
	Name  string
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: %q (tried %s)", ErrConfigNotFound, e.Name, strings.Join(e.Tried, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrConfigNotFound }

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
