// Package config loads and validates the YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-invoicepdf/internal/dateutil"
	"github.com/alnah/go-invoicepdf/internal/fileutil"
	"github.com/alnah/go-invoicepdf/internal/logging"
	"github.com/alnah/go-invoicepdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDirName is the directory under the user config dir searched for
// named configs.
const AppDirName = "go-invoicepdf"

// Field length limits.
const (
	MaxPathLength         = 4096
	MaxURLLength          = 2048 // Browser limit
	MaxNameLength         = 100
	MaxDocumentTypeLength = 50
	MaxCompanyLength      = 200
	MaxAddressLength      = 500
	MaxDateLength         = 50
	MaxStylesheets        = 10
)

// Limits for numeric settings.
const (
	MaxWorkers      = 32
	MaxCaptureScale = 4.0
	MaxTimeout      = 10 * time.Minute
)

// Config holds all configuration for document export.
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Log      LogConfig      `yaml:"log"`
	Browser  BrowserConfig  `yaml:"browser"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Assets   AssetsConfig   `yaml:"assets"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = current directory
}

// LogConfig defines diagnostic logging options.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error, off (default: warn)
	Format string `yaml:"format"` // console, json (default: console)
}

// BrowserConfig defines headless Chrome capture options.
type BrowserConfig struct {
	Timeout      string  `yaml:"timeout"`      // Go duration, e.g. "30s" (empty = 30s)
	Workers      int     `yaml:"workers"`      // Parallel exports (0 = auto)
	CaptureScale float64 `yaml:"captureScale"` // Device pixel ratio (0 = 2)
	DisableCORS  bool    `yaml:"disableCORS"`  // Load stylesheets without crossorigin
}

// DefaultsConfig pre-fills header fields of every new document.
type DefaultsConfig struct {
	DocumentType string `yaml:"documentType"` // 請求書, 見積書, invoice, quote
	CompanyName  string `yaml:"companyName"`
	ShipFrom     string `yaml:"shipFrom"`
	IssueDate    string `yaml:"issueDate"` // "auto", "auto:FORMAT" or a literal date
}

// AssetsConfig defines styling options.
type AssetsConfig struct {
	BasePath    string   `yaml:"basePath"`    // Empty = use embedded assets
	Style       string   `yaml:"style"`       // Style name, path, or CSS (empty = default)
	Stylesheets []string `yaml:"stylesheets"` // External stylesheet URLs, e.g. web fonts
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("%w: log.format %q (must be console or json)", ErrInvalidValue, c.Log.Format)
	}

	if _, err := c.Browser.TimeoutDuration(); err != nil {
		return err
	}
	if c.Browser.Workers < 0 || c.Browser.Workers > MaxWorkers {
		return fmt.Errorf("%w: browser.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Browser.Workers)
	}
	if c.Browser.CaptureScale < 0 || c.Browser.CaptureScale > MaxCaptureScale {
		return fmt.Errorf("%w: browser.captureScale must be between 0 and %.0f, got %.2f", ErrInvalidValue, MaxCaptureScale, c.Browser.CaptureScale)
	}

	if err := validateFieldLength("defaults.documentType", c.Defaults.DocumentType, MaxDocumentTypeLength); err != nil {
		return err
	}
	if err := validateFieldLength("defaults.companyName", c.Defaults.CompanyName, MaxCompanyLength); err != nil {
		return err
	}
	if err := validateFieldLength("defaults.shipFrom", c.Defaults.ShipFrom, MaxAddressLength); err != nil {
		return err
	}
	if err := validateFieldLength("defaults.issueDate", c.Defaults.IssueDate, MaxDateLength); err != nil {
		return err
	}
	if _, err := dateutil.ResolveDate(c.Defaults.IssueDate, time.Now()); err != nil {
		return fmt.Errorf("defaults.issueDate: %w", err)
	}

	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.style", c.Assets.Style, MaxPathLength); err != nil {
		return err
	}
	if len(c.Assets.Stylesheets) > MaxStylesheets {
		return fmt.Errorf("%w: assets.stylesheets has %d entries (max %d)", ErrInvalidValue, len(c.Assets.Stylesheets), MaxStylesheets)
	}
	for i, u := range c.Assets.Stylesheets {
		field := fmt.Sprintf("assets.stylesheets[%d]", i)
		if err := validateFieldLength(field, u, MaxURLLength); err != nil {
			return err
		}
		if !fileutil.IsURL(u) {
			return fmt.Errorf("%w: %s must be an http(s) URL, got %q", ErrInvalidValue, field, u)
		}
	}

	return nil
}

// TimeoutDuration parses Timeout. Empty means zero (use the default).
func (b BrowserConfig) TimeoutDuration() (time.Duration, error) {
	if b.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(b.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: browser.timeout %q: %v", ErrInvalidValue, b.Timeout, err)
	}
	if d <= 0 || d > MaxTimeout {
		return 0, fmt.Errorf("%w: browser.timeout must be between 0 and %s, got %s", ErrInvalidValue, MaxTimeout, d)
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

// DefaultConfig returns a neutral configuration: embedded default style,
// automatic worker count, today's issue date.
func DefaultConfig() *Config {
	return &Config{
		Log:      LogConfig{Level: logging.DefaultLevel, Format: logging.FormatConsole},
		Defaults: DefaultsConfig{IssueDate: "auto"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
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
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths returns the files tried for a config name, in order:
// ./name.yaml, ./name.yml, then the same under ~/.config/go-invoicepdf/.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file from SearchPaths.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
