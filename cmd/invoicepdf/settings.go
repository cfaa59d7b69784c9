package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	invoicepdf "github.com/alnah/go-invoicepdf"
	"github.com/alnah/go-invoicepdf/internal/config"
	"github.com/alnah/go-invoicepdf/internal/docfile"
	"github.com/alnah/go-invoicepdf/internal/hints"
	"github.com/alnah/go-invoicepdf/internal/logging"
)

// settings is the resolved configuration of one command run.
type settings struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// runFlags holds the flags that override config fields directly.
type runFlags struct {
	output  string
	workers int
}

// loadSettings resolves configuration with precedence
// flags > INVOICEPDF_* > config file > defaults, validates it and builds
// the logger. Environment warnings are logged once the logger exists.
func loadSettings(common commonFlags, browser browserFlags, run runFlags, env *Environment) (*settings, error) {
	envCfg, warnings := loadEnvConfig(env)

	cfg := config.DefaultConfig()
	configName := common.config
	if configName == "" {
		configName = envCfg.ConfigPath
	}
	if configName != "" {
		loaded, err := config.LoadConfig(configName)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(common, browser, run, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(env.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Warn().Msg(w)
	}
	for _, name := range unknownEnvVars(env) {
		logger.Warn().Str("variable", name).Msg("unknown environment variable (typo?)")
	}

	return &settings{cfg: cfg, logger: logger}, nil
}

// mergeFlags applies explicitly set flags to cfg. --quiet and --verbose
// only pick a log level when --log-level is not given.
func mergeFlags(common commonFlags, browser browserFlags, run runFlags, cfg *config.Config) {
	switch {
	case common.logLevel != "":
		cfg.Log.Level = common.logLevel
	case common.verbose:
		cfg.Log.Level = "debug"
	case common.quiet:
		cfg.Log.Level = "error"
	}
	if common.logFormat != "" {
		cfg.Log.Format = common.logFormat
	}

	if run.output != "" {
		cfg.Output.DefaultDir = run.output
	}
	if run.workers != 0 {
		cfg.Browser.Workers = run.workers
	}
	if browser.timeout != "" {
		cfg.Browser.Timeout = browser.timeout
	}
	if browser.scale != 0 {
		cfg.Browser.CaptureScale = browser.scale
	}
	if browser.noCORS {
		cfg.Browser.DisableCORS = true
	}
	if browser.style != "" {
		cfg.Assets.Style = browser.style
	}
	if browser.assetPath != "" {
		cfg.Assets.BasePath = browser.assetPath
	}
	if len(browser.stylesheets) > 0 {
		cfg.Assets.Stylesheets = browser.stylesheets
	}
}

// exporterOptions translates validated config into exporter options.
func (s *settings) exporterOptions() []invoicepdf.Option {
	cfg := s.cfg
	opts := []invoicepdf.Option{
		invoicepdf.WithStyle(cfg.Assets.Style),
		invoicepdf.WithCORS(!cfg.Browser.DisableCORS),
		invoicepdf.WithLogger(s.logger),
	}
	// Validate has already parsed the timeout
	if d, _ := cfg.Browser.TimeoutDuration(); d > 0 {
		opts = append(opts, invoicepdf.WithTimeout(d))
	}
	if cfg.Browser.CaptureScale > 0 {
		opts = append(opts, invoicepdf.WithCaptureScale(cfg.Browser.CaptureScale))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, invoicepdf.WithAssetPath(cfg.Assets.BasePath))
	}
	if len(cfg.Assets.Stylesheets) > 0 {
		opts = append(opts, invoicepdf.WithStylesheets(cfg.Assets.Stylesheets...))
	}
	return opts
}

// documentDefaults returns the header defaults for new documents.
func (s *settings) documentDefaults() docfile.Defaults {
	d := s.cfg.Defaults
	return docfile.Defaults{
		DocumentType: d.DocumentType,
		CompanyName:  d.CompanyName,
		ShipFrom:     d.ShipFrom,
		IssueDate:    d.IssueDate,
	}
}

// settingsError carries the resolved settings of a failed run, for hints.
type settingsError struct {
	err error
	cfg *config.Config
}

func (e *settingsError) Error() string { return e.err.Error() }
func (e *settingsError) Unwrap() error { return e.err }

// annotate attaches the settings to a non-nil error.
func (s *settings) annotate(err error) error {
	if err == nil {
		return nil
	}
	return &settingsError{err: err, cfg: s.cfg}
}

// errorMessage formats err with an actionable hint when one applies.
func errorMessage(err error) string {
	msg := err.Error()
	var stylesheets []string
	var se *settingsError
	if errors.As(err, &se) {
		stylesheets = se.cfg.Assets.Stylesheets
	}

	switch {
	case errors.Is(err, invoicepdf.ErrBrowserConnect):
		return msg + hints.ForBrowserConnect()
	case errors.Is(err, invoicepdf.ErrPageLoad):
		if strings.Contains(msg, "deadline") || strings.Contains(msg, "context") {
			return msg + hints.ForTimeout()
		}
		return msg + hints.ForPageLoad(stylesheets)
	case errors.Is(err, invoicepdf.ErrWritePDF):
		return msg + hints.ForOutputDirectory()
	case errors.Is(err, invoicepdf.ErrStyleNotFound):
		return msg + hints.ForStyleNotFound(invoicepdf.StyleNames())
	case errors.Is(err, config.ErrConfigNotFound):
		return msg + hints.ForConfigNotFound(configSearchPaths(err))
	case errors.Is(err, docfile.ErrParse),
		errors.Is(err, docfile.ErrFieldTooLong),
		errors.Is(err, docfile.ErrTooManyItems):
		return msg + hints.ForDocumentFile()
	}
	return msg
}

// configSearchPaths recovers the tried paths from a config-not-found error.
func configSearchPaths(err error) []string {
	_, tried, ok := strings.Cut(err.Error(), "tried ")
	if !ok {
		return nil
	}
	return strings.Split(tried, ", ")
}
