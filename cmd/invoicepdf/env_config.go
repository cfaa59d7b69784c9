package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alnah/go-invoicepdf/internal/config"
)

const envPrefix = "INVOICEPDF_"

// envConfig holds configuration from INVOICEPDF_* environment variables.
type envConfig struct {
	ConfigPath string // INVOICEPDF_CONFIG: config file name or path
	OutputDir  string // INVOICEPDF_OUTPUT_DIR: directory for exported PDFs
	Timeout    string // INVOICEPDF_TIMEOUT: browser page load timeout
	Workers    int    // INVOICEPDF_WORKERS: parallel exports
	LogLevel   string // INVOICEPDF_LOG_LEVEL: debug, info, warn, error, off
	Style      string // INVOICEPDF_STYLE: style name, path, or CSS
	Company    string // INVOICEPDF_COMPANY: default company name
}

// knownEnvVars lists valid INVOICEPDF_* variables, for typo detection.
var knownEnvVars = map[string]bool{
	"INVOICEPDF_CONFIG":     true,
	"INVOICEPDF_OUTPUT_DIR": true,
	"INVOICEPDF_TIMEOUT":    true,
	"INVOICEPDF_WORKERS":    true,
	"INVOICEPDF_LOG_LEVEL":  true,
	"INVOICEPDF_STYLE":      true,
	"INVOICEPDF_COMPANY":    true,
	"INVOICEPDF_CONTAINER":  true, // read by doctor
}

// loadEnvConfig reads INVOICEPDF_* variables. Malformed numbers are
// ignored and reported as warnings.
func loadEnvConfig(env *Environment) (*envConfig, []string) {
	cfg := &envConfig{
		ConfigPath: env.Getenv("INVOICEPDF_CONFIG"),
		OutputDir:  env.Getenv("INVOICEPDF_OUTPUT_DIR"),
		Timeout:    env.Getenv("INVOICEPDF_TIMEOUT"),
		LogLevel:   env.Getenv("INVOICEPDF_LOG_LEVEL"),
		Style:      env.Getenv("INVOICEPDF_STYLE"),
		Company:    env.Getenv("INVOICEPDF_COMPANY"),
	}

	var warnings []string
	if workers := env.Getenv("INVOICEPDF_WORKERS"); workers != "" {
		w, err := strconv.Atoi(workers)
		if err != nil || w < 1 {
			warnings = append(warnings, fmt.Sprintf("ignoring INVOICEPDF_WORKERS=%q (want a positive integer)", workers))
		} else {
			cfg.Workers = w
		}
	}

	return cfg, warnings
}

// unknownEnvVars returns INVOICEPDF_* names that are not recognized.
func unknownEnvVars(env *Environment) []string {
	var unknown []string
	for _, kv := range env.Environ() {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// applyEnvConfig overrides config file values with set variables.
// Precedence: flags > env > config file > defaults; flags are merged later.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Timeout != "" {
		cfg.Browser.Timeout = env.Timeout
	}
	if env.Workers > 0 {
		cfg.Browser.Workers = env.Workers
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.Style != "" {
		cfg.Assets.Style = env.Style
	}
	if env.Company != "" {
		cfg.Defaults.CompanyName = env.Company
	}
}
