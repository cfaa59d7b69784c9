package main

import (
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	invoicepdf "github.com/alnah/go-invoicepdf"
	"github.com/alnah/go-invoicepdf/internal/config"
	"github.com/alnah/go-invoicepdf/internal/dateutil"
	"github.com/alnah/go-invoicepdf/internal/docfile"
	"github.com/alnah/go-invoicepdf/internal/logging"
)

// Exit codes for the invoicepdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // All documents exported
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or document files
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// Sentinel errors for CLI operations.
var (
	ErrUsage          = errors.New("invalid usage")
	ErrUnknownCommand = errors.New("unknown command")
	ErrNoInput        = errors.New("no input specified")
	ErrNoDocuments    = errors.New("no document files found")
)

// usageError marks a flag parsing error. pflag.ErrHelp passes through.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// exitCodeFor returns the exit code for an error.
// It uses errors.Is, so callers must wrap with %w.
func exitCodeFor(err error) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, invoicepdf.ErrBrowserConnect) ||
		errors.Is(err, invoicepdf.ErrPageCreate) ||
		errors.Is(err, invoicepdf.ErrPageLoad) ||
		errors.Is(err, invoicepdf.ErrRasterize) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, invoicepdf.ErrWritePDF) ||
		errors.Is(err, docfile.ErrRead) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoDocuments) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, logging.ErrInvalidLevel) ||
		errors.Is(err, logging.ErrInvalidFormat) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, docfile.ErrParse) ||
		errors.Is(err, docfile.ErrTooManyItems) ||
		errors.Is(err, docfile.ErrFieldTooLong) ||
		errors.Is(err, invoicepdf.ErrStyleNotFound) ||
		errors.Is(err, invoicepdf.ErrTemplateNotFound) ||
		errors.Is(err, invoicepdf.ErrInvalidAssetPath) {
		return ExitUsage
	}

	return ExitGeneral
}
