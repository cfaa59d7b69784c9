// Package hints appends actionable advice to CLI error messages.
// Every hint is formatted as "\n  hint: <text>".
package hints

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-invoicepdf/internal/fileutil"
)

// IsInContainer reports whether the process runs inside Docker.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ciVars are set by common CI runners.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"}

// ForBrowserConnect returns hints for Chrome launch or connection errors,
// depending on which rod environment variables are already set.
func ForBrowserConnect() string {
	var hints []string

	inCI := false
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			inCI = true
			break
		}
	}

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use an installed Chrome")
	}
	hints = append(hints, "run 'invoicepdf doctor' to check the setup")

	return formatHints(hints)
}

// ForTimeout returns a hint for page loads that exceed the browser timeout.
func ForTimeout() string {
	return format("documents with many rows or remote fonts may need --timeout 1m")
}

// ForPageLoad returns a hint for pages that fail to load, typically an
// unreachable external stylesheet.
func ForPageLoad(stylesheets []string) string {
	if len(stylesheets) == 0 {
		return format("check the style file is valid CSS")
	}
	return format("check that " + strings.Join(stylesheets, ", ") + " is reachable, or retry with --no-cors")
}

// ForConfigNotFound suggests --config and the user config location among
// the searched paths.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	marker := filepath.Join(".config", "go-invoicepdf")
	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), filepath.ToSlash(marker)) {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory errors.
func ForOutputDirectory() string {
	return format("check the output directory exists and is writable, or pass --output")
}

// ForStyleNotFound lists the available styles.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForDocumentFile returns a hint for malformed document files.
func ForDocumentFile() string {
	return format("see 'invoicepdf help export' for the document file format")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
