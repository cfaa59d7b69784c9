package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	invoicepdf "github.com/alnah/go-invoicepdf"
	"github.com/alnah/go-invoicepdf/internal/config"
)

// Doctor status values.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"`
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Setup    setupInfo  `json:"setup"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// setupInfo holds configuration and style check results.
type setupInfo struct {
	Config      string `json:"config,omitempty"`
	ConfigValid bool   `json:"config_valid"`
	Style       string `json:"style"`
	StyleValid  bool   `json:"style_valid"`
}

// doctorFlags holds the doctor command flags.
type doctorFlags struct {
	json   bool
	config string
}

// newDoctorFlagSet registers the doctor flags into f.
func newDoctorFlagSet(f *doctorFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.BoolVar(&f.json, "json", false, "machine-readable output")
	fs.StringVarP(&f.config, "config", "c", "", "config file to check")
	return fs
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	f := &doctorFlags{}
	fs := newDoctorFlagSet(f)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() { printDoctorUsage(env.Stderr) }
	if err := fs.Parse(args); err != nil {
		return exitCodeFor(usageError(err))
	}

	result := runDoctor(f.config, env)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(configName string, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  env.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: env.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkChrome(result)
	checkEnvironment(result, env)
	checkSystem(result)
	checkSetup(result, configName, env)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}

	return result
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	// #nosec G204 -- path comes from the launcher lookup or ROD_BROWSER_BIN
	out, err := exec.Command(chromePath, "--version").Output()
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, env *Environment) {
	result.Env.Container, result.Env.ContainerHint = isContainer(env)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if env.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint names the detected signal.
func isContainer(env *Environment) (bool, string) {
	if env.Getenv("INVOICEPDF_CONTAINER") == "1" {
		return true, "INVOICEPDF_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := env.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if env.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies system requirements.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "invoicepdf-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

// checkSetup loads the config, if any, and resolves its style. Building an
// exporter parses the template and style without starting Chrome.
func checkSetup(result *doctorResult, configName string, env *Environment) {
	if configName == "" {
		configName = env.Getenv("INVOICEPDF_CONFIG")
	}
	result.Setup.Config = configName

	cfg := config.DefaultConfig()
	if configName != "" {
		loaded, err := config.LoadConfig(configName)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", err))
			return
		}
		cfg = loaded
	}
	result.Setup.ConfigValid = true

	result.Setup.Style = cfg.Assets.Style
	if result.Setup.Style == "" {
		result.Setup.Style = invoicepdf.DefaultStyle
	}
	opts := []invoicepdf.Option{invoicepdf.WithStyle(cfg.Assets.Style)}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, invoicepdf.WithAssetPath(cfg.Assets.BasePath))
	}
	exp, err := invoicepdf.NewExporter(opts...)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Style: %v", err))
		return
	}
	_ = exp.Close()
	result.Setup.StyleValid = true
}

// reportLine is one "[LEVEL] text" line of the human-readable report.
type reportLine struct {
	level string
	text  string
}

func okLine(format string, args ...any) reportLine {
	return reportLine{"OK", fmt.Sprintf(format, args...)}
}

func errLine(format string, args ...any) reportLine {
	return reportLine{"ERROR", fmt.Sprintf(format, args...)}
}

type reportSection struct {
	title string
	lines []reportLine
}

// reportSections groups the result into titled sections, in print order.
func (r *doctorResult) reportSections() []reportSection {
	var chrome []reportLine
	if r.Chrome.Found {
		chrome = append(chrome, okLine("Found at %s", r.Chrome.Path))
		if r.Chrome.Version != "" {
			chrome = append(chrome, okLine("Version: %s", r.Chrome.Version))
		}
		if r.Chrome.Sandbox {
			chrome = append(chrome, okLine("Sandbox: enabled"))
		} else {
			chrome = append(chrome, okLine("Sandbox: disabled (ROD_NO_SANDBOX=1)"))
		}
	} else {
		chrome = append(chrome, errLine("Not found"))
	}

	env := []reportLine{okLine("Platform: %s/%s", r.Env.OS, r.Env.Arch)}
	if r.Env.Container {
		env = append(env, okLine("Container: detected (%s)", r.Env.ContainerHint))
	}
	if r.Env.CI {
		env = append(env, okLine("CI: detected"))
	}

	system := []reportLine{errLine("Temp directory: not writable")}
	if r.System.TempWritable {
		system = []reportLine{okLine("Temp directory: writable")}
	}

	var setup []reportLine
	if r.Setup.Config != "" {
		if r.Setup.ConfigValid {
			setup = append(setup, okLine("Config: %s", r.Setup.Config))
		} else {
			setup = append(setup, errLine("Config: %s", r.Setup.Config))
		}
	}
	switch {
	case r.Setup.StyleValid:
		setup = append(setup, okLine("Style: %s", r.Setup.Style))
	case r.Setup.ConfigValid:
		setup = append(setup, errLine("Style: %s", r.Setup.Style))
	}

	var warnings, errs []reportLine
	for _, w := range r.Warnings {
		warnings = append(warnings, reportLine{"WARN", w})
	}
	for _, e := range r.Errors {
		errs = append(errs, errLine("%s", e))
	}

	return []reportSection{
		{"Chrome/Chromium", chrome},
		{"Environment", env},
		{"System", system},
		{"Setup", setup},
		{"Warnings:", warnings},
		{"Errors:", errs},
	}
}

var statusLines = map[string]string{
	statusReady:    "Status: Ready to export",
	statusWarnings: "Status: Ready with warnings",
	statusErrors:   "Status: Not ready (see errors above)",
}

// printDoctorResult writes the human-readable report. Empty sections are
// skipped.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "invoicepdf doctor")
	fmt.Fprintln(w)

	for _, sec := range r.reportSections() {
		if len(sec.lines) == 0 {
			continue
		}
		fmt.Fprintln(w, sec.title)
		for _, l := range sec.lines {
			fmt.Fprintf(w, "  [%s] %s\n", l.level, l.text)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, statusLines[r.Status])
}
