package main

// Notes:
// - checkChrome depends on the host; we only check that runDoctor reports
//   a consistent status, not whether Chrome is installed.

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestCheckEnvironment - Container and CI detection
// ---------------------------------------------------------------------------

func TestCheckEnvironment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		vars          map[string]string
		wantContainer bool
		wantCI        bool
		wantWarning   bool
	}{
		{"explicit container", map[string]string{"INVOICEPDF_CONTAINER": "1"}, true, false, true},
		{"podman", map[string]string{"container": "podman"}, true, false, true},
		{"kubernetes", map[string]string{"KUBERNETES_SERVICE_HOST": "10.0.0.1"}, true, false, true},
		{"ci", map[string]string{"GITHUB_ACTIONS": "true"}, false, true, true},
		{"ci with sandbox disabled", map[string]string{"CI": "1", "ROD_NO_SANDBOX": "1"}, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, _ := newTestEnv(tt.vars, "")
			result := &doctorResult{Env: envInfo{NoSandbox: env.Getenv("ROD_NO_SANDBOX")}}
			checkEnvironment(result, env)

			// /.dockerenv may exist on the test host
			if tt.wantContainer && !result.Env.Container {
				t.Error("container not detected")
			}
			if result.Env.CI != tt.wantCI {
				t.Errorf("CI = %v, want %v", result.Env.CI, tt.wantCI)
			}
			if tt.wantWarning && len(result.Warnings) == 0 {
				t.Error("expected a sandbox warning")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestCheckSetup - Config and style checks
// ---------------------------------------------------------------------------

func TestCheckSetup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", "assets:\n  style: default\n")
	badStyle := writeFile(t, dir, "style.yaml", "assets:\n  style: no-such-style\n")
	badConfig := writeFile(t, dir, "bad.yaml", "browser:\n  workers: many\n")

	tests := []struct {
		name      string
		config    string
		vars      map[string]string
		wantCfg   bool
		wantStyle bool
	}{
		{"no config", "", nil, true, true},
		{"good config", good, nil, true, true},
		{"config from env", "", map[string]string{"INVOICEPDF_CONFIG": good}, true, true},
		{"unknown style", badStyle, nil, true, false},
		{"invalid config", badConfig, nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, _ := newTestEnv(tt.vars, "")
			result := &doctorResult{}
			checkSetup(result, tt.config, env)

			if result.Setup.ConfigValid != tt.wantCfg || result.Setup.StyleValid != tt.wantStyle {
				t.Errorf("Setup = %+v, want config %v style %v", result.Setup, tt.wantCfg, tt.wantStyle)
			}
			if !tt.wantStyle && len(result.Errors) == 0 {
				t.Error("expected an error entry")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd - Output formats and status
// ---------------------------------------------------------------------------

func TestRunDoctorCmd(t *testing.T) {
	t.Parallel()

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := newTestEnv(nil, "")
		code := runDoctorCmd([]string{"--json"}, env)

		var result doctorResult
		if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout.String())
		}
		wantCode := ExitSuccess
		if result.Status == statusErrors {
			wantCode = ExitGeneral
		}
		if code != wantCode {
			t.Errorf("exit = %d with status %q", code, result.Status)
		}
		if !result.Setup.StyleValid {
			t.Errorf("default style should resolve: %+v", result.Setup)
		}
	})

	t.Run("bad flag", func(t *testing.T) {
		t.Parallel()

		env, _, _ := newTestEnv(nil, "")
		if code := runDoctorCmd([]string{"--bogus"}, env); code != ExitUsage {
			t.Errorf("exit = %d, want %d", code, ExitUsage)
		}
	})
}

func TestPrintDoctorResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printDoctorResult(&buf, &doctorResult{
		Status:   statusErrors,
		Chrome:   chromeInfo{Found: false},
		Env:      envInfo{OS: "linux", Arch: "amd64", CI: true},
		Setup:    setupInfo{Config: "work", ConfigValid: true, Style: "fancy"},
		Warnings: []string{"w1"},
		Errors:   []string{"Style: style not found"},
	})

	out := buf.String()
	for _, want := range []string{
		"[ERROR] Not found",
		"Platform: linux/amd64",
		"CI: detected",
		"[OK] Config: work",
		"[ERROR] Style: fancy",
		"[WARN] w1",
		"Status: Not ready",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
