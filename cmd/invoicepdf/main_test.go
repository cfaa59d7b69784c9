package main

// Notes:
// - runMain: we test dispatch and exit codes. Actual PDF export is covered
//   by integration tests.

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunMain - Command dispatch and exit codes
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		want       int
		wantStdout string
		wantStderr string
	}{
		{"no command", []string{"invoicepdf"}, ExitUsage, "", "Usage:"},
		{"unknown command", []string{"invoicepdf", "convert"}, ExitUsage, "", "unknown command: convert"},
		{"version", []string{"invoicepdf", "version"}, ExitSuccess, "invoicepdf ", ""},
		{"help", []string{"invoicepdf", "help"}, ExitSuccess, "Commands:", ""},
		{"help flag", []string{"invoicepdf", "--help"}, ExitSuccess, "Commands:", ""},
		{"help export", []string{"invoicepdf", "help", "export"}, ExitSuccess, "Document file:", ""},
		{"export help flag", []string{"invoicepdf", "export", "--help"}, ExitSuccess, "", "Usage: invoicepdf export"},
		{"completion", []string{"invoicepdf", "completion", "bash"}, ExitSuccess, "complete -F", ""},
		{"completion bad shell", []string{"invoicepdf", "completion", "tcsh"}, ExitUsage, "", "unsupported shell"},
		{"export no input", []string{"invoicepdf", "export"}, ExitIO, "", "no input specified"},
		{"export bad flag", []string{"invoicepdf", "export", "--bogus"}, ExitUsage, "", "invalid usage"},
		{"export missing config", []string{"invoicepdf", "export", "-c", "/nonexistent/x.yaml", "."}, ExitUsage, "", "hint: use --config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := newTestEnv(nil, "")
			if got := runMain(tt.args, env); got != tt.want {
				t.Errorf("runMain(%v) = %d, want %d (stderr: %s)", tt.args, got, tt.want, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	if got := version(); got == "" {
		t.Error("version() is empty")
	}
}
