package main

import (
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunHelp - Help for each command
// ---------------------------------------------------------------------------

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"no command", nil, []string{"Usage: invoicepdf <command>", "export", "edit", "doctor", "completion"}},
		{"export", []string{"export"}, []string{"--workers", "--html", "Document file:", "unitPrice", "wareki", "INVOICEPDF_CONFIG"}},
		{"edit", []string{"edit"}, []string{"Usage: invoicepdf edit", "qty <row> <n>", "save <file.yaml>"}},
		{"doctor", []string{"doctor"}, []string{"--json"}},
		{"completion", []string{"completion"}, []string{"Usage: invoicepdf completion <shell>", "powershell"}},
		{"version", []string{"version"}, []string{"Usage: invoicepdf version"}},
		{"help", []string{"help"}, []string{"Usage: invoicepdf help"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, _ := newTestEnv(nil, "")
			if err := runHelp(tt.args, env); err != nil {
				t.Fatalf("runHelp() error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("help %v missing %q", tt.args, want)
				}
			}
		})
	}

	t.Run("unknown command", func(t *testing.T) {
		t.Parallel()

		env, stdout, stderr := newTestEnv(nil, "")
		err := runHelp([]string{"convert"}, env)
		if !errors.Is(err, ErrUnknownCommand) {
			t.Errorf("runHelp(convert) error = %v, want ErrUnknownCommand", err)
		}
		if stdout.Len() != 0 || !strings.Contains(stderr.String(), "Usage:") {
			t.Errorf("usage should go to stderr; stdout=%q stderr=%q", stdout.String(), stderr.String())
		}
	})
}

func TestShellHelp_ListsEveryCommand(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	printShellHelp(&sb)
	help := sb.String()

	verbs := []string{"add", "delete", "set", "type", "reset", "show", "yaml", "save", "export", "quit"}
	for verb := range rowCommands {
		verbs = append(verbs, verb)
	}
	for _, verb := range verbs {
		if !strings.Contains(help, "  "+verb+" ") {
			t.Errorf("shell help missing %q", verb)
		}
	}
}
