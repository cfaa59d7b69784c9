//go:build integration

package main

// Notes:
// - Runs the real pipeline: headless Chrome, capture, A4 slicing.
// - Set ROD_BROWSER_BIN / ROD_NO_SANDBOX as for the CLI itself.

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-invoicepdf/internal/ledger"
)

const integrationTimeout = 2 * time.Minute

// ---------------------------------------------------------------------------
// TestExport_Integration - Document files to PDF through Chrome
// ---------------------------------------------------------------------------

func TestExport_Integration(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "quote.yaml", sampleDocument)

	var long strings.Builder
	long.WriteString("type: invoice\ncustomer: 長い商店\nitems:\n")
	for i := 0; i < 80; i++ {
		fmt.Fprintf(&long, "  - name: 品目%d\n    quantity: 1\n    unitPrice: 100\n", i+1)
	}
	writeFile(t, dir, "long.yaml", long.String())

	out := t.TempDir()
	env, stdout, stderr := newTestEnv(nil, "")

	ctx, cancel := context.WithTimeout(context.Background(), integrationTimeout)
	defer cancel()

	err := runExport(ctx, []string{"-v", "--html", "-o", out, "-w", "2", dir}, env)
	if err != nil {
		t.Fatalf("runExport() error: %v\nstderr: %s", err, stderr.String())
	}

	quote := filepath.Join(out, ledger.DocumentTypeQuote+"_山田商店_2024-05-01.pdf")
	invoice := filepath.Join(out, ledger.DocumentTypeInvoice+"_長い商店_2024-05-01.pdf")
	for _, path := range []string{quote, invoice} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("missing output %s: %v\nstdout: %s", path, err, stdout.String())
		}
		if !bytes.HasPrefix(data, []byte("%PDF-")) {
			t.Errorf("%s is not a PDF", path)
		}
		if _, err := os.Stat(htmlOutputPath(path)); err != nil {
			t.Errorf("--html did not write %s: %v", htmlOutputPath(path), err)
		}
	}

	if !strings.Contains(stdout.String(), "¥4,150") || !strings.Contains(stdout.String(), "¥8,000") {
		t.Errorf("verbose output missing totals: %s", stdout.String())
	}
	if strings.Contains(stdout.String(), "long.yaml -> "+invoice+" (1 page(s)") {
		t.Errorf("80 rows should span several A4 pages: %s", stdout.String())
	}
}

// ---------------------------------------------------------------------------
// TestEdit_Integration - Exporting from the shell
// ---------------------------------------------------------------------------

func TestEdit_Integration(t *testing.T) {
	out := t.TempDir()
	env, stdout, stderr := newTestEnv(map[string]string{"INVOICEPDF_OUTPUT_DIR": out},
		"set customer 山田商店\nadd\nname 1 杉板\nqty 1 3\nprice 1 1200\nexport\nquit\n")

	ctx, cancel := context.WithTimeout(context.Background(), integrationTimeout)
	defer cancel()

	if err := runEdit(ctx, nil, env); err != nil {
		t.Fatalf("runEdit() error: %v\nstderr: %s", err, stderr.String())
	}

	path := filepath.Join(out, ledger.DocumentTypeInvoice+"_山田商店_2024-05-01.pdf")
	if !strings.Contains(stdout.String(), "Created "+path) {
		t.Errorf("stdout = %s", stdout.String())
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("PDF not written: %v", err)
	}
}
