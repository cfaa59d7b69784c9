// Package invoicepdf fills invoice and quote documents and exports them to
// multi-page A4 PDFs using headless Chrome.
//
// # Quick Start
//
// Create an exporter, attach it to a form, dispatch actions, export:
//
//	exp, err := invoicepdf.NewExporter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer exp.Close()
//
//	form := invoicepdf.NewForm(invoicepdf.WithExporter(exp))
//	out, _ := form.Dispatch(ctx, invoicepdf.Event{Kind: invoicepdf.ActionAdd})
//	form.Dispatch(ctx, invoicepdf.Event{Kind: invoicepdf.ActionEditQuantity, Row: out.Row, Value: "3"})
//	form.Dispatch(ctx, invoicepdf.Event{Kind: invoicepdf.ActionEditPrice, Row: out.Row, Value: "1500"})
//
//	res, err := form.Dispatch(ctx, invoicepdf.Event{Kind: invoicepdf.ActionExport})
//	// res.Path == "請求書_customer_2024-05-01.pdf"
//
// # Form
//
// A Form owns one session (see internal/ledger) and routes each Event
// through a dispatch table. Subtotals and the grand total are recomputed
// after every quantity, price or delete action. Reset asks the Confirmer
// first; a declined reset changes nothing.
//
// # Export Pipeline
//
//  1. Hide the add-row button and the action buttons
//  2. Render the session to HTML (html/template, embedded CSS)
//  3. Capture #app-container in headless Chrome (go-rod) at 2x scale
//  4. Scale the capture to the A4 width and slice it across pages (fpdf)
//  5. Restore the controls, whatever happened
//
// Any failure in steps 2 to 4 is reported through Notifier.Alert with a
// single message; no file is written and the form stays usable.
//
// # Parallel Processing
//
// For batch exports, use ExporterPool to manage multiple browser instances:
//
//	pool := invoicepdf.NewExporterPool(4)
//	defer pool.Close()
//
//	exp, err := pool.Acquire(ctx)
//	defer pool.Release(exp)
//
// # Browser Requirements
//
// Capturing requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package invoicepdf
