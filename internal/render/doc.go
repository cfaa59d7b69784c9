// Package render turns a ledger session into a standalone HTML document.
//
// The document is what the exporter captures: header fields, the line item
// table with formatted subtotals, the grand total, optional Markdown remarks,
// and the interactive controls (hidden while exporting). Rasterization and
// PDF assembly live in the root invoicepdf package.
package render
