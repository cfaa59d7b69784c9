package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/alnah/go-invoicepdf/internal/ledger"
)

// Sentinel errors for document rendering.
var (
	ErrTemplateParse  = errors.New("document template parse failed")
	ErrTemplateRender = errors.New("document template rendering failed")
)

// ContainerID is the element the exporter captures.
const ContainerID = "app-container"

// Options configures a single render.
type Options struct {
	Stylesheets []string // external stylesheet URLs, e.g. web fonts
	CrossOrigin bool     // load external stylesheets with crossorigin="anonymous"
}

// documentView is the data handed to the document template.
type documentView struct {
	Title          string
	DocumentNumber string
	IssueDate      string
	CustomerName   string
	CompanyName    string
	ShipTo         string
	ShipFrom       string
	Rows           []rowView
	Total          string
	Remarks        template.HTML
	CSS            template.CSS
	Stylesheets    []string
	CrossOrigin    bool
	ShowAddRow     bool
	ShowActions    bool
}

type rowView struct {
	ID        ledger.RowID
	Name      string
	Spec      string
	Quantity  string
	UnitPrice string
	Subtotal  string
}

// Renderer renders sessions with one parsed template and stylesheet.
type Renderer struct {
	tmpl    *template.Template
	css     string
	remarks RemarksConverter
}

// NewRenderer parses the document template. css is embedded in a <style>
// block; remarks may be nil to use goldmark.
func NewRenderer(tmplContent, css string, remarks RemarksConverter) (*Renderer, error) {
	tmpl, err := template.New("document").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}
	if remarks == nil {
		remarks = NewGoldmarkRemarks()
	}
	return &Renderer{tmpl: tmpl, css: css, remarks: remarks}, nil
}

// Render produces a complete HTML document for the session.
func (r *Renderer) Render(ctx context.Context, s ledger.Session, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	remarks, err := r.remarks.ToHTML(ctx, s.Header.Remarks)
	if err != nil {
		return "", err
	}

	view := documentView{
		Title:          s.Title,
		DocumentNumber: s.Header.DocumentNumber,
		IssueDate:      s.Header.IssueDate,
		CustomerName:   s.Header.CustomerName,
		CompanyName:    s.Header.CompanyName,
		ShipTo:         s.Header.ShipTo,
		ShipFrom:       s.Header.ShipFrom,
		Rows:           make([]rowView, 0, len(s.Rows)),
		Total:          ledger.FormatYen(s.Total),
		Remarks:        remarks,
		CSS:            template.CSS(sanitizeCSS(r.css)), // #nosec G203 -- closing tags escaped
		Stylesheets:    opts.Stylesheets,
		CrossOrigin:    opts.CrossOrigin,
		ShowAddRow:     s.Affordances.AddRowVisible,
		ShowActions:    s.Affordances.ActionsVisible,
	}
	for _, row := range s.Rows {
		view.Rows = append(view.Rows, rowView{
			ID:        row.ID,
			Name:      row.Item.Name,
			Spec:      row.Item.Spec,
			Quantity:  row.Item.Quantity,
			UnitPrice: row.Item.UnitPrice,
			Subtotal:  ledger.FormatYen(row.Subtotal),
		})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return buf.String(), nil
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
