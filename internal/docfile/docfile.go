// Package docfile reads invoice and quote documents from YAML files.
//
// A file holds one or more "---" separated documents:
//
//	type: 請求書
//	number: INV-0042
//	customer: 山田商店
//	issueDate: auto:ja
//	items:
//	  - name: 杉板
//	    spec: 2m
//	    quantity: 3
//	    unitPrice: 1200
//
// Quantities and prices are kept as typed. Malformed numbers count as
// zero when the document is loaded into a form, as they do when typed.
package docfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-invoicepdf/internal/dateutil"
	"github.com/alnah/go-invoicepdf/internal/ledger"
	"github.com/alnah/go-invoicepdf/internal/yamlutil"
)

// Sentinel errors for document files.
var (
	ErrRead         = errors.New("failed to read document file")
	ErrParse        = errors.New("failed to parse document file")
	ErrTooManyItems = errors.New("too many line items")
	ErrFieldTooLong = errors.New("field exceeds maximum length")
)

// Limits for a single document.
const (
	MaxItems       = 500
	MaxFieldLength = 1000
	MaxRemarks     = 10000
)

// Extensions accepted for document files.
var Extensions = []string{".yaml", ".yml"}

// Item is one line item.
type Item struct {
	Name      string          `yaml:"name"`
	Spec      yamlutil.Scalar `yaml:"spec,omitempty"`
	Quantity  yamlutil.Scalar `yaml:"quantity"`
	UnitPrice yamlutil.Scalar `yaml:"unitPrice"`
}

// Document is the header and line items of one invoice or quote.
type Document struct {
	Type      string          `yaml:"type,omitempty"`
	Number    yamlutil.Scalar `yaml:"number,omitempty"`
	Customer  string          `yaml:"customer,omitempty"`
	Company   string          `yaml:"company,omitempty"`
	ShipTo    string          `yaml:"shipTo,omitempty"`
	ShipFrom  string          `yaml:"shipFrom,omitempty"`
	IssueDate yamlutil.Scalar `yaml:"issueDate,omitempty"`
	Remarks   string          `yaml:"remarks,omitempty"`
	Items     []Item          `yaml:"items"`
}

// Defaults fill header fields a document leaves empty.
type Defaults struct {
	DocumentType string
	CompanyName  string
	ShipFrom     string
	IssueDate    string // "auto", "auto:FORMAT" or a literal date
}

// Load reads every document of a file.
func Load(path string) ([]Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	docs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

// Parse decodes and validates every document of a YAML stream.
func Parse(data []byte) ([]Document, error) {
	docs, err := yamlutil.UnmarshalStrictAll[Document](data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	for i := range docs {
		if err := docs[i].Validate(); err != nil {
			return nil, fmt.Errorf("document %d: %w", i+1, err)
		}
	}
	return docs, nil
}

// Validate checks item count and field lengths.
func (d Document) Validate() error {
	if len(d.Items) > MaxItems {
		return fmt.Errorf("%w: %d (max %d)", ErrTooManyItems, len(d.Items), MaxItems)
	}

	fields := []struct {
		name  string
		value string
	}{
		{"type", d.Type},
		{"number", string(d.Number)},
		{"customer", d.Customer},
		{"company", d.Company},
		{"shipTo", d.ShipTo},
		{"shipFrom", d.ShipFrom},
		{"issueDate", string(d.IssueDate)},
	}
	for i, it := range d.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		fields = append(fields,
			struct{ name, value string }{prefix + "name", it.Name},
			struct{ name, value string }{prefix + "spec", string(it.Spec)},
			struct{ name, value string }{prefix + "quantity", string(it.Quantity)},
			struct{ name, value string }{prefix + "unitPrice", string(it.UnitPrice)},
		)
	}
	for _, f := range fields {
		if len(f.value) > MaxFieldLength {
			return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, f.name, len(f.value), MaxFieldLength)
		}
	}
	if len(d.Remarks) > MaxRemarks {
		return fmt.Errorf("%w: remarks (%d chars, max %d)", ErrFieldTooLong, len(d.Remarks), MaxRemarks)
	}
	return nil
}

// WithDefaults returns d with empty header fields taken from defs, the
// document type alias expanded and "auto" issue dates resolved against now.
func (d Document) WithDefaults(defs Defaults, now time.Time) (Document, error) {
	if d.Type == "" {
		d.Type = defs.DocumentType
	}
	d.Type = ledger.ResolveDocumentType(d.Type)
	if d.Company == "" {
		d.Company = defs.CompanyName
	}
	if d.ShipFrom == "" {
		d.ShipFrom = defs.ShipFrom
	}
	if d.IssueDate == "" {
		d.IssueDate = yamlutil.Scalar(defs.IssueDate)
	}

	date, err := dateutil.ResolveDate(string(d.IssueDate), now)
	if err != nil {
		return Document{}, fmt.Errorf("issueDate: %w", err)
	}
	d.IssueDate = yamlutil.Scalar(date)
	return d, nil
}

// Header returns the header fields in the order a user would fill them.
// Empty values are included; callers skip them as needed.
func (d Document) Header() []HeaderValue {
	return []HeaderValue{
		{ledger.HeaderDocumentNumber, string(d.Number)},
		{ledger.HeaderCustomerName, d.Customer},
		{ledger.HeaderCompanyName, d.Company},
		{ledger.HeaderShipTo, d.ShipTo},
		{ledger.HeaderShipFrom, d.ShipFrom},
		{ledger.HeaderIssueDate, string(d.IssueDate)},
		{ledger.HeaderRemarks, d.Remarks},
	}
}

// HeaderValue pairs a header field with its text.
type HeaderValue struct {
	Field ledger.HeaderField
	Value string
}

// FromSession converts a session back into a document, for display or saving.
func FromSession(s ledger.Session) Document {
	h := s.Header
	d := Document{
		Type:      h.DocumentType,
		Number:    yamlutil.Scalar(h.DocumentNumber),
		Customer:  h.CustomerName,
		Company:   h.CompanyName,
		ShipTo:    h.ShipTo,
		ShipFrom:  h.ShipFrom,
		IssueDate: yamlutil.Scalar(h.IssueDate),
		Remarks:   h.Remarks,
		Items:     make([]Item, 0, len(s.Rows)),
	}
	for _, r := range s.Rows {
		d.Items = append(d.Items, Item{
			Name:      r.Item.Name,
			Spec:      yamlutil.Scalar(r.Item.Spec),
			Quantity:  yamlutil.Scalar(r.Item.Quantity),
			UnitPrice: yamlutil.Scalar(r.Item.UnitPrice),
		})
	}
	return d
}

// Encode renders a document as YAML.
func Encode(d Document) ([]byte, error) {
	return yamlutil.Marshal(d)
}

// IsDocumentFile reports whether path has a document file extension.
func IsDocumentFile(path string) bool {
	ext := filepath.Ext(path)
	for _, want := range Extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}
