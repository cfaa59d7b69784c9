// Package ledger holds the document session: header fields, the ordered line
// items and the derived totals.
//
// A Session is a plain value. Every update function takes a Session and
// returns a new one; the input is never mutated, so callers can keep older
// snapshots (for example while an export is rendering) without copying.
package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors for ledger operations.
var (
	ErrRowNotFound       = errors.New("row not found")
	ErrUnknownField      = errors.New("unknown field")
	ErrUnknownHeader     = errors.New("unknown header field")
	ErrEmptyDocumentType = errors.New("document type cannot be empty")
)

// DefaultSpec is the unit label a new row starts with.
const DefaultSpec = "H"

// IssueDateLayout is the layout of DocumentHeader.IssueDate.
const IssueDateLayout = "2006-01-02"

// Known document types. Any non-empty label is accepted; these are the ones
// offered by the form.
const (
	DocumentTypeInvoice = "請求書"
	DocumentTypeQuote   = "見積書"
)

// KnownDocumentTypes lists the labels offered by the document type selector.
var KnownDocumentTypes = []string{DocumentTypeInvoice, DocumentTypeQuote}

// documentTypeAliases maps ASCII shorthands to their labels.
var documentTypeAliases = map[string]string{
	"invoice": DocumentTypeInvoice,
	"quote":   DocumentTypeQuote,
}

// ResolveDocumentType expands ASCII aliases ("invoice", "quote") to their
// labels. Any other value is returned unchanged.
func ResolveDocumentType(value string) string {
	if label, ok := documentTypeAliases[value]; ok {
		return label
	}
	return value
}

// RowID identifies a row for the lifetime of a session.
// IDs are never reused, even after the row is deleted.
type RowID uint64

// Field names a line item input.
type Field string

// Line item fields.
const (
	FieldName      Field = "name"
	FieldSpec      Field = "spec"
	FieldQuantity  Field = "quantity"
	FieldUnitPrice Field = "price"
)

// HeaderField names a free-text header input.
type HeaderField string

// Header fields.
const (
	HeaderDocumentNumber HeaderField = "number"
	HeaderCustomerName   HeaderField = "customer"
	HeaderCompanyName    HeaderField = "company"
	HeaderShipTo         HeaderField = "ship-to"
	HeaderShipFrom       HeaderField = "ship-from"
	HeaderIssueDate      HeaderField = "date"
	HeaderRemarks        HeaderField = "remarks"
)

// LineItem is one row of the ledger, holding the raw input as typed.
type LineItem struct {
	Name      string
	Spec      string
	Quantity  string
	UnitPrice string
}

// Subtotal returns quantity x unit price. Malformed input counts as zero.
func (li LineItem) Subtotal() decimal.Decimal {
	return ParseAmount(li.Quantity).Mul(ParseAmount(li.UnitPrice))
}

// Row is a line item with its identity and last computed subtotal.
type Row struct {
	ID       RowID
	Item     LineItem
	Subtotal decimal.Decimal
}

// DocumentHeader describes the document as a whole.
type DocumentHeader struct {
	DocumentType   string
	DocumentNumber string
	CustomerName   string
	CompanyName    string
	ShipTo         string
	ShipFrom       string
	IssueDate      string
	Remarks        string // Markdown
}

// Affordances tracks the visibility of interactive-only controls.
// They are hidden while the document is captured for export.
type Affordances struct {
	AddRowVisible  bool
	ActionsVisible bool
}

// Visible reports whether every interactive control is shown.
func (a Affordances) Visible() bool {
	return a.AddRowVisible && a.ActionsVisible
}

// Session is the single document being edited.
type Session struct {
	Header      DocumentHeader
	Title       string // mirrors Header.DocumentType
	Rows        []Row
	Total       decimal.Decimal
	Affordances Affordances

	nextID RowID
}

// New returns an empty invoice session issued on the given date.
func New(now time.Time) Session {
	return Session{
		Header: DocumentHeader{
			DocumentType: DocumentTypeInvoice,
			IssueDate:    now.Format(IssueDateLayout),
		},
		Title:       DocumentTypeInvoice,
		Total:       decimal.Zero,
		Affordances: Affordances{AddRowVisible: true, ActionsVisible: true},
	}
}

// Row returns the row with the given ID.
func (s Session) Row(id RowID) (Row, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.Rows[i], true
	}
	return Row{}, false
}

// Len returns the number of rows.
func (s Session) Len() int {
	return len(s.Rows)
}

func (s Session) indexOf(id RowID) int {
	for i := range s.Rows {
		if s.Rows[i].ID == id {
			return i
		}
	}
	return -1
}
