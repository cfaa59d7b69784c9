package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// AddRow appends an empty row with the default spec label.
// Totals are unaffected until the row receives numeric input.
func AddRow(s Session) (Session, RowID) {
	s.nextID++
	id := s.nextID
	s.Rows = append(slices.Clip(s.Rows), Row{
		ID:       id,
		Item:     LineItem{Spec: DefaultSpec},
		Subtotal: decimal.Zero,
	})
	return s, id
}

// EditField sets one field of a row. Quantity and price edits recompute the
// row subtotal and the grand total; name and spec edits recompute nothing.
func EditField(s Session, id RowID, field Field, value string) (Session, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return s, fmt.Errorf("%w: %d", ErrRowNotFound, id)
	}

	rows := slices.Clone(s.Rows)
	row := &rows[idx]

	switch field {
	case FieldName:
		row.Item.Name = value
		s.Rows = rows
		return s, nil
	case FieldSpec:
		row.Item.Spec = value
		s.Rows = rows
		return s, nil
	case FieldQuantity:
		row.Item.Quantity = value
	case FieldUnitPrice:
		row.Item.UnitPrice = value
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	row.Subtotal = row.Item.Subtotal()
	s.Rows = rows
	return Recompute(s), nil
}

// DeleteRow removes exactly the given row and recomputes the total.
func DeleteRow(s Session, id RowID) (Session, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return s, fmt.Errorf("%w: %d", ErrRowNotFound, id)
	}
	s.Rows = slices.Delete(slices.Clone(s.Rows), idx, idx+1)
	return Recompute(s), nil
}

// EditHeader sets one free-text header field.
func EditHeader(s Session, field HeaderField, value string) (Session, error) {
	switch field {
	case HeaderDocumentNumber:
		s.Header.DocumentNumber = value
	case HeaderCustomerName:
		s.Header.CustomerName = value
	case HeaderCompanyName:
		s.Header.CompanyName = value
	case HeaderShipTo:
		s.Header.ShipTo = value
	case HeaderShipFrom:
		s.Header.ShipFrom = value
	case HeaderIssueDate:
		s.Header.IssueDate = value
	case HeaderRemarks:
		s.Header.Remarks = value
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownHeader, field)
	}
	return s, nil
}

// Reset clears the free-text header fields and every row.
// The issue date and the document type survive a reset.
func Reset(s Session) Session {
	s.Header.DocumentNumber = ""
	s.Header.CustomerName = ""
	s.Header.CompanyName = ""
	s.Header.ShipTo = ""
	s.Header.ShipFrom = ""
	s.Header.Remarks = ""
	s.Rows = nil
	return Recompute(s)
}

// ChangeDocumentType updates the document type and the title mirroring it.
func ChangeDocumentType(s Session, docType string) (Session, error) {
	docType = ResolveDocumentType(strings.TrimSpace(docType))
	if docType == "" {
		return s, ErrEmptyDocumentType
	}
	s.Header.DocumentType = docType
	s.Title = docType
	return s, nil
}

// Recompute sums the subtotals of every row into Total.
func Recompute(s Session) Session {
	total := decimal.Zero
	for _, r := range s.Rows {
		total = total.Add(r.Item.Subtotal())
	}
	s.Total = total
	return s
}

// HideAffordances hides the interactive-only controls.
func HideAffordances(s Session) Session {
	s.Affordances = Affordances{}
	return s
}

// ShowAffordances shows the interactive-only controls.
func ShowAffordances(s Session) Session {
	s.Affordances = Affordances{AddRowVisible: true, ActionsVisible: true}
	return s
}
