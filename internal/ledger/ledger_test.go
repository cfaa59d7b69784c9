package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func mustEdit(t *testing.T, s Session, id RowID, f Field, v string) Session {
	t.Helper()
	s, err := EditField(s, id, f, v)
	if err != nil {
		t.Fatalf("EditField(%d, %s, %q) error: %v", id, f, v, err)
	}
	return s
}

func assertTotal(t *testing.T, s Session, want string) {
	t.Helper()
	if !s.Total.Equal(decimal.RequireFromString(want)) {
		t.Errorf("Total = %s, want %s", s.Total, want)
	}
}

// ---------------------------------------------------------------------------
// TestNew - Session defaults
// ---------------------------------------------------------------------------

func TestNew(t *testing.T) {
	t.Parallel()

	s := New(testNow)

	if s.Header.IssueDate != "2024-05-01" {
		t.Errorf("IssueDate = %q, want %q", s.Header.IssueDate, "2024-05-01")
	}
	if s.Header.DocumentType != DocumentTypeInvoice {
		t.Errorf("DocumentType = %q, want %q", s.Header.DocumentType, DocumentTypeInvoice)
	}
	if s.Title != s.Header.DocumentType {
		t.Errorf("Title = %q, want it to mirror %q", s.Title, s.Header.DocumentType)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if !s.Affordances.Visible() {
		t.Error("affordances should start visible")
	}
	assertTotal(t, s, "0")
}

// ---------------------------------------------------------------------------
// TestAddRow - Row creation
// ---------------------------------------------------------------------------

func TestAddRow(t *testing.T) {
	t.Parallel()

	s := New(testNow)
	s, first := AddRow(s)
	s, second := AddRow(s)

	if first == second {
		t.Fatalf("row IDs should differ, both %d", first)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if s.Rows[0].ID != first || s.Rows[1].ID != second {
		t.Error("rows should keep insertion order")
	}

	row, _ := s.Row(first)
	if row.Item != (LineItem{Spec: DefaultSpec}) {
		t.Errorf("new row = %+v, want empty with spec %q", row.Item, DefaultSpec)
	}
	assertTotal(t, s, "0")
}

func TestAddRow_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	base, _ := AddRow(New(testNow))
	base, _ = AddRow(base)
	snapshot := base.Rows[0]

	next, id := AddRow(base)
	next = mustEdit(t, next, next.Rows[0].ID, FieldName, "changed")

	if base.Len() != 2 {
		t.Errorf("base Len() = %d, want 2", base.Len())
	}
	if base.Rows[0] != snapshot {
		t.Errorf("base row changed: %+v", base.Rows[0])
	}
	if _, ok := base.Row(id); ok {
		t.Error("base should not see the row added to its successor")
	}
}

func TestAddRow_IDsNotReusedAfterDelete(t *testing.T) {
	t.Parallel()

	s, id := AddRow(New(testNow))
	s, err := DeleteRow(s, id)
	if err != nil {
		t.Fatal(err)
	}
	_, next := AddRow(s)
	if next == id {
		t.Errorf("deleted ID %d was reused", id)
	}
}

// ---------------------------------------------------------------------------
// TestEditField - Field edits and recomputation
// ---------------------------------------------------------------------------

func TestEditField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		quantity     string
		price        string
		wantSubtotal string
	}{
		{"integers", "3", "1200", "3600"},
		{"decimal price", "2", "0.5", "1"},
		{"decimal both", "1.5", "2.25", "3.375"},
		{"empty quantity", "", "500", "0"},
		{"empty price", "4", "", "0"},
		{"malformed quantity", "abc", "500", "0"},
		{"malformed price", "2", "12x", "0"},
		{"whitespace padded", " 2 ", " 300 ", "600"},
		{"zero quantity", "0", "999", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, id := AddRow(New(testNow))
			s = mustEdit(t, s, id, FieldQuantity, tt.quantity)
			s = mustEdit(t, s, id, FieldUnitPrice, tt.price)

			row, _ := s.Row(id)
			if !row.Subtotal.Equal(decimal.RequireFromString(tt.wantSubtotal)) {
				t.Errorf("Subtotal = %s, want %s", row.Subtotal, tt.wantSubtotal)
			}
			assertTotal(t, s, tt.wantSubtotal)
		})
	}
}

func TestEditField_TextFieldsDoNotRecompute(t *testing.T) {
	t.Parallel()

	s, id := AddRow(New(testNow))
	s = mustEdit(t, s, id, FieldQuantity, "2")
	s = mustEdit(t, s, id, FieldUnitPrice, "100")

	// Force a stale total to prove text edits leave it alone.
	s.Total = decimal.NewFromInt(-1)

	s = mustEdit(t, s, id, FieldName, "杉")
	s = mustEdit(t, s, id, FieldSpec, "m3")

	assertTotal(t, s, "-1")
	row, _ := s.Row(id)
	if row.Item.Name != "杉" || row.Item.Spec != "m3" {
		t.Errorf("item = %+v", row.Item)
	}
}

func TestEditField_Errors(t *testing.T) {
	t.Parallel()

	s, id := AddRow(New(testNow))

	tests := []struct {
		name    string
		id      RowID
		field   Field
		wantErr error
	}{
		{"unknown row", id + 100, FieldName, ErrRowNotFound},
		{"unknown field", id, Field("color"), ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := EditField(s, tt.id, tt.field, "x")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got.Len() != s.Len() {
				t.Error("failed edit should leave the session unchanged")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestTotal - Total equals the sum over present rows after every mutation
// ---------------------------------------------------------------------------

func TestTotal_AfterMutationSequence(t *testing.T) {
	t.Parallel()

	type step struct {
		op    string // add, qty, price, delete
		row   int    // index into ids
		value string
	}

	steps := []step{
		{op: "add"},
		{op: "qty", row: 0, value: "2"},
		{op: "price", row: 0, value: "150"},
		{op: "add"},
		{op: "qty", row: 1, value: "3"},
		{op: "price", row: 1, value: "abc"},
		{op: "price", row: 1, value: "10"},
		{op: "add"},
		{op: "qty", row: 2, value: "1.5"},
		{op: "price", row: 2, value: "4"},
		{op: "delete", row: 0},
		{op: "qty", row: 1, value: ""},
		{op: "delete", row: 2},
	}

	s := New(testNow)
	var ids []RowID
	for i, st := range steps {
		var err error
		switch st.op {
		case "add":
			var id RowID
			s, id = AddRow(s)
			ids = append(ids, id)
		case "qty":
			s, err = EditField(s, ids[st.row], FieldQuantity, st.value)
		case "price":
			s, err = EditField(s, ids[st.row], FieldUnitPrice, st.value)
		case "delete":
			s, err = DeleteRow(s, ids[st.row])
		}
		if err != nil {
			t.Fatalf("step %d (%s): %v", i, st.op, err)
		}

		want := decimal.Zero
		for _, r := range s.Rows {
			want = want.Add(ParseAmount(r.Item.Quantity).Mul(ParseAmount(r.Item.UnitPrice)))
		}
		if !s.Total.Equal(want) {
			t.Fatalf("step %d (%s): Total = %s, want %s", i, st.op, s.Total, want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestDeleteRow - Row removal
// ---------------------------------------------------------------------------

func TestDeleteRow(t *testing.T) {
	t.Parallel()

	s := New(testNow)
	var ids []RowID
	for _, v := range []struct{ q, p string }{{"1", "100"}, {"2", "200"}, {"3", "300"}} {
		var id RowID
		s, id = AddRow(s)
		s = mustEdit(t, s, id, FieldQuantity, v.q)
		s = mustEdit(t, s, id, FieldUnitPrice, v.p)
		ids = append(ids, id)
	}
	assertTotal(t, s, "1400")

	before := s
	s, err := DeleteRow(s, ids[1])
	if err != nil {
		t.Fatal(err)
	}

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if _, ok := s.Row(ids[1]); ok {
		t.Error("deleted row still present")
	}
	for _, id := range []RowID{ids[0], ids[2]} {
		got, _ := s.Row(id)
		want, _ := before.Row(id)
		if got.Item != want.Item {
			t.Errorf("row %d changed: %+v, want %+v", id, got.Item, want.Item)
		}
	}
	assertTotal(t, s, "1000")
	if before.Len() != 3 {
		t.Error("DeleteRow mutated its input")
	}
}

func TestDeleteRow_Unknown(t *testing.T) {
	t.Parallel()

	_, err := DeleteRow(New(testNow), 42)
	if !errors.Is(err, ErrRowNotFound) {
		t.Errorf("error = %v, want ErrRowNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// TestReset - Clearing the document
// ---------------------------------------------------------------------------

func TestReset(t *testing.T) {
	t.Parallel()

	s := New(testNow)
	s, _ = ChangeDocumentType(s, DocumentTypeQuote)
	for f, v := range map[HeaderField]string{
		HeaderDocumentNumber: "No. 12",
		HeaderCustomerName:   "山田商店",
		HeaderCompanyName:    "木材株式会社",
		HeaderShipTo:         "東京",
		HeaderShipFrom:       "大阪",
		HeaderIssueDate:      "2024-04-30",
		HeaderRemarks:        "**急ぎ**",
	} {
		var err error
		if s, err = EditHeader(s, f, v); err != nil {
			t.Fatal(err)
		}
	}
	s, id := AddRow(s)
	s = mustEdit(t, s, id, FieldQuantity, "2")
	s = mustEdit(t, s, id, FieldUnitPrice, "500")

	got := Reset(s)

	want := DocumentHeader{
		DocumentType: DocumentTypeQuote,
		IssueDate:    "2024-04-30",
	}
	if got.Header != want {
		t.Errorf("Header = %+v, want %+v", got.Header, want)
	}
	if got.Title != DocumentTypeQuote {
		t.Errorf("Title = %q, want %q", got.Title, DocumentTypeQuote)
	}
	if got.Len() != 0 {
		t.Errorf("Len() = %d, want 0", got.Len())
	}
	assertTotal(t, got, "0")
	if s.Len() != 1 || s.Header.CustomerName == "" {
		t.Error("Reset mutated its input")
	}
}

// ---------------------------------------------------------------------------
// TestChangeDocumentType - Cosmetic label update
// ---------------------------------------------------------------------------

func TestChangeDocumentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"known label", DocumentTypeQuote, DocumentTypeQuote, nil},
		{"invoice alias", "invoice", DocumentTypeInvoice, nil},
		{"quote alias", "quote", DocumentTypeQuote, nil},
		{"custom label", "納品書", "納品書", nil},
		{"trimmed", "  見積書 ", DocumentTypeQuote, nil},
		{"empty", "   ", "", ErrEmptyDocumentType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, id := AddRow(New(testNow))
			s = mustEdit(t, s, id, FieldQuantity, "3")
			s = mustEdit(t, s, id, FieldUnitPrice, "7")

			got, err := ChangeDocumentType(s, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if got.Title != tt.want || got.Header.DocumentType != tt.want {
				t.Errorf("Title/DocumentType = %q/%q, want %q", got.Title, got.Header.DocumentType, tt.want)
			}
			if got.Len() != s.Len() || got.Rows[0] != s.Rows[0] {
				t.Error("ledger rows changed")
			}
			assertTotal(t, got, "21")
		})
	}
}

// ---------------------------------------------------------------------------
// TestEditHeader - Header fields
// ---------------------------------------------------------------------------

func TestEditHeader_Unknown(t *testing.T) {
	t.Parallel()

	_, err := EditHeader(New(testNow), HeaderField("fax"), "x")
	if !errors.Is(err, ErrUnknownHeader) {
		t.Errorf("error = %v, want ErrUnknownHeader", err)
	}
}

// ---------------------------------------------------------------------------
// TestAffordances - Visibility toggles
// ---------------------------------------------------------------------------

func TestAffordances(t *testing.T) {
	t.Parallel()

	s := HideAffordances(New(testNow))
	if s.Affordances.AddRowVisible || s.Affordances.ActionsVisible {
		t.Errorf("hidden affordances = %+v", s.Affordances)
	}
	s = ShowAffordances(s)
	if !s.Affordances.Visible() {
		t.Errorf("shown affordances = %+v", s.Affordances)
	}
}
