package invoicepdf

import (
	"context"
	"fmt"

	"github.com/alnah/go-invoicepdf/internal/docfile"
)

// Fill types a document into the form: it dispatches the same events a
// user would (change-type, edit-header, then add and edits per item).
// Empty header fields keep the form's current values.
func (f *Form) Fill(ctx context.Context, doc docfile.Document) error {
	var events []Event
	if doc.Type != "" {
		events = append(events, Event{Kind: ActionChangeType, Value: doc.Type})
	}
	for _, h := range doc.Header() {
		if h.Value != "" {
			events = append(events, Event{Kind: ActionEditHeader, Header: h.Field, Value: h.Value})
		}
	}
	for _, ev := range events {
		if _, err := f.Dispatch(ctx, ev); err != nil {
			return fmt.Errorf("%s: %w", ev.Kind, err)
		}
	}

	for i, item := range doc.Items {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := f.Dispatch(ctx, Event{Kind: ActionAdd})
		if err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
		edits := []Event{
			{Kind: ActionEditName, Value: item.Name},
			{Kind: ActionEditQuantity, Value: string(item.Quantity)},
			{Kind: ActionEditPrice, Value: string(item.UnitPrice)},
		}
		// An omitted spec keeps the row default
		if item.Spec != "" {
			edits = append(edits, Event{Kind: ActionEditSpec, Value: string(item.Spec)})
		}
		for _, ev := range edits {
			ev.Row = out.Row
			if _, err := f.Dispatch(ctx, ev); err != nil {
				return fmt.Errorf("items[%d] %s: %w", i, ev.Kind, err)
			}
		}
	}
	return nil
}
