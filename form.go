package invoicepdf

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-invoicepdf/internal/fileutil"
	"github.com/alnah/go-invoicepdf/internal/ledger"
)

// User-facing messages.
const (
	ResetPrompt       = "内容をすべてリセットしますか？"
	ExportFailedAlert = "PDFの生成に失敗しました。"
)

// ActionKind names a user action on the form.
type ActionKind string

// Form actions.
const (
	ActionAdd          ActionKind = "add"
	ActionEditName     ActionKind = "edit-name"
	ActionEditSpec     ActionKind = "edit-spec"
	ActionEditQuantity ActionKind = "edit-quantity"
	ActionEditPrice    ActionKind = "edit-price"
	ActionEditHeader   ActionKind = "edit-header"
	ActionDelete       ActionKind = "delete"
	ActionReset        ActionKind = "reset"
	ActionExport       ActionKind = "export"
	ActionChangeType   ActionKind = "change-type"
)

// Event is one user action. Row applies to row actions, Header to
// edit-header; Value carries the typed text.
type Event struct {
	Kind   ActionKind
	Row    ledger.RowID
	Header ledger.HeaderField
	Value  string
}

// Outcome reports what an action did.
type Outcome struct {
	Row      ledger.RowID // row added or edited
	Path     string       // PDF written by export
	Pages    int          // page count of the exported PDF
	Declined bool         // reset declined at the confirmation prompt
}

// Confirmer is the yes/no gate in front of destructive actions.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm calls fn.
func (fn ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return fn(ctx, prompt)
}

// Notifier shows a message to the user.
type Notifier interface {
	Alert(message string)
}

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(message string)

// Alert calls fn.
func (fn NotifyFunc) Alert(message string) {
	fn(message)
}

// handler runs one action against the form's session.
type handler func(f *Form, ctx context.Context, ev Event) (Outcome, error)

// dispatchTable maps every action to its handler.
var dispatchTable = map[ActionKind]handler{
	ActionAdd:          (*Form).addRow,
	ActionEditName:     editField(ledger.FieldName),
	ActionEditSpec:     editField(ledger.FieldSpec),
	ActionEditQuantity: editField(ledger.FieldQuantity),
	ActionEditPrice:    editField(ledger.FieldUnitPrice),
	ActionEditHeader:   (*Form).editHeader,
	ActionDelete:       (*Form).deleteRow,
	ActionReset:        (*Form).reset,
	ActionExport:       (*Form).export,
	ActionChangeType:   (*Form).changeType,
}

// Actions lists the known action kinds.
func Actions() []ActionKind {
	return []ActionKind{
		ActionAdd, ActionEditName, ActionEditSpec, ActionEditQuantity, ActionEditPrice,
		ActionEditHeader, ActionDelete, ActionReset, ActionExport, ActionChangeType,
	}
}

// Form owns one document session and applies user actions to it one at a
// time. Concurrent Dispatch calls are serialized.
type Form struct {
	mu        sync.Mutex
	session   ledger.Session
	confirmer Confirmer
	notifier  Notifier
	exporter  *Exporter
	outputDir string
	now       func() time.Time
	logger    zerolog.Logger
}

// NewForm creates a form holding an empty invoice issued today.
// Without WithConfirmer every reset is accepted; without WithNotifier alerts
// are logged.
func NewForm(opts ...FormOption) *Form {
	f := &Form{
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.confirmer == nil {
		f.confirmer = ConfirmFunc(func(context.Context, string) bool { return true })
	}
	if f.notifier == nil {
		f.notifier = NotifyFunc(func(msg string) { f.logger.Warn().Msg(msg) })
	}
	f.session = ledger.New(f.now())
	return f
}

// Dispatch runs one action to completion.
// Returns ErrUnknownAction for kinds missing from the dispatch table.
func (f *Form) Dispatch(ctx context.Context, ev Event) (Outcome, error) {
	h, ok := dispatchTable[ev.Kind]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownAction, ev.Kind)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	out, err := h(f, ctx, ev)
	if err != nil {
		f.logger.Debug().Err(err).Str("action", string(ev.Kind)).Msg("action rejected")
		return out, err
	}
	f.logger.Debug().
		Str("action", string(ev.Kind)).
		Int("rows", f.session.Len()).
		Str("total", f.session.Total.String()).
		Msg("action applied")
	return out, nil
}

// Snapshot returns the current session. Sessions are values; later actions
// do not change a returned snapshot.
func (f *Form) Snapshot() ledger.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

func (f *Form) addRow(_ context.Context, _ Event) (Outcome, error) {
	s, id := ledger.AddRow(f.session)
	f.session = s
	return Outcome{Row: id}, nil
}

func editField(field ledger.Field) handler {
	return func(f *Form, _ context.Context, ev Event) (Outcome, error) {
		s, err := ledger.EditField(f.session, ev.Row, field, ev.Value)
		if err != nil {
			return Outcome{}, err
		}
		f.session = s
		return Outcome{Row: ev.Row}, nil
	}
}

func (f *Form) editHeader(_ context.Context, ev Event) (Outcome, error) {
	s, err := ledger.EditHeader(f.session, ev.Header, ev.Value)
	if err != nil {
		return Outcome{}, err
	}
	f.session = s
	return Outcome{}, nil
}

func (f *Form) deleteRow(_ context.Context, ev Event) (Outcome, error) {
	s, err := ledger.DeleteRow(f.session, ev.Row)
	if err != nil {
		return Outcome{}, err
	}
	f.session = s
	return Outcome{Row: ev.Row}, nil
}

func (f *Form) reset(ctx context.Context, _ Event) (Outcome, error) {
	if !f.confirmer.Confirm(ctx, ResetPrompt) {
		return Outcome{Declined: true}, nil
	}
	f.session = ledger.Reset(f.session)
	return Outcome{}, nil
}

func (f *Form) changeType(_ context.Context, ev Event) (Outcome, error) {
	s, err := ledger.ChangeDocumentType(f.session, ev.Value)
	if err != nil {
		return Outcome{}, err
	}
	f.session = s
	return Outcome{}, nil
}

// export hides the interactive controls, runs the exporter and writes the
// PDF. Every failure is reported to the user with the same alert and the
// form stays usable.
func (f *Form) export(ctx context.Context, _ Event) (Outcome, error) {
	if f.exporter == nil {
		return Outcome{}, ErrNoExporter
	}

	var out Outcome
	err := f.withHiddenAffordances(func(s ledger.Session) error {
		res, err := f.exporter.Export(ctx, s)
		if err != nil {
			return err
		}
		path := filepath.Join(f.outputDir, res.Filename)
		// #nosec G306 -- PDF output files are intended to be readable
		if err := fileutil.WriteFileAtomic(path, res.PDF, 0o644); err != nil {
			return fmt.Errorf("%w: %v", ErrWritePDF, err)
		}
		out = Outcome{Path: path, Pages: res.Pages}
		return nil
	})
	if err != nil {
		f.logger.Error().Err(err).Msg("PDF generation failed")
		f.notifier.Alert(ExportFailedAlert)
		return Outcome{}, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}

	f.logger.Info().Str("path", out.Path).Int("pages", out.Pages).Msg("PDF saved")
	return out, nil
}

// withHiddenAffordances hides the interactive controls while fn runs and
// restores them on every exit path. A panic in fn becomes ErrInternal.
func (f *Form) withHiddenAffordances(fn func(ledger.Session) error) (err error) {
	f.session = ledger.HideAffordances(f.session)
	defer func() {
		f.session = ledger.ShowAffordances(f.session)
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()
	return fn(f.session)
}
