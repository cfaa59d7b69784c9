package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	invoicepdf "github.com/alnah/go-invoicepdf"
	"github.com/alnah/go-invoicepdf/internal/docfile"
	"github.com/alnah/go-invoicepdf/internal/fileutil"
	"github.com/alnah/go-invoicepdf/internal/ledger"
)

// Sentinel errors for the edit shell.
var (
	ErrUnknownShellCommand = errors.New("unknown command")
	ErrBadRow              = errors.New("invalid row number")
	ErrMissingArgument     = errors.New("missing argument")
)

const shellPrompt = "> "

// rowCommands maps shell verbs to row edit actions.
var rowCommands = map[string]invoicepdf.ActionKind{
	"name":  invoicepdf.ActionEditName,
	"spec":  invoicepdf.ActionEditSpec,
	"qty":   invoicepdf.ActionEditQuantity,
	"price": invoicepdf.ActionEditPrice,
}

// shell is a line-oriented front end to a Form.
type shell struct {
	form    *invoicepdf.Form
	scanner *bufio.Scanner
	out     io.Writer
	errOut  io.Writer
}

// runEdit starts an interactive session, optionally pre-filled from a
// document file.
func runEdit(ctx context.Context, args []string, env *Environment) (err error) {
	flags, positional, err := parseEditFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: edit takes at most one document file", ErrUsage)
	}

	s, err := loadSettings(flags.common, flags.browser, runFlags{output: flags.output}, env)
	if err != nil {
		return err
	}
	defer func() { err = s.annotate(err) }()

	var doc docfile.Document
	if len(positional) == 1 {
		docs, err := docfile.Load(positional[0])
		if err != nil {
			return err
		}
		if len(docs) > 1 {
			fmt.Fprintf(env.Stderr, "%s holds %d documents; editing the first\n", positional[0], len(docs))
		}
		doc = docs[0]
	}
	doc, err = doc.WithDefaults(s.documentDefaults(), env.Now())
	if err != nil {
		return err
	}

	outputDir := s.cfg.Output.DefaultDir
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, dirPermissions); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	exp, err := invoicepdf.NewExporter(s.exporterOptions()...)
	if err != nil {
		return err
	}
	defer func() {
		if err := exp.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("closing browser")
		}
	}()

	sh := newShell(env)
	sh.form = invoicepdf.NewForm(
		invoicepdf.WithExporter(exp),
		invoicepdf.WithOutputDir(outputDir),
		invoicepdf.WithNow(env.Now),
		invoicepdf.WithFormLogger(s.logger),
		invoicepdf.WithConfirmer(invoicepdf.ConfirmFunc(sh.confirm)),
		invoicepdf.WithNotifier(invoicepdf.NotifyFunc(sh.alert)),
	)
	if err := sh.form.Fill(ctx, doc); err != nil {
		return fmt.Errorf("filling form: %w", err)
	}

	return sh.run(ctx)
}

// newShell wires the shell to the environment's streams. The form is
// attached by the caller.
func newShell(env *Environment) *shell {
	return &shell{
		scanner: bufio.NewScanner(env.Stdin),
		out:     env.Stdout,
		errOut:  env.Stderr,
	}
}

// run reads commands until quit, end of input or cancellation.
func (sh *shell) run(ctx context.Context) error {
	sh.show()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(sh.out, shellPrompt)
		if !sh.scanner.Scan() {
			fmt.Fprintln(sh.out)
			return sh.scanner.Err()
		}

		line := strings.TrimSpace(sh.scanner.Text())
		if line == "" {
			continue
		}
		quit, err := sh.execute(ctx, line)
		if err != nil {
			fmt.Fprintf(sh.errOut, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// execute runs one command line. It reports whether the shell should exit.
func (sh *shell) execute(ctx context.Context, line string) (bool, error) {
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch verb {
	case "quit", "exit":
		return true, nil
	case "help":
		printShellHelp(sh.out)
		return false, nil
	case "show":
		sh.show()
		return false, nil
	case "yaml":
		return false, sh.printYAML()
	case "save":
		return false, sh.save(rest)
	}

	ev, err := sh.parseEvent(verb, rest)
	if err != nil {
		return false, err
	}

	out, err := sh.form.Dispatch(ctx, ev)
	if err != nil {
		return false, err
	}

	switch ev.Kind {
	case invoicepdf.ActionExport:
		fmt.Fprintf(sh.out, "Created %s (%d page(s))\n", out.Path, out.Pages)
	case invoicepdf.ActionReset:
		if out.Declined {
			fmt.Fprintln(sh.out, "reset canceled")
			return false, nil
		}
		sh.show()
	case invoicepdf.ActionAdd, invoicepdf.ActionDelete:
		sh.show()
	default:
		sh.printTotal()
	}
	return false, nil
}

// parseEvent turns a form command into an Event.
func (sh *shell) parseEvent(verb, rest string) (invoicepdf.Event, error) {
	switch verb {
	case "add":
		return invoicepdf.Event{Kind: invoicepdf.ActionAdd}, nil
	case "export":
		return invoicepdf.Event{Kind: invoicepdf.ActionExport}, nil
	case "reset":
		return invoicepdf.Event{Kind: invoicepdf.ActionReset}, nil
	case "type":
		if rest == "" {
			return invoicepdf.Event{}, fmt.Errorf("%w: type <label>", ErrMissingArgument)
		}
		return invoicepdf.Event{Kind: invoicepdf.ActionChangeType, Value: rest}, nil
	case "delete":
		id, err := sh.rowID(rest)
		if err != nil {
			return invoicepdf.Event{}, err
		}
		return invoicepdf.Event{Kind: invoicepdf.ActionDelete, Row: id}, nil
	case "set":
		field, value, _ := strings.Cut(rest, " ")
		if field == "" {
			return invoicepdf.Event{}, fmt.Errorf("%w: set <field> <text>", ErrMissingArgument)
		}
		value = strings.TrimSpace(value)
		if ledger.HeaderField(field) == ledger.HeaderRemarks {
			value = strings.ReplaceAll(value, `\n`, "\n")
		}
		return invoicepdf.Event{Kind: invoicepdf.ActionEditHeader, Header: ledger.HeaderField(field), Value: value}, nil
	}

	kind, ok := rowCommands[verb]
	if !ok {
		return invoicepdf.Event{}, fmt.Errorf("%w: %q (try help)", ErrUnknownShellCommand, verb)
	}
	rowArg, value, _ := strings.Cut(rest, " ")
	id, err := sh.rowID(rowArg)
	if err != nil {
		return invoicepdf.Event{}, err
	}
	return invoicepdf.Event{Kind: kind, Row: id, Value: strings.TrimSpace(value)}, nil
}

// rowID resolves a 1-based row number as shown by show.
func (sh *shell) rowID(arg string) (ledger.RowID, error) {
	if arg == "" {
		return 0, fmt.Errorf("%w: row number required", ErrMissingArgument)
	}
	n, err := strconv.Atoi(arg)
	rows := sh.form.Snapshot().Rows
	if err != nil || n < 1 || n > len(rows) {
		return 0, fmt.Errorf("%w: %q (have %d row(s))", ErrBadRow, arg, len(rows))
	}
	return rows[n-1].ID, nil
}

// confirm asks on stdout and reads the answer from the command stream.
func (sh *shell) confirm(_ context.Context, prompt string) bool {
	fmt.Fprintf(sh.out, "%s [y/N] ", prompt)
	if !sh.scanner.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(sh.scanner.Text())) {
	case "y", "yes", "はい":
		return true
	}
	return false
}

func (sh *shell) alert(message string) {
	fmt.Fprintln(sh.errOut, message)
}

// show prints the header, the rows and the total.
func (sh *shell) show() {
	s := sh.form.Snapshot()
	h := s.Header

	fmt.Fprintf(sh.out, "%s  No. %s  %s\n", s.Title, h.DocumentNumber, h.IssueDate)
	fmt.Fprintf(sh.out, "  customer:  %s\n", h.CustomerName)
	fmt.Fprintf(sh.out, "  company:   %s\n", h.CompanyName)
	fmt.Fprintf(sh.out, "  ship-to:   %s\n", h.ShipTo)
	fmt.Fprintf(sh.out, "  ship-from: %s\n", h.ShipFrom)
	for i, r := range s.Rows {
		fmt.Fprintf(sh.out, "  %3d  %-20s %-6s %8s x %10s = %s\n",
			i+1, r.Item.Name, r.Item.Spec, r.Item.Quantity, r.Item.UnitPrice, ledger.FormatYen(r.Subtotal))
	}
	if len(s.Rows) == 0 {
		fmt.Fprintln(sh.out, "  (no rows, type add)")
	}
	sh.printTotal()
}

func (sh *shell) printTotal() {
	fmt.Fprintf(sh.out, "total: %s\n", ledger.FormatYen(sh.form.Snapshot().Total))
}

func (sh *shell) printYAML() error {
	data, err := docfile.Encode(docfile.FromSession(sh.form.Snapshot()))
	if err != nil {
		return err
	}
	_, err = sh.out.Write(data)
	return err
}

// save writes the session as a document file that export and edit accept.
func (sh *shell) save(path string) error {
	if path == "" {
		return fmt.Errorf("%w: save <file.yaml>", ErrMissingArgument)
	}
	if !docfile.IsDocumentFile(path) {
		return fmt.Errorf("%w: %s", ErrInvalidExtension, path)
	}
	data, err := docfile.Encode(docfile.FromSession(sh.form.Snapshot()))
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, data, filePermissions); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Saved %s\n", path)
	return nil
}
