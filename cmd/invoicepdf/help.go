package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: invoicepdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  export     Export document files to A4 PDF")
	fmt.Fprintln(w, "  edit       Edit a document interactively")
	fmt.Fprintln(w, "  doctor     Check Chrome and configuration")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'invoicepdf help <command>' for details on a specific command.")
}

// printCommonUsage prints the flags shared by export and edit.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -s, --style <s>           Style name, CSS file path, or CSS")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom styles/templates directory")
	fmt.Fprintln(w, "      --stylesheet <url>    External stylesheet URL (repeatable)")
	fmt.Fprintln(w, "      --no-cors             Load stylesheets without crossorigin")
	fmt.Fprintln(w, "      --scale <f>           Capture pixel ratio (default 2, max 4)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Page load timeout (e.g. 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show timings and debug logs")
	fmt.Fprintln(w, "      --log-level <s>       debug, info, warn, error, off")
	fmt.Fprintln(w, "      --log-format <s>      console, json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  INVOICEPDF_CONFIG, INVOICEPDF_OUTPUT_DIR, INVOICEPDF_TIMEOUT,")
	fmt.Fprintln(w, "  INVOICEPDF_WORKERS, INVOICEPDF_LOG_LEVEL, INVOICEPDF_STYLE,")
	fmt.Fprintln(w, "  INVOICEPDF_COMPANY override the config file; flags override both.")
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: invoicepdf export <file|dir>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export document files to A4 PDF. Directories are searched for")
	fmt.Fprintln(w, ".yaml and .yml files; a file may hold several documents separated by ---.")
	fmt.Fprintln(w, "PDFs are named <type>_<customer>_<date>.pdf and written next to the")
	fmt.Fprintln(w, "document file unless --output is set.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export:")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel exports (0 = auto)")
	fmt.Fprintln(w, "      --html                Also write the rendered HTML")
	fmt.Fprintln(w)
	printCommonUsage(w)
	fmt.Fprintln(w)
	printDocumentFormat(w)
}

// printEditUsage prints usage for the edit command.
func printEditUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: invoicepdf edit [file] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Edit a document interactively. The optional document file pre-fills")
	fmt.Fprintln(w, "the form; type 'help' at the prompt for commands.")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: invoicepdf doctor [--json] [-c config]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, the environment, and the configured style.")
}

// printShellHelp lists the edit shell commands.
func printShellHelp(w io.Writer) {
	fmt.Fprintln(w, "Rows (numbered as shown):")
	fmt.Fprintln(w, "  add                   Add an empty row")
	fmt.Fprintln(w, "  name <row> <text>     Set the item name")
	fmt.Fprintln(w, "  spec <row> <text>     Set the unit label")
	fmt.Fprintln(w, "  qty <row> <n>         Set the quantity")
	fmt.Fprintln(w, "  price <row> <n>       Set the unit price")
	fmt.Fprintln(w, "  delete <row>          Remove a row")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "  set <field> <text>    number, customer, company, ship-to, ship-from,")
	fmt.Fprintln(w, "                        date, remarks (\\n for new lines, Markdown)")
	fmt.Fprintln(w, "  type <label>          Document type: invoice, quote, or any label")
	fmt.Fprintln(w, "  reset                 Clear rows and header (asks first)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  show                  Print the document")
	fmt.Fprintln(w, "  yaml                  Print the document file")
	fmt.Fprintln(w, "  save <file.yaml>      Write the document file")
	fmt.Fprintln(w, "  export                Write the PDF")
	fmt.Fprintln(w, "  quit                  Leave")
}

// printDocumentFormat describes the document file format.
func printDocumentFormat(w io.Writer) {
	fmt.Fprintln(w, "Document file:")
	fmt.Fprintln(w, "  type: quote                # invoice, quote, or any label")
	fmt.Fprintln(w, "  number: Q-2024-001")
	fmt.Fprintln(w, "  customer: 山田商店")
	fmt.Fprintln(w, "  company: 木材株式会社      # default: defaults.companyName")
	fmt.Fprintln(w, "  shipTo: 東京都千代田区")
	fmt.Fprintln(w, "  shipFrom: 大阪府大阪市")
	fmt.Fprintln(w, "  issueDate: auto:wareki     # \"auto\", \"auto:FORMAT\", or literal")
	fmt.Fprintln(w, "  remarks: |                 # Markdown")
	fmt.Fprintln(w, "    **納期**: 5月末")
	fmt.Fprintln(w, "  items:")
	fmt.Fprintln(w, "    - name: 杉板")
	fmt.Fprintln(w, "      spec: 枚               # default: H")
	fmt.Fprintln(w, "      quantity: 3")
	fmt.Fprintln(w, "      unitPrice: 1200")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Date tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D, GG (era), EE (era year)")
	fmt.Fprintln(w, "Presets (case-insensitive): iso, ja, wareki, slash, long")
	fmt.Fprintln(w, "Use [text] to escape literals: [発行日] YYYY年M月D日")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "export":
		printExportUsage(env.Stdout)
	case "edit":
		printEditUsage(env.Stdout)
		fmt.Fprintln(env.Stdout)
		printShellHelp(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: invoicepdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: invoicepdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	return nil
}
