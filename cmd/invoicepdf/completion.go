package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota
	flagBool
	flagInt
	flagFloat
	flagEnum
	flagFile
	flagDir
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string
	Short    string
	Type     flagType
	Desc     string
	Values   []string // enum values
	FileGlob string   // comma-separated, e.g. "*.yaml,*.yml"
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	TakesFiles  bool
	FilePattern string
	Args        []string // fixed positional values
}

// completionMeta holds completion hints for a flag. Names, types, and
// descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string
	FileGlob string
	IsDir    bool
}

const documentGlob = "*.yaml,*.yml"

var flagCompletionMeta = map[string]completionMeta{
	"log-level":  {Values: []string{"debug", "info", "warn", "error", "off"}},
	"log-format": {Values: []string{"console", "json"}},

	"config": {FileGlob: documentGlob},
	"style":  {FileGlob: "*.css"},

	"output":     {IsDir: true},
	"asset-path": {IsDir: true},
}

// extractFlagsFromFlagSet converts the flags of fs into completion
// definitions, enriched with flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		case "float32", "float64":
			fd.Type = flagFloat
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion. Flags are read
// from the same FlagSets the commands parse with.
func getCommands() []commandDef {
	return []commandDef{
		{
			Name:        "export",
			Desc:        "Export document files to A4 PDF",
			Flags:       extractFlagsFromFlagSet(newExportFlagSet(&exportFlags{})),
			TakesFiles:  true,
			FilePattern: documentGlob,
		},
		{
			Name:        "edit",
			Desc:        "Edit a document interactively",
			Flags:       extractFlagsFromFlagSet(newEditFlagSet(&editFlags{})),
			TakesFiles:  true,
			FilePattern: documentGlob,
		},
		{
			Name:  "doctor",
			Desc:  "Check Chrome and configuration",
			Flags: extractFlagsFromFlagSet(newDoctorFlagSet(&doctorFlags{})),
		},
		{
			Name: "version",
			Desc: "Show version information",
		},
		{
			Name: "help",
			Desc: "Show help for a command",
			Args: []string{"export", "edit", "doctor", "version", "completion"},
		},
		{
			Name: "completion",
			Desc: "Generate shell completion script",
			Args: []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)},
		},
	}
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var gen func(*strings.Builder, []commandDef)
	switch shell {
	case ShellBash:
		gen = generateBash
	case ShellZsh:
		gen = generateZsh
	case ShellFish:
		gen = generateFish
	case ShellPowerShell:
		gen = generatePowerShell
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}

	var sb strings.Builder
	gen(&sb, getCommands())
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("writing completion script: %w", err)
	}
	return nil
}

// globExtensions returns the extensions of a comma-separated glob list:
// "*.yaml,*.yml" -> [yaml yml].
func globExtensions(glob string) []string {
	var exts []string
	for _, g := range strings.Split(glob, ",") {
		if ext := strings.TrimPrefix(strings.TrimSpace(g), "*."); ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}

func commandNames(cmds []commandDef) string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return strings.Join(names, " ")
}

// flagWords lists every spelling of the flags: --long and -s.
func flagWords(flags []flagDef) []string {
	var words []string
	for _, f := range flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return words
}

// flagPattern is the bash case pattern matching both spellings of f.
func flagPattern(f flagDef) string {
	if f.Short != "" {
		return "-" + f.Short + "|--" + f.Long
	}
	return "--" + f.Long
}

func bashFileCompgen(glob string) string {
	return fmt.Sprintf("compgen -o plusdirs -f -X '!*.@(%s)' -- \"$cur\"",
		strings.Join(globExtensions(glob), "|"))
}

func generateBash(sb *strings.Builder, cmds []commandDef) {
	sb.WriteString("# bash completion for invoicepdf\n\n")
	sb.WriteString("_invoicepdf_completions() {\n")
	sb.WriteString("    local cur prev\n")
	sb.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	sb.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	sb.WriteString("    COMPREPLY=()\n\n")
	sb.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(sb, "        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", commandNames(cmds))
	sb.WriteString("        return\n")
	sb.WriteString("    fi\n\n")
	sb.WriteString("    case \"${COMP_WORDS[1]}\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(sb, "    %s)\n", c.Name)

		var valued []flagDef
		for _, f := range c.Flags {
			if f.Type != flagBool {
				valued = append(valued, f)
			}
		}
		if len(valued) > 0 {
			sb.WriteString("        case \"$prev\" in\n")
			for _, f := range valued {
				fmt.Fprintf(sb, "        %s)\n", flagPattern(f))
				switch f.Type {
				case flagEnum:
					fmt.Fprintf(sb, "            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(f.Values, " "))
				case flagFile:
					fmt.Fprintf(sb, "            COMPREPLY=($(%s))\n", bashFileCompgen(f.FileGlob))
				case flagDir:
					sb.WriteString("            COMPREPLY=($(compgen -d -- \"$cur\"))\n")
				}
				sb.WriteString("            return\n")
				sb.WriteString("            ;;\n")
			}
			sb.WriteString("        esac\n")
		}

		if len(c.Flags) > 0 {
			sb.WriteString("        if [[ \"$cur\" == -* ]]; then\n")
			fmt.Fprintf(sb, "            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(flagWords(c.Flags), " "))
			sb.WriteString("            return\n")
			sb.WriteString("        fi\n")
		}
		switch {
		case c.TakesFiles:
			fmt.Fprintf(sb, "        COMPREPLY=($(%s))\n", bashFileCompgen(c.FilePattern))
		case len(c.Args) > 0:
			sb.WriteString("        if [[ ${COMP_CWORD} -eq 2 ]]; then\n")
			fmt.Fprintf(sb, "            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(c.Args, " "))
			sb.WriteString("        fi\n")
		}
		sb.WriteString("        ;;\n")
	}

	sb.WriteString("    esac\n")
	sb.WriteString("}\n\n")
	sb.WriteString("complete -F _invoicepdf_completions invoicepdf\n")
}

// zshEscape escapes text for use inside a single-quoted _arguments spec.
func zshEscape(s string) string {
	r := strings.NewReplacer(`'`, `'\''`, `[`, `\[`, `]`, `\]`, `:`, `\:`)
	return r.Replace(s)
}

func zshAction(f flagDef) string {
	switch f.Type {
	case flagBool:
		return ""
	case flagEnum:
		return ":" + f.Long + ":(" + strings.Join(f.Values, " ") + ")"
	case flagFile:
		return ":file:_files -g \"*.(" + strings.Join(globExtensions(f.FileGlob), "|") + ")\""
	case flagDir:
		return ":directory:_files -/"
	default:
		return ":" + f.Long + ": "
	}
}

func generateZsh(sb *strings.Builder, cmds []commandDef) {
	sb.WriteString("#compdef invoicepdf\n\n")
	sb.WriteString("_invoicepdf() {\n")
	sb.WriteString("    local -a commands\n")
	sb.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(sb, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	sb.WriteString("    )\n\n")
	sb.WriteString("    if (( CURRENT == 2 )); then\n")
	sb.WriteString("        _describe 'command' commands\n")
	sb.WriteString("        return\n")
	sb.WriteString("    fi\n\n")
	sb.WriteString("    local cmd=$words[2]\n")
	sb.WriteString("    shift words\n")
	sb.WriteString("    (( CURRENT-- ))\n\n")
	sb.WriteString("    case $cmd in\n")

	for _, c := range cmds {
		fmt.Fprintf(sb, "    %s)\n", c.Name)
		sb.WriteString("        _arguments")
		for _, f := range c.Flags {
			desc := zshEscape(f.Desc)
			action := zshAction(f)
			if f.Short != "" {
				fmt.Fprintf(sb, " \\\n            '(-%s --%s)'{-%s,--%s}'[%s]%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
			} else {
				fmt.Fprintf(sb, " \\\n            '--%s[%s]%s'", f.Long, desc, action)
			}
		}
		switch {
		case c.TakesFiles:
			fmt.Fprintf(sb, " \\\n            '*:file:_files -g \"*.(%s)\"'", strings.Join(globExtensions(c.FilePattern), "|"))
		case len(c.Args) > 0:
			fmt.Fprintf(sb, " \\\n            '1:%s:(%s)'", c.Name, strings.Join(c.Args, " "))
		}
		sb.WriteString("\n        ;;\n")
	}

	sb.WriteString("    esac\n")
	sb.WriteString("}\n\n")
	sb.WriteString("compdef _invoicepdf invoicepdf\n")
}

// fishQuote single-quotes s for fish.
func fishQuote(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}

func generateFish(sb *strings.Builder, cmds []commandDef) {
	sb.WriteString("# fish completion for invoicepdf\n\n")
	sb.WriteString("function __fish_invoicepdf_needs_command\n")
	sb.WriteString("    set -l cmd (commandline -opc)\n")
	sb.WriteString("    test (count $cmd) -eq 1\n")
	sb.WriteString("end\n\n")
	sb.WriteString("function __fish_invoicepdf_using_command\n")
	sb.WriteString("    set -l cmd (commandline -opc)\n")
	sb.WriteString("    test (count $cmd) -gt 1; and test \"$cmd[2]\" = \"$argv[1]\"\n")
	sb.WriteString("end\n\n")
	sb.WriteString("complete -c invoicepdf -f\n\n")

	for _, c := range cmds {
		fmt.Fprintf(sb, "complete -c invoicepdf -n __fish_invoicepdf_needs_command -a %s -d %s\n", c.Name, fishQuote(c.Desc))
	}

	for _, c := range cmds {
		cond := fishQuote("__fish_invoicepdf_using_command " + c.Name)
		sb.WriteString("\n")
		for _, f := range c.Flags {
			fmt.Fprintf(sb, "complete -c invoicepdf -n %s", cond)
			if f.Short != "" {
				fmt.Fprintf(sb, " -s %s", f.Short)
			}
			fmt.Fprintf(sb, " -l %s -d %s", f.Long, fishQuote(f.Desc))
			switch f.Type {
			case flagBool:
			case flagEnum:
				fmt.Fprintf(sb, " -x -a %s", fishQuote(strings.Join(f.Values, " ")))
			case flagFile:
				sb.WriteString(" -r -F")
			case flagDir:
				sb.WriteString(" -x -a '(__fish_complete_directories)'")
			default:
				sb.WriteString(" -x")
			}
			sb.WriteString("\n")
		}
		switch {
		case c.TakesFiles:
			fmt.Fprintf(sb, "complete -c invoicepdf -n %s -F\n", cond)
		case len(c.Args) > 0:
			fmt.Fprintf(sb, "complete -c invoicepdf -n %s -a %s\n", cond, fishQuote(strings.Join(c.Args, " ")))
		}
	}
}

// psQuote single-quotes s for PowerShell.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func psList(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = psQuote(it)
	}
	return "@(" + strings.Join(quoted, ", ") + ")"
}

func generatePowerShell(sb *strings.Builder, cmds []commandDef) {
	sb.WriteString("# powershell completion for invoicepdf\n\n")
	sb.WriteString("Register-ArgumentCompleter -Native -CommandName invoicepdf -ScriptBlock {\n")
	sb.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")

	sb.WriteString("    $commands = [ordered]@{\n")
	for _, c := range cmds {
		fmt.Fprintf(sb, "        %s = %s\n", psQuote(c.Name), psQuote(c.Desc))
	}
	sb.WriteString("    }\n")

	sb.WriteString("    $flags = @{\n")
	for _, c := range cmds {
		if len(c.Flags) > 0 {
			fmt.Fprintf(sb, "        %s = %s\n", psQuote(c.Name), psList(flagWords(c.Flags)))
		}
	}
	sb.WriteString("    }\n")

	sb.WriteString("    $positional = @{\n")
	for _, c := range cmds {
		if len(c.Args) > 0 {
			fmt.Fprintf(sb, "        %s = %s\n", psQuote(c.Name), psList(c.Args))
		}
	}
	sb.WriteString("    }\n")

	seen := map[string]bool{}
	sb.WriteString("    $values = @{\n")
	for _, c := range cmds {
		for _, f := range c.Flags {
			if f.Type != flagEnum || seen[f.Long] {
				continue
			}
			seen[f.Long] = true
			fmt.Fprintf(sb, "        %s = %s\n", psQuote("--"+f.Long), psList(f.Values))
		}
	}
	sb.WriteString("    }\n\n")

	sb.WriteString(`    $words = @($commandAst.CommandElements | ForEach-Object { $_.ToString() })
    if ($wordToComplete -ne '') {
        $words = $words[0..($words.Count - 2)]
    }

    if ($words.Count -le 1) {
        $commands.GetEnumerator() | Where-Object { $_.Key -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_.Key, $_.Key, 'ParameterValue', $_.Value)
        }
        return
    }

    $cmd = $words[1]
    $prev = $words[-1]
    if ($values.ContainsKey($prev)) {
        $values[$prev] | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
        }
        return
    }

    if ($wordToComplete -like '-*' -and $flags.ContainsKey($cmd)) {
        $flags[$cmd] | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterName', $_)
        }
        return
    }

    if ($positional.ContainsKey($cmd) -and $words.Count -eq 2) {
        $positional[$cmd] | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
        }
    }
}
`)
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: completion takes one shell", ErrUsage)
	}

	if err := GenerateCompletion(env.Stdout, Shell(args[0])); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return nil
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: invoicepdf completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w, "  Bash        eval \"$(invoicepdf completion bash)\"  # ~/.bashrc")
	fmt.Fprintln(w, "  Zsh         eval \"$(invoicepdf completion zsh)\"   # ~/.zshrc, after compinit")
	fmt.Fprintln(w, "  Fish        invoicepdf completion fish > ~/.config/fish/completions/invoicepdf.fish")
	fmt.Fprintln(w, "  PowerShell  invoicepdf completion powershell | Out-String | Invoke-Expression")
}
