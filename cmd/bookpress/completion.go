package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/bookpress/bookpress"
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
var ErrUnsupportedShell = fmt.Errorf("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file with glob pattern
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	TakesFiles  bool   // accepts file arguments
	FilePattern string // glob for file arguments (e.g., "*.md")
}

// completionMeta holds completion-specific metadata for flags.
// This is the ONLY place where completion hints are defined.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	// Enum flags
	"engine": {Values: []string{"auto", "docker", "podman", "local"}},
	"merger": {Values: []string{"auto", "pdftk", "cpdf"}},
	"style":  {Values: bookpress.HighlightStyles()},

	// File flags with glob patterns
	"config": {FileGlob: "*.yaml,*.yml"},
	"output": {FileGlob: "*.pdf,*.html"},
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
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
		default:
			fd.Type = flagString
		}

		// Override type based on completion metadata
		if meta, ok := flagCompletionMeta[f.Name]; ok {
			if len(meta.Values) > 0 {
				fd.Type = flagEnum
				fd.Values = meta.Values
			} else if meta.FileGlob != "" {
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSets - single source of truth.
func getCommands() []commandDef {
	_, buildFS := newBuildFlagSet()
	_, coverFS := newCoverFlagSet()
	_, tocFS := newTOCFlagSet()
	_, cleanFS := newCleanFlagSet()
	_, doctorFS := newDoctorFlagSet()
	_, previewFS := newPreviewFlagSet()
	_, serveFS := newServeFlagSet()
	_, statsFS := newStatsFlagSet()

	return []commandDef{
		{Name: "build", Desc: "Build book variants to PDF", Flags: extractFlagsFromFlagSet(buildFS)},
		{Name: "cover", Desc: "Wrap a built artifact in its cover pages", Flags: extractFlagsFromFlagSet(coverFS)},
		{Name: "toc", Desc: "Build the table of contents fragment", Flags: extractFlagsFromFlagSet(tocFS)},
		{Name: "clean", Desc: "Remove the output directory", Flags: extractFlagsFromFlagSet(cleanFS)},
		{Name: "doctor", Desc: "Check the external toolchain", Flags: extractFlagsFromFlagSet(doctorFS)},
		{
			Name:        "preview",
			Desc:        "Render single chapters to HTML or PDF",
			Flags:       extractFlagsFromFlagSet(previewFS),
			TakesFiles:  true,
			FilePattern: "*.md,*.markdown",
		},
		{Name: "serve", Desc: "Serve chapter previews with live reload", Flags: extractFlagsFromFlagSet(serveFS)},
		{Name: "stats", Desc: "Show manuscript statistics", Flags: extractFlagsFromFlagSet(statsFS)},
		{Name: "completion", Desc: "Generate shell completion script"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// commandNames returns the registry's command names in declaration order.
func commandNames(commands []commandDef) []string {
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.Name)
	}
	return names
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	case ShellPowerShell:
		return generatePowerShell(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}

	shell := Shell(args[0])
	return GenerateCompletion(env.Stdout, shell)
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: bookpress completion <shell>")
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
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(bookpress completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc:")
	fmt.Fprintln(w, "    eval \"$(bookpress completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    bookpress completion fish > ~/.config/fish/completions/bookpress.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    bookpress completion powershell | Out-String | Invoke-Expression")
}

// generateBash writes a bash completion function. Flag arguments complete
// enum values or files where the registry knows them; command arguments
// complete files only for commands that take them.
func generateBash(w io.Writer) error {
	commands := getCommands()

	var b strings.Builder
	b.WriteString("# bash completion for bookpress\n")
	b.WriteString("_bookpress() {\n")
	b.WriteString("    local cur prev\n")
	b.WriteString("    COMPREPLY=()\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "    local commands=%q\n", strings.Join(commandNames(commands), " "))
	b.WriteString("\n")
	b.WriteString("    local cmd=\"\" i\n")
	b.WriteString("    for ((i = 1; i < COMP_CWORD; i++)); do\n")
	b.WriteString("        case \"${COMP_WORDS[i]}\" in\n")
	b.WriteString("        -*) ;;\n")
	b.WriteString("        *) cmd=\"${COMP_WORDS[i]}\"; break ;;\n")
	b.WriteString("        esac\n")
	b.WriteString("    done\n")
	b.WriteString("\n")
	b.WriteString("    if [[ -z \"$cmd\" ]]; then\n")
	b.WriteString("        COMPREPLY=($(compgen -W \"$commands\" -- \"$cur\"))\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n")
	b.WriteString("\n")
	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range commands {
		switch {
		case c.Name == "help":
			b.WriteString("    help)\n")
			b.WriteString("        COMPREPLY=($(compgen -W \"$commands\" -- \"$cur\"))\n")
			b.WriteString("        ;;\n")
		case c.Name == "completion":
			b.WriteString("    completion)\n")
			b.WriteString("        COMPREPLY=($(compgen -W \"bash zsh fish powershell\" -- \"$cur\"))\n")
			b.WriteString("        ;;\n")
		case len(c.Flags) > 0:
			fmt.Fprintf(&b, "    %s)\n", c.Name)
			bashPrevCases(&b, c.Flags)
			b.WriteString("        if [[ \"$cur\" == -* ]]; then\n")
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", bashFlagWords(c.Flags))
			if c.TakesFiles {
				b.WriteString("        else\n")
				b.WriteString("            COMPREPLY=($(compgen -f -- \"$cur\"))\n")
			}
			b.WriteString("        fi\n")
			b.WriteString("        ;;\n")
		}
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n")
	b.WriteString("\n")
	b.WriteString("complete -F _bookpress bookpress\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// bashPrevCases emits argument completion for flags that take a value.
func bashPrevCases(b *strings.Builder, flags []flagDef) {
	var plain []string

	b.WriteString("        case \"$prev\" in\n")
	for _, f := range flags {
		pattern := "--" + f.Long
		if f.Short != "" {
			pattern += "|-" + f.Short
		}
		switch f.Type {
		case flagEnum:
			fmt.Fprintf(b, "        %s)\n", pattern)
			fmt.Fprintf(b, "            COMPREPLY=($(compgen -W %q -- \"$cur\")); return ;;\n", strings.Join(f.Values, " "))
		case flagFile:
			fmt.Fprintf(b, "        %s)\n", pattern)
			b.WriteString("            COMPREPLY=($(compgen -f -- \"$cur\")); return ;;\n")
		case flagString, flagInt:
			plain = append(plain, pattern)
		case flagBool:
			// no argument
		}
	}
	if len(plain) > 0 {
		fmt.Fprintf(b, "        %s)\n", strings.Join(plain, "|"))
		b.WriteString("            return ;;\n")
	}
	b.WriteString("        esac\n")
}

// bashFlagWords lists every flag spelling for word completion.
func bashFlagWords(flags []flagDef) string {
	var words []string
	for _, f := range flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return strings.Join(words, " ")
}

// generateZsh writes a zsh completion function using _arguments specs.
func generateZsh(w io.Writer) error {
	commands := getCommands()

	var b strings.Builder
	b.WriteString("# zsh completion for bookpress\n")
	b.WriteString("_bookpress() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, c.Desc)
	}
	b.WriteString("    )\n")
	b.WriteString("\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe -t commands 'bookpress command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n")
	b.WriteString("\n")
	b.WriteString("    case \"${words[2]}\" in\n")
	for _, c := range commands {
		switch {
		case c.Name == "help":
			fmt.Fprintf(&b, "    help)\n        _values 'command' %s\n        ;;\n", strings.Join(commandNames(commands), " "))
		case c.Name == "completion":
			b.WriteString("    completion)\n        _values 'shell' bash zsh fish powershell\n        ;;\n")
		case len(c.Flags) > 0:
			fmt.Fprintf(&b, "    %s)\n", c.Name)
			b.WriteString("        _arguments \\\n")
			specs := make([]string, 0, len(c.Flags)+1)
			for _, f := range c.Flags {
				specs = append(specs, zshFlagSpec(f))
			}
			if c.TakesFiles {
				specs = append(specs, fmt.Sprintf("'*:file:_files -g \"%s\"'", zshGlob(c.FilePattern)))
			}
			for i, spec := range specs {
				sep := " \\"
				if i == len(specs)-1 {
					sep = ""
				}
				fmt.Fprintf(&b, "            %s%s\n", spec, sep)
			}
			b.WriteString("        ;;\n")
		}
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n")
	b.WriteString("\n")
	b.WriteString("if ! typeset -f compdef > /dev/null 2>&1; then\n")
	b.WriteString("    autoload -Uz compinit && compinit\n")
	b.WriteString("fi\n")
	b.WriteString("compdef _bookpress bookpress\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// zshFlagSpec renders one _arguments optspec.
func zshFlagSpec(f flagDef) string {
	var b strings.Builder
	if f.Short != "" {
		fmt.Fprintf(&b, "'(-%s --%s)'{-%s,--%s}'[%s]", f.Short, f.Long, f.Short, f.Long, f.Desc)
	} else {
		fmt.Fprintf(&b, "'--%s[%s]", f.Long, f.Desc)
	}
	switch f.Type {
	case flagBool:
		// no argument
	case flagEnum:
		fmt.Fprintf(&b, ":%s:(%s)", f.Long, strings.Join(f.Values, " "))
	case flagFile:
		fmt.Fprintf(&b, ":file:_files -g \"%s\"", zshGlob(f.FileGlob))
	default:
		fmt.Fprintf(&b, ":%s:", f.Long)
	}
	b.WriteString("'")
	return b.String()
}

// zshGlob turns a comma-separated glob list into a zsh alternation.
func zshGlob(glob string) string {
	parts := strings.Split(glob, ",")
	if len(parts) == 1 {
		return glob
	}
	return "(" + strings.Join(parts, "|") + ")"
}

// generateFish writes fish completions, one complete invocation per rule.
func generateFish(w io.Writer) error {
	commands := getCommands()

	var b strings.Builder
	b.WriteString("# fish completion for bookpress\n")
	b.WriteString("complete -c bookpress -e\n")
	b.WriteString("\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "complete -c bookpress -n __fish_use_subcommand -f -a %s -d '%s'\n", c.Name, fishQuote(c.Desc))
	}
	b.WriteString("\n")

	// Suppress file completion for command arguments that are not files.
	var nonFile []string
	for _, c := range commands {
		if !c.TakesFiles && c.Name != "help" && c.Name != "completion" {
			nonFile = append(nonFile, c.Name)
		}
	}
	fmt.Fprintf(&b, "complete -c bookpress -n '__fish_seen_subcommand_from %s' -f\n", strings.Join(nonFile, " "))
	fmt.Fprintf(&b, "complete -c bookpress -n '__fish_seen_subcommand_from help' -f -a '%s'\n", strings.Join(commandNames(commands), " "))
	b.WriteString("complete -c bookpress -n '__fish_seen_subcommand_from completion' -f -a 'bash zsh fish powershell'\n")
	b.WriteString("\n")

	for _, c := range commands {
		if len(c.Flags) == 0 {
			continue
		}
		cond := fmt.Sprintf("'__fish_seen_subcommand_from %s'", c.Name)
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "complete -c bookpress -n %s -l %s", cond, f.Long)
			if f.Short != "" {
				fmt.Fprintf(&b, " -s %s", f.Short)
			}
			switch f.Type {
			case flagBool:
				// no argument
			case flagEnum:
				fmt.Fprintf(&b, " -x -a '%s'", strings.Join(f.Values, " "))
			case flagFile:
				b.WriteString(" -r")
			default:
				b.WriteString(" -x")
			}
			fmt.Fprintf(&b, " -d '%s'\n", fishQuote(f.Desc))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// fishQuote escapes a string for a fish single-quoted argument.
func fishQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// generatePowerShell writes a native argument completer. It completes
// command names, flag names, and enum flag values.
func generatePowerShell(w io.Writer) error {
	commands := getCommands()

	var b strings.Builder
	b.WriteString("# PowerShell completion for bookpress\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName bookpress -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n")
	b.WriteString("\n")
	b.WriteString("    $commandFlags = @{\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "        '%s' = '%s'\n", c.Name, bashFlagWords(c.Flags))
	}
	b.WriteString("    }\n")
	b.WriteString("    $commandArgs = @{\n")
	fmt.Fprintf(&b, "        'help' = '%s'\n", strings.Join(commandNames(commands), " "))
	b.WriteString("        'completion' = 'bash zsh fish powershell'\n")
	b.WriteString("    }\n")
	b.WriteString("    $flagValues = @{\n")
	enums := powerShellEnumFlags(commands)
	enumNames := make([]string, 0, len(enums))
	for name := range enums {
		enumNames = append(enumNames, name)
	}
	sort.Strings(enumNames)
	for _, name := range enumNames {
		fmt.Fprintf(&b, "        '%s' = '%s'\n", name, enums[name])
	}
	b.WriteString("    }\n")
	b.WriteString("\n")
	b.WriteString("    $tokens = @($commandAst.CommandElements | ForEach-Object { $_.Extent.Text } | Select-Object -Skip 1)\n")
	b.WriteString("    if ($wordToComplete) { $tokens = @($tokens | Select-Object -SkipLast 1) }\n")
	b.WriteString("\n")
	b.WriteString("    $command = $tokens | Where-Object { $_ -notlike '-*' } | Select-Object -First 1\n")
	b.WriteString("\n")
	b.WriteString("    $completions = @()\n")
	b.WriteString("    if (-not $command) {\n")
	b.WriteString("        $completions = $commandFlags.Keys | Sort-Object\n")
	b.WriteString("    } elseif ($tokens.Count -gt 0 -and $flagValues.ContainsKey($tokens[-1])) {\n")
	b.WriteString("        $completions = $flagValues[$tokens[-1]] -split ' '\n")
	b.WriteString("    } elseif ($wordToComplete -like '-*' -and $commandFlags.ContainsKey($command)) {\n")
	b.WriteString("        $completions = $commandFlags[$command] -split ' '\n")
	b.WriteString("    } elseif ($commandArgs.ContainsKey($command)) {\n")
	b.WriteString("        $completions = $commandArgs[$command] -split ' '\n")
	b.WriteString("    }\n")
	b.WriteString("\n")
	b.WriteString("    $completions | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// powerShellEnumFlags collects the enum value lists across all commands.
// Enum meaning is per flag name, so one entry per spelling is enough.
func powerShellEnumFlags(commands []commandDef) map[string]string {
	values := make(map[string]string)
	for _, c := range commands {
		for _, f := range c.Flags {
			if f.Type != flagEnum {
				continue
			}
			values["--"+f.Long] = strings.Join(f.Values, " ")
			if f.Short != "" {
				values["-"+f.Short] = strings.Join(f.Values, " ")
			}
		}
	}
	return values
}
