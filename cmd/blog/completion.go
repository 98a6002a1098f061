package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/theacodes/blog.thea.codes/internal/pipeline"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob []string // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name  string
	Desc  string
	Flags []flagDef
	Args  []string // fixed positional values
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string
	FileGlob []string
	IsDir    bool
}

// flagCompletionMeta returns completion metadata keyed by flag name.
func flagCompletionMeta() map[string]completionMeta {
	return map[string]completionMeta{
		"style":     {Values: pipeline.StyleNames()},
		"config":    {FileGlob: []string{"*.yaml", "*.yml"}},
		"sources":   {IsDir: true},
		"output":    {IsDir: true},
		"static":    {IsDir: true},
		"templates": {IsDir: true},
	}
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	meta := flagCompletionMeta()
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
		case "int":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		if m, ok := meta[f.Name]; ok {
			switch {
			case len(m.Values) > 0:
				fd.Type = flagEnum
				fd.Values = m.Values
			case len(m.FileGlob) > 0:
				fd.Type = flagFile
				fd.FileGlob = m.FileGlob
			case m.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	sort.Slice(flags, func(i, j int) bool { return flags[i].Long < flags[j].Long })
	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSets.
func getCommands() []commandDef {
	return []commandDef{
		{Name: "build", Desc: "Render the site once", Flags: extractFlagsFromFlagSet(buildFlagSet(&buildFlags{}))},
		{Name: "serve", Desc: "Build, watch and preview the site", Flags: extractFlagsFromFlagSet(serveFlagSet(&serveFlags{}))},
		{Name: "completion", Desc: "Generate shell completion script", Args: []string{string(ShellBash), string(ShellZsh), string(ShellFish)}},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command", Args: commands},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var script string
	switch shell {
	case ShellBash:
		script = generateBash(getCommands())
	case ShellZsh:
		script = generateZsh(getCommands())
	case ShellFish:
		script = generateFish(getCommands())
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
	_, err := io.WriteString(w, script)
	return err
}

func generateBash(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# bash completion for blog\n")
	b.WriteString("_blog() {\n")
	b.WriteString("    local cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    local prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    local cmd=build i opts\n")
	b.WriteString("    for ((i=1; i<COMP_CWORD; i++)); do\n")
	fmt.Fprintf(&b, "        case \"${COMP_WORDS[i]}\" in %s) cmd=\"${COMP_WORDS[i]}\"; break;; esac\n", strings.Join(commands, "|"))
	b.WriteString("    done\n")

	// Flag values, keyed on the previous word.
	b.WriteString("    case \"$prev\" in\n")
	for _, f := range siteCommandFlags(cmds) {
		if f.Type == flagBool {
			continue
		}
		fmt.Fprintf(&b, "        %s)\n", strings.Join(flagSpellings(f), "|"))
		switch f.Type {
		case flagEnum:
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W %q -- \"$cur\")); return;;\n", strings.Join(f.Values, " "))
		case flagDir:
			b.WriteString("            COMPREPLY=($(compgen -d -- \"$cur\")); return;;\n")
		case flagFile:
			b.WriteString("            COMPREPLY=($(compgen -f -- \"$cur\")); return;;\n")
		default:
			b.WriteString("            return;;\n")
		}
	}
	b.WriteString("    esac\n")

	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range cmds {
		words := append([]string{}, c.Args...)
		for _, f := range c.Flags {
			words = append(words, flagSpellings(f)...)
		}
		fmt.Fprintf(&b, "        %s) opts=%q;;\n", c.Name, strings.Join(words, " "))
	}
	b.WriteString("    esac\n")
	fmt.Fprintf(&b, "    [[ $COMP_CWORD -eq 1 ]] && opts=\"$opts %s\"\n", strings.Join(commands, " "))
	b.WriteString("    COMPREPLY=($(compgen -W \"$opts\" -- \"$cur\"))\n")
	b.WriteString("}\n")
	b.WriteString("complete -F _blog blog\n")
	return b.String()
}

func generateZsh(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("#compdef blog\n\n")
	b.WriteString("_blog() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n")
	b.WriteString("    if (( CURRENT == 2 )) && [[ $words[2] != -* ]]; then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n")
	b.WriteString("    local cmd=build\n")
	b.WriteString("    if [[ $words[2] != -* ]]; then\n")
	b.WriteString("        cmd=$words[2]\n")
	b.WriteString("        shift words\n")
	b.WriteString("        (( CURRENT-- ))\n")
	b.WriteString("    fi\n")
	b.WriteString("    case $cmd in\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		switch {
		case len(c.Flags) > 0:
			b.WriteString("            _arguments \\\n")
			for _, f := range c.Flags {
				fmt.Fprintf(&b, "                %s \\\n", zshFlagSpec(f))
			}
			b.WriteString("            ;;\n")
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "            _values '%s' %s\n", c.Name, strings.Join(c.Args, " "))
			b.WriteString("            ;;\n")
		default:
			b.WriteString("            ;;\n")
		}
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _blog blog\n")
	return b.String()
}

func zshFlagSpec(f flagDef) string {
	body := "[" + zshEscape(f.Desc) + "]"
	switch f.Type {
	case flagBool:
	case flagEnum:
		body += ":" + f.Long + ":(" + strings.Join(f.Values, " ") + ")"
	case flagDir:
		body += ":" + f.Long + ":_files -/"
	case flagFile:
		body += ":" + f.Long + ":_files -g \"" + strings.Join(f.FileGlob, " ") + "\""
	default:
		body += ":" + f.Long + ": "
	}
	if f.Short == "" {
		return "'--" + f.Long + body + "'"
	}
	return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'%s'", f.Short, f.Long, f.Short, f.Long, body)
}

func zshEscape(s string) string {
	s = strings.ReplaceAll(s, "'", `'\''`)
	s = strings.ReplaceAll(s, "[", `\[`)
	s = strings.ReplaceAll(s, "]", `\]`)
	return strings.ReplaceAll(s, ":", `\:`)
}

func generateFish(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# fish completion for blog\n")
	b.WriteString("complete -c blog -f\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c blog -n '__fish_use_subcommand' -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}
	for _, c := range cmds {
		cond := "__fish_seen_subcommand_from " + c.Name
		if c.Name == "build" {
			cond = "__fish_use_subcommand; or " + cond
		}
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "complete -c blog -n '%s' -a '%s'\n", cond, strings.Join(c.Args, " "))
		}
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c blog -n '%s'", cond)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			line += " -l " + f.Long + " -d '" + fishEscape(f.Desc) + "'"
			switch f.Type {
			case flagBool:
			case flagEnum:
				line += " -r -a '" + strings.Join(f.Values, " ") + "'"
			case flagDir:
				line += " -r -a '(__fish_complete_directories)'"
			case flagFile:
				line += " -r -F"
			default:
				line += " -r"
			}
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

func fishEscape(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

// siteCommandFlags returns the union of command flags, deduplicated by name.
func siteCommandFlags(cmds []commandDef) []flagDef {
	seen := make(map[string]bool)
	var out []flagDef
	for _, c := range cmds {
		for _, f := range c.Flags {
			if !seen[f.Long] {
				seen[f.Long] = true
				out = append(out, f)
			}
		}
	}
	return out
}

func flagSpellings(f flagDef) []string {
	if f.Short == "" {
		return []string{"--" + f.Long}
	}
	return []string{"-" + f.Short, "--" + f.Long}
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: blog completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(blog completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(blog completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    blog completion fish > ~/.config/fish/completions/blog.fish")
}
