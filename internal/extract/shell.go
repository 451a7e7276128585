package extract

import (
	"path"
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

var (
	execvePattern   = regexp.MustCompile(`(?i)execve\s*\(\s*argv\s*=\s*\[`)
	argvItemPattern = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"|'((?:[^'\\]|\\.)*)'`)
)

var shells = map[string]bool{
	"bash": true,
	"sh":   true,
	"zsh":  true,
	"dash": true,
}

// wrapper describes a command that runs its first operand as the real
// command. valueFlags take the following word as their value; operands
// counts positional arguments that come before the wrapped command.
type wrapper struct {
	valueFlags map[string]bool
	operands   int
}

func flagSet(flags ...string) map[string]bool {
	set := make(map[string]bool, len(flags))
	for _, f := range flags {
		set[f] = true
	}
	return set
}

var wrappers = map[string]wrapper{
	"sudo": {valueFlags: flagSet(
		"-u", "--user", "-g", "--group", "-C", "--close-from", "-D", "--chdir",
		"-h", "--host", "-p", "--prompt", "-r", "--role", "-t", "--type", "-U", "--other-user",
	)},
	"env":     {valueFlags: flagSet("-u", "--unset", "-C", "--chdir", "-S", "--split-string")},
	"nice":    {valueFlags: flagSet("-n", "--adjustment")},
	"nohup":   {},
	"exec":    {valueFlags: flagSet("-a")},
	"command": {},
	"timeout": {valueFlags: flagSet("-s", "--signal", "-k", "--kill-after"), operands: 1},
}

// shellRule reads execve(argv=[...]) calls. The first argv element is a
// tool; shells invoked with -c have their script parsed and every command
// in it reported as well.
type shellRule struct {
	maxDepth int
}

func (r *shellRule) Name() string { return RuleShell }

func (r *shellRule) Find(text string) []string {
	var out []string
	for _, loc := range execvePattern.FindAllStringIndex(text, -1) {
		argv := parseArgv(argvList(text[loc[1]:]))
		if len(argv) == 0 {
			continue
		}
		out = append(out, r.command(argv, 0)...)
	}
	return out
}

// command reports argv[0] and, for shells running -c scripts, the commands
// of the script.
func (r *shellRule) command(argv []string, depth int) []string {
	exe := argv[0]
	if exe == "" || strings.Contains(exe, "$") {
		return nil
	}
	out := []string{exe}
	if script := inlineScript(argv); script != "" {
		out = append(out, r.script(script, depth+1)...)
	}
	return out
}

func (r *shellRule) script(script string, depth int) []string {
	if depth > r.maxDepth {
		return nil
	}
	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(script), "")
	if err != nil {
		// Unparseable scripts still name their first command.
		if fields := strings.Fields(script); len(fields) > 0 {
			return []string{fields[0]}
		}
		return nil
	}

	var out []string
	syntax.Walk(file, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok || len(call.Args) == 0 {
			return true
		}
		words := make([]string, 0, len(call.Args))
		for _, w := range call.Args {
			words = append(words, wordToString(w))
		}
		words = unwrap(words)
		if len(words) == 0 {
			return true
		}
		out = append(out, r.command(words, depth)...)
		return true
	})
	return out
}

// inlineScript returns the script passed to a shell with -c.
func inlineScript(argv []string) string {
	if !shells[path.Base(strings.ReplaceAll(argv[0], `\`, "/"))] {
		return ""
	}
	for i := 1; i < len(argv)-1; i++ {
		if argv[i] == "-c" || (strings.HasPrefix(argv[i], "-") && !strings.HasPrefix(argv[i], "--") && strings.HasSuffix(argv[i], "c")) {
			return argv[i+1]
		}
	}
	return ""
}

// unwrap drops wrapper commands like sudo and env along with their flags,
// flag values, operands and variable assignments.
func unwrap(words []string) []string {
	for len(words) > 0 {
		w, ok := wrappers[path.Base(words[0])]
		if !ok {
			return words
		}
		words = words[1:]
	options:
		for len(words) > 0 {
			switch word := words[0]; {
			case word == "--":
				words = words[1:]
				break options
			case w.valueFlags[word]:
				words = skip(words, 2)
			case strings.HasPrefix(word, "-"), strings.Contains(word, "="):
				words = words[1:]
			default:
				break options
			}
		}
		words = skip(words, w.operands)
	}
	return words
}

func skip(words []string, n int) []string {
	if n > len(words) {
		n = len(words)
	}
	return words[n:]
}

// wordToString returns the unquoted value of a literal word, or the printed
// form when the word contains expansions.
func wordToString(word *syntax.Word) string {
	var sb strings.Builder
	for _, part := range word.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			sb.WriteString(p.Value)
		case *syntax.SglQuoted:
			sb.WriteString(p.Value)
		case *syntax.DblQuoted:
			for _, inner := range p.Parts {
				lit, ok := inner.(*syntax.Lit)
				if !ok {
					return printWord(word)
				}
				sb.WriteString(lit.Value)
			}
		default:
			return printWord(word)
		}
	}
	return sb.String()
}

func printWord(word *syntax.Word) string {
	var sb strings.Builder
	printer := syntax.NewPrinter()
	printer.Print(&sb, word)
	return sb.String()
}

// parseArgv reads the quoted string elements of a VQL argv list. Unquoted
// elements (variables) are kept as empty placeholders so positions hold.
func parseArgv(list string) []string {
	var argv []string
	for _, item := range splitTopLevel(list) {
		item = strings.TrimSpace(item)
		if len(item) >= 6 && strings.HasPrefix(item, "'''") && strings.HasSuffix(item, "'''") {
			argv = append(argv, item[3:len(item)-3])
			continue
		}
		m := argvItemPattern.FindStringSubmatch(item)
		if m == nil || m[0] != item {
			argv = append(argv, "")
			continue
		}
		value := m[1]
		if value == "" {
			value = m[2]
		}
		argv = append(argv, unescape(value))
	}
	return argv
}

// argvList returns the text up to the bracket closing the argv list.
func argvList(text string) string {
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0 && c == '\\':
			i++
		case quote != 0 && c == quote:
			quote = 0
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
		case quote == 0 && c == ']':
			return text[:i]
		}
	}
	return ""
}

// splitTopLevel splits on commas that are not inside quotes.
func splitTopLevel(list string) []string {
	var (
		parts []string
		start int
		quote byte
	)
	for i := 0; i < len(list); i++ {
		c := list[i]
		switch {
		case quote != 0 && c == '\\':
			i++
		case quote != 0 && c == quote:
			quote = 0
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
		case quote == 0 && c == ',':
			parts = append(parts, list[start:i])
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(list[start:]); rest != "" {
		parts = append(parts, list[start:])
	}
	return parts
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(s[i])
			}
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
