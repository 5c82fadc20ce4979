package repl

import (
	"sort"
	"strings"
)

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over the given command paths, such as
// "plan generate". The shell builtins are always included.
func NewCompleter(commands ...string) *Completer {
	seen := make(map[string]struct{})
	var all []string
	for _, cmd := range append(commands, "exit", "quit", "history") {
		cmd = strings.Join(strings.Fields(cmd), " ")
		if _, ok := seen[cmd]; ok || cmd == "" {
			continue
		}
		seen[cmd] = struct{}{}
		all = append(all, cmd)
	}
	sort.Strings(all)
	return &Completer{commands: all}
}

// Complete returns completion suggestions for the given prefix, in
// alphabetical order. Leading and repeated spaces in prefix are ignored,
// and a trailing space asks for subcommands only.
func (c *Completer) Complete(prefix string) []string {
	trailing := strings.HasSuffix(prefix, " ")
	prefix = strings.Join(strings.Fields(prefix), " ")
	if trailing && prefix != "" {
		prefix += " "
	}

	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
