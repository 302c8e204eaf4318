package repl

import (
	"slices"
	"strings"
	"sync"
)

// builtins are handled by the REPL itself.
var builtins = []string{"exit", "help"}

// Completer provides command completion for the REPL.
type Completer struct {
	mu       sync.RWMutex
	commands []string
}

// NewCompleter creates a completer knowing the built-ins and commands.
func NewCompleter(commands ...string) *Completer {
	c := &Completer{}
	c.SetCommands(commands)
	return c
}

// SetCommands replaces the server command names, usually with the
// reply of COMMAND LIST.
func (c *Completer) SetCommands(commands []string) {
	all := make([]string, 0, len(commands)+len(builtins))
	for _, name := range commands {
		all = append(all, strings.ToLower(name))
	}
	all = append(all, builtins...)
	slices.Sort(all)

	c.mu.Lock()
	c.commands = slices.Compact(all)
	c.mu.Unlock()
}

// Complete returns the commands starting with prefix, ignoring case.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.ToLower(prefix)

	c.mu.RLock()
	defer c.mu.RUnlock()
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
