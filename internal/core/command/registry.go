package command

import (
	"github.com/yndnr/redmod-go/internal/core/domain"
	"github.com/yndnr/redmod-go/pkg/resp"
)

// Handler executes a command. args excludes the command name.
type Handler func(args [][]byte) resp.Value

// Flag describes a command for introspection and metrics.
type Flag uint8

const (
	// FlagWrite marks commands that may modify the keyspace.
	FlagWrite Flag = 1 << iota
	// FlagReadOnly marks commands that never modify the keyspace.
	FlagReadOnly
)

// String returns "write", "readonly" or "".
func (f Flag) String() string {
	switch {
	case f&FlagWrite != 0:
		return "write"
	case f&FlagReadOnly != 0:
		return "readonly"
	default:
		return ""
	}
}

// Unbounded is the Optional count of variadic commands.
const Unbounded = -1

// Descriptor describes one command.
type Descriptor struct {
	Name     string
	Required int
	Optional int // Unbounded for variadic commands
	Handler  Handler
	Flags    Flag
}

// Accepts reports whether n arguments satisfy the descriptor's arity.
func (d Descriptor) Accepts(n int) bool {
	if n < d.Required {
		return false
	}
	return d.Optional < 0 || n <= d.Required+d.Optional
}

// Arity returns the arity in the form COMMAND reports it: positive for a
// fixed count and negative for a minimum, both including the name itself.
func (d Descriptor) Arity() int {
	if d.Optional != 0 {
		return -(d.Required + 1)
	}
	return d.Required + 1
}

// arityChecked wraps the handler of d so it only runs when the argument
// count is valid.
func arityChecked(d Descriptor) Handler {
	return func(args [][]byte) resp.Value {
		if !d.Accepts(len(args)) {
			return errorReply(domain.ArityError(d.Name))
		}
		return d.Handler(args)
	}
}

// errorReply renders err as an error reply. Errors from outside the domain
// taxonomy get the generic ERR prefix.
func errorReply(err error) resp.Value {
	if !domain.IsCommandError(err, "") {
		return resp.Error("ERR " + err.Error())
	}
	return resp.Error(err.Error())
}
