// Package command implements the command engine: a registry of command
// descriptors over a memory.Store.
//
// Dispatch lower-cases the command name, rejects unknown names, validates
// the argument count against the descriptor and runs the handler. Every
// handler runs under one store-wide mutex, and so do the store's expiration
// callbacks, so no command ever observes another one half applied.
//
// Handlers take their arguments as an ordered list of raw byte strings and
// return a resp.Value ready to be written to a client.
package command
