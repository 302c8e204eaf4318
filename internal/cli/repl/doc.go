// Package repl implements the interactive mode of redmod-cli.
//
//   - repl.go: prompt loop, built-in commands and dispatch
//   - args.go: splitting a line into arguments with quoting
//   - completer.go: command-name completion fed by the server's COMMAND list
//   - history.go: history persisted across sessions
//
// Lines are read with bufio, so completion is offered through the
// built-in "help <prefix>" rather than a tab key.
package repl
