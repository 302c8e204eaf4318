// Package command defines the redmod-cli application using urfave/cli/v2.
//
// With arguments the command line is sent once and the reply printed.
// Without arguments an interactive REPL starts. SUBSCRIBE in either
// mode prints pushed messages until interrupted.
package command
