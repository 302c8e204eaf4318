// Package connection talks RESP to a redmod server for redmod-cli.
//
//   - client.go: a single TCP connection issuing commands and reading replies
//   - manager.go: lazy dialing, authentication and reconnect after failures
package connection
