// Package domain defines the error taxonomy shared by the store, the
// command engine and the connection layer.
//
// Every error a client can observe is a *CommandError. Its text is sent
// verbatim as a RESP error reply, so the Prefix doubles as the error class
// clients switch on (ERR, WRONGTYPE, NOAUTH).
package domain
