package domain

import (
	"errors"
	"fmt"
)

// Error codes. They identify the error kind independently of the rendered
// text, which may embed a command name.
const (
	CodeArity           = "ARITY"
	CodeWrongType       = "WRONGTYPE"
	CodeNotInteger      = "NOTINT"
	CodeNoSuchKey       = "NOSUCHKEY"
	CodeSyntax          = "SYNTAX"
	CodeUnknownCommand  = "UNKNOWN"
	CodeNoAuth          = "NOAUTH"
	CodeInvalidPassword = "INVALIDPASS"
	CodeSubscribeMode   = "SUBSCRIBEMODE"
	CodeMaxClients      = "MAXCLIENTS"
	CodeRateLimited     = "RATELIMIT"
	CodeProtocol        = "PROTOCOL"
)

// CommandError is an error surfaced to clients as a RESP error reply.
type CommandError struct {
	Code    string // Error kind, compared by errors.Is
	Prefix  string // Leading word of the reply (ERR, WRONGTYPE, ...)
	Message string // Human-readable message
}

// Error renders the reply text, "<PREFIX> <message>".
func (e *CommandError) Error() string {
	return e.Prefix + " " + e.Message
}

// Is implements errors.Is() support: two CommandErrors match when their
// codes are equal.
func (e *CommandError) Is(target error) bool {
	t, ok := target.(*CommandError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewCommandError creates a CommandError.
func NewCommandError(code, prefix, message string) *CommandError {
	return &CommandError{
		Code:    code,
		Prefix:  prefix,
		Message: message,
	}
}

// IsCommandError checks if err is a CommandError with the given code.
// An empty code matches any CommandError.
func IsCommandError(err error, code string) bool {
	var ce *CommandError
	if errors.As(err, &ce) {
		return code == "" || ce.Code == code
	}
	return false
}

// ============================================================================
// Keyspace errors
// ============================================================================

var (
	// ErrWrongType indicates an operation against a key of another kind.
	ErrWrongType = NewCommandError(CodeWrongType, "WRONGTYPE",
		"Operation against a key holding the wrong kind of value")

	// ErrNotInteger indicates an argument failed integer parsing.
	ErrNotInteger = NewCommandError(CodeNotInteger, "ERR",
		"value is not an integer or out of range")

	// ErrNoSuchKey indicates the source key of a rename is absent.
	ErrNoSuchKey = NewCommandError(CodeNoSuchKey, "ERR", "no such key")

	// ErrSyntax indicates an unrecognised option.
	ErrSyntax = NewCommandError(CodeSyntax, "ERR", "syntax error")
)

// ============================================================================
// Connection errors
// ============================================================================

var (
	// ErrNoAuth indicates a command was sent before AUTH.
	ErrNoAuth = NewCommandError(CodeNoAuth, "NOAUTH", "Authentication required.")

	// ErrInvalidPassword indicates AUTH was given the wrong password.
	ErrInvalidPassword = NewCommandError(CodeInvalidPassword, "WRONGPASS",
		"invalid username-password pair or user is disabled.")

	// ErrAuthNotConfigured indicates AUTH was sent to a server without a password.
	ErrAuthNotConfigured = NewCommandError(CodeSyntax, "ERR",
		"AUTH <password> called without any password configured for the default user. Are you sure your configuration is correct?")

	// ErrDBIndex indicates SELECT of a database other than 0.
	ErrDBIndex = NewCommandError(CodeSyntax, "ERR", "DB index is out of range")

	// ErrClientName indicates CLIENT SETNAME with a name containing spaces.
	ErrClientName = NewCommandError(CodeSyntax, "ERR",
		"Client names cannot contain spaces, newlines or special characters.")

	// ErrMaxClients indicates the connection limit was reached.
	ErrMaxClients = NewCommandError(CodeMaxClients, "ERR", "max number of clients reached")

	// ErrRateLimited indicates the connection exceeded its command rate.
	ErrRateLimited = NewCommandError(CodeRateLimited, "ERR", "rate limit exceeded")
)

// ArityError reports a wrong argument count for cmd.
func ArityError(cmd string) *CommandError {
	return NewCommandError(CodeArity, "ERR",
		fmt.Sprintf("wrong number of arguments for '%s' command", cmd))
}

// UnknownCommandError reports that no command named cmd exists.
func UnknownCommandError(cmd string) *CommandError {
	return NewCommandError(CodeUnknownCommand, "ERR",
		fmt.Sprintf("unknown command '%s'", cmd))
}

// UnknownSubcommandError reports an unknown subcommand of a container
// command such as CLIENT or PUBSUB.
func UnknownSubcommandError(cmd, sub string) *CommandError {
	return NewCommandError(CodeSyntax, "ERR",
		fmt.Sprintf("unknown subcommand '%s'. Try %s HELP.", sub, cmd))
}

// InvalidExpireError reports an expiry that cannot be represented.
func InvalidExpireError(cmd string) *CommandError {
	return NewCommandError(CodeSyntax, "ERR",
		fmt.Sprintf("invalid expire time in '%s' command", cmd))
}

// SubscribeModeError reports a command that is not allowed while the
// connection has active subscriptions.
func SubscribeModeError(cmd string) *CommandError {
	return NewCommandError(CodeSubscribeMode, "ERR",
		fmt.Sprintf("Can't execute '%s': only (P)SUBSCRIBE / (P)UNSUBSCRIBE / PING / QUIT are allowed in this context", cmd))
}

// ProtocolError reports undecodable input. The connection is closed after
// it is sent.
func ProtocolError(detail string) *CommandError {
	return NewCommandError(CodeProtocol, "ERR", "Protocol error: "+detail)
}
