// Package logger configures structured logging for redmod.
//
// It builds log/slog handlers (JSON or text) that share one process-wide
// level, so the level can be changed at runtime, and that redact attributes
// whose keys name credentials.
//
// Components take a *slog.Logger; the Logger interface wraps one for code
// that prefers an injectable type.
package logger
